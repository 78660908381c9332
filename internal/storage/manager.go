package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pep299/pdf-generator-api/internal/logging"
)

// CleanupNotifier is told about cleanups that deleted files
type CleanupNotifier interface {
	SendCleanupReport(ctx context.Context, deleted int, maxAge time.Duration) error
}

// Stats represents aggregate statistics over stored PDF files
type Stats struct {
	TotalDocuments int     `json:"total_documents"`
	TotalSizeMB    float64 `json:"total_size_mb"`
	CreatedToday   int     `json:"created_today"`
}

// Manager implements listing, statistics and cleanup on top of a Store
type Manager struct {
	store    Store
	logger   *logging.Logger
	notifier CleanupNotifier
}

// NewManager creates a new manager. notifier may be nil.
func NewManager(store Store, logger *logging.Logger, notifier CleanupNotifier) *Manager {
	if logger == nil {
		logger = logging.New(nil)
	}
	return &Manager{store: store, logger: logger, notifier: notifier}
}

// Store returns the underlying store
func (m *Manager) Store() Store {
	return m.store
}

// Open opens a stored file
func (m *Manager) Open(ctx context.Context, name string) (io.ReadCloser, FileInfo, error) {
	return m.store.Open(ctx, name)
}

// List returns all stored files, newest first
func (m *Manager) List(ctx context.Context) ([]FileInfo, error) {
	files, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name > files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// Stats counts .pdf files, their size in MB and those modified on now's date
func (m *Manager) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	files, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	var totalSize int64
	year, month, day := now.Date()

	for _, f := range files {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".pdf") {
			continue
		}
		stats.TotalDocuments++
		totalSize += f.Size

		y, mo, d := f.ModTime.In(now.Location()).Date()
		if y == year && mo == month && d == day {
			stats.CreatedToday++
		}
	}

	stats.TotalSizeMB = math.Round(float64(totalSize)/1024/1024*100) / 100
	return stats, nil
}

// Cleanup deletes every file last modified before now-maxAge and returns
// how many were deleted
func (m *Manager) Cleanup(ctx context.Context, maxAge time.Duration, now time.Time) (int, error) {
	files, err := m.store.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-maxAge)
	deleted := 0

	for _, f := range files {
		if !f.ModTime.Before(cutoff) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if err := m.store.Delete(ctx, f.Name); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return deleted, fmt.Errorf("deleting %s: %w", f.Name, err)
		}
		deleted++
	}

	m.logger.Infof("Cleanup: %d old files deleted", deleted)

	if deleted > 0 && m.notifier != nil {
		if err := m.notifier.SendCleanupReport(ctx, deleted, maxAge); err != nil {
			m.logger.Warnf("Failed to send Slack notification: %v", err)
		}
	}

	return deleted, nil
}
