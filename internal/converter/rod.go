package converter

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// A4 in inches, margins come from the document's @page rule
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
)

// pdfRenderer renders a local HTML file to PDF, mocked in tests
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string) ([]byte, error)
	Close() error
}

var _ pdfRenderer = (*rodRenderer)(nil)

// rodRenderer implements pdfRenderer with headless Chrome
type rodRenderer struct {
	mu      sync.Mutex
	browser *rod.Browser
	bin     string
	timeout time.Duration
}

func newRodRenderer(timeout time.Duration, bin string) *rodRenderer {
	return &rodRenderer{timeout: timeout, bin: bin}
}

// ensureBrowser lazily launches and connects to the browser
func (r *rodRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().Headless(true)
	if r.bin != "" {
		// Pre-installed browsers are used in containers, where the sandbox is unavailable
		l = l.Bin(r.bin).NoSandbox(true)
	} else if os.Getenv("CI") == "true" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browser = browser
	return browser, nil
}

// RenderFromFile opens filePath in a new tab and prints it to PDF
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:        floatPtr(a4WidthInches),
		PaperHeight:       floatPtr(a4HeightInches),
		MarginTop:         floatPtr(0),
		MarginBottom:      floatPtr(0),
		MarginLeft:        floatPtr(0),
		MarginRight:       floatPtr(0),
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

// Close releases browser resources
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}

func floatPtr(v float64) *float64 {
	return &v
}

// RodConverter converts HTML to PDF with headless Chrome via go-rod
type RodConverter struct {
	renderer pdfRenderer
}

// NewRodConverter creates a RodConverter. bin selects a browser binary,
// empty lets rod find or download one.
func NewRodConverter(timeout time.Duration, bin string) *RodConverter {
	return &RodConverter{renderer: newRodRenderer(timeout, bin)}
}

// Convert renders html to a single PDF output
func (c *RodConverter) Convert(ctx context.Context, html, filename string) ([]Output, error) {
	tmpPath, cleanup, err := writeTempFile(html)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	data, err := c.renderer.RenderFromFile(ctx, tmpPath)
	if err != nil {
		return nil, err
	}

	return []Output{{Name: filename, ContentType: ContentTypePDF, Data: data}}, nil
}

// Name returns the engine name
func (c *RodConverter) Name() string {
	return "chrome"
}

// Close releases browser resources
func (c *RodConverter) Close() error {
	return c.renderer.Close()
}

// writeTempFile writes html to a temp file and returns its path and a cleanup func
func writeTempFile(html string) (string, func(), error) {
	f, err := os.CreateTemp("", "pdfgen-*.html")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	cleanup := func() { os.Remove(path) }

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", err)
	}
	return path, cleanup, nil
}
