package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/pep299/pdf-generator-api/internal/config"
	"github.com/pep299/pdf-generator-api/internal/di"
	"github.com/pep299/pdf-generator-api/internal/document"
	"github.com/pep299/pdf-generator-api/internal/logging"
)

const usage = `Usage: pdfgen-cli <command> [options]

Commands:
  generate   Generate a document
  cleanup    Delete documents older than CLEANUP_MAX_AGE_HOURS
  stats      Print storage statistics as JSON
`

// errUsage is returned for unknown or missing commands
var errUsage = errors.New("invalid usage")

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), os.Args[1:], cfg, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// run executes one command against a container built from cfg
func run(ctx context.Context, args []string, cfg *config.Config, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	logger := logging.New(stderr)

	switch args[0] {
	case "generate":
		req, err := parseGenerateFlags(args[1:], stderr)
		if err != nil {
			return err
		}
		container, err := di.NewContainer(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("creating container: %w", err)
		}
		defer container.Close()

		result, err := container.Generator.Generate(ctx, *req)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Generated %s (%d bytes) in %.2fs\n", result.Filename, result.Size, result.Duration.Seconds())
		for _, f := range result.Files {
			fmt.Fprintf(stdout, "  %s\n", f)
		}
		return nil

	case "cleanup":
		container, err := di.NewContainer(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("creating container: %w", err)
		}
		defer container.Close()

		deleted, err := container.Files.Cleanup(ctx, cfg.CleanupMaxAge(), time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%d old files deleted\n", deleted)
		return nil

	case "stats":
		container, err := di.NewContainer(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("creating container: %w", err)
		}
		defer container.Close()

		stats, err := container.Files.Stats(ctx, time.Now())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)

	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil

	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return errUsage
	}
}

// parseGenerateFlags builds a generation request from command line flags
func parseGenerateFlags(args []string, stderr io.Writer) (*document.Request, error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	req := &document.Request{}
	var pageCount int

	fs.StringVarP(&req.Title, "title", "t", "", "document title (required)")
	fs.StringVarP(&req.Description, "description", "d", "", "cover description")
	fs.StringVarP(&req.Author, "author", "a", "", "author (default DEFAULT_AUTHOR)")
	fs.StringVar(&req.Template, "template", document.DefaultTemplate, "content template")
	fs.StringArrayVarP(&req.Points, "point", "p", nil, "key point (repeatable)")
	fs.StringVar(&req.Language, "language", document.DefaultLanguage, "content language")
	fs.BoolVar(&req.UseAI, "ai", false, "generate content with Perplexity")
	fs.StringVar(&req.CoverStyle, "cover-style", document.DefaultCoverStyle, "cover style")
	fs.StringVar(&req.PrimaryColor, "color", document.DefaultPrimaryColor, "primary color (#rgb or #rrggbb)")
	fs.IntVar(&pageCount, "pages", document.DefaultPageCount, "target page count")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	req.PageCount = &pageCount

	return req, nil
}
