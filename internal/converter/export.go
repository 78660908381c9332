package converter

import (
	"context"
	"fmt"
	"strings"
)

// HTMLExport stores the HTML document next to a marker file carrying the
// PDF name. The document can be printed to PDF from a browser.
type HTMLExport struct{}

// NewHTMLExport creates an HTML export converter
func NewHTMLExport() *HTMLExport {
	return &HTMLExport{}
}

// Convert returns <name>.html and the <name>.pdf marker
func (e *HTMLExport) Convert(ctx context.Context, html, filename string) ([]Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	htmlName := HTMLName(filename)
	return []Output{
		{Name: htmlName, ContentType: ContentTypeHTML, Data: []byte(html)},
		{Name: filename, ContentType: ContentTypePDF, Data: []byte(Marker(filename, htmlName))},
	}, nil
}

// Name returns the engine name
func (e *HTMLExport) Name() string {
	return "html-export"
}

// Close is a no-op
func (e *HTMLExport) Close() error {
	return nil
}

// HTMLName returns the HTML sibling of a PDF file name
func HTMLName(filename string) string {
	return strings.TrimSuffix(filename, ".pdf") + ".html"
}

// Marker returns the content of the PDF marker file
func Marker(pdfName, htmlName string) string {
	return fmt.Sprintf("PDF_EXPORT\n%s\nHTML_SOURCE: %s", pdfName, htmlName)
}
