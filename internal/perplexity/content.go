package perplexity

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

// DemoContent is returned when no API key is configured
func DemoContent(title string, points []string) string {
	items := make([]string, len(points))
	for i, p := range points {
		p = html.EscapeString(p)
		items[i] = fmt.Sprintf("<h3>Point: %s</h3><p>Detailed explanation of %s...</p>", p, p)
	}
	return fmt.Sprintf("<h2>Introduction</h2><p>This is a demo document about %s.</p>%s",
		html.EscapeString(title), strings.Join(items, "\n"))
}

// FallbackContent is returned when the completions call fails
func FallbackContent(points []string) string {
	items := make([]string, len(points))
	for i, p := range points {
		p = html.EscapeString(p)
		items[i] = fmt.Sprintf("<h3>%s</h3><p>Detailed content about %s...</p>", p, p)
	}
	return "<h2>Content</h2>" + strings.Join(items, "\n")
}

// buildPrompt creates the single user message sent to the API
func buildPrompt(instruction string, req ContentRequest) string {
	var prompt strings.Builder

	prompt.WriteString(instruction)
	prompt.WriteString("\n\n")
	prompt.WriteString(fmt.Sprintf("Title: %s\n", req.Title))
	prompt.WriteString("Key Points to Cover:\n")
	for i, p := range req.Points {
		if i > 0 {
			prompt.WriteString("\n")
		}
		prompt.WriteString("- " + p)
	}
	prompt.WriteString("\n\n")
	prompt.WriteString(fmt.Sprintf("Language: %s\n", req.Language))
	prompt.WriteString("Format: HTML with clear sections and paragraphs\n")
	prompt.WriteString("Length: Approximately 6000-8000 words\n")
	prompt.WriteString("Tone: Professional, informative, actionable\n\n")
	prompt.WriteString("Structure each section with:\n")
	prompt.WriteString("1. Section title\n")
	prompt.WriteString("2. Detailed explanation\n")
	prompt.WriteString("3. Best practices\n")
	prompt.WriteString("4. Examples\n\n")
	prompt.WriteString("Return ONLY valid HTML content (no <html>, <head>, <body> tags), starting with <h2> tags.\n")
	prompt.WriteString("Begin now:\n")

	return prompt.String()
}

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(false), // inline styles, the document has no chroma stylesheet
			),
		),
	),
)

// normalizeContent strips code fences around HTML and converts Markdown
// answers to HTML. Content that already starts with a tag is kept as is.
func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	content = stripHTMLFence(content)

	if strings.HasPrefix(content, "<") {
		return content, nil
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

// stripHTMLFence unwraps a response of the form ```html ... ```
func stripHTMLFence(content string) string {
	if !strings.HasPrefix(content, "```") || !strings.HasSuffix(content, "```") {
		return content
	}

	inner := strings.TrimSuffix(content, "```")
	newline := strings.Index(inner, "\n")
	if newline == -1 {
		return content
	}

	lang := strings.TrimSpace(strings.TrimPrefix(inner[:newline], "```"))
	if lang != "html" && lang != "" {
		return content
	}

	body := strings.TrimSpace(inner[newline+1:])
	if !strings.HasPrefix(body, "<") {
		return content
	}
	return body
}
