package document

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"
)

// ErrRender indicates the document template could not be executed
var ErrRender = errors.New("document rendering failed")

// coverGradients maps a cover style to its CSS background. minimalist is
// derived from the primary colour.
var coverGradients = map[string]string{
	"gradient-blue":   "linear-gradient(135deg, #3182ce 0%, #2c5aa0 100%)",
	"gradient-purple": "linear-gradient(135deg, #a855f7 0%, #7c3aed 100%)",
	"gradient-tech":   "linear-gradient(135deg, #0ea5e9 0%, #06b6d4 100%)",
}

// CoverGradient returns the cover background for a style
func CoverGradient(style, primaryColor string) string {
	if style == "minimalist" {
		color := NormalizeColor(primaryColor)
		return fmt.Sprintf("linear-gradient(135deg, %s 0%%, %scc 100%%)", color, color)
	}
	if gradient, ok := coverGradients[style]; ok {
		return gradient
	}
	return coverGradients[DefaultCoverStyle]
}

// KeyPointsContent renders the body used when AI generation is off
func KeyPointsContent(points []string) string {
	items := make([]string, len(points))
	for i, p := range points {
		p = html.EscapeString(p)
		items[i] = fmt.Sprintf("<h3>%s</h3><p>Contenu détaillé sur %s...</p>", p, p)
	}
	return "<h2>Points Clés</h2>" + strings.Join(items, "\n")
}

// Page holds everything printed into the final document
type Page struct {
	Title        string
	Description  string
	Author       string
	Content      string // trusted HTML
	CoverStyle   string
	PrimaryColor string
	Now          time.Time
}

type pageData struct {
	Title        string
	Description  string
	Author       string
	Content      template.HTML
	Gradient     template.CSS
	PrimaryColor template.CSS
	Date         string
	GeneratedAt  string
	Year         int
}

var pageTemplate = template.Must(template.New("document").Parse(documentTemplate))

// RenderHTML renders a complete standalone HTML document
func RenderHTML(p Page) (string, error) {
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	color := NormalizeColor(p.PrimaryColor)

	data := pageData{
		Title:        p.Title,
		Description:  p.Description,
		Author:       p.Author,
		Content:      template.HTML(p.Content),
		Gradient:     template.CSS(CoverGradient(p.CoverStyle, color)),
		PrimaryColor: template.CSS(color),
		Date:         now.Format("02 January 2006"),
		GeneratedAt:  now.Format("02/01/2006 à 15:04:05"),
		Year:         now.Year(),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.String(), nil
}

const documentTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        html, body {
            width: 100%;
            height: 100%;
            font-family: 'Segoe UI', Roboto, 'Helvetica Neue', sans-serif;
            line-height: 1.6;
            color: #333;
        }

        .page-break {
            page-break-after: always;
            width: 100%;
            page-break-inside: avoid;
        }

        .cover {
            width: 100%;
            min-height: 100vh;
            background: {{.Gradient}};
            color: white;
            display: flex;
            flex-direction: column;
            justify-content: center;
            align-items: center;
            text-align: center;
            padding: 60px;
            page-break-after: always;
        }

        .cover-content {
            max-width: 800px;
        }

        .cover h1 {
            font-size: 3.5em;
            margin-bottom: 20px;
            font-weight: 700;
            line-height: 1.2;
            text-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }

        .cover .subtitle {
            font-size: 1.5em;
            opacity: 0.95;
            margin-bottom: 40px;
            font-weight: 300;
        }

        .cover .meta {
            font-size: 1.1em;
            opacity: 0.9;
            margin-top: 60px;
        }

        .content {
            padding: 60px 50px;
            background: white;
        }

        .content h2 {
            color: {{.PrimaryColor}};
            font-size: 2em;
            margin: 40px 0 20px 0;
            padding-bottom: 10px;
            border-bottom: 2px solid {{.PrimaryColor}};
            page-break-after: avoid;
        }

        .content h3 {
            color: {{.PrimaryColor}};
            font-size: 1.4em;
            margin: 25px 0 15px 0;
            page-break-after: avoid;
        }

        .content p {
            margin: 15px 0;
            text-align: justify;
            line-height: 1.8;
        }

        .content ul, .content ol {
            margin: 20px 0 20px 30px;
        }

        .content li {
            margin: 10px 0;
        }

        .content pre {
            margin: 20px 0;
            padding: 15px;
            overflow-x: auto;
            border-radius: 4px;
        }

        .content table {
            border-collapse: collapse;
            margin: 20px 0;
        }

        .content th, .content td {
            border: 1px solid #ddd;
            padding: 8px 12px;
        }

        .footer {
            margin-top: 40px;
            padding-top: 20px;
            border-top: 1px solid #ddd;
            text-align: center;
            font-size: 0.9em;
            color: #666;
        }

        @page {
            size: A4;
            margin: 0;
        }

        @media print {
            .page-break {
                page-break-after: always;
            }
        }
    </style>
</head>
<body>
    <div class="cover">
        <div class="cover-content">
            <h1>{{.Title}}</h1>
            {{if .Description}}<div class="subtitle">{{.Description}}</div>{{end}}
            <div class="meta">
                <p>📄 Par {{.Author}}</p>
                <p>📅 {{.Date}}</p>
            </div>
        </div>
    </div>

    <div class="content">
        {{.Content}}

        <div class="footer">
            <h3>À propos de ce document</h3>
            <p>Ce document a été généré le {{.GeneratedAt}}.</p>
            <p><strong>Auteur:</strong> {{.Author}}</p>
            <p style="margin-top: 20px; font-size: 0.85em; color: #999;">
                © {{.Year}} - PDF Generator API
            </p>
        </div>
    </div>
</body>
</html>
`
