package document

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Request defaults
const (
	DefaultTemplate     = "tech-report"
	DefaultLanguage     = "fr"
	DefaultCoverStyle   = "gradient-blue"
	DefaultPrimaryColor = "#3182ce"
	DefaultPageCount    = 18

	MinPageCount   = 5
	MaxPageCount   = 50
	MinTitleLength = 3
)

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Request represents a document generation request
type Request struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Author       string   `json:"author"`
	Template     string   `json:"template"`
	Points       []string `json:"points"`
	Language     string   `json:"language"`
	UseAI        bool     `json:"useAI"`
	CoverStyle   string   `json:"coverStyle"`
	PrimaryColor string   `json:"primaryColor"`
	PageCount    *int     `json:"pageCount,omitempty"`
}

// ValidationError is returned for requests that cannot be generated
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the request in a fixed order and returns the first failure
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Message: "Missing required field: title"}
	}

	if utf8.RuneCountInString(r.Title) < MinTitleLength {
		return &ValidationError{Message: "Title must be at least 3 characters"}
	}

	pageCount := DefaultPageCount
	if r.PageCount != nil {
		pageCount = *r.PageCount
	}
	if pageCount < MinPageCount || pageCount > MaxPageCount {
		return &ValidationError{Message: "Page count must be between 5 and 50"}
	}

	return nil
}

// Normalize fills in defaults for omitted fields. defaultAuthor is used when
// the request names no author.
func (r *Request) Normalize(defaultAuthor string) {
	if r.Author == "" {
		r.Author = defaultAuthor
	}
	if r.Template == "" {
		r.Template = DefaultTemplate
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if r.CoverStyle == "" {
		r.CoverStyle = DefaultCoverStyle
	}
	r.PrimaryColor = NormalizeColor(r.PrimaryColor)
	if r.Points == nil {
		r.Points = []string{}
	}
	if r.PageCount == nil {
		pageCount := DefaultPageCount
		r.PageCount = &pageCount
	}
}

// NormalizeColor returns color as a six digit hex colour, or the default
// primary colour when it is not a valid hex colour.
func NormalizeColor(color string) string {
	color = strings.ToLower(strings.TrimSpace(color))
	if !hexColorPattern.MatchString(color) {
		return DefaultPrimaryColor
	}

	if len(color) == 4 {
		// #abc -> #aabbcc
		return string([]byte{'#', color[1], color[1], color[2], color[2], color[3], color[3]})
	}
	return color
}
