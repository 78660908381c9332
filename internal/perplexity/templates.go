package perplexity

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// DefaultInstruction is used for templates missing from the catalog
const DefaultInstruction = "Rédige un document professionnel."

// maxCatalogSize limits the catalog file read from disk
const maxCatalogSize = 1 << 20

// ErrCatalogTooLarge is returned for catalog files over maxCatalogSize
var ErrCatalogTooLarge = errors.New("template catalog exceeds maximum size")

// Templates maps a template name to the instruction that opens the prompt
type Templates map[string]string

// DefaultTemplates returns the built-in template instructions
func DefaultTemplates() Templates {
	return Templates{
		"llm-best-practices": "Tu es un expert en Large Language Models. Rédige un guide professionnel et détaillé.",
		"api-guide":          "Tu es un expert en intégration API. Rédige un guide technique complet.",
		"automation-guide":   "Tu es un expert N8N. Rédige un guide d'automatisation professionnel.",
		"tech-report":        "Tu es un consultant technique. Rédige un rapport technique détaillé.",
	}
}

// Instruction returns the instruction for a template name
func (t Templates) Instruction(name string) string {
	if instruction, ok := t[name]; ok && instruction != "" {
		return instruction
	}
	return DefaultInstruction
}

// catalogFile is the on-disk layout of a template catalog:
//
//	templates:
//	  api-guide: "Tu es un expert en intégration API. ..."
type catalogFile struct {
	Templates map[string]string `yaml:"templates"`
}

// ParseTemplates merges a YAML catalog over the built-in templates
func ParseTemplates(data []byte) (Templates, error) {
	if len(data) > maxCatalogSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCatalogTooLarge, len(data))
	}

	var catalog catalogFile
	if err := yaml.UnmarshalWithOptions(data, &catalog, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("parsing template catalog: %w", err)
	}

	templates := DefaultTemplates()
	for name, instruction := range catalog.Templates {
		templates[name] = instruction
	}
	return templates, nil
}

// LoadTemplates reads a YAML catalog from path. An empty path yields the
// built-in templates.
func LoadTemplates(path string) (Templates, error) {
	if path == "" {
		return DefaultTemplates(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template catalog: %w", err)
	}
	return ParseTemplates(data)
}
