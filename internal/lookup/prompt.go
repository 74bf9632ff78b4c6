package lookup

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var builtinTemplates embed.FS

// PromptData is passed to prompt templates.
type PromptData struct {
	// Names are the entity names of the batch, in order.
	Names []string
	// NamesJSON is Names encoded as a JSON array.
	NamesJSON string
}

// Prompt renders the instruction document for a batch of names.
type Prompt struct {
	name string
	tmpl *template.Template
}

// BuiltinPrompts lists the names of the embedded templates.
func BuiltinPrompts() []string {
	entries, err := builtinTemplates.ReadDir("templates")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".tmpl"))
	}
	sort.Strings(names)
	return names
}

// LoadPrompt returns the template stored at file, or the built-in template
// called name when file is empty.
func LoadPrompt(name, file string) (*Prompt, error) {
	var (
		text []byte
		err  error
	)
	if file != "" {
		text, err = os.ReadFile(file)
		name = filepath.Base(file)
	} else {
		text, err = builtinTemplates.ReadFile("templates/" + name + ".tmpl")
		if err != nil {
			return nil, fmt.Errorf("unknown prompt %q (built-in prompts: %s)",
				name, strings.Join(BuiltinPrompts(), ", "))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("reading prompt template: %w", err)
	}
	return NewPrompt(name, string(text))
}

// NewPrompt parses text as a text/template.
func NewPrompt(name, text string) (*Prompt, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template %s: %w", name, err)
	}
	return &Prompt{name: name, tmpl: tmpl}, nil
}

// Name returns the template name.
func (p *Prompt) Name() string {
	return p.name
}

// Render builds the prompt for names.
func (p *Prompt) Render(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}

	// Names like "Procter & Gamble" must reach the model unescaped.
	var encoded bytes.Buffer
	enc := json.NewEncoder(&encoded)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(names); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	data := PromptData{Names: names, NamesJSON: strings.TrimSpace(encoded.String())}
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt %s: %w", p.name, err)
	}
	return buf.String(), nil
}
