package storage

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

// DefaultWideKeyTemplate names the wide CSV next to the long one.
const DefaultWideKeyTemplate = "{{ .Prefix }}forecast-data-excel.csv"

// KeyData is what object key templates are rendered with.
type KeyData struct {
	// Prefix is the configured folder path, used verbatim.
	Prefix string
	Bucket string
	Months int
	Now    time.Time
}

// KeyTemplate renders object keys.
type KeyTemplate struct {
	tmpl *template.Template
}

// ParseKeyTemplate parses text as a Go template with the sprig functions
// available, e.g. `{{ .Prefix }}{{ .Now | date "2006-01" }}/forecast.csv`.
func ParseKeyTemplate(text string) (*KeyTemplate, error) {
	if text == "" {
		text = DefaultWideKeyTemplate
	}
	tmpl, err := template.New("key").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid object key template %q: %w", text, err)
	}
	return &KeyTemplate{tmpl: tmpl}, nil
}

// Render executes the template. An empty result is an error.
func (k *KeyTemplate) Render(data KeyData) (string, error) {
	var buf bytes.Buffer
	if err := k.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("could not render object key: %w", err)
	}
	key := strings.TrimSpace(buf.String())
	if key == "" {
		return "", fmt.Errorf("object key template rendered an empty key")
	}
	return key, nil
}
