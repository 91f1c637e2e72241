package render

import (
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"fsreport/internal/logger"
	"fsreport/pkg/models"
)

//go:embed templates/*.xml.tmpl
var embedded embed.FS

const templateSuffix = ".xml.tmpl"

// Renderer renders filing documents from named templates.
type Renderer struct {
	templates *template.Template
	log       zerolog.Logger
}

// New parses the embedded templates. Files named <name>.xml.tmpl in
// overrideDir replace the embedded template of the same name.
func New(overrideDir string) (*Renderer, error) {
	const op = "New"

	log := logger.WithComponent("render")

	tmpl, err := template.New("documents").
		Funcs(Funcs()).
		Option("missingkey=error").
		ParseFS(embedded, "templates/*"+templateSuffix)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse embedded templates: %w", op, err)
	}

	if overrideDir != "" {
		pattern := filepath.Join(overrideDir, "*"+templateSuffix)
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid templates directory %s: %w", op, overrideDir, err)
		}
		if len(matches) > 0 {
			if tmpl, err = tmpl.ParseFiles(matches...); err != nil {
				return nil, fmt.Errorf("%s: failed to parse templates in %s: %w", op, overrideDir, err)
			}
			log.Info().Str("directory", overrideDir).Strs("templates", matches).Msg("Using template overrides")
		}
	}

	return &Renderer{templates: tmpl, log: log}, nil
}

// Render executes the template called name with data.
func (r *Renderer) Render(name string, data models.ReportContext) ([]byte, error) {
	const op = "Render"

	t := r.templates.Lookup(name + templateSuffix)
	if t == nil {
		return nil, fmt.Errorf("%s: unknown template %q", op, name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, name, err)
	}

	r.log.Debug().Str("template", name).Int("bytes", buf.Len()).Msg("Rendered document")
	return buf.Bytes(), nil
}

// Funcs returns the helper functions available to templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"xml":  escape,
		"dic":  stripCountryPrefix,
		"date": formatDate,
		"inc":  func(i int) int { return i + 1 },
		"abs": func(n int64) int64 {
			if n < 0 {
				return -n
			}
			return n
		},
	}
}

func escape(s string) (string, error) {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// stripCountryPrefix turns CZ12345678 into 12345678.
func stripCountryPrefix(vatNumber string) string {
	v := strings.TrimSpace(vatNumber)
	if len(v) > 2 && unicode.IsLetter(rune(v[0])) && unicode.IsLetter(rune(v[1])) {
		return v[2:]
	}
	return v
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
