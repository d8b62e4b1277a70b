// Package web renders the server-side HTML pages: the preference form with
// its ranked results and the about page with the dataset coverage map.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// pages lists the renderable pages. Each page is parsed together with the
// shared layout so template blocks resolve per page.
var pages = []string{"index", "about"}

// Renderer holds the parsed page templates.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New("layout.gohtml").ParseFS(
			templateFS,
			"templates/layout.gohtml",
			"templates/"+page+".gohtml",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		templates[page] = tmpl
	}
	return &Renderer{templates: templates}, nil
}

// Render executes the named page template. The page is rendered into a
// buffer first so a template error never produces a half-written response.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	tmpl, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
