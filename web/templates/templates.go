package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed *.html
var files embed.FS

// pages are the top-level templates, each parsed together with the layout.
var pages = []string{
	"login.html",
	"dashboard.html",
	"pending_scans.html",
	"offline_list.html",
	"ticket.html",
	"error.html",
}

// Renderer renders the portal's HTML pages.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page template against the shared layout.
func New() (*Renderer, error) {
	parsed := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(funcMap()).ParseFS(files, "layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		parsed[page] = t
	}
	return &Renderer{templates: parsed}, nil
}

// Render writes the named page with the given data.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	t, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown template %s", page)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}
