package tmpl

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"
)

//go:embed templates
var files embed.FS

// Templates holds all page templates, keyed by page file name.
type Templates struct {
	pages map[string]*template.Template
}

// ExecuteTemplate renders a page through the shared layout.
func (t *Templates) ExecuteTemplate(w io.Writer, name string, data any) error {
	page, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return page.ExecuteTemplate(w, "layout", data)
}

// Load parses the embedded templates. Each page gets its own clone of the
// shared layout and partials so {{define "content"}} does not collide.
func Load() (*Templates, error) {
	return load(files)
}

func load(fsys fs.FS) (*Templates, error) {
	funcMap := template.FuncMap{
		"sub": func(a, b int) int { return a - b },
		"capitalize": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		// query builds "?k=v&..." from pairs, skipping empty values
		"query": func(pairs ...string) string {
			q := url.Values{}
			for i := 0; i+1 < len(pairs); i += 2 {
				if pairs[i+1] != "" {
					q.Set(pairs[i], pairs[i+1])
				}
			}
			if len(q) == 0 {
				return ""
			}
			return "?" + q.Encode()
		},
	}

	base, err := template.New("base").Funcs(funcMap).ParseFS(fsys,
		"templates/layout.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pageFiles, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob page templates: %w", err)
	}

	pages := map[string]*template.Template{}
	for _, f := range pageFiles {
		name := path.Base(f)
		if name == "layout.html" {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone base template: %w", err)
		}
		if _, err := clone.ParseFS(fsys, f); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		pages[name] = clone
	}

	return &Templates{pages: pages}, nil
}
