// Package web renders the forecaster HTML pages.
package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"os"

	"github.com/Masterminds/sprig/v3"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Page template names.
const (
	ForecastPage    = "forecast.html"
	IncrementalPage = "incremental.html"
)

const layoutFile = "layout.html"

//go:embed templates/*.html
var embedded embed.FS

// PageData is passed to every page.
type PageData struct {
	Page              string
	Title             string
	Version           string
	DefaultElasticity float64
	MinElasticity     float64
	MaxElasticity     float64
}

// Renderer implements echo.Renderer over the page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates, or the templates in dir when it is set.
func NewRenderer(dir string) (*Renderer, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, errors.Wrap(err, "opening embedded templates")
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	for _, page := range []string{ForecastPage, IncrementalPage} {
		t, err := template.New(page).Funcs(sprig.FuncMap()).ParseFS(fsys, layoutFile, page)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing template %s", page)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return errors.Errorf("no template named %s", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
