package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"time"

	"warbler/models"
	"warbler/session"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is the data every template receives. Data carries the page-specific
// values.
type Page struct {
	Title       string
	CurrentUser *models.User
	Flashes     []session.Flash
	Data        any
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	"datetime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
}

var pages = mustParse()

func mustParse() map[string]*template.Template {
	out := make(map[string]*template.Template)
	shared := []string{"templates/base.html", "templates/partials.html"}

	err := fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".html" {
			return err
		}
		if p == shared[0] || p == shared[1] {
			return nil
		}
		files := append(append([]string{}, shared...), p)
		t, err := template.New(path.Base(p)).Funcs(funcs).ParseFS(templateFS, files...)
		if err != nil {
			return err
		}
		name := p[len("templates/"):]
		out[name] = t
		return nil
	})
	if err != nil {
		panic(fmt.Sprintf("views: parse templates: %v", err))
	}
	return out
}

// Render executes the named page (e.g. "users/show.html") inside the base
// layout. The page is rendered to a buffer first so a template error never
// leaves a half-written response.
func Render(w http.ResponseWriter, status int, name string, page Page) error {
	t, ok := pages[name]
	if !ok {
		return fmt.Errorf("views: unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", page); err != nil {
		return fmt.Errorf("views: render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded assets under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
