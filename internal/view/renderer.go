// Package view renders the portal's pages and modals from embedded
// templates and mounts modals into rendered pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded stylesheet and script directory.
func Static() fs.FS {
	sub, _ := fs.Sub(staticFS, "static")
	return sub
}

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashWarning FlashKind = "warning"
	FlashError   FlashKind = "error"
)

// Flash is a banner shown at the top of a page.
type Flash struct {
	Kind    FlashKind
	Message string
}

// Viewer is the signed-in user as templates see it.
type Viewer struct {
	ID         string
	Name       string
	Email      string
	Role       string
	Department string
}

// Page is the data for the shared layout.
type Page struct {
	Title         string
	Viewer        *Viewer
	Flashes       []Flash
	Announcements any
	Content       template.HTML
}

type Renderer struct {
	tmpl *template.Template
}

var funcs = template.FuncMap{
	"lower": strings.ToLower,
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("Jan 2, 2006 15:04")
	},
	"join": strings.Join,
	"hasRole": func(v *Viewer, roles ...string) bool {
		if v == nil {
			return false
		}
		for _, r := range roles {
			if v.Role == r {
				return true
			}
		}
		return false
	},
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("portal").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// MustRenderer is NewRenderer for tests and main.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Fragment executes one named template into markup. It has no side effects.
func (r *Renderer) Fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// Page renders content inside the shared layout.
func (r *Renderer) Page(w io.Writer, p Page) error {
	return r.tmpl.ExecuteTemplate(w, "layout", p)
}

// PageBytes is Page into a byte slice, for callers that mount modals.
func (r *Renderer) PageBytes(p Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Page(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
