package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/JakeFAU/page-analyzer/internal/analyzer"
)

//go:embed templates/*.html
var templateFS embed.FS

var viewFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.DateOnly)
	},
}

type views struct {
	pages map[string]*template.Template
}

func loadViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template)}
	for _, page := range []string{"index.html", "urls.html", "url.html", "not_found.html"} {
		tmpl, err := template.New("layout.html").Funcs(viewFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		v.pages[page] = tmpl
	}
	return v, nil
}

type pageData struct {
	Flashes []flash
	Input   string
	URL     analyzer.URL
	Checks  []analyzer.Check
	URLs    []analyzer.URLSummary
}

// execute renders page into a buffer so template errors never emit a partial body.
func (v *views) execute(page string, data pageData) (*bytes.Buffer, error) {
	tmpl, ok := v.pages[page]
	if !ok {
		return nil, fmt.Errorf("unknown template %s", page)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", page, err)
	}
	return &buf, nil
}
