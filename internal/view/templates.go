// Package view holds the HTML templates for public pages.
package view

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// FuncMap 是模板可用的辅助函数。
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"longDate": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("2 January 2006")
		},
		"isoDate": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format(time.RFC3339)
		},
	}
}

// Templates parses every public page template.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html"))
}
