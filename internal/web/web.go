// Package web holds the server-rendered pages: the sign-in page and the
// dashboard shell. Everything else in the dashboard talks to /api.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

func Templates() *template.Template {
	return template.Must(template.ParseFS(files, "templates/*.html"))
}
