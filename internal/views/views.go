// Package views holds the HTML pages rendered by the handlers.
package views

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var files embed.FS

//go:embed static
var assets embed.FS

// Load parses every page. Pages are addressed by file name, e.g. "signin.html".
func Load() (*template.Template, error) {
	return template.ParseFS(files, "templates/*.html")
}

// Static serves the stylesheet and other assets under static/.
func Static() http.FileSystem {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
