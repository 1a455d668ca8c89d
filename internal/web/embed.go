package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html static/*
var assets embed.FS

// PageTemplate is the name of the entry template
const PageTemplate = "index.html"

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(assets, "templates/*.html")
}

// Static returns the stylesheet and other assets served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		// The directory is embedded at build time.
		panic(err)
	}
	return sub
}
