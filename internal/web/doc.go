// Package web embeds the upload page templates and its stylesheet.
//
// index.html is the entry template. partials.html defines the blocks it
// includes: "metrics", "chart", "courses", "preview", "example" and "error".
// Templates expect the page model built by the HTTP transport and never
// compute anything themselves.
package web
