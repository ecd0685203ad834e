// Package web provides the embedded operator UI.
package web

import (
	"embed"
	"net/http"
)

//go:embed index.html
var FS embed.FS

// Index returns the operator page.
func Index() ([]byte, error) {
	return FS.ReadFile("index.html")
}

// Handler serves the operator page.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := Index()
		if err != nil {
			http.Error(w, "ui unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(page)
	})
}
