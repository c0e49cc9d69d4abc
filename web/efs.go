// Package web embeds the static assets served to mobile devices.
package web

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed static/*
var staticFS embed.FS

// GetFileSystem returns the static files to serve.
func GetFileSystem() (fs.FS, error) {
	// Dev mode: serve from disk so the page can be edited without a rebuild
	if dir := os.Getenv("FRONTEND_DIR"); dir != "" {
		return os.DirFS(dir), nil
	}

	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	return sub, nil
}
