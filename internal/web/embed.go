package web

import (
	"embed"
	"io/fs"
	"net/http"
)

var (
	//go:embed static/*
	embeddedStaticFiles embed.FS

	//go:embed templates/*
	embeddedTemplates embed.FS
)

// templateFS serves the embedded templates with templates/ as root.
func templateFS() http.FileSystem {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		// only fails for an invalid dir name
		panic(err)
	}

	return http.FS(sub)
}
