// Package web bundles the page templates and the stylesheet into the binary.
package web

import (
	"embed"
	"io/fs"
	"log/slog"
	"mime"
)

//go:embed templates static
var assets embed.FS

func init() {
	// Minimal containers ship without /etc/mime.types.
	for ext, typ := range map[string]string{
		".css": "text/css; charset=utf-8",
		".svg": "image/svg+xml",
	} {
		if mime.TypeByExtension(ext) != "" {
			continue
		}
		if err := mime.AddExtensionType(ext, typ); err != nil {
			slog.Default().Warn("register mime type", slog.String("ext", ext), slog.Any("error", err))
		}
	}
}

// Templates returns the template tree rooted at templates/.
func Templates() fs.FS { return sub("templates") }

// Static returns the asset tree served under /static/.
func Static() fs.FS { return sub("static") }

func sub(dir string) fs.FS {
	f, err := fs.Sub(assets, dir)
	if err != nil {
		panic(err)
	}
	return f
}
