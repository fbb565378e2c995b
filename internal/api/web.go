package api

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed web
var embeddedWeb embed.FS

// EmbeddedWeb returns the bundled single page front end.
func EmbeddedWeb() fs.FS {
	sub, err := fs.Sub(embeddedWeb, "web")
	if err != nil {
		panic(err)
	}
	return sub
}

// WithWeb serves the page and its assets from webFS and hands API routes to
// apiHandler. Unknown paths fall back to index.html.
func WithWeb(apiHandler http.Handler, webFS fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(webFS))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAPIPath(r.URL.Path) {
			apiHandler.ServeHTTP(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		cleanPath := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if cleanPath == "" || cleanPath == "." || cleanPath == "index.html" {
			serveIndex(w, r, webFS)
			return
		}
		if info, err := fs.Stat(webFS, cleanPath); err == nil && !info.IsDir() {
			setNoStore(w)
			fileServer.ServeHTTP(w, r)
			return
		}
		serveIndex(w, r, webFS)
	})
}

func isAPIPath(p string) bool {
	return p == "/analyze" || strings.HasPrefix(p, "/api/")
}

func serveIndex(w http.ResponseWriter, r *http.Request, webFS fs.FS) {
	if _, err := fs.Stat(webFS, "index.html"); err != nil {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("index.html not found"))
		return
	}
	setNoStore(w)
	http.ServeFileFS(w, r, webFS, "index.html")
}

func setNoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}
