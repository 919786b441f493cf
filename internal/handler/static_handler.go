package handler

import (
	"io/fs"
	"net/http"
)

// IndexPath is where GET / sends browsers
const IndexPath = "/static/index.html"

// RootRedirect handles GET /
func RootRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, IndexPath, http.StatusTemporaryRedirect)
}

// Static serves the landing page assets mounted under /static/
func Static(assets fs.FS) http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.FS(assets)))
}
