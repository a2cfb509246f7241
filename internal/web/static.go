package web

import "net/http"

// newStaticHandler serves files and directory listings from dir. Requests
// reach it unmodified.
func newStaticHandler(dir string) http.Handler {
	return http.FileServer(http.Dir(dir))
}
