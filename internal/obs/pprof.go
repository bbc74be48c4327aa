package obs

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// PprofHandler serves chi's profiler routes (/pprof/*, /vars). When user is
// set the routes require HTTP basic auth.
func PprofHandler(user, pass string) http.Handler {
	h := middleware.Profiler()
	if user == "" {
		return h
	}
	return middleware.BasicAuth("pprof", map[string]string{user: pass})(h)
}
