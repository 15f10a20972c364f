package server

import "net/http"

const loadingPageHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><meta http-equiv="refresh" content="1"><title>HealthyCare</title></head>
<body><p>Loading&hellip;</p></body>
</html>`

// RequireAuth guards protected routes against the published auth state.
// While the machine is still restoring a persisted session the guard serves
// a neutral loading page rather than deciding either way. Once resolved,
// unauthenticated requests are redirected to the login page.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			snap := s.machine.Snapshot()

			if snap.IsInitializing {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Cache-Control", "no-store")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(loadingPageHTML))
				return
			}

			if !snap.IsAuthenticated {
				http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
				return
			}

			next(w, r)
		}
	}
}
