package server

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.AppName}}</title></head>
<body>
<h1>{{.AppName}}</h1>
<p>Signed in as {{.Name}} ({{.Email}})</p>
<nav>
<a href="/api/albums">Albums</a>
<a href="/api/photos">Photos</a>
</nav>
<form method="post" action="/auth/logout"><button type="submit">Sign out</button></form>
</body>
</html>`))

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.AppName}} - Sign in</title></head>
<body>
<h1>Sign in to {{.AppName}}</h1>
<form id="login-form" method="post" action="/auth/login">
<input type="email" name="email" placeholder="Email" required>
<input type="password" name="password" placeholder="Password" required>
<button type="submit">Sign in</button>
</form>
<a href="/auth/github">Continue with GitHub</a>
<a href="/auth/google">Continue with Google</a>
</body>
</html>`))

// IndexHandler serves the gallery landing page. Registered behind the auth
// guard, so a session is always present when it runs.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.machine.Snapshot()

		data := struct {
			AppName string
			Name    string
			Email   string
		}{AppName: s.config.GetAppName()}
		if snap.User != nil {
			data.Name = snap.User.Name
			data.Email = snap.User.Email
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTemplate.Execute(w, data); err != nil {
			log.Err(err).Msg("rendering index page failed")
		}
	}
}

// LoginPageHandler serves the sign-in page. Already-authenticated visitors
// are sent straight to the gallery.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.machine.Snapshot().IsAuthenticated {
			http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
			return
		}

		data := struct{ AppName string }{AppName: s.config.GetAppName()}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := loginTemplate.Execute(w, data); err != nil {
			log.Err(err).Msg("rendering login page failed")
		}
	}
}
