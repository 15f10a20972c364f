package server

import "github.com/healthycare/healthycare/session"

func (s *Server) initRoutes() {
	// Pages
	s.RegisterRouteHandler("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.PageMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.PageMiddleware()...))

	// LOGIN
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.APIMiddleware(s.RateLimitMiddleware(s.loginLimiter))...))
	s.RegisterRouteHandler("GET "+RouteAuthGithub, ChainMiddleware(s.BeginProviderHandler(string(session.ProviderGithub)), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthGoogle, ChainMiddleware(s.BeginProviderHandler(string(session.ProviderGoogle)), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))

	// GitHub exchange proxy (same-origin stand-in for a serverless function)
	exchangePath := s.config.GetGithubExchangePath()
	s.RegisterRouteHandler("POST "+exchangePath, ChainMiddleware(s.GithubExchangeHandler(), s.APIMiddleware(s.RateLimitMiddleware(s.exchangeLimiter))...))
	s.RegisterRouteHandler("OPTIONS "+exchangePath, ChainMiddleware(s.GithubExchangeHandler(), s.APIMiddleware()...))

	// Guarded data routes
	s.RegisterRouteHandler("GET "+RouteAPIUsers, ChainMiddleware(s.UsersHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteAPIUser, ChainMiddleware(s.UserHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteAPIUserAlbums, ChainMiddleware(s.UserAlbumsHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteAPIAlbums, ChainMiddleware(s.AlbumsHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteAPIAlbum, ChainMiddleware(s.AlbumHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteAPIAlbumPhotos, ChainMiddleware(s.AlbumPhotosHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteAPIPhotos, ChainMiddleware(s.PhotosHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteAPIPhoto, ChainMiddleware(s.PhotoHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Operational
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
	if s.metricsHandler != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, s.metricsHandler)
	}
}
