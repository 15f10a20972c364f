package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Pages
	RouteIndex = "/"
	RouteLogin = "/login"

	// Auth Routes
	RouteAuthLogin   = "/auth/login"
	RouteAuthLogout  = "/auth/logout"
	RouteAuthSession = "/auth/session"
	RouteAuthGithub  = "/auth/github"
	RouteAuthGoogle  = "/auth/google"
	RouteCallback    = "/auth/callback"

	// Guarded API Routes (placeholder data proxy)
	RouteAPIUsers       = "/api/users"
	RouteAPIUser        = "/api/users/{id}"
	RouteAPIUserAlbums  = "/api/users/{id}/albums"
	RouteAPIAlbums      = "/api/albums"
	RouteAPIAlbum       = "/api/albums/{id}"
	RouteAPIAlbumPhotos = "/api/albums/{id}/photos"
	RouteAPIPhotos      = "/api/photos"
	RouteAPIPhoto       = "/api/photos/{id}"

	// Operational Routes
	RouteHealthz = "/healthz"
	RouteMetrics = "/metrics"
)
