package server

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

// The /api/* routes proxy the placeholder data source so the pages only
// ever talk to this origin. All of them sit behind the auth guard.

func (s *Server) UsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := s.api.Users(r.Context())
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func (s *Server) UserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		user, err := s.api.User(r.Context(), id)
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) UserAlbumsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		albums, err := s.api.AlbumsByUser(r.Context(), id)
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, albums)
	}
}

func (s *Server) AlbumsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		albums, err := s.api.Albums(r.Context())
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, albums)
	}
}

func (s *Server) AlbumHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		album, err := s.api.Album(r.Context(), id)
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, album)
	}
}

func (s *Server) AlbumPhotosHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		photos, err := s.api.PhotosByAlbum(r.Context(), id)
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, photos)
	}
}

func (s *Server) PhotosHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photos, err := s.api.Photos(r.Context())
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, photos)
	}
}

func (s *Server) PhotoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		photo, err := s.api.Photo(r.Context(), id)
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, photo)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeUpstreamError(w http.ResponseWriter, err error) {
	log.Err(err).Msg("placeholder api request failed")
	writeJSONError(w, http.StatusBadGateway, "upstream request failed")
}
