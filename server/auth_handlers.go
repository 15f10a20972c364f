package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/healthycare/healthycare/auth"
	"github.com/healthycare/healthycare/internal/errors"
	"github.com/healthycare/healthycare/session"
	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Status          auth.Status      `json:"status"`
	IsAuthenticated bool             `json:"isAuthenticated"`
	IsInitializing  bool             `json:"isInitializing"`
	User            *session.Session `json:"user,omitempty"`
	Error           string           `json:"error,omitempty"`
}

func snapshotResponse(snap auth.Snapshot) sessionResponse {
	resp := sessionResponse{
		Status:          snap.Status,
		IsAuthenticated: snap.IsAuthenticated,
		IsInitializing:  snap.IsInitializing,
		User:            snap.User,
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	return resp
}

// LoginSubmissionHandler handles the email/password submission. It accepts
// both the JSON body fetch-based clients send and the form encoding the
// served login page posts; form submissions get redirects, JSON clients get
// JSON.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, isForm, err := decodeLoginRequest(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := s.machine.LoginWithPassword(r.Context(), req.Email, req.Password); err != nil {
			if isForm {
				http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
				return
			}
			switch {
			case errors.Is(err, errors.ErrValidation):
				writeJSONError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, errors.ErrInvalidCredentials):
				writeJSONError(w, http.StatusUnauthorized, "Invalid email or password")
			default:
				writeJSONError(w, http.StatusInternalServerError, "login failed")
			}
			return
		}

		if isForm {
			http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, snapshotResponse(s.machine.Snapshot()))
	}
}

func decodeLoginRequest(r *http.Request) (loginRequest, bool, error) {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return loginRequest{}, false, err
		}
		return req, false, nil
	}

	if err := r.ParseForm(); err != nil {
		return loginRequest{}, true, err
	}
	return loginRequest{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}, true, nil
}

// BeginProviderHandler starts an OAuth flow with a full-page redirect to
// the provider's authorization URL.
func (s *Server) BeginProviderHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorizationURL, err := s.machine.BeginProviderLogin(name)
		if err != nil {
			log.Err(err).Str("provider", name).Msg("begin provider login failed")
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, authorizationURL, http.StatusSeeOther)
	}
}

// OAuthCallbackHandler consumes the provider redirect. Every branch ends in
// a redirect that strips code and state from the address, so a refresh can
// never replay the exchange.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")

		if errParam := r.URL.Query().Get("error"); errParam != "" {
			log.Warn().Str("error", errParam).Msg("provider denied authorization")
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		}
		if code == "" {
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		}

		if err := s.machine.CompleteProviderLogin(r.Context(), code, state); err != nil {
			if errors.Is(err, errors.ErrUnknownProviderState) {
				// Not one of ours: drop the query and carry on unchanged.
				http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
				return
			}
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		}

		http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
	}
}

// LogoutHandler clears the session.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.machine.Logout(r.Context()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "logout failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SessionHandler reports the current published auth state as JSON.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, snapshotResponse(s.machine.Snapshot()))
	}
}

func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("encoding response failed")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
