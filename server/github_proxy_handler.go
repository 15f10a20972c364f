package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

type githubExchangeRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

// GithubExchangeHandler proxies the GitHub code-for-token exchange. The
// token endpoint requires the confidential client secret, so the exchange
// runs here and never in the page. The upstream JSON body is passed through
// unchanged, including GitHub's own error payloads.
func (s *Server) GithubExchangeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.setExchangeCorsHeaders(w)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		var req githubExchangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Code == "" {
			writeJSONError(w, http.StatusBadRequest, "Code is required")
			return
		}

		clientID := s.config.GetGithubClientID()
		clientSecret := s.config.GetGithubClientSecret()
		if clientID == "" || clientSecret == "" {
			log.Error().Msg("github exchange called without configured credentials")
			writeJSONError(w, http.StatusInternalServerError, "GitHub OAuth credentials are not configured")
			return
		}

		payload, err := json.Marshal(map[string]string{
			"client_id":     clientID,
			"client_secret": clientSecret,
			"code":          req.Code,
			"redirect_uri":  req.RedirectURI,
		})
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "building exchange request failed")
			return
		}

		upstreamReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, s.exchangeTokenURL, bytes.NewReader(payload))
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "building exchange request failed")
			return
		}
		upstreamReq.Header.Set("Content-Type", "application/json")
		upstreamReq.Header.Set("Accept", "application/json")

		resp, err := s.httpClient.Do(upstreamReq)
		if err != nil {
			log.Err(err).Msg("github token exchange failed")
			writeJSONError(w, http.StatusInternalServerError, "Failed to exchange code for token")
			return
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "Failed to exchange code for token")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

func (s *Server) setExchangeCorsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", s.config.GetAllowedOrigin())
	w.Header().Set("Access-Control-Allow-Methods", s.config.GetAllowedMethods())
	w.Header().Set("Access-Control-Allow-Headers", s.config.GetAllowedHeaders())
}
