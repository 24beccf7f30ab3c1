package server

import (
	"net/http"

	"github.com/ade-bello/filedepot/internal/auth"
)

// tokenHeader carries the session token on authenticated endpoints.
const tokenHeader = "X-Token"

func connect(authService *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := authService.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

func disconnect(authService *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := authService.Revoke(r.Context(), r.Header.Get(tokenHeader)); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
