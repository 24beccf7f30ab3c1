package server

import (
	"encoding/json"
	"net/http"

	"github.com/ade-bello/filedepot/internal/apperr"
	"github.com/ade-bello/filedepot/internal/auth"
	"github.com/ade-bello/filedepot/internal/users"
)

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func createUser(userService *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperr.BadRequest("Invalid JSON body"))
			return
		}

		user, err := userService.Register(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}

func getMe(authService *auth.Service, userService *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authService.Resolve(r.Context(), r.Header.Get(tokenHeader))
		if err != nil {
			writeError(w, err)
			return
		}

		user, err := userService.Get(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}
