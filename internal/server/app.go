package server

import (
	"database/sql"
	"net/http"

	"github.com/ade-bello/filedepot/internal/apperr"
	"github.com/ade-bello/filedepot/internal/auth"
	"github.com/ade-bello/filedepot/internal/files"
	"github.com/ade-bello/filedepot/internal/users"
)

// getStatus reports liveness of the two external stores.
func getStatus(db *sql.DB, sessions auth.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]bool{
			"db":       db.PingContext(r.Context()) == nil,
			"sessions": sessions.Ping(r.Context()) == nil,
		}
		writeJSON(w, http.StatusOK, status)
	}
}

// getStats reports collection counts.
func getStats(userRepo users.Repository, fileRepo files.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nUsers, err := userRepo.Count(r.Context())
		if err != nil {
			writeError(w, apperr.Unavailable(err))
			return
		}
		nFiles, err := fileRepo.Count(r.Context())
		if err != nil {
			writeError(w, apperr.Unavailable(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"users": nUsers, "files": nFiles})
	}
}
