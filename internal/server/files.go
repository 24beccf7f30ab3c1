package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ade-bello/filedepot/internal/apperr"
	"github.com/ade-bello/filedepot/internal/auth"
	"github.com/ade-bello/filedepot/internal/files"
)

type createFileRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID int64  `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

func uploadFile(authService *auth.Service, fileService *files.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authService.Resolve(r.Context(), r.Header.Get(tokenHeader))
		if err != nil {
			writeError(w, err)
			return
		}

		var req createFileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperr.BadRequest("Invalid JSON body"))
			return
		}

		file, err := fileService.Create(r.Context(), files.CreateInput{
			UserID:   userID,
			Name:     req.Name,
			Type:     req.Type,
			ParentID: req.ParentID,
			IsPublic: req.IsPublic,
			Data:     req.Data,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, file)
	}
}

func getFile(authService *auth.Service, fileService *files.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authService.Resolve(r.Context(), r.Header.Get(tokenHeader))
		if err != nil {
			writeError(w, err)
			return
		}

		fileID, ok := pathID(r)
		if !ok {
			writeError(w, apperr.NotFound())
			return
		}

		file, err := fileService.Get(r.Context(), userID, fileID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, file)
	}
}

func listFiles(authService *auth.Service, fileService *files.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authService.Resolve(r.Context(), r.Header.Get(tokenHeader))
		if err != nil {
			writeError(w, err)
			return
		}

		// Invalid parentId and page values fall back to their defaults
		// (root, first page) instead of failing.
		parentID, err := strconv.ParseInt(r.URL.Query().Get("parentId"), 10, 64)
		if err != nil {
			parentID = files.RootParent
		}
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			page = 0
		}

		list, err := fileService.List(r.Context(), userID, parentID, page)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, list)
	}
}

func setFilePublic(authService *auth.Service, fileService *files.Service, public bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authService.Resolve(r.Context(), r.Header.Get(tokenHeader))
		if err != nil {
			writeError(w, err)
			return
		}

		fileID, ok := pathID(r)
		if !ok {
			writeError(w, apperr.NotFound())
			return
		}

		file, err := fileService.SetPublic(r.Context(), userID, fileID, public)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, file)
	}
}

func getFileData(authService *auth.Service, fileService *files.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The token is optional here: public records are readable by
		// anyone, so a missing or invalid token means anonymous.
		requesterID := files.AnonymousID
		if token := r.Header.Get(tokenHeader); token != "" {
			if id, err := authService.Resolve(r.Context(), token); err == nil {
				requesterID = id
			}
		}

		fileID, ok := pathID(r)
		if !ok {
			writeError(w, apperr.NotFound())
			return
		}

		size, err := strconv.ParseInt(r.URL.Query().Get("size"), 10, 64)
		if err != nil {
			size = 0
		}

		content, contentType, err := fileService.Content(r.Context(), requesterID, fileID, size)
		if err != nil {
			writeError(w, err)
			return
		}
		defer content.Close()

		w.Header().Set("Content-Type", contentType)
		if _, err := io.Copy(w, content); err != nil {
			slog.Error("Failed to stream file content", "error", err, "file_id", fileID)
		}
	}
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
