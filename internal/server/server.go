// Package server wires the HTTP surface: routing, middleware and the
// mapping from core error kinds to status codes.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ade-bello/filedepot/internal/apperr"
	"github.com/ade-bello/filedepot/internal/auth"
	"github.com/ade-bello/filedepot/internal/badger"
	"github.com/ade-bello/filedepot/internal/files"
	"github.com/ade-bello/filedepot/internal/fs"
	"github.com/ade-bello/filedepot/internal/s3"
	"github.com/ade-bello/filedepot/internal/sqlite"
	"github.com/ade-bello/filedepot/internal/users"
)

// Config holds the service configuration, parsed from the environment.
type Config struct {
	Addr           string        `env:"FILEDEPOT_ADDR" envDefault:":8080"`
	DBPath         string        `env:"FILEDEPOT_DB_PATH" envDefault:"filedepot.db"`
	SessionsDir    string        `env:"FILEDEPOT_SESSIONS_DIR" envDefault:"/tmp/filedepot_sessions"`
	SessionTTL     time.Duration `env:"FILEDEPOT_SESSION_TTL" envDefault:"24h"`
	StorageBackend string        `env:"FILEDEPOT_STORAGE" envDefault:"fs"`
	FolderPath     string        `env:"FOLDER_PATH" envDefault:"/tmp/files_manager"`
	S3Bucket       string        `env:"FILEDEPOT_S3_BUCKET"`
	S3Region       string        `env:"FILEDEPOT_S3_REGION"`
	S3Endpoint     string        `env:"FILEDEPOT_S3_ENDPOINT"`
	S3AccessKey    string        `env:"FILEDEPOT_S3_ACCESS_KEY"`
	S3SecretKey    string        `env:"FILEDEPOT_S3_SECRET_KEY"`
	MaxBodySize    int64         `env:"FILEDEPOT_MAX_BODY_SIZE" envDefault:"10485760"`
}

// Server owns the HTTP server and the external store handles behind it.
type Server struct {
	httpServer *http.Server
	db         *sql.DB
	sessions   auth.SessionStore
}

// New builds the full service: opens the repositories and the session
// store, selects the blob backend and wires the routes.
func New(ctx context.Context, cfg *Config) (*Server, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	sessions, err := badger.NewSessionStore(badger.Config{Dir: cfg.SessionsDir})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	var storage files.BlobStorage
	switch cfg.StorageBackend {
	case "fs":
		storage = fs.NewStorage(cfg.FolderPath)
	case "s3":
		storage, err = s3.NewStorage(ctx, s3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			sessions.Close()
			db.Close()
			return nil, fmt.Errorf("failed to open blob storage: %w", err)
		}
	default:
		sessions.Close()
		db.Close()
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	userRepo := sqlite.NewUserRepository(db)
	fileRepo := sqlite.NewFileRepository(db)

	userService := users.NewService(userRepo)
	authService := auth.NewService(userRepo, sessions, cfg.SessionTTL)
	fileService := files.NewService(fileRepo, storage)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", getStatus(db, sessions))
	mux.HandleFunc("GET /stats", getStats(userRepo, fileRepo))
	mux.HandleFunc("GET /connect", connect(authService))
	mux.HandleFunc("GET /disconnect", disconnect(authService))
	mux.HandleFunc("POST /users", createUser(userService))
	mux.HandleFunc("GET /users/me", getMe(authService, userService))
	mux.HandleFunc("POST /files", uploadFile(authService, fileService))
	mux.HandleFunc("GET /files", listFiles(authService, fileService))
	mux.HandleFunc("GET /files/{id}", getFile(authService, fileService))
	mux.HandleFunc("PUT /files/{id}/publish", setFilePublic(authService, fileService, true))
	mux.HandleFunc("PUT /files/{id}/unpublish", setFilePublic(authService, fileService, false))
	mux.HandleFunc("GET /files/{id}/data", getFileData(authService, fileService))

	handler := loggingMiddleware(limitBody(mux, cfg.MaxBodySize))

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		db:       db,
		sessions: sessions,
	}, nil
}

// ListenAndServe starts serving requests.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Handler exposes the root handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Close shuts down the HTTP server and releases the external store handles.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	if cerr := s.sessions.Close(); err == nil {
		err = cerr
	}
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps a core error to a status code and an {"error": msg} body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "Internal server error"

	switch apperr.KindOf(err) {
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
		msg = apperr.MessageOf(err)
	case apperr.KindBadRequest:
		status = http.StatusBadRequest
		msg = apperr.MessageOf(err)
	case apperr.KindNotFound:
		status = http.StatusNotFound
		msg = apperr.MessageOf(err)
	case apperr.KindUnavailable:
		status = http.StatusServiceUnavailable
		msg = apperr.MessageOf(err)
		slog.Error("External store failure", "error", err)
	default:
		slog.Error("Unclassified error", "error", err)
	}

	writeJSON(w, status, map[string]string{"error": msg})
}
