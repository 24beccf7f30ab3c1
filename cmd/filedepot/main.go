package main

import (
	"context"
	"log"
	"net/http"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/ade-bello/filedepot/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg := server.Config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	srv, err := server.New(context.Background(), &cfg)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}
	defer srv.Close()

	log.Printf("starting server on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("failed to start server: %v", err)
	}
}
