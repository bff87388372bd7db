package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"speech-recorder-backend/internal/server"
)

func main() {
	addr := getenvDefault("SRB_ADDR", ":8080")

	build := server.BuildInfo{
		Version: getenvDefault("SRB_VERSION", "dev"),
		Commit:  getenvDefault("SRB_COMMIT", "unknown"),
	}

	maxBody, err := strconv.ParseInt(getenvDefault("SRB_MAX_UPLOAD_BYTES", "33554432"), 10, 64)
	if err != nil || maxBody <= 0 {
		log.Printf("service=backend msg=%q", "invalid SRB_MAX_UPLOAD_BYTES")
		os.Exit(1)
	}

	// Local directories are always prepared: local simulation mode needs
	// both, and the simulation receiver stays routable regardless of mode.
	dataDir := getenvDefault("SRB_DATA_DIR", "data_storage")
	audioDir, demographicsDir, err := server.EnsureStorageDirs(dataDir)
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "storage_dirs_failed", err)
		os.Exit(1)
	}

	cfg := server.Config{
		Addr:            addr,
		Build:           build,
		BaseURL:         getenvDefault("SRB_BASE_URL", "http://localhost:8080"),
		AudioDir:        audioDir,
		DemographicsDir: demographicsDir,
		MaxBodyBytes:    maxBody,
	}

	// Storage backend selection: a complete SRB_S3_* set activates the
	// object store, a fully absent one degrades into local simulation mode,
	// and a partial or broken one is a startup failure.
	mc, bucket, err := server.NewMinioClient()
	switch {
	case err == nil:
		cfg.Minio = mc
		cfg.Bucket = bucket
		log.Printf("service=backend msg=%q bucket=%s", "s3_storage_active", bucket)
	case errors.Is(err, server.ErrStorageNotConfigured):
		log.Printf("service=backend msg=%q dir=%s", "local_simulation_mode", dataDir)
	default:
		log.Printf("service=backend msg=%q err=%v", "s3_config_invalid", err)
		os.Exit(1)
	}

	srv := server.New(cfg)

	// Start the HTTP server in a background goroutine so we can listen for
	// OS signals while it runs.
	errCh := make(chan error, 1)
	go func() {
		log.Printf("service=backend msg=%q addr=%s version=%s commit=%s",
			"starting", addr, build.Version, build.Commit)
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("service=backend msg=%q signal=%s", "shutting_down", sig.String())
		// Give the server 5 seconds to finish in-flight requests.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("service=backend msg=%q err=%v", "shutdown_error", err)
			os.Exit(1)
		}
		log.Printf("service=backend msg=%q", "shutdown_complete")
	case err := <-errCh:
		if err != nil {
			log.Printf("service=backend msg=%q err=%v", "server_error", err)
			os.Exit(1)
		}
	}
}

// getenvDefault reads an environment variable and returns a default value if not set.
func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
