package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
)

// DefaultMaxBodyBytes caps request bodies at 32 MiB, matching the largest
// recording the study's tasks can produce with comfortable headroom.
const DefaultMaxBodyBytes int64 = 32 << 20

// BuildInfo identifies the running binary in logs, /health and /metrics.
type BuildInfo struct {
	Version string
	Commit  string
}

// Config carries everything the handlers need. It is assembled once at
// startup and never mutated afterwards; a nil Minio client selects local
// simulation mode for the lifetime of the process.
type Config struct {
	Addr    string // e.g. ":8080"
	Build   BuildInfo
	BaseURL string // external base URL, used for the local-mode stand-in presigned URL

	Minio  *minio.Client // nil -> local simulation mode
	Bucket string

	AudioDir        string // local destination for audio recordings
	DemographicsDir string // local destination for demographics JSON

	MaxBodyBytes int64 // 0 -> DefaultMaxBodyBytes
}

// LocalMode reports whether the backend persists to the local filesystem
// instead of an object store.
func (cfg Config) LocalMode() bool { return cfg.Minio == nil }

type Server struct {
	httpServer *http.Server
}

// NewHandler wires all routes and middleware. Split out from New so tests
// can drive the full stack through httptest without binding a socket.
func NewHandler(cfg Config) http.Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	mux := http.NewServeMux()

	mux.Handle("/", cfg.indexHandler())
	mux.Handle("/save_demographics", cfg.saveDemographicsHandler())
	mux.Handle("/upload_audio", cfg.uploadAudioHandler())
	mux.Handle("/get-presigned-url", cfg.presignedURLHandler())
	mux.Handle("/upload-complete", cfg.uploadCompleteHandler())
	mux.Handle("/simulate_local_audio_upload", cfg.simulateLocalUploadHandler())
	mux.Handle("/health", cfg.healthHandler())
	mux.Handle("/live", cfg.liveHandler())
	mux.Handle("/metrics", PrometheusMetricsHandler(cfg.Build))

	// Wrap middleware: requestID -> logging -> cors/headers -> body cap -> mux
	var handler http.Handler = mux
	handler = maxBodyMiddleware(cfg.MaxBodyBytes, handler)
	handler = corsMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return handler
}

func New(cfg Config) *Server {
	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{httpServer: s}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// maxBodyMiddleware rejects oversized requests before any handler logic
// runs. A declared Content-Length above the cap gets an immediate 413;
// chunked bodies are bounded by MaxBytesReader so a lying client fails on
// read instead.
func maxBodyMiddleware(limit int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > limit {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": "request body too large",
			})
			return
		}
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}
