package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ComponentStatus represents the health of an individual component.
type ComponentStatus string

const (
	ComponentStatusUp   ComponentStatus = "up"
	ComponentStatusDown ComponentStatus = "down"
)

// ComponentHealth describes one checked component.
type ComponentHealth struct {
	Status    ComponentStatus `json:"status"`
	Message   string          `json:"message,omitempty"`
	LatencyMs float64         `json:"latency_ms,omitempty"`
}

// Health is the /health response body.
type Health struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Mode       string                     `json:"mode"`
	Components map[string]ComponentHealth `json:"components"`
}

// indexHandler serves GET / with a plain-text line stating which storage
// backend is active. The recording front-end pings it to verify the backend
// is reachable before starting a session.
func (cfg Config) indexHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if cfg.LocalMode() {
			_, _ = w.Write([]byte("Backend is running! (Local simulation mode)"))
		} else {
			_, _ = w.Write([]byte("Backend is running! (S3 storage active)"))
		}
	})
}

// healthHandler reports the state of the active storage backend. Returns
// 503 when the backend is unusable so load balancers can rotate the
// instance out.
func (cfg Config) healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		storage := cfg.checkStorageHealth(r.Context())

		health := Health{
			Status:     "healthy",
			Timestamp:  time.Now().UTC(),
			Version:    cfg.Build.Version,
			Mode:       "s3",
			Components: map[string]ComponentHealth{"storage": storage},
		}
		if cfg.LocalMode() {
			health.Mode = "local_simulation"
		}

		status := http.StatusOK
		if storage.Status == ComponentStatusDown {
			health.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, health)
	})
}

// liveHandler is a liveness probe: the process is up, nothing else checked.
func (cfg Config) liveHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})
}

func (cfg Config) checkStorageHealth(ctx context.Context) ComponentHealth {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if cfg.LocalMode() {
		// Local mode is healthy when the storage directories are writable.
		probe := filepath.Join(cfg.AudioDir, ".healthcheck")
		if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
			return ComponentHealth{
				Status:  ComponentStatusDown,
				Message: "audio directory not writable: " + err.Error(),
			}
		}
		_ = os.Remove(probe)
		return ComponentHealth{Status: ComponentStatusUp, Message: "local storage writable"}
	}

	exists, err := cfg.Minio.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return ComponentHealth{
			Status:  ComponentStatusDown,
			Message: "object store unreachable: " + err.Error(),
		}
	}
	if !exists {
		return ComponentHealth{
			Status:  ComponentStatusDown,
			Message: "bucket does not exist: " + cfg.Bucket,
		}
	}

	return ComponentHealth{
		Status:    ComponentStatusUp,
		Message:   "object store healthy",
		LatencyMs: float64(time.Since(start).Milliseconds()),
	}
}
