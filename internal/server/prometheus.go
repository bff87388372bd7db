// prometheus.go - Hand-rolled Prometheus text exposition of the counters
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

var serverStartTime = time.Now()

// PrometheusMetricsHandler serves the counters in Prometheus text format.
func PrometheusMetricsHandler(build BuildInfo) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		s := GetMetrics().Snapshot()

		var out strings.Builder
		writeMetric := func(name, help, typ string, value int64) {
			fmt.Fprintf(&out, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", name, help, name, typ, name, value)
		}

		fmt.Fprintf(&out, "# HELP srb_info Build info\n# TYPE srb_info gauge\nsrb_info{version=%q,commit=%q} 1\n\n",
			build.Version, build.Commit)

		writeMetric("srb_requests_total", "Total HTTP requests", "counter", s.RequestsTotal)
		writeMetric("srb_request_errors_4xx_total", "Requests answered with a client error", "counter", s.RequestErrors4xx)
		writeMetric("srb_request_errors_5xx_total", "Requests answered with a server error", "counter", s.RequestErrors5xx)
		writeMetric("srb_demographics_saved_total", "Demographics records persisted", "counter", s.DemographicsSavedTotal)
		writeMetric("srb_audio_uploads_total", "Audio recordings stored via the direct upload path", "counter", s.AudioUploadsTotal)
		writeMetric("srb_audio_upload_bytes_total", "Audio bytes received", "counter", s.AudioUploadBytesTotal)
		writeMetric("srb_presigned_urls_total", "Presigned upload URLs issued", "counter", s.PresignedURLsTotal)
		writeMetric("srb_upload_completions_total", "Upload completion acknowledgments", "counter", s.CompletionsTotal)
		writeMetric("srb_simulated_uploads_total", "Files received by the local simulation receiver", "counter", s.SimulatedUploadsTotal)
		writeMetric("srb_storage_errors_total", "Failed storage operations", "counter", s.StorageErrorsTotal)
		writeMetric("srb_uptime_seconds", "Seconds since process start", "counter", int64(time.Since(serverStartTime).Seconds()))

		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(out.String()))
	})
}
