package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type simulateResp struct {
	Message  string `json:"message"`
	Filepath string `json:"filepath"`
}

// simulateLocalUploadHandler handles PUT/POST /simulate_local_audio_upload,
// the local-mode stand-in for a direct-to-bucket upload: the client PUTs the
// raw recording bytes to the URL it got from /get-presigned-url and the
// bytes land in the local audio directory under a random filename.
func (cfg Config) simulateLocalUploadHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut && r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		data, err := io.ReadAll(r.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
					"error": "request body too large",
				})
				return
			}
			writeError(w, r, badRequest("could not read request body: %v", err))
			return
		}
		if len(data) == 0 {
			writeError(w, r, badRequest("empty request body"))
			return
		}

		ext := extensionFromMIME(r.Header.Get("Content-Type"), "bin")
		name := fmt.Sprintf("sim_upload_%s.%s",
			strings.ReplaceAll(uuid.NewString(), "-", ""), ext)

		path, err := writeLocalObject(cfg.AudioDir, name, data)
		if err != nil {
			writeError(w, r, storageFailure("save simulated upload", err))
			return
		}

		GetMetrics().RecordSimulatedUpload(int64(len(data)))
		Info("simulated upload stored", map[string]any{
			"rid":   RequestIDFromContext(r.Context()),
			"path":  path,
			"bytes": len(data),
		})

		writeJSON(w, http.StatusOK, simulateResp{
			Message:  "File saved locally (simulated upload)",
			Filepath: path,
		})
	})
}
