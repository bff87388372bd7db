package server

import (
	"encoding/json"
	"net/http"
)

type completeReq struct {
	S3Key           string  `json:"s3Key"`
	LocalFilePath   string  `json:"localFilePath"`
	ParticipantID   string  `json:"participantId"`
	TaskType        string  `json:"taskType"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// uploadCompleteHandler handles POST /upload-complete. The client reports a
// finished direct upload; the record is logged and acknowledged, nothing
// more. The referenced object is deliberately not checked for existence.
//
// TODO: persist completion records to a durable index once the study needs
// one; today the analysis scripts list the bucket directly.
func (cfg Config) uploadCompleteHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req completeReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, badRequest("request body must be JSON"))
			return
		}
		if req.ParticipantID == "" {
			writeError(w, r, badRequest("participantId is required"))
			return
		}
		if req.S3Key == "" && req.LocalFilePath == "" {
			writeError(w, r, badRequest("s3Key or localFilePath is required"))
			return
		}

		GetMetrics().RecordCompletion()
		Info("upload completion recorded", map[string]any{
			"rid":              RequestIDFromContext(r.Context()),
			"participant_id":   req.ParticipantID,
			"task_type":        req.TaskType,
			"s3_key":           req.S3Key,
			"local_file_path":  req.LocalFilePath,
			"duration_seconds": req.DurationSeconds,
		})

		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Upload completion recorded",
		})
	})
}
