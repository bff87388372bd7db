package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// prolificIDPlaceholder is the template Prolific substitutes into study
// URLs; it reaches the backend verbatim when a participant opens the study
// outside of Prolific, and must be treated the same as a missing id.
const prolificIDPlaceholder = "{{%PROLIFIC_PID%}}"

// generateParticipantID creates a debug participant identifier for
// submissions arriving without a usable prolific id. The hex suffix keeps
// repeated debug submissions distinct.
func generateParticipantID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "debug_participant_" + hex[:8]
}

type demographicsResp struct {
	Message       string `json:"message"`
	ParticipantID string `json:"participant_id"`
}

// saveDemographicsHandler handles POST /save_demographics. The survey
// front-end submits a free-form JSON object; whatever fields it carries are
// persisted untouched, with prolific_id resolved (or generated) first.
//
// Object key: {participant_id}/{participant_id}_demographics_{timestamp}.json
func (cfg Config) saveDemographicsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, r, badRequest("could not read request body: %v", err))
			return
		}

		var record map[string]any
		if err := json.Unmarshal(body, &record); err != nil || record == nil {
			writeError(w, r, badRequest("request body must be a JSON object"))
			return
		}

		participantID, _ := record["prolific_id"].(string)
		if participantID == "" || participantID == prolificIDPlaceholder {
			participantID = generateParticipantID()
		}
		record["prolific_id"] = participantID

		timestamp := time.Now().Format("20060102150405")
		filename := fmt.Sprintf("%s_demographics_%s.json", participantID, timestamp)

		data, err := json.MarshalIndent(record, "", "    ")
		if err != nil {
			writeError(w, r, storageFailure("save demographics", err))
			return
		}

		var message string
		if cfg.LocalMode() {
			if _, err := writeLocalObject(cfg.DemographicsDir, filename, data); err != nil {
				writeError(w, r, storageFailure("save demographics", err))
				return
			}
			message = "Demographics saved locally!"
		} else {
			key := participantID + "/" + filename
			ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
			defer cancel()

			_, err := cfg.Minio.PutObject(ctx, cfg.Bucket, key,
				bytes.NewReader(data), int64(len(data)),
				minio.PutObjectOptions{ContentType: "application/json"})
			if err != nil {
				writeError(w, r, storageFailure("save demographics", err))
				return
			}
			message = "Demographics saved to cloud storage!"
		}

		GetMetrics().RecordDemographicsSaved()
		Info("demographics saved", map[string]any{
			"rid":            RequestIDFromContext(r.Context()),
			"participant_id": participantID,
		})

		writeJSON(w, http.StatusOK, demographicsResp{
			Message:       message,
			ParticipantID: participantID,
		})
	})
}
