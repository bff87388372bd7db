package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// badRequestError marks malformed or missing client input. It always maps
// to a 400 response with the message surfaced to the caller.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

// storageError wraps a failure from the object-store client or the local
// filesystem. It maps to a 500 response; the wrapped error's message is
// surfaced to the caller and the full detail is logged server-side.
type storageError struct {
	op  string // e.g. "save demographics", "upload audio"
	err error
}

func (e *storageError) Error() string { return fmt.Sprintf("failed to %s: %v", e.op, e.err) }

func (e *storageError) Unwrap() error { return e.err }

func storageFailure(op string, err error) error {
	return &storageError{op: op, err: err}
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to the matching HTTP response. Bad input gets a
// 400, storage failures get a 500 and a server-side log line; anything else
// is treated as an internal error without leaking detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *badRequestError:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": e.msg})
	case *storageError:
		GetMetrics().RecordStorageError()
		Error("storage operation failed", map[string]any{
			"rid": RequestIDFromContext(r.Context()),
			"op":  e.op,
		}, e.err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": e.Error()})
	default:
		Error("internal error", map[string]any{
			"rid": RequestIDFromContext(r.Context()),
		}, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
