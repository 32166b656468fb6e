package respond

import (
	"encoding/json"
	"io"
	"net/http"
)

type ErrorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Text writes a bare plain-text body. Webhook senders only look at the status,
// so the acknowledgement stays as small as possible.
func Text(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func ErrorWithID(w http.ResponseWriter, status int, code, message, reqID string) {
	JSON(w, status, ErrorBody{
		Error:     code,
		Message:   message,
		RequestID: reqID,
	})
}
