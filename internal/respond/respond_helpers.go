package respond

import (
	"net/http"
	"strings"
)

func OK(w http.ResponseWriter) {
	Text(w, http.StatusOK, "OK")
}

func MethodNotAllowed(w http.ResponseWriter, allow ...string) {
	w.Header().Set("Allow", strings.Join(allow, ", "))
	Text(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

func Unauthorized(w http.ResponseWriter, msg string) {
	Text(w, http.StatusUnauthorized, msg)
}

func Internal(w http.ResponseWriter, reqID string) {
	ErrorWithID(w, http.StatusInternalServerError, "internal", "internal error", reqID)
}
