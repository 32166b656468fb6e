package httpapi

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"net/http"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

const (
	headerRequestID = "X-Request-ID"
	// Shopify's delivery id; reused as request id so logs line up with the
	// delivery shown in the Shopify admin.
	headerWebhookID = "X-Shopify-Webhook-Id"

	maxRequestIDLen = 128
)

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := pickID(r.Header.Get(headerRequestID), r.Header.Get(headerWebhookID))
		w.Header().Set(headerRequestID, id)

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequestID(r *http.Request) string {
	if v := r.Context().Value(requestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func pickID(candidates ...string) string {
	for _, c := range candidates {
		if validID(c) {
			return c
		}
	}
	return newID()
}

func validID(s string) bool {
	if s == "" || len(s) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func newID() string {
	b := make([]byte, 16)
	if _, err := crand.Reader.Read(b); err != nil {
		return "rid-fallback"
	}
	return hex.EncodeToString(b)
}
