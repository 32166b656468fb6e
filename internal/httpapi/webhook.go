package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/mrussa/orderhook/internal/ingest"
	"github.com/mrussa/orderhook/internal/respond"
	"github.com/mrussa/orderhook/internal/shopify"
)

type Ingester interface {
	Ingest(ctx context.Context, body []byte) (ingest.Result, error)
}

// Settings is everything the API needs from the process configuration.
type Settings struct {
	Secret       string
	MaxBodyBytes int64
	Backend      string
	Version      string
	// Ping, when set, is checked by /healthz.
	Ping func(context.Context) error
}

type WebhookAPI struct {
	ingest Ingester
	cfg    Settings
	logf   func(string, ...any)
}

func New(ing Ingester, cfg Settings, logf func(string, ...any)) *WebhookAPI {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &WebhookAPI{
		ingest: ing,
		cfg:    cfg,
		logf:   logf,
	}
}

func (a *WebhookAPI) Routes() http.Handler {
	mux := http.NewServeMux()
	// POST /healthz is a webhook like any other path.
	mux.HandleFunc("GET /healthz", a.healthz)
	mux.HandleFunc("/", a.webhook)
	return WithRequestID(mux)
}

func (a *WebhookAPI) webhook(w http.ResponseWriter, r *http.Request) {
	reqID := RequestID(r)
	if r.Method != http.MethodPost {
		respond.MethodNotAllowed(w, http.MethodPost)
		return
	}

	signature := r.Header.Get(shopify.HeaderHMAC)

	src := io.Reader(r.Body)
	if a.cfg.MaxBodyBytes > 0 {
		src = http.MaxBytesReader(w, r.Body, a.cfg.MaxBodyBytes)
	}
	body, err := io.ReadAll(src)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respond.ErrorWithID(w, http.StatusRequestEntityTooLarge, "payload_too_large", "body over limit", reqID)
			return
		}
		a.logf("[HOOK] read body rid=%s: %v", reqID, err)
		respond.Internal(w, reqID)
		return
	}

	if !shopify.Verify(body, a.cfg.Secret, signature) {
		a.logf("[HOOK] invalid hmac rid=%s path=%s", reqID, r.URL.Path)
		respond.Unauthorized(w, "Invalid HMAC")
		return
	}

	// The sender hanging up must not abort writes half way.
	ctx := context.WithoutCancel(r.Context())

	res, err := a.ingest.Ingest(ctx, body)
	if err != nil {
		a.logf("[HOOK] ingest failed rid=%s: %v", reqID, err)
		respond.Internal(w, reqID)
		return
	}

	a.logf("[HOOK] stored order %s (%s) items=%d rid=%s", res.Order.OrderID, res.Order.OrderNumber, len(res.Items), reqID)
	respond.OK(w)
}

func (a *WebhookAPI) healthz(w http.ResponseWriter, r *http.Request) {
	reqID := RequestID(r)

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		respond.MethodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}

	status, code := "ok", http.StatusOK
	if a.cfg.Ping != nil {
		if err := a.cfg.Ping(r.Context()); err != nil {
			a.logf("[HTTP] healthz ping rid=%s: %v", reqID, err)
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(code)
		return
	}
	respond.JSON(w, code, map[string]any{
		"status":     status,
		"backend":    a.cfg.Backend,
		"version":    a.cfg.Version,
		"request_id": reqID,
	})
}
