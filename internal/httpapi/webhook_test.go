package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrussa/orderhook/internal/ingest"
	"github.com/mrussa/orderhook/internal/orders"
	"github.com/mrussa/orderhook/internal/shopify"
	"github.com/mrussa/orderhook/internal/supabase"
)

const testSecret = "hush"

const twoItemOrder = `{
  "id": 450789469,
  "name": "#S1001",
  "created_at": "2024-05-01T10:00:00-04:00",
  "customer": {"last_name": "Lee"},
  "shipping_address": {"name": "Lee", "phone": "+1555", "country_code": "US"},
  "financial_status": "paid",
  "fulfillment_status": null,
  "cancelled_at": null,
  "note_attributes": [{"name": "Physical SIM / eSIM", "value": "eSIM"}],
  "line_items": [
    {"title": "A", "quantity": 1},
    {"title": "B", "quantity": 2, "properties": [{"name": "Activation Plan", "value": "30 days"}]}
  ]
}`

// fakeStore records calls; safe for the concurrent item writes.
type fakeStore struct {
	mu        sync.Mutex
	orders    []orders.Order
	items     []orders.Item
	orderErr  error
	itemErrOn map[string]error
}

func (f *fakeStore) InsertOrder(_ context.Context, o orders.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, o)
	return f.orderErr
}

func (f *fakeStore) InsertItem(_ context.Context, it orders.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, it)
	return f.itemErrOn[it.Title]
}

func (f *fakeStore) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders), len(f.items)
}

func newAPI(st ingest.Store) *WebhookAPI {
	return New(ingest.New(st, nil, nil), Settings{
		Secret:       testSecret,
		MaxBodyBytes: 1 << 20,
		Backend:      "test",
		Version:      "testver",
	}, nil)
}

func post(t *testing.T, h http.Handler, body string, sig *string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders-create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sig != nil {
		req.Header.Set(shopify.HeaderHMAC, *sig)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func signed(body string) *string {
	s := shopify.Sign([]byte(body), testSecret)
	return &s
}

func TestWebhook_NonPost_405_NoWrites(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	h := newAPI(st).Routes()

	for _, m := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead, http.MethodOptions} {
		req := httptest.NewRequest(m, "/", strings.NewReader(twoItemOrder))
		req.Header.Set(shopify.HeaderHMAC, *signed(twoItemOrder))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusMethodNotAllowed, rr.Code, m)
		require.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
		if m != http.MethodHead {
			require.Equal(t, "Method Not Allowed", rr.Body.String())
		}
	}
	o, i := st.counts()
	require.Zero(t, o)
	require.Zero(t, i)
}

func TestWebhook_BadSignature_401_NoWrites(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	h := newAPI(st).Routes()

	wrong := shopify.Sign([]byte(twoItemOrder), "other-secret")
	empty := ""
	for _, sig := range []*string{nil, &empty, &wrong, signed(twoItemOrder + " ")} {
		rr := post(t, h, twoItemOrder, sig)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
		require.Equal(t, "Invalid HMAC", rr.Body.String())
	}
	o, i := st.counts()
	require.Zero(t, o)
	require.Zero(t, i)
}

func TestWebhook_SignatureOverRawBytes(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	h := newAPI(st).Routes()

	// Same JSON value, different bytes: only the signed bytes verify.
	compact := `{"id":1}`
	spaced := `{ "id": 1 }`
	require.Equal(t, http.StatusUnauthorized, post(t, h, spaced, signed(compact)).Code)
	require.Equal(t, http.StatusOK, post(t, h, spaced, signed(spaced)).Code)
}

func TestWebhook_Success_OneOrderTwoItems(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	h := newAPI(st).Routes()

	rr := post(t, h, twoItemOrder, signed(twoItemOrder))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "OK", rr.Body.String())
	require.NotEmpty(t, rr.Header().Get(headerRequestID))

	require.Len(t, st.orders, 1)
	require.Equal(t, "450789469", st.orders[0].OrderID)
	require.Equal(t, "Lee", st.orders[0].Customer)

	require.Len(t, st.items, 2)
	for _, it := range st.items {
		require.Equal(t, st.orders[0].OrderID, it.OrderID)
		require.Equal(t, "eSIM", it.SIMType)
		require.Equal(t, "", it.SIMNumber)
	}
}

func TestWebhook_NoSIMAttribute_EmptySIMType(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	h := newAPI(st).Routes()

	body := `{"id":3,"note_attributes":[{"name":"gift","value":"yes"}],"line_items":[{"title":"A","quantity":1}]}`
	require.Equal(t, http.StatusOK, post(t, h, body, signed(body)).Code)
	require.Len(t, st.items, 1)
	require.Equal(t, "", st.items[0].SIMType)
}

func TestWebhook_OrderInsertFails_NoItems_500(t *testing.T) {
	t.Parallel()
	st := &fakeStore{orderErr: errors.New("supabase insert failed: 500")}
	h := newAPI(st).Routes()

	rr := post(t, h, twoItemOrder, signed(twoItemOrder))
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	require.Equal(t, "internal", m["error"])
	require.Equal(t, rr.Header().Get(headerRequestID), m["request_id"])

	o, i := st.counts()
	require.Equal(t, 1, o)
	require.Zero(t, i)
}

func TestWebhook_OneItemFails_OtherAttempted_500(t *testing.T) {
	t.Parallel()
	st := &fakeStore{itemErrOn: map[string]error{"A": errors.New("boom")}}
	h := newAPI(st).Routes()

	rr := post(t, h, twoItemOrder, signed(twoItemOrder))
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	o, i := st.counts()
	require.Equal(t, 1, o)
	require.Equal(t, 2, i)
}

func TestWebhook_MalformedJSON_500(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	h := newAPI(st).Routes()

	body := `{"id": 1, "line_items": [`
	rr := post(t, h, body, signed(body))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	o, _ := st.counts()
	require.Zero(t, o)
}

func TestWebhook_BodyTooLarge_413(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	api := New(ingest.New(st, nil, nil), Settings{Secret: testSecret, MaxBodyBytes: 16}, nil)

	body := twoItemOrder
	rr := post(t, api.Routes(), body, signed(body))
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	o, _ := st.counts()
	require.Zero(t, o)
}

type ctxIngester struct {
	err error
}

func (c *ctxIngester) Ingest(ctx context.Context, _ []byte) (ingest.Result, error) {
	c.err = ctx.Err()
	return ingest.Result{}, nil
}

func TestWebhook_ClientCancelDoesNotCancelWrites(t *testing.T) {
	t.Parallel()
	ci := &ctxIngester{}
	h := New(ci, Settings{Secret: testSecret}, nil).Routes()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":1}`)).WithContext(ctx)
	req.Header.Set(shopify.HeaderHMAC, *signed(`{"id":1}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, ci.err)
}

func TestWebhook_EndToEnd_Supabase(t *testing.T) {
	t.Parallel()
	var (
		mu     sync.Mutex
		paths  []string
		bodies []map[string]any
	)
	sb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var m map[string]any
		_ = json.Unmarshal(b, &m)
		mu.Lock()
		paths = append(paths, r.URL.Path)
		bodies = append(bodies, m)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(bytes.TrimSpace(b))
	}))
	defer sb.Close()

	store := supabase.NewStore(supabase.NewClient(sb.URL, "service-key", sb.Client(), nil))
	h := newAPI(store).Routes()

	rr := post(t, h, twoItemOrder, signed(twoItemOrder))
	require.Equal(t, http.StatusOK, rr.Code)

	require.Len(t, paths, 3)
	require.Equal(t, "/rest/v1/orders", paths[0], "parent row goes first")
	require.Equal(t, "450789469", bodies[0]["order_id"])
	require.Equal(t, "Lee", bodies[0]["customer"])
	require.Equal(t, "2024-05-01T10:00:00-04:00", bodies[0]["created_at"])

	var itemCalls int
	for i, p := range paths[1:] {
		require.Equal(t, "/rest/v1/order_items", p)
		require.Equal(t, "450789469", bodies[i+1]["order_id"])
		require.Equal(t, "eSIM", bodies[i+1]["sim_type"])
		itemCalls++
	}
	require.Equal(t, 2, itemCalls)
}

func TestWebhook_EndToEnd_SupabaseParentRejected(t *testing.T) {
	t.Parallel()
	var (
		mu    sync.Mutex
		paths []string
	)
	sb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"invalid input"}`)
	}))
	defer sb.Close()

	store := supabase.NewStore(supabase.NewClient(sb.URL, "k", sb.Client(), nil))
	rr := post(t, newAPI(store).Routes(), twoItemOrder, signed(twoItemOrder))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, []string{"/rest/v1/orders"}, paths)
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	h := newAPI(&fakeStore{}).Routes()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "rid-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	require.Equal(t, "ok", m["status"])
	require.Equal(t, "test", m["backend"])
	require.Equal(t, "testver", m["version"])
	require.Equal(t, "rid-123", m["request_id"])

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/healthz", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	require.Equal(t, "POST", rr.Header().Get("Allow"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodHead, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestHealthz_PingFailure(t *testing.T) {
	t.Parallel()
	api := New(ingest.New(&fakeStore{}, nil, nil), Settings{
		Secret:  testSecret,
		Backend: "postgres",
		Ping:    func(context.Context) error { return errors.New("down") },
	}, nil)
	h := api.Routes()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	require.Equal(t, "degraded", m["status"])

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodHead, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestWebhook_PostToHealthzPathIsWebhook(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	h := newAPI(st).Routes()

	body := `{"id":1}`
	req := httptest.NewRequest(http.MethodPost, "/healthz", strings.NewReader(body))
	req.Header.Set(shopify.HeaderHMAC, *signed(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "OK", rr.Body.String())
	nOrders, nItems := st.counts()
	require.Equal(t, 1, nOrders)
	require.Equal(t, 0, nItems)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/healthz", strings.NewReader(body)))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
