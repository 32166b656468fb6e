package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var ErrInsertFailed = errors.New("supabase insert failed")

// InsertError is returned for any non-2xx answer from the REST endpoint.
type InsertError struct {
	Table  string
	Status int
	Body   string
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("%s: %d", ErrInsertFailed, e.Status)
}

func (e *InsertError) Unwrap() error { return ErrInsertFailed }

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	BaseURL string
	Key     string
	HTTP    HTTPDoer
	Logf    func(string, ...any)
}

func NewClient(baseURL, key string, doer HTTPDoer, logf func(string, ...any)) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Key:     key,
		HTTP:    doer,
		Logf:    logf,
	}
}

// Insert POSTs payload as a new row of table. The returned representation is
// read and dropped. There is no retry: a failed call is final for that row.
func (c *Client) Insert(ctx context.Context, table string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s row: %w", table, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/rest/v1/"+table, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request %s: %w", table, err)
	}
	req.Header.Set("apikey", c.Key)
	req.Header.Set("Authorization", "Bearer "+c.Key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		txt, _ := io.ReadAll(resp.Body)
		c.Logf("[SUPABASE] error (%s): %s", table, txt)
		return &InsertError{Table: table, Status: resp.StatusCode, Body: string(txt)}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
