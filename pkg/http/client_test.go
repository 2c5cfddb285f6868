package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("symbol query = %q, want AAPL", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price": 123.5}`))
	}))
	defer srv.Close()

	var out struct {
		Price float64 `json:"price"`
	}
	c := NewClient()
	err := c.GetJSON(context.Background(), srv.URL, url.Values{"symbol": {"AAPL"}}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Price != 123.5 {
		t.Errorf("price = %v, want 123.5", out.Price)
	}
}

func TestGetJSONErrorStatusCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient()
	err := c.GetJSON(context.Background(), srv.URL, nil, nil)
	if err == nil {
		t.Fatalf("expected an error for status 429")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("error should carry the status and body, got %v", err)
	}
}

func TestGetJSONNilDestDiscardsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := NewClient()
	if err := c.GetJSON(context.Background(), srv.URL, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
