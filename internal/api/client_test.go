package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestRequestUnwrapsSuccessEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"daily":100}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "user-1")
	result := client.Request(context.Background(), http.MethodGet, "/limits", nil, nil)

	if !result.Success {
		t.Fatalf("expected success, got error: %v", result.Err)
	}
	if string(result.Data) != `{"daily":100}` {
		t.Errorf("expected unwrapped data, got %s", result.Data)
	}
}

func TestRequestPassesThroughBodyWithoutSuccessFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"plain":"body"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "user-1")
	result := client.Request(context.Background(), http.MethodGet, "/info", nil, nil)

	if !result.Success {
		t.Fatalf("expected success, got error: %v", result.Err)
	}
	if string(result.Data) != `{"plain":"body"}` {
		t.Errorf("expected pass-through body, got %s", result.Data)
	}
}

func TestRequestSurfacesEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success":false,"error":{"code":"LIMIT_EXCEEDED","message":"daily limit exceeded"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "user-1")
	result := client.Request(context.Background(), http.MethodPost, "/validate-transaction", map[string]any{"amount": 500}, nil)

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Err.Code != "LIMIT_EXCEEDED" {
		t.Errorf("expected backend error code, got %s", result.Err.Code)
	}
	if result.Err.Message != "daily limit exceeded" {
		t.Errorf("unexpected message: %s", result.Err.Message)
	}
}

func TestRequestSynthesizesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "user-1")
	result := client.Request(context.Background(), http.MethodGet, "/info", nil, nil)

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Err.Code != CodeHTTPError {
		t.Errorf("expected %s, got %s", CodeHTTPError, result.Err.Code)
	}
	if result.Err.Message != "HTTP 502" {
		t.Errorf("unexpected message: %s", result.Err.Message)
	}
}

func TestRequestNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("backend down"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "user-1")
	result := client.Request(context.Background(), http.MethodGet, "/info", nil, nil)

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Err.Code != CodeHTTPError {
		t.Errorf("expected %s, got %s", CodeHTTPError, result.Err.Code)
	}
	if !strings.Contains(result.Err.Message, "503") || !strings.Contains(result.Err.Message, "backend down") {
		t.Errorf("expected status and body in message, got %q", result.Err.Message)
	}
}

func TestRequestNetworkError(t *testing.T) {
	// Point at a closed server so the dial fails.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, "user-1")
	result := client.Request(context.Background(), http.MethodGet, "/info", nil, nil)

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Err.Code != CodeNetworkError {
		t.Errorf("expected %s, got %s", CodeNetworkError, result.Err.Code)
	}
	if result.Err.Message == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestRequestHeadersAndQuery(t *testing.T) {
	var gotUser, gotContentType, gotQuery, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.Header.Get(UserIDHeader)
		gotContentType = r.Header.Get("Content-Type")
		gotQuery = r.URL.RawQuery
		if r.Body != nil {
			var buf [64]byte
			n, _ := r.Body.Read(buf[:])
			gotBody = string(buf[:n])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "user-42")
	query := url.Values{}
	query.Set("currency", "EUR")
	result := client.Request(context.Background(), http.MethodGet, "/limits", map[string]any{"ignored": true}, query)

	if !result.Success {
		t.Fatalf("unexpected failure: %v", result.Err)
	}
	if gotUser != "user-42" {
		t.Errorf("expected user header, got %q", gotUser)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", gotContentType)
	}
	if gotQuery != "currency=EUR" {
		t.Errorf("expected currency query, got %q", gotQuery)
	}
	// Body is sent for POST only.
	if gotBody != "" {
		t.Errorf("GET should not carry a body, got %q", gotBody)
	}
}

func TestRequestSendsPostBody(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "user-1")
	result := client.Request(context.Background(), http.MethodPost, "/mock-checkout", map[string]any{"amount": 12.5}, nil)

	if !result.Success {
		t.Fatalf("unexpected failure: %v", result.Err)
	}
	if gotBody["amount"] != 12.5 {
		t.Errorf("expected POST body forwarded, got %v", gotBody)
	}
}
