package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestRateLimitMiddlewareReturns429WithRetryAfter(t *testing.T) {
	handler := rateLimitMiddleware(1, 1, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on throttled response")
	}
}

func TestRateLimitMiddlewareDisabledWhenRPSZero(t *testing.T) {
	handler := rateLimitMiddleware(0, 0, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}

func TestBackpressureMiddlewareShedsWhenSaturated(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	handler := backpressureMiddleware(1, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusOK)
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	slow := httptest.NewRecorder()
	go func() {
		defer wg.Done()
		handler.ServeHTTP(slow, httptest.NewRequest(http.MethodGet, "/api/chat", nil))
	}()
	<-entered

	shed := httptest.NewRecorder()
	handler.ServeHTTP(shed, httptest.NewRequest(http.MethodGet, "/api/chat", nil))
	if shed.Code != http.StatusServiceUnavailable {
		t.Fatalf("saturated request status = %d, want 503", shed.Code)
	}

	close(release)
	wg.Wait()
	if slow.Code != http.StatusOK {
		t.Fatalf("in-flight request status = %d, want 200", slow.Code)
	}
}

func TestRequestIDMiddlewareHonorsIncomingHeader(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "req-123" {
		t.Fatalf("context request id = %q, want req-123", seen)
	}
	if rec.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response header = %q", rec.Header().Get(requestIDHeader))
	}
}
