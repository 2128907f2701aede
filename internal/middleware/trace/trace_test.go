package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateRequestID(t *testing.T) {
	a := GenerateRequestID()
	b := GenerateRequestID()
	if !strings.HasPrefix(a, "req_") {
		t.Fatalf("id %q missing prefix", a)
	}
	if a == b {
		t.Fatal("ids must be unique")
	}
}

func TestMiddlewarePropagatesRequestID(t *testing.T) {
	m := NewMiddleware(nil)

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if seen == "" {
		t.Fatal("handler saw no request id")
	}
	if got := m.GetMetrics().TotalRequests; got != 1 {
		t.Fatalf("total requests = %d, want 1", got)
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	if got := GetRequestID(httptest.NewRequest("GET", "/", nil).Context()); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
