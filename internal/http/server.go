package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"pantry/internal/middleware/trace"
	"pantry/internal/services"
)

// mutationRateLimit is requests per minute per client for mutating endpoints.
const mutationRateLimit = 60

type Server struct {
	http.Server
	inventory    *services.InventoryService
	rateLimiter  *rateLimiter
	metrics      securityMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, inventory *services.InventoryService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		inventory:   inventory,
		rateLimiter: newRateLimiter(mutationRateLimit),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /inventory", s.handleGetInventory)

	mux.HandleFunc("POST /items", s.handleAddItem)
	mux.HandleFunc("PATCH /items/{id}", s.handleEditItem)
	mux.HandleFunc("DELETE /items/{id}", s.handleRemoveItem)
	mux.HandleFunc("POST /items/{id}/toggle", s.handleToggleToBuy)
	mux.HandleFunc("POST /items/{id}/quantity", s.handleSetQuantity)
	mux.HandleFunc("POST /items/{id}/price", s.handleSetPrice)

	mux.HandleFunc("POST /purchase/complete", s.handleCompletePurchase)

	mux.HandleFunc("POST /categories", s.handleAddCategory)
	mux.HandleFunc("DELETE /categories/{name}", s.handleRemoveCategory)

	mux.HandleFunc("POST /points", s.handleUpdatePoints)

	mux.HandleFunc("POST /import/legacy", s.handleImportLegacy)

	tracer := trace.NewMiddleware(extractClientIP)
	s.Handler = tracer.Middleware(s.withSecurity(mux))

	return s
}

// withSecurity adds security headers and applies rate limiting to mutations.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)

		if detectSuspiciousRequest(r, &s.metrics) {
			slog.WarnContext(r.Context(), "Suspicious request",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.String())
		}

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, &s.metrics) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the server and its cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady probes the backing store through a normal read. A degraded
// read (defaults with a warning) means not ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if view := s.inventory.Get(r.Context()); view.Warning != "" {
		http.Error(w, view.Warning, http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
