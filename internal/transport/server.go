package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/layrpay/layrpay-mcp/internal/logger"
	"github.com/layrpay/layrpay-mcp/internal/mcp"
	"github.com/layrpay/layrpay-mcp/pkg/protocol"
)

var log = logger.ForComponent("transport")

// Server is the HTTP entry point. Each JSON-RPC exchange is one POST to
// /sse answered with a single SSE frame; no session state is kept
// between requests.
type Server struct {
	mcp       *mcp.Server
	startTime time.Time
	httpSrv   *http.Server
}

func NewServer(mcpServer *mcp.Server) *Server {
	return &Server{
		mcp:       mcpServer,
		startTime: time.Now(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sse", s.handleSSE)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/", s.handleFallback)
	return requestIDMiddleware(mux)
}

// ListenAndServe blocks until ctx is cancelled, then drains in-flight
// requests before returning.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		// Long enough for a validation long-poll plus framing overhead.
		WriteTimeout: 5 * time.Minute,
		ReadTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	log.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-Id", reqID)
		log.Debug("request", "id", reqID, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		writeCORS(w, "GET, POST, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		s.handleSSEOpen(w, r)
	case http.MethodPost:
		s.handleSSEPost(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleSSEOpen answers a bare GET with an immediate stream carrying a
// single initialized notice. Clients probing the endpoint get a
// well-formed event instead of a hanging connection.
func (s *Server) handleSSEOpen(w http.ResponseWriter, r *http.Request) {
	writeCORS(w, "GET, POST, OPTIONS")
	setStreamHeaders(w)
	w.WriteHeader(http.StatusOK)

	notice := protocol.JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  "notifications/initialized",
	}
	writeFrame(w, notice)
}

// handleSSEPost routes one JSON-RPC message and answers with one SSE
// frame. Notifications get an empty 204: there is no id to correlate.
func (s *Server) handleSSEPost(w http.ResponseWriter, r *http.Request) {
	writeCORS(w, "POST, OPTIONS")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	resp := s.mcp.HandleMessage(r.Context(), body)
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	setStreamHeaders(w)
	w.WriteHeader(http.StatusOK)
	writeFrame(w, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.HealthResponse{
		Status: "ok",
		Uptime: int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeCORS(w, "POST, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.NotFound(w, r)
}

func setStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
}

func writeCORS(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// writeFrame serializes v as a single data frame and flushes it.
func writeFrame(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("failed to marshal SSE frame", "error", err)
		return
	}

	fmt.Fprintf(w, "data: %s\n\n", data)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
