// Package iomcp serves the engine APIs as MCP tools over HTTP. A POST
// body is a protocol.CallToolRequest, the reply is a
// protocol.CallToolResult with one JSON text content.
package iomcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gnames/gn"
)

// Server routes tool calls to the engine.
type Server struct {
	svc   gizi.Gizi
	now   func() time.Time
	tools map[string]tool
}

type tool struct {
	description string
	handle      func(ctx context.Context, req *protocol.CallToolRequest) (any, error)
}

// Option configures the server.
type Option func(*Server)

// OptClock replaces time.Now for default timestamps and dates.
func OptClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a tool server over the engine.
func New(svc gizi.Gizi, opts ...Option) *Server {
	res := &Server{svc: svc, now: time.Now}
	for _, opt := range opts {
		opt(res)
	}
	res.tools = res.registerTools()
	return res
}

// Handler returns the HTTP handler: POST / calls a tool, GET /tools
// lists them.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleCall)
	mux.HandleFunc("GET /tools", s.handleList)
	return mux
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting tool server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("Shutting down tool server")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	res := make([]toolInfo, 0, len(s.tools))
	for name, t := range s.tools {
		res = append(res, toolInfo{Name: name, Description: t.description})
	}
	slices.SortFunc(res, func(a, b toolInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed",
			"use POST with a tools/call body")
		return
	}

	var req protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	t, ok := s.tools[req.Name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_tool",
			fmt.Sprintf("unknown tool %q", req.Name))
		return
	}

	data, err := t.handle(r.Context(), &req)
	if err != nil {
		status, code := classify(err)
		if status >= http.StatusInternalServerError {
			slog.Error("Tool failed", "tool", req.Name, "error", err)
		} else {
			slog.Info("Tool rejected input", "tool", req.Name, "error", err)
		}
		writeError(w, status, code, message(err))
		return
	}

	b, err := json.Marshal(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(b),
			},
		},
	})
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps an error to the HTTP status and the error code of the
// reply.
func classify(err error) (int, string) {
	switch errcode.CodeOf(err) {
	case errcode.ValidationError:
		return http.StatusUnprocessableEntity, "validation_error"
	case errcode.ReferenceDataGap:
		return http.StatusUnprocessableEntity, "reference_data_gap"
	case errcode.NotFoundError:
		return http.StatusNotFound, "not_found"
	case errcode.ExternalServiceFailure:
		return http.StatusBadGateway, "external_service_failure"
	}
	var perr paramsError
	if errors.As(err, &perr) {
		return http.StatusBadRequest, "bad_request"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, "cancelled"
	}
	return http.StatusInternalServerError, "internal"
}

func message(err error) string {
	var gnErr *gn.Error
	if errors.As(err, &gnErr) && gnErr.Err != nil {
		return gnErr.Err.Error()
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Cannot encode response", "error", err)
	}
}
