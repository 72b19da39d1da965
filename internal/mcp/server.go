package mcp

import (
	"context"
	"encoding/json"

	"github.com/layrpay/layrpay-mcp/internal/tools"
	"github.com/layrpay/layrpay-mcp/pkg/protocol"
)

type Server struct {
	registry *tools.Registry
	handler  *Handler
}

func NewServer(registry *tools.Registry) *Server {
	return &Server{
		registry: registry,
		handler:  NewHandler(registry),
	}
}

func (s *Server) HandleRequest(ctx context.Context, req *Request) *Response {
	return s.handler.Handle(ctx, req)
}

// HandleMessage parses one raw JSON-RPC message and routes it. A body
// that does not parse yields a -32700 response with a null id; a
// notification yields nil.
func (s *Server) HandleMessage(ctx context.Context, raw []byte) *Response {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return &Response{
			JSONRPC: "2.0",
			ID:      nil,
			Error: &protocol.JSONRPCError{
				Code:    protocol.CodeParseError,
				Message: "Parse error",
			},
		}
	}

	return s.HandleRequest(ctx, &req)
}

func (s *Server) Registry() *tools.Registry {
	return s.registry
}
