package mcp

import "github.com/layrpay/layrpay-mcp/pkg/protocol"

type Request = protocol.JSONRPCRequest
type Response = protocol.JSONRPCResponse

type InitializeResponse struct {
	ProtocolVersion string      `json:"protocolVersion"`
	Capabilities    interface{} `json:"capabilities"`
	ServerInfo      interface{} `json:"serverInfo"`
}

type ListToolsResponse struct {
	Tools []protocol.Tool `json:"tools"`
}
