package rpc

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Version is the JSON-RPC protocol version spoken by all providers.
const Version = "2.0"

// MethodGetHealth is the cheap health probe method Solana RPC nodes
// answer without touching ledger state.
const MethodGetHealth = "getHealth"

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// NewRequest builds a request envelope with a fresh UUID correlation ID.
func NewRequest(method string, params any) Request {
	return Request{
		JSONRPC: Version,
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}
}

// Response is a JSON-RPC 2.0 response envelope. Exactly one of Result
// and Error is set on a well-formed response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// ErrorObject is the JSON-RPC 2.0 error member.
type ErrorObject struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}
