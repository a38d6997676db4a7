// Package rpctest provides a scriptable JSON-RPC server for client and
// command tests.
package rpctest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Reply describes one canned response.
type Reply struct {
	// Status is the HTTP status code. Zero means 200.
	Status int

	// Result is marshaled into the JSON-RPC result member.
	Result any

	// ErrorCode and ErrorMessage populate the JSON-RPC error member when
	// ErrorCode is non-zero. The HTTP exchange still succeeds.
	ErrorCode    int
	ErrorMessage string

	// RawBody, when set, is written verbatim instead of an envelope.
	// Used to simulate malformed responses.
	RawBody string

	// Delay is slept before responding. Used to trigger client timeouts.
	Delay time.Duration
}

// Result returns a successful reply carrying the given result value.
func Result(v any) Reply {
	return Reply{Result: v}
}

// RPCError returns a reply whose envelope carries a JSON-RPC error
// member.
func RPCError(code int, message string) Reply {
	return Reply{ErrorCode: code, ErrorMessage: message}
}

// HTTPError returns a reply that fails the HTTP exchange with the given
// status code.
func HTTPError(status int) Reply {
	return Reply{Status: status}
}

// request is a decoded JSON-RPC request envelope.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// response is the envelope written back to the client.
type response struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      string       `json:"id"`
	Result  any          `json:"result,omitempty"`
	Error   *errorObject `json:"error,omitempty"`
}

type errorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Server is a JSON-RPC endpoint whose responses are scripted per method.
// A method's replies are consumed in order with the last one repeating,
// so a script of [HTTPError(500), Result("ok")] fails the first call and
// answers every later one.
type Server struct {
	ts *httptest.Server

	mu      sync.Mutex
	scripts map[string][]Reply
	served  map[string]int
	calls   int
	last    request
}

// NewServer starts a mock JSON-RPC server. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		scripts: make(map[string][]Reply),
		served:  make(map[string]int),
	}
	s.ts = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL returns the server's endpoint URL.
func (s *Server) URL() string {
	return s.ts.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.ts.Close()
}

// Script replaces the reply sequence for a method.
func (s *Server) Script(method string, replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[method] = replies
	s.served[method] = 0
}

// Calls returns the total number of requests received.
func (s *Server) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// MethodCalls returns the number of requests received for one method.
func (s *Server) MethodCalls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.served[method]
}

// LastRequest returns the envelope fields of the most recent request.
func (s *Server) LastRequest() (id, method string, params json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last.ID, s.last.Method, s.last.Params
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls++
	s.last = req
	script, ok := s.scripts[req.Method]
	idx := s.served[req.Method]
	s.served[req.Method]++
	s.mu.Unlock()

	if !ok || len(script) == 0 {
		http.NotFound(w, r)
		return
	}
	if idx >= len(script) {
		idx = len(script) - 1
	}
	reply := script[idx]

	if reply.Delay > 0 {
		time.Sleep(reply.Delay)
	}

	if reply.RawBody != "" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply.RawBody))
		return
	}

	if reply.Status != 0 && (reply.Status < 200 || reply.Status >= 300) {
		http.Error(w, http.StatusText(reply.Status), reply.Status)
		return
	}

	resp := response{JSONRPC: "2.0", ID: req.ID, Result: reply.Result}
	if reply.ErrorCode != 0 {
		resp.Result = nil
		resp.Error = &errorObject{Code: reply.ErrorCode, Message: reply.ErrorMessage}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
