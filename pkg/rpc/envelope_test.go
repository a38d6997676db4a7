package rpc

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNewRequest_FreshIDs(t *testing.T) {
	a := NewRequest(MethodGetHealth, nil)
	b := NewRequest(MethodGetHealth, nil)

	if a.JSONRPC != Version {
		t.Errorf("Expected protocol version %q, got %q", Version, a.JSONRPC)
	}
	if _, err := uuid.Parse(a.ID); err != nil {
		t.Errorf("Expected a UUID id, got %q", a.ID)
	}
	if a.ID == b.ID {
		t.Errorf("Expected distinct ids per request, both were %q", a.ID)
	}
}

func TestRequest_OmitsEmptyParams(t *testing.T) {
	body, err := json.Marshal(NewRequest(MethodGetHealth, nil))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, ok := fields["params"]; ok {
		t.Error("Expected params to be omitted when nil")
	}
}

func TestResponse_DecodeError(t *testing.T) {
	raw := `{"jsonrpc":"2.0","id":"1","error":{"code":-32005,"message":"node is behind"}}`

	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("Expected the error member to decode")
	}
	if resp.Error.Code != -32005 {
		t.Errorf("Expected code -32005, got %d", resp.Error.Code)
	}
	if resp.Error.Message != "node is behind" {
		t.Errorf("Expected message %q, got %q", "node is behind", resp.Error.Message)
	}
}
