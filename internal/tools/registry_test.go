package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

type fakeTool struct {
	name  string
	delay time.Duration
}

func (t *fakeTool) Name() string { return t.name }
func (t *fakeTool) Description() string { return "fake tool" }
func (t *fakeTool) Schema() json.RawMessage { return json.RawMessage(`{"type":"object"}`) }
func (t *fakeTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if t.delay > 0 {
		select {
		case <-time.After(t.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return map[string]string{"tool": t.name}, nil
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeTool{name: "a"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := r.Register(&fakeTool{name: "a"}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry()
	_, err := r.Execute(context.Background(), "nope", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Unknown tool: nope" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestRegistryListSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(&fakeTool{name: name}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	names := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestExecuteWithTimeout(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "slow", delay: time.Second})

	_, err := r.ExecuteWithTimeout(context.Background(), "slow", nil, 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExecuteWithTimeoutPassesResult(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "fast"})

	result, err := r.ExecuteWithTimeout(context.Background(), "fast", nil, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(map[string]string)["tool"] != "fast" {
		t.Errorf("unexpected result: %v", result)
	}
}
