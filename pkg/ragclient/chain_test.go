package ragclient

import (
	"context"
	"errors"
	"testing"
)

type stubBackend struct {
	name   string
	fail   bool
	called bool
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Query(_ context.Context, _ QueryRequest) (*QueryResult, error) {
	s.called = true
	if s.fail {
		return nil, errors.New(s.name + " down")
	}
	return &QueryResult{Answer: "answer from " + s.name}, nil
}

func (s *stubBackend) Health(_ context.Context) error {
	if s.fail {
		return errors.New(s.name + " down")
	}
	return nil
}

func TestChainUsesPrimaryWhenHealthy(t *testing.T) {
	primary := &stubBackend{name: "railway"}
	fallback := &stubBackend{name: "fallback"}
	chain := NewChain(nil, primary, fallback)

	result, err := chain.Query(context.Background(), QueryRequest{Query: "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Service != "railway" {
		t.Errorf("service tag = %q, want railway", result.Service)
	}
	if fallback.called {
		t.Error("fallback must not run when primary succeeds")
	}
}

func TestChainFallsBackInOrder(t *testing.T) {
	primary := &stubBackend{name: "railway", fail: true}
	fallback := &stubBackend{name: "fallback"}

	var reported []string
	chain := NewChain(func(backend string, _ error) {
		reported = append(reported, backend)
	}, primary, fallback)

	result, err := chain.Query(context.Background(), QueryRequest{Query: "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Service != "fallback" {
		t.Errorf("service tag = %q, want fallback", result.Service)
	}
	if len(reported) != 1 || reported[0] != "railway" {
		t.Errorf("error reports = %v, want [railway]", reported)
	}
}

func TestChainAllBackendsFail(t *testing.T) {
	chain := NewChain(nil,
		&stubBackend{name: "railway", fail: true},
		&stubBackend{name: "fallback", fail: true},
	)

	if _, err := chain.Query(context.Background(), QueryRequest{Query: "q"}); err == nil {
		t.Fatal("expected error when every backend fails")
	}
}

func TestChainHealth(t *testing.T) {
	chain := NewChain(nil,
		&stubBackend{name: "railway", fail: true},
		&stubBackend{name: "fallback"},
	)

	name, err := chain.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "fallback" {
		t.Errorf("healthy backend = %q, want fallback", name)
	}
}
