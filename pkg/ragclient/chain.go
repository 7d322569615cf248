package ragclient

import (
	"context"
	"fmt"
)

// Chain tries backends in order until one answers. This replaces nested
// try/catch fallbacks with an explicit ordered list sharing one attempt
// contract.
type Chain struct {
	backends []Backend
	onError  func(backend string, err error)
}

func NewChain(onError func(backend string, err error), backends ...Backend) *Chain {
	if onError == nil {
		onError = func(string, error) {}
	}
	return &Chain{
		backends: backends,
		onError:  onError,
	}
}

// Query walks the chain. The returned result is tagged with the serving
// backend's name. When every backend fails the last error is returned; the
// caller owns the degraded-mode response shape.
func (c *Chain) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	var lastErr error
	for _, backend := range c.backends {
		result, err := backend.Query(ctx, req)
		if err != nil {
			c.onError(backend.Name(), err)
			lastErr = err
			continue
		}
		result.Service = backend.Name()
		return result, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no backends configured")
	}
	return nil, lastErr
}

// Health reports the first healthy backend's name, or an error when none
// respond.
func (c *Chain) Health(ctx context.Context) (string, error) {
	var lastErr error
	for _, backend := range c.backends {
		if err := backend.Health(ctx); err != nil {
			lastErr = err
			continue
		}
		return backend.Name(), nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no backends configured")
	}
	return "", lastErr
}
