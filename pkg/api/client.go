package api

import "context"

// RemoteClient is the boundary to the remote-call collaborator (for
// example an LLM API client). The engine forwards the configured client
// into every executor and never interprets results; transient retry
// behavior (503/Retry-After backoff and the like) is internal to the
// client and invisible to the scheduler.
type RemoteClient interface {
	Call(ctx context.Context, method string, payload any) (any, error)
}

// RemoteClientFunc adapts a plain function to the RemoteClient interface.
type RemoteClientFunc func(ctx context.Context, method string, payload any) (any, error)

func (f RemoteClientFunc) Call(ctx context.Context, method string, payload any) (any, error) {
	return f(ctx, method, payload)
}
