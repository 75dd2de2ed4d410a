package gateway

import "context"

// Interface sends one user message to the assistant gateway and returns its
// text reply.
type Interface interface {
	Send(ctx context.Context, message string) (string, error)
}
