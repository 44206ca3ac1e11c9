package contextutil

import (
	"context"
	"time"
)

// WithTimeout wraps parent with a timeout; d<=0 returns parent unchanged with
// a no-op cancel. A nil parent is treated as context.Background().
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if d <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, d)
}
