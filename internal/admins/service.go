package admins

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultCheckTimeout = 5 * time.Second

type allowList interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Checker answers whether an authenticated subject may use the admin panel.
type Checker struct {
	list    allowList
	timeout time.Duration
}

// NewChecker bounds every lookup by timeout; non-positive values use 5s.
func NewChecker(list allowList, timeout time.Duration) (*Checker, error) {
	if list == nil {
		return nil, fmt.Errorf("admin allow-list required")
	}
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return &Checker{list: list, timeout: timeout}, nil
}

// IsAdmin returns false together with the cause when the lookup fails or times out.
func (c *Checker) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		ok  bool
		err error
	}
	done := make(chan result, 1)
	go func() {
		ok, err := c.list.Exists(ctx, userID)
		done <- result{ok: ok, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return false, fmt.Errorf("check admin allow-list: %w", res.err)
		}
		return res.ok, nil
	case <-ctx.Done():
		return false, fmt.Errorf("check admin allow-list: %w", ctx.Err())
	}
}
