package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"remindex/repo"
)

// DebounceDelay is the quiet period after the last keystroke before
// the availability query hits storage.
const DebounceDelay = 350 * time.Millisecond

// AvailabilityResult is the outcome of a username availability check.
type AvailabilityResult struct {
	Username  string
	Available bool
	Err       error
}

// AvailabilityChecker answers "is this username free?" with debounce:
// each Check supersedes the previous one, cancelling it before it can
// touch storage or deliver a result.
type AvailabilityChecker struct {
	users *repo.UserRepo
	delay time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewAvailabilityChecker(users *repo.UserRepo) *AvailabilityChecker {
	return &AvailabilityChecker{users: users, delay: DebounceDelay}
}

// Check schedules an availability lookup for username after the
// debounce delay. The returned channel delivers at most one result and
// is then closed; a superseded or cancelled check closes the channel
// without delivering anything.
func (c *AvailabilityChecker) Check(ctx context.Context, username string) <-chan AvailabilityResult {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.mu.Unlock()

	out := make(chan AvailabilityResult, 1)
	go func() {
		defer close(out)
		defer cancel()

		timer := time.NewTimer(c.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		_, err := c.users.ByUsername(ctx, username)
		if ctx.Err() != nil {
			// Superseded while querying: stay silent
			return
		}

		switch {
		case err == nil:
			out <- AvailabilityResult{Username: username, Available: false}
		case errors.Is(err, repo.ErrNotFound):
			out <- AvailabilityResult{Username: username, Available: true}
		default:
			out <- AvailabilityResult{Username: username, Err: err}
		}
	}()
	return out
}

// Stop cancels any in-flight check.
func (c *AvailabilityChecker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
