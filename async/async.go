// Package async runs named units of work, either inline or in a goroutine.
// Code that may run work in the background takes a Goer,
// so tests can pass Sync and assert on the results right away.
package async

import (
	"context"
	"fmt"
	"sync"

	"github.com/lithictech/go-profiles/logctx"
)

type Goer func(ctx context.Context, name string, f func(ctx context.Context))

// Sync runs f on the calling goroutine.
func Sync(ctx context.Context, _ string, f func(ctx context.Context)) {
	f(ctx)
}

// Async runs f in a new goroutine.
// A panic in f is logged with the name of the work, and does not crash the process.
func Async(ctx context.Context, name string, f func(ctx context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logctx.Logger(ctx).
					WithField("goroutine", name).
					WithField("panic", fmt.Sprintf("%v", r)).
					Error("goroutine_panicked")
			}
		}()
		f(ctx)
	}()
}

// Spying wraps a Goer and records the names it was called with.
type Spying struct {
	Inner     Goer
	Calls     []string
	CallCount int
	mu        sync.Mutex
}

func NewSpying(inner Goer) *Spying {
	return &Spying{Inner: inner}
}

func (s *Spying) Go(ctx context.Context, name string, f func(ctx context.Context)) {
	s.mu.Lock()
	s.Calls = append(s.Calls, name)
	s.CallCount++
	s.mu.Unlock()
	s.Inner(ctx, name, f)
}
