package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNoTerminalFallback is returned when a chain is built without a
// non-empty static adapter at its tail. This is a configuration defect.
var ErrNoTerminalFallback = errors.New("chain has no terminal static fallback")

// Resolution is the outcome of running a Chain.
type Resolution[T any] struct {
	Value    T
	Source   string // name of the adapter that produced Value
	Attempts int    // adapters invoked, including the winner
	Fallback bool   // true when the static tail produced Value
	Duration time.Duration
}

// Chain tries adapters strictly in order and accepts the first non-empty
// result. Its last adapter is always static, so Resolve never returns an
// empty value.
type Chain[T any] struct {
	kind     string
	live     []Adapter[T]
	fallback *StaticAdapter[T]
	isEmpty  func(T) bool
	logger   *slog.Logger
}

// NewChain builds a chain for one dataset kind. The final adapter must be a
// *StaticAdapter whose value is non-empty.
func NewChain[T any](kind string, isEmpty func(T) bool, logger *slog.Logger, adapters ...Adapter[T]) (*Chain[T], error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("%s: %w", kind, ErrNoTerminalFallback)
	}
	tail, ok := adapters[len(adapters)-1].(*StaticAdapter[T])
	if !ok {
		return nil, fmt.Errorf("%s: last adapter %q is not static: %w",
			kind, adapters[len(adapters)-1].Name(), ErrNoTerminalFallback)
	}
	if isEmpty(tail.Fetch(context.Background())) {
		return nil, fmt.Errorf("%s: static adapter %q is empty: %w", kind, tail.Name(), ErrNoTerminalFallback)
	}
	return &Chain[T]{
		kind:     kind,
		live:     adapters[:len(adapters)-1],
		fallback: tail,
		isEmpty:  isEmpty,
		logger:   logger.With("dataset", kind),
	}, nil
}

// Kind returns the dataset kind this chain resolves.
func (c *Chain[T]) Kind() string { return c.kind }

// Sources lists adapter names in invocation order, static tail last.
func (c *Chain[T]) Sources() []string {
	names := make([]string, 0, len(c.live)+1)
	for _, a := range c.live {
		names = append(names, a.Name())
	}
	return append(names, c.fallback.Name())
}

// Fallback returns the static tail's value without touching the network.
func (c *Chain[T]) Fallback() T {
	return c.fallback.Fetch(context.Background())
}

// Resolve runs the chain. Adapters run sequentially; the next one is only
// invoked when the current one returned empty. A cancelled context skips
// the remaining live adapters and goes straight to the static tail.
func (c *Chain[T]) Resolve(ctx context.Context) Resolution[T] {
	start := time.Now()
	attempts := 0

	for _, a := range c.live {
		if ctx.Err() != nil {
			c.logger.Warn("Context done, skipping live sources", "error", ctx.Err())
			break
		}
		attempts++
		v := a.Fetch(ctx)
		if !c.isEmpty(v) {
			c.logger.Info("Dataset resolved", "source", a.Name(), "attempts", attempts)
			return Resolution[T]{
				Value:    v,
				Source:   a.Name(),
				Attempts: attempts,
				Duration: time.Since(start),
			}
		}
		c.logger.Debug("Source empty, advancing", "source", a.Name())
	}

	attempts++
	c.logger.Warn("All live sources empty, using static fallback",
		"source", c.fallback.Name(), "attempts", attempts)
	return Resolution[T]{
		Value:    c.fallback.Fetch(ctx),
		Source:   c.fallback.Name(),
		Attempts: attempts,
		Fallback: true,
		Duration: time.Since(start),
	}
}

// IsEmptySlice is the emptiness test for list datasets.
func IsEmptySlice[E any](s []E) bool { return len(s) == 0 }
