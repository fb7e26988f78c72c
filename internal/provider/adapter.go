package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Adapter errors. Adapters never return these to their caller; they are
// used inside fetch functions to classify why a source produced nothing.
var (
	// ErrStructureMissing means the upstream document was fetched but the
	// expected shape (JSON path, captioned table, infobox) was absent.
	ErrStructureMissing = errors.New("expected structure not found")

	// ErrNoRecords means the expected shape was present but yielded no
	// usable records.
	ErrNoRecords = errors.New("no usable records")
)

// Adapter fetches one dataset from exactly one provider and returns it in
// canonical form. Fetch never fails: any transport, shape, or parse problem
// yields the zero value of T, which a Chain treats as empty.
type Adapter[T any] interface {
	Name() string
	Fetch(ctx context.Context) T
}

// FetchFunc is the fallible fetch-and-normalize step behind an Adapter.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// guardedAdapter turns a FetchFunc into an Adapter that swallows errors and
// panics, logging them for operability only.
type guardedAdapter[T any] struct {
	name   string
	fetch  FetchFunc[T]
	logger *slog.Logger
}

// NewAdapter wraps fetch so that it honours the Adapter contract.
func NewAdapter[T any](name string, fetch FetchFunc[T], logger *slog.Logger) Adapter[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &guardedAdapter[T]{name: name, fetch: fetch, logger: logger}
}

func (a *guardedAdapter[T]) Name() string { return a.name }

func (a *guardedAdapter[T]) Fetch(ctx context.Context) (out T) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Source panicked", "source", a.name, "panic", fmt.Sprint(r))
			var zero T
			out = zero
		}
	}()

	v, err := a.fetch(ctx)
	if err != nil {
		switch {
		case errors.Is(err, ErrStructureMissing):
			a.logger.Warn("Source structure not found",
				"source", a.name, "reason", "structure_missing", "error", err)
		case errors.Is(err, ErrNoRecords):
			a.logger.Info("Source returned no records", "source", a.name, "error", err)
		default:
			a.logger.Warn("Source fetch failed", "source", a.name, "error", err)
		}
		var zero T
		return zero
	}
	return v
}

// StaticAdapter always returns a named, versioned snapshot. It terminates
// every Chain so that resolution can never come back empty.
type StaticAdapter[T any] struct {
	name    string
	version string
	build   func() T
}

// NewStatic creates a static adapter. build is called on every Fetch so each
// resolution gets a fresh copy.
func NewStatic[T any](name, version string, build func() T) *StaticAdapter[T] {
	return &StaticAdapter[T]{name: name, version: version, build: build}
}

func (s *StaticAdapter[T]) Name() string { return s.name + "@" + s.version }

// Version identifies the snapshot the static data was taken from.
func (s *StaticAdapter[T]) Version() string { return s.version }

func (s *StaticAdapter[T]) Fetch(context.Context) T { return s.build() }
