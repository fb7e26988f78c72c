// Package resolver is the entry point of the pipeline. It decides between
// stored snapshots and live resolution, runs chains concurrently on refresh,
// and persists results one dataset at a time.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/scoracle-feeds/internal/dataset"
	"github.com/albapepper/scoracle-feeds/internal/snapshot"
)

// ErrPersist wraps store failures from GetSnapshot, RefreshSnapshot and
// SaveManual. The returned Snapshot is still complete when this error is
// reported.
var ErrPersist = errors.New("snapshot not persisted")

// Origin says where one dataset in a Snapshot came from.
type Origin string

const (
	OriginStored   Origin = "stored"   // read back from the snapshot store
	OriginLive     Origin = "live"     // produced by a live adapter
	OriginFallback Origin = "fallback" // produced by the static tail
	OriginManual   Origin = "manual"   // just written by SaveManual
)

// Meta describes one dataset in a Snapshot.
type Meta struct {
	Origin   Origin `json:"origin"`
	Source   string `json:"source,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
}

// Snapshot is a set of dataset documents keyed by kind.
type Snapshot struct {
	Datasets   map[dataset.Kind]json.RawMessage `json:"datasets"`
	Meta       map[dataset.Kind]Meta            `json:"meta"`
	Override   bool                             `json:"override"`
	ResolvedAt time.Time                        `json:"resolved_at"`
}

func newSnapshot(n int) Snapshot {
	return Snapshot{
		Datasets:   make(map[dataset.Kind]json.RawMessage, n),
		Meta:       make(map[dataset.Kind]Meta, n),
		ResolvedAt: time.Now().UTC(),
	}
}

// Kinds returns the snapshot's kinds in canonical order.
func (s Snapshot) Kinds() []dataset.Kind {
	var out []dataset.Kind
	for _, k := range dataset.All() {
		if _, ok := s.Datasets[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Resolver implements the read, preview, refresh and manual save paths.
type Resolver struct {
	registry *dataset.Registry
	store    snapshot.Store
	logger   *slog.Logger

	mu        sync.Mutex
	listeners []func(kinds []dataset.Kind)
}

// New creates a resolver.
func New(registry *dataset.Registry, store snapshot.Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{registry: registry, store: store, logger: logger}
}

// OnChange registers fn to run after any kinds were written to the store.
func (r *Resolver) OnChange(fn func(kinds []dataset.Kind)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Resolver) notify(kinds []dataset.Kind) {
	if len(kinds) == 0 {
		return
	}
	r.mu.Lock()
	listeners := append([]func([]dataset.Kind){}, r.listeners...)
	r.mu.Unlock()
	for _, fn := range listeners {
		fn(kinds)
	}
}

func (r *Resolver) resolvables(kinds []dataset.Kind) ([]dataset.Resolvable, error) {
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no dataset kinds requested: %w", dataset.ErrUnknownKind)
	}
	out := make([]dataset.Resolvable, 0, len(kinds))
	for _, k := range kinds {
		res, err := r.registry.Get(k)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// stored reads every kind from the store. complete is false as soon as one
// kind is absent; store read errors count as absent.
func (r *Resolver) stored(ctx context.Context, kinds []dataset.Kind) (docs map[dataset.Kind]json.RawMessage, complete bool) {
	docs = make(map[dataset.Kind]json.RawMessage, len(kinds))
	complete = true
	for _, k := range kinds {
		doc, err := r.store.Get(ctx, string(k))
		if err != nil {
			if !errors.Is(err, snapshot.ErrNotFound) {
				r.logger.Warn("Snapshot read failed", "dataset", k, "error", err)
			}
			complete = false
			continue
		}
		docs[k] = doc
	}
	return docs, complete
}

// GetSnapshot returns the stored documents verbatim when every requested
// kind is stored. Otherwise every kind is resolved live and each result is
// written back; a partial stored set never overrides anything. Store
// failures are reported as ErrPersist alongside the resolved snapshot.
func (r *Resolver) GetSnapshot(ctx context.Context, kinds []dataset.Kind) (Snapshot, error) {
	rs, err := r.resolvables(kinds)
	if err != nil {
		return Snapshot{}, err
	}

	docs, complete := r.stored(ctx, kinds)
	if complete {
		snap := newSnapshot(len(kinds))
		snap.Override = true
		for k, doc := range docs {
			snap.Datasets[k] = doc
			snap.Meta[k] = Meta{Origin: OriginStored}
		}
		r.logger.Info("Serving stored snapshot", "datasets", dataset.Strings(kinds))
		return snap, nil
	}

	if len(docs) > 0 {
		r.logger.Info("Incomplete stored snapshot, resolving live",
			"stored", len(docs), "requested", len(kinds))
	}
	snap, written, err := r.resolveAll(ctx, rs)
	r.notify(written)
	return snap, err
}

// PreviewLiveData is GetSnapshot under the operator-facing name.
func (r *Resolver) PreviewLiveData(ctx context.Context, kinds []dataset.Kind) (Snapshot, error) {
	return r.GetSnapshot(ctx, kinds)
}

// RefreshSnapshot ignores stored documents, runs every chain concurrently
// and writes each result back as soon as it is resolved. Store failures are
// joined into an ErrPersist error; the snapshot is returned regardless.
func (r *Resolver) RefreshSnapshot(ctx context.Context, kinds []dataset.Kind) (Snapshot, error) {
	rs, err := r.resolvables(kinds)
	if err != nil {
		return Snapshot{}, err
	}
	snap, written, err := r.resolveAll(ctx, rs)
	r.notify(written)
	return snap, err
}

// RefreshAndSave is RefreshSnapshot under the operator-facing name.
func (r *Resolver) RefreshAndSave(ctx context.Context, kinds []dataset.Kind) (Snapshot, error) {
	return r.RefreshSnapshot(ctx, kinds)
}

// resolveAll runs every chain concurrently and writes each result back as
// soon as it resolves.
func (r *Resolver) resolveAll(ctx context.Context, rs []dataset.Resolvable) (Snapshot, []dataset.Kind, error) {
	start := time.Now()
	snap := newSnapshot(len(rs))

	var (
		mu       sync.Mutex
		written  []dataset.Kind
		putErrs  []error
		resolved = make([]dataset.Result, len(rs))
	)

	// Resolution errors abort the group; store errors only get collected.
	g, gctx := errgroup.WithContext(ctx)
	for i, res := range rs {
		g.Go(func() error {
			out, err := res.Resolve(gctx)
			if err != nil {
				return err
			}
			resolved[i] = out
			// Persist with the caller's context so a failing sibling
			// cannot cancel a completed write.
			if err := r.store.Put(ctx, string(out.Kind), out.Document); err != nil {
				r.logger.Error("Snapshot write failed", "dataset", out.Kind, "error", err)
				mu.Lock()
				putErrs = append(putErrs, fmt.Errorf("%s: %w", out.Kind, err))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			written = append(written, out.Kind)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, written, fmt.Errorf("resolve datasets: %w", err)
	}

	fallbacks := 0
	for _, out := range resolved {
		origin := OriginLive
		if out.Fallback {
			origin = OriginFallback
			fallbacks++
		}
		snap.Datasets[out.Kind] = out.Document
		snap.Meta[out.Kind] = Meta{Origin: origin, Source: out.Source, Attempts: out.Attempts}
	}
	sort.Slice(written, func(i, j int) bool { return written[i] < written[j] })

	r.logger.Info("Datasets resolved",
		"datasets", len(rs), "fallbacks", fallbacks, "persisted", len(written),
		"write_failures", len(putErrs), "duration_ms", time.Since(start).Milliseconds())

	if len(putErrs) > 0 {
		return snap, written, fmt.Errorf("%w: %w", ErrPersist, errors.Join(putErrs...))
	}
	return snap, written, nil
}

// GetCurrentSnapshot reads persisted documents without touching the network.
// Kinds never stored are served from their static fallback.
func (r *Resolver) GetCurrentSnapshot(ctx context.Context, kinds []dataset.Kind) (Snapshot, error) {
	rs, err := r.resolvables(kinds)
	if err != nil {
		return Snapshot{}, err
	}
	docs, _ := r.stored(ctx, kinds)

	snap := newSnapshot(len(kinds))
	for _, res := range rs {
		k := res.Kind()
		if doc, ok := docs[k]; ok {
			snap.Datasets[k] = doc
			snap.Meta[k] = Meta{Origin: OriginStored}
			continue
		}
		doc, err := res.Fallback()
		if err != nil {
			return Snapshot{}, err
		}
		sources := res.Sources()
		snap.Datasets[k] = doc
		snap.Meta[k] = Meta{Origin: OriginFallback, Source: sources[len(sources)-1]}
	}
	snap.Override = len(docs) == len(kinds)
	return snap, nil
}

// ErrInvalid wraps validation failures from SaveManual. Nothing is written
// when it is returned.
var ErrInvalid = errors.New("invalid manual snapshot")

// SaveManual validates every document against its kind's canonical shape,
// then writes each straight to the store, bypassing the chains. Documents
// are stored byte for byte.
func (r *Resolver) SaveManual(ctx context.Context, datasets map[dataset.Kind]json.RawMessage) (Snapshot, error) {
	if len(datasets) == 0 {
		return Snapshot{}, fmt.Errorf("%w: no datasets given", ErrInvalid)
	}

	var problems []error
	for k, doc := range datasets {
		res, err := r.registry.Get(k)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		if err := res.Validate(doc); err != nil {
			problems = append(problems, err)
		}
	}
	if len(problems) > 0 {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalid, errors.Join(problems...))
	}

	snap := newSnapshot(len(datasets))
	var (
		written []dataset.Kind
		putErrs []error
	)
	for _, k := range sortedKinds(datasets) {
		doc := datasets[k]
		snap.Datasets[k] = doc
		snap.Meta[k] = Meta{Origin: OriginManual}
		if err := r.store.Put(ctx, string(k), doc); err != nil {
			r.logger.Error("Manual snapshot write failed", "dataset", k, "error", err)
			putErrs = append(putErrs, fmt.Errorf("%s: %w", k, err))
			continue
		}
		written = append(written, k)
	}
	r.notify(written)

	r.logger.Info("Manual snapshot saved", "datasets", dataset.Strings(written), "failures", len(putErrs))
	if len(putErrs) > 0 {
		return snap, fmt.Errorf("%w: %w", ErrPersist, errors.Join(putErrs...))
	}
	return snap, nil
}

// StoredKinds lists the kinds that currently have a stored document.
func (r *Resolver) StoredKinds(ctx context.Context) ([]dataset.Kind, error) {
	keys, err := r.store.Keys(ctx)
	if err != nil {
		return nil, err
	}
	var kinds []dataset.Kind
	for _, key := range keys {
		if k, err := dataset.ParseKind(key); err == nil {
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

// Sources lists each kind's chain in invocation order.
func (r *Resolver) Sources() map[dataset.Kind][]string {
	out := make(map[dataset.Kind][]string)
	for _, k := range r.registry.Kinds() {
		if res, err := r.registry.Get(k); err == nil {
			out[k] = res.Sources()
		}
	}
	return out
}

func sortedKinds(m map[dataset.Kind]json.RawMessage) []dataset.Kind {
	kinds := make([]dataset.Kind, 0, len(m))
	for k := range m {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
