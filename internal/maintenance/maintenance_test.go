package maintenance

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-feeds/internal/dataset"
	"github.com/albapepper/scoracle-feeds/internal/resolver"
)

type fakeRefresher struct {
	mu     sync.Mutex
	stored []dataset.Kind
	calls  [][]dataset.Kind
	err    error
}

func (f *fakeRefresher) RefreshSnapshot(_ context.Context, kinds []dataset.Kind) (resolver.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, kinds)
	return resolver.Snapshot{}, f.err
}

func (f *fakeRefresher) StoredKinds(context.Context) ([]dataset.Kind, error) {
	return f.stored, nil
}

func (f *fakeRefresher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSeedMissingOnlyRefreshesUnstoredKinds(t *testing.T) {
	f := &fakeRefresher{stored: []dataset.Kind{dataset.DriverStandings}}
	f1, err := dataset.Group(dataset.GroupF1)
	require.NoError(t, err)

	missing := SeedMissing(context.Background(), f, f1, discard())
	assert.Equal(t, []dataset.Kind{dataset.ConstructorStandings, dataset.RecentRace}, missing)
	require.Len(t, f.calls, 1)
	assert.Equal(t, missing, f.calls[0])
}

func TestSeedMissingNoopWhenEverythingStored(t *testing.T) {
	f := &fakeRefresher{stored: dataset.All()}
	assert.Nil(t, SeedMissing(context.Background(), f, dataset.All(), discard()))
	assert.Zero(t, f.callCount())
}

func TestStartRefreshesOnEveryTickUntilCancelled(t *testing.T) {
	f := &fakeRefresher{err: resolver.ErrPersist}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Start(ctx, f, Config{RefreshInterval: 10 * time.Millisecond, Datasets: []dataset.Kind{dataset.Squad}}, discard())
		close(done)
	}()

	assert.Eventually(t, func() bool { return f.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestStartWithZeroIntervalOnlyWaits(t *testing.T) {
	f := &fakeRefresher{}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	Start(ctx, f, Config{Datasets: dataset.All()}, discard())
	assert.Zero(t, f.callCount())
}
