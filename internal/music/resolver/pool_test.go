package resolver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Redini/DiscordBot/internal/music/track"
)

type resolverFunc func(ctx context.Context, query string) ([]*track.Track, error)

func (f resolverFunc) Resolve(ctx context.Context, query string) ([]*track.Track, error) {
	return f(ctx, query)
}

func TestPoolReturnsResults(t *testing.T) {
	pool := NewPool(resolverFunc(func(ctx context.Context, query string) ([]*track.Track, error) {
		if query == "missing" {
			return nil, ErrNoResults
		}
		return []*track.Track{{Title: query}}, nil
	}), 2)
	defer pool.Close()

	tracks, err := pool.Resolve(context.Background(), "song")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "song", tracks[0].Title)

	_, err = pool.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const workers = 2

	var inFlight, peak atomic.Int32
	gate := make(chan struct{})

	pool := NewPool(resolverFunc(func(ctx context.Context, query string) ([]*track.Track, error) {
		n := inFlight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		<-gate
		inFlight.Add(-1)
		return []*track.Track{{Title: query}}, nil
	}), workers)
	defer pool.Close()

	var wg sync.WaitGroup
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pool.Resolve(context.Background(), "q")
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return inFlight.Load() == workers }, time.Second, 5*time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(workers), peak.Load())
}

func TestPoolAbandonedResultIsDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.m4a")
	started := make(chan struct{})
	release := make(chan struct{})

	pool := NewPool(resolverFunc(func(ctx context.Context, query string) ([]*track.Track, error) {
		require.NoError(t, os.WriteFile(path, []byte("audio"), 0o644))
		close(started)
		<-release
		return []*track.Track{{Title: "late", Path: path}}, nil
	}), 1)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := pool.Resolve(ctx, "late")
		errCh <- err
	}()

	<-started
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	}, time.Second, 5*time.Millisecond)
}

func TestPoolClosed(t *testing.T) {
	pool := NewPool(resolverFunc(func(ctx context.Context, query string) ([]*track.Track, error) {
		return nil, nil
	}), 1)
	pool.Close()

	_, err := pool.Resolve(context.Background(), "q")
	assert.ErrorIs(t, err, ErrPoolClosed)
}
