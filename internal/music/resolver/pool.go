package resolver

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Redini/DiscordBot/internal/music/track"
)

type job struct {
	ctx    context.Context
	query  string
	result chan outcome
}

type outcome struct {
	tracks []*track.Track
	err    error
}

// Pool runs resolutions on a fixed set of workers. Callers queue up in
// arrival order and block until a worker takes their job.
type Pool struct {
	next Resolver
	jobs chan job

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewPool(next Resolver, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		next: next,
		jobs: make(chan job),
		done: make(chan struct{}),
	}
	for id := range workers {
		p.wg.Add(1)
		go p.worker(id)
	}
	log.Printf("[Resolver] Started %d workers", workers)
	return p
}

// Resolve hands query to the next free worker and waits for its result.
// Giving up through ctx discards whatever the worker downloads.
func (p *Pool) Resolve(ctx context.Context, query string) ([]*track.Track, error) {
	j := job{ctx: ctx, query: query, result: make(chan outcome)}

	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return nil, ErrPoolClosed
	}

	select {
	case out := <-j.result:
		return out.tracks, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the workers after their current job.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case j := <-p.jobs:
			p.run(id, j)
		}
	}
}

func (p *Pool) run(id int, j job) {
	if j.ctx.Err() != nil {
		return
	}

	start := time.Now()
	tracks, err := p.next.Resolve(j.ctx, j.query)
	if err != nil {
		log.Printf("[Resolver] Worker %d failed %q after %v: %v", id, j.query, time.Since(start), err)
	} else {
		log.Printf("[Resolver] Worker %d resolved %q into %d track(s) in %v", id, j.query, len(tracks), time.Since(start))
	}

	select {
	case j.result <- outcome{tracks: tracks, err: err}:
	case <-j.ctx.Done():
		Discard(tracks)
	}
}
