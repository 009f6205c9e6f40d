package queue

import (
	"errors"
	"iter"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/Redini/DiscordBot/internal/music/track"
)

var ErrInvalidPosition = errors.New("invalid position in the queue")

// Queue is the FIFO of tracks waiting to be played in one guild.
// It is safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	items []*track.Track
}

func New() *Queue {
	return &Queue{items: make([]*track.Track, 0)}
}

// Enqueue appends tracks to the tail, keeping their order.
func (q *Queue) Enqueue(items ...*track.Track) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// PopFront removes and returns the head of the queue.
func (q *Queue) PopFront() (*track.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	head := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return head, true
}

// RemoveAt removes the track at the 1-based position.
func (q *Queue) RemoveAt(position int) (*track.Track, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if position < 1 || position > len(q.items) {
		return nil, ErrInvalidPosition
	}
	removed := q.items[position-1]
	q.items = slices.Delete(q.items, position-1, position)
	return removed, nil
}

// Shuffle permutes the queue. It reports false and leaves the queue alone
// when there is nothing to shuffle.
func (q *Queue) Shuffle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) < 2 {
		return false
	}
	rand.Shuffle(len(q.items), func(i, j int) {
		q.items[i], q.items[j] = q.items[j], q.items[i]
	})
	return true
}

// Clear empties the queue and hands the dropped tracks back to the caller.
func (q *Queue) Clear() []*track.Track {
	q.mu.Lock()
	defer q.mu.Unlock()

	dropped := q.items
	q.items = make([]*track.Track, 0)
	return dropped
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Items returns a copy of the queued tracks in play order.
func (q *Queue) Items() []*track.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

// Entry is one line of a queue listing.
type Entry struct {
	Position int
	Title    string
}

// Page is a slice of the queue listing.
type Page struct {
	Number  int
	Total   int
	Entries []Entry
}

// Pages snapshots the queue and yields it pageSize entries at a time.
// The sequence can be ranged over any number of times.
func (q *Queue) Pages(pageSize int) iter.Seq[Page] {
	if pageSize < 1 {
		pageSize = 1
	}
	items := q.Items()
	total := (len(items) + pageSize - 1) / pageSize

	return func(yield func(Page) bool) {
		for n := 0; n < total; n++ {
			start := n * pageSize
			end := min(start+pageSize, len(items))

			page := Page{Number: n + 1, Total: total, Entries: make([]Entry, 0, end-start)}
			for i, t := range items[start:end] {
				page.Entries = append(page.Entries, Entry{Position: start + i + 1, Title: t.DisplayTitle()})
			}
			if !yield(page) {
				return
			}
		}
	}
}
