package queue

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Redini/DiscordBot/internal/music/track"
)

func tracks(titles ...string) []*track.Track {
	out := make([]*track.Track, 0, len(titles))
	for _, title := range titles {
		out = append(out, &track.Track{Title: title})
	}
	return out
}

func titles(items []*track.Track) []string {
	out := make([]string, 0, len(items))
	for _, t := range items {
		out = append(out, t.Title)
	}
	return out
}

func TestEnqueuePreservesOrder(t *testing.T) {
	q := New()
	q.Enqueue(tracks("a")...)
	q.Enqueue(tracks("b", "c", "d")...)
	q.Enqueue(tracks("e")...)

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, titles(q.Items()))

	var popped []string
	for {
		item, ok := q.PopFront()
		if !ok {
			break
		}
		popped = append(popped, item.Title)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, popped)
	assert.Equal(t, 0, q.Len())
}

func TestPopFrontEmpty(t *testing.T) {
	q := New()
	item, ok := q.PopFront()
	assert.False(t, ok)
	assert.Nil(t, item)
}

func TestRemoveAt(t *testing.T) {
	tests := []struct {
		name     string
		position int
		removed  string
		want     []string
		err      error
	}{
		{name: "first", position: 1, removed: "a", want: []string{"b", "c"}},
		{name: "middle", position: 2, removed: "b", want: []string{"a", "c"}},
		{name: "last", position: 3, removed: "c", want: []string{"a", "b"}},
		{name: "zero", position: 0, want: []string{"a", "b", "c"}, err: ErrInvalidPosition},
		{name: "negative", position: -1, want: []string{"a", "b", "c"}, err: ErrInvalidPosition},
		{name: "past end", position: 5, want: []string{"a", "b", "c"}, err: ErrInvalidPosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New()
			q.Enqueue(tracks("a", "b", "c")...)

			removed, err := q.RemoveAt(tt.position)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				assert.Nil(t, removed)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.removed, removed.Title)
			}
			assert.Equal(t, tt.want, titles(q.Items()))
		})
	}
}

func TestShuffleSmallQueueIsNoop(t *testing.T) {
	q := New()
	assert.False(t, q.Shuffle())

	q.Enqueue(tracks("only")...)
	assert.False(t, q.Shuffle())
	assert.Equal(t, []string{"only"}, titles(q.Items()))
}

func TestShuffleKeepsItems(t *testing.T) {
	names := make([]string, 0, 20)
	for i := range 20 {
		names = append(names, fmt.Sprintf("song-%02d", i))
	}

	q := New()
	q.Enqueue(tracks(names...)...)

	moved := false
	for range 10 {
		require.True(t, q.Shuffle())
		got := titles(q.Items())
		assert.ElementsMatch(t, names, got)
		if !slices.Equal(names, got) {
			moved = true
		}
	}
	assert.True(t, moved, "ten shuffles of 20 items never changed the order")
}

func TestClearReturnsDropped(t *testing.T) {
	q := New()
	q.Enqueue(tracks("a", "b")...)

	dropped := q.Clear()
	assert.Equal(t, []string{"a", "b"}, titles(dropped))
	assert.Equal(t, 0, q.Len())

	q.Enqueue(tracks("c")...)
	assert.Equal(t, []string{"c"}, titles(q.Items()))
}

func TestPages(t *testing.T) {
	q := New()
	names := make([]string, 0, 23)
	for i := range 23 {
		names = append(names, fmt.Sprintf("t%d", i+1))
	}
	q.Enqueue(tracks(names...)...)

	pages := slices.Collect(q.Pages(10))
	require.Len(t, pages, 3)

	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, 3, pages[0].Total)
	assert.Len(t, pages[0].Entries, 10)
	assert.Equal(t, Entry{Position: 1, Title: "t1"}, pages[0].Entries[0])
	assert.Equal(t, Entry{Position: 11, Title: "t11"}, pages[1].Entries[0])
	assert.Len(t, pages[2].Entries, 3)
	assert.Equal(t, Entry{Position: 23, Title: "t23"}, pages[2].Entries[2])
}

func TestPagesRestartableSnapshot(t *testing.T) {
	q := New()
	q.Enqueue(tracks("a", "b", "c")...)

	seq := q.Pages(2)
	q.Clear()

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "c", first[1].Entries[0].Title)
}

func TestPagesEmpty(t *testing.T) {
	assert.Empty(t, slices.Collect(New().Pages(10)))
}

func TestShuffleAndPopSerialize(t *testing.T) {
	for range 200 {
		q := New()
		q.Enqueue(tracks("a", "b", "c", "d", "e")...)

		var (
			wg     sync.WaitGroup
			popped *track.Track
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			q.Shuffle()
		}()
		go func() {
			defer wg.Done()
			popped, _ = q.PopFront()
		}()
		wg.Wait()

		require.NotNil(t, popped)
		rest := titles(q.Items())
		require.Len(t, rest, 4)
		assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e"}, append(rest, popped.Title))
	}
}
