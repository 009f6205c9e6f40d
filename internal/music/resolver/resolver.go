// Package resolver turns a user query into downloaded, playable tracks.
package resolver

import (
	"context"
	"errors"
	"log"

	"github.com/Redini/DiscordBot/internal/music/track"
)

var (
	ErrNoResults  = errors.New("no results for query")
	ErrPoolClosed = errors.New("resolver pool is closed")
)

// Resolver downloads the media behind query. A playlist yields one track per
// entry, in playlist order. Every returned track has an artifact on disk.
type Resolver interface {
	Resolve(ctx context.Context, query string) ([]*track.Track, error)
}

// Discard deletes the artifacts of tracks that will never be enqueued.
func Discard(tracks []*track.Track) {
	for _, t := range tracks {
		if err := t.Remove(); err != nil {
			log.Printf("[WARN] [Resolver] Error deleting file: %v", err)
		}
	}
}
