package track

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// Source opens the audio behind a track as 48kHz stereo s16le PCM.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Track is one resolved and downloaded item. Path points at the artifact
// backing Source; it is removed once playback of the track has ended.
type Track struct {
	Title    string
	URL      string
	Playlist string
	Duration time.Duration
	Path     string
	Source   Source
}

// Remove deletes the artifact. A file that is already gone is not an error.
func (t *Track) Remove() error {
	if t == nil || t.Path == "" {
		return nil
	}
	if err := os.Remove(t.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove artifact %s: %w", t.Path, err)
	}
	return nil
}

// DisplayTitle falls back to the URL and then to a placeholder.
func (t *Track) DisplayTitle() string {
	switch {
	case t.Title != "":
		return t.Title
	case t.URL != "":
		return t.URL
	default:
		return "Unknown track"
	}
}

// TotalDuration sums the durations of tracks.
func TotalDuration(tracks []*Track) time.Duration {
	var total time.Duration
	for _, t := range tracks {
		total += t.Duration
	}
	return total
}

// FormatClock renders d as HH:MM:SS.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
