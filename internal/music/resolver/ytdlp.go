package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"

	"github.com/Redini/DiscordBot/internal/music/stream"
	"github.com/Redini/DiscordBot/internal/music/track"
	"github.com/Redini/DiscordBot/pkg/retrylimit"
)

// One line per downloaded file, printed once post-processing has moved it
// to its final name.
const printTemplate = "after_move:%(filepath)s\t%(title)s\t%(duration)s\t%(webpage_url)s\t%(playlist_title)s"

// runFunc executes one yt-dlp download and returns its stdout.
type runFunc func(ctx context.Context, output, query string) (string, error)

// YTDLP downloads the best audio stream for a query with yt-dlp. Plain text
// is searched on YouTube; URLs, including playlists, are fetched directly.
// Every file of one Resolve call shares a uuid prefix.
type YTDLP struct {
	dir     string
	proxy   string
	volume  float64
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.Config
	run     runFunc
}

func NewYTDLP(dir, proxy string, volume float64) *YTDLP {
	y := &YTDLP{
		dir:     dir,
		proxy:   proxy,
		volume:  volume,
		limiter: retrylimit.NewAdaptiveLimiter(2, 0.25, 4, 0.5, 0.5),
		retry:   retrylimit.DefaultConfig(),
	}
	y.retry.Classify = classify
	y.run = y.download
	return y
}

func (y *YTDLP) Resolve(ctx context.Context, query string) ([]*track.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoResults
	}

	prefix := uuid.NewString()
	output := filepath.Join(y.dir, prefix+"_%(id)s.%(ext)s")

	cfg := y.retry
	cfg.OnRetry = func(attempt int, err error) {
		log.Printf("[Resolver] Download attempt %d for %q failed: %v", attempt, query, err)
	}

	var stdout string
	err := retrylimit.WithRetry(ctx, func() error {
		out, err := y.run(ctx, output, query)
		if err != nil {
			return err
		}
		stdout = out
		return nil
	}, y.limiter, cfg)
	if err != nil {
		// a playlist can fail halfway with some entries already on disk
		y.purge(prefix, nil)
		return nil, fmt.Errorf("yt-dlp failed for %q: %w", query, err)
	}

	var tracks []*track.Track
	for _, e := range parseOutput(stdout) {
		if _, err := os.Stat(e.path); err != nil {
			log.Printf("[WARN] [Resolver] Downloaded file missing, skipping %q: %v", e.title, err)
			continue
		}
		tracks = append(tracks, &track.Track{
			Title:    e.title,
			URL:      e.url,
			Playlist: e.playlist,
			Duration: e.duration,
			Path:     e.path,
			Source:   stream.FileSource{Path: e.path, Volume: y.volume},
		})
	}
	y.purge(prefix, tracks)
	if len(tracks) == 0 {
		return nil, ErrNoResults
	}

	log.Printf("[Resolver] Downloaded %d track(s) for %q", len(tracks), query)
	return tracks, nil
}

// purge deletes every file of one download that is not a returned track,
// including partial fragments.
func (y *YTDLP) purge(prefix string, keep []*track.Track) {
	matches, err := filepath.Glob(filepath.Join(y.dir, prefix+"_*"))
	if err != nil {
		log.Printf("[WARN] [Resolver] Failed to list leftovers: %v", err)
		return
	}
	for _, path := range matches {
		if slices.ContainsFunc(keep, func(t *track.Track) bool { return t.Path == path }) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("[WARN] [Resolver] Error deleting file: %v", err)
		}
	}
}

func (y *YTDLP) download(ctx context.Context, output, query string) (string, error) {
	res, err := y.command(output).Run(ctx, query)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", retrylimit.Fatal(err)
		}
		if res != nil && res.Stderr != "" {
			return "", &toolError{err: err, stderr: strings.TrimSpace(res.Stderr)}
		}
		return "", err
	}
	return res.Stdout, nil
}

// command builds the yt-dlp invocation. NoPlaylist keeps a video URL that
// carries a list parameter to that one video; playlist URLs still expand.
func (y *YTDLP) command(output string) *ytdlp.Command {
	cmd := ytdlp.New().
		Format("bestaudio/best").
		DefaultSearch("ytsearch").
		ExtractAudio().
		AudioFormat("m4a").
		AudioQuality("192K").
		RestrictFilenames().
		Output(output).
		Print(printTemplate).
		NoSimulate().
		Quiet().
		NoWarnings().
		NoPlaylist().
		IgnoreConfig()

	if y.proxy != "" {
		cmd = cmd.Proxy(y.proxy)
	}
	return cmd
}

type toolError struct {
	err    error
	stderr string
}

func (e *toolError) Error() string {
	if e.stderr == "" {
		return e.err.Error()
	}
	return e.stderr
}

func (e *toolError) Unwrap() error { return e.err }

func classify(err error) retrylimit.Class {
	if c := retrylimit.DefaultClassifier(err); c == retrylimit.Stop {
		return c
	}
	var te *toolError
	if !errors.As(err, &te) {
		return retrylimit.Retry
	}
	switch msg := te.stderr; {
	case strings.Contains(msg, "HTTP Error 429"), strings.Contains(msg, "Too Many Requests"):
		return retrylimit.Throttle
	case strings.Contains(msg, "Unsupported URL"),
		strings.Contains(msg, "Video unavailable"),
		strings.Contains(msg, "Private video"),
		strings.Contains(msg, "is not a valid URL"):
		return retrylimit.Stop
	default:
		return retrylimit.Retry
	}
}

type entry struct {
	path     string
	title    string
	url      string
	playlist string
	duration time.Duration
}

// parseOutput reads the lines produced by printTemplate. Lines that do not
// carry a file path are ignored.
func parseOutput(stdout string) []entry {
	var entries []entry
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		parts := strings.Split(strings.TrimRight(line, "\r"), "\t")
		if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" {
			continue
		}
		e := entry{path: parts[0], title: parts[1]}
		if len(parts) > 2 {
			e.duration = parseSeconds(parts[2])
		}
		if len(parts) > 3 {
			e.url = orEmpty(parts[3])
		}
		if len(parts) > 4 {
			e.playlist = orEmpty(parts[4])
		}
		if e.title == "" || e.title == "NA" {
			e.title = filepath.Base(e.path)
		}
		entries = append(entries, e)
	}
	return entries
}

// parseSeconds accepts yt-dlp's duration field, which may be fractional or NA.
func parseSeconds(s string) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func orEmpty(s string) string {
	s = strings.TrimSpace(s)
	if s == "NA" {
		return ""
	}
	return s
}
