package player

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/Redini/DiscordBot/internal/music/queue"
	"github.com/Redini/DiscordBot/internal/music/track"
)

// Gateway is the voice side of one guild's connection.
type Gateway interface {
	// Play starts streaming src and returns immediately. onComplete is called
	// exactly once when the stream ends on its own or after Stop.
	Play(src track.Source, onComplete func(error)) error
	Stop()
	IsPlaying() bool
}

// Notifier delivers user-facing notices to a text channel.
type Notifier interface {
	SendText(channelID, message string) error
}

var (
	ErrNoTrackPlaying = errors.New("no track is currently playing")
	ErrPlaybackStart  = errors.New("failed to start playback")
	ErrClosed         = errors.New("player is closed")
)

const (
	msgNowPlaying   = "🎶 Now playing: **%s**"
	msgQueueEmpty   = "🎵 Queue is empty! Add more songs with `!play`."
	msgStartError   = "Error playing the song: %v"
	msgRuntimeError = "Error playing: %v"
	msgSkipping     = "⏭️ **Skipping current song...**"
)

// Player drives playback of one guild's queue. Playback state is owned by a
// single worker goroutine (Run); every state change is handed to it through
// the mailbox, including completions reported by the gateway.
type Player struct {
	guildID  snowflake.ID
	queue    *queue.Queue
	gateway  Gateway
	notifier Notifier

	mu        sync.Mutex
	channelID string
	playing   bool
	current   *track.Track

	// worker only
	active bool

	box  *mailbox
	done chan struct{}
}

// New creates a Player. Nothing happens until Run is started.
func New(guildID snowflake.ID, gateway Gateway, notifier Notifier) *Player {
	return &Player{
		guildID:  guildID,
		queue:    queue.New(),
		gateway:  gateway,
		notifier: notifier,
		box:      newMailbox(),
		done:     make(chan struct{}),
	}
}

// Run processes the mailbox until ctx is cancelled.
func (p *Player) Run(ctx context.Context) {
	defer close(p.done)
	log.Printf("[Player] Worker started | guild=%s", p.guildID)

	for {
		select {
		case <-ctx.Done():
			p.shutdown()
			log.Printf("[Player] Worker stopped | guild=%s", p.guildID)
			return
		case <-p.box.signal:
			for _, task := range p.box.drain() {
				p.safely(task)
			}
		}
	}
}

// BindChannel sets the text channel that receives playback notices.
func (p *Player) BindChannel(channelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channelID = channelID
}

// Queue exposes the guild queue for read access.
func (p *Player) Queue() *queue.Queue {
	return p.queue
}

// Enqueue appends tracks without starting playback.
func (p *Player) Enqueue(tracks ...*track.Track) {
	p.queue.Enqueue(tracks...)
	log.Printf("[Player] Added %d track(s) to queue | guild=%s QueueLen=%d", len(tracks), p.guildID, p.queue.Len())
}

// EnsurePlaying starts the queue head if nothing is playing. An empty queue
// leaves the player idle and produces a single notice.
func (p *Player) EnsurePlaying() error {
	return p.do(func() {
		p.active = true
		if !p.IsPlaying() {
			p.advance()
		}
	})
}

// Skip stops the current track. The gateway then reports completion and the
// player moves on exactly as if the track had ended. The skip notice is sent
// before the next track's.
func (p *Player) Skip() error {
	var err error
	if doErr := p.do(func() {
		if !p.IsPlaying() || !p.gateway.IsPlaying() {
			err = ErrNoTrackPlaying
			return
		}
		log.Printf("[Player] Skipping %q | guild=%s", p.Current().DisplayTitle(), p.guildID)
		p.notify(msgSkipping)
		p.gateway.Stop()
	}); doErr != nil {
		return doErr
	}
	return err
}

// Stop halts playback and drops the queue. The current artifact is removed
// when the gateway reports completion; the player does not advance.
func (p *Player) Stop() error {
	return p.do(func() {
		p.active = false
		dropped := p.dropQueue()
		log.Printf("[Player] Stop called | guild=%s dropped=%d playing=%v", p.guildID, dropped, p.IsPlaying())
		if p.IsPlaying() {
			p.gateway.Stop()
		}
	})
}

// Clear drops every queued track and deletes their artifacts.
func (p *Player) Clear() int {
	return p.dropQueue()
}

// Remove drops the track at the 1-based position and deletes its artifact.
func (p *Player) Remove(position int) (*track.Track, error) {
	removed, err := p.queue.RemoveAt(position)
	if err != nil {
		return nil, err
	}
	p.discard(removed)
	return removed, nil
}

// Shuffle reports false when fewer than two tracks are queued.
func (p *Player) Shuffle() bool {
	return p.queue.Shuffle()
}

// IsPlaying returns current playback state
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Current returns the track in flight, or nil.
func (p *Player) Current() *track.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// advance pops tracks until one starts or the queue runs dry. Start failures
// discard the track and loop rather than recurse.
func (p *Player) advance() {
	for {
		next, ok := p.queue.PopFront()
		if !ok {
			p.active = false
			p.setCurrent(nil)
			log.Printf("[Player] Queue is empty, nothing to play | guild=%s", p.guildID)
			p.notify(msgQueueEmpty)
			return
		}

		if err := p.start(next); err != nil {
			log.Printf("[Player] Skipping track %q due to error: %v", next.DisplayTitle(), err)
			p.notify(fmt.Sprintf(msgStartError, err))
			p.discard(next)
			continue
		}

		log.Printf("[Player] Now playing track %q | guild=%s QueueLen=%d", next.DisplayTitle(), p.guildID, p.queue.Len())
		p.notify(fmt.Sprintf(msgNowPlaying, next.DisplayTitle()))
		return
	}
}

func (p *Player) start(t *track.Track) error {
	if t.Source == nil {
		return fmt.Errorf("%w: track has no playable source", ErrPlaybackStart)
	}

	p.setCurrent(t)

	var once sync.Once
	err := p.gateway.Play(t.Source, func(err error) {
		once.Do(func() {
			p.box.post(func() { p.finish(t, err) })
		})
	})
	if err != nil {
		p.setCurrent(nil)
		return fmt.Errorf("%w: %v", ErrPlaybackStart, err)
	}
	return nil
}

// finish runs on the worker once the gateway reports the end of t.
func (p *Player) finish(t *track.Track, err error) {
	p.discard(t)

	if p.Current() != t {
		log.Printf("[Player] Ignoring stale completion for %q | guild=%s", t.DisplayTitle(), p.guildID)
		return
	}

	if err != nil {
		log.Printf("[Player] Playback finished with error for %q: %v", t.DisplayTitle(), err)
		p.notify(fmt.Sprintf(msgRuntimeError, err))
	} else {
		log.Printf("[Player] Playback finished successfully for %q", t.DisplayTitle())
	}

	p.setCurrent(nil)
	if p.active {
		p.advance()
	}
}

// shutdown releases every artifact the player still holds. Completions that
// arrive afterwards are never processed, so the current track is discarded
// here rather than in finish.
func (p *Player) shutdown() {
	p.active = false
	dropped := p.dropQueue()
	if cur := p.Current(); cur != nil {
		p.gateway.Stop()
		p.discard(cur)
		p.setCurrent(nil)
	}
	if dropped > 0 {
		log.Printf("[Player] Dropped %d queued track(s) on shutdown | guild=%s", dropped, p.guildID)
	}
}

func (p *Player) setCurrent(t *track.Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = t
	p.playing = t != nil
}

func (p *Player) dropQueue() int {
	dropped := p.queue.Clear()
	for _, t := range dropped {
		p.discard(t)
	}
	return len(dropped)
}

// discard deletes the artifact of a track that will not be played (again).
func (p *Player) discard(t *track.Track) {
	if err := t.Remove(); err != nil {
		log.Printf("[WARN] [Player] Error deleting file: %v", err)
	}
}

func (p *Player) notify(message string) {
	p.mu.Lock()
	channelID := p.channelID
	p.mu.Unlock()

	if channelID == "" {
		log.Printf("[Player] No text channel bound, dropping notice | guild=%s", p.guildID)
		return
	}
	if err := p.notifier.SendText(channelID, message); err != nil {
		log.Printf("[WARN] [Player] Failed to send notice: %v", err)
	}
}

// do runs task on the worker and waits for it.
func (p *Player) do(task func()) error {
	ack := make(chan struct{})
	p.box.post(func() {
		defer close(ack)
		task()
	})

	select {
	case <-ack:
		return nil
	case <-p.done:
		return ErrClosed
	}
}

func (p *Player) safely(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERR] [Player] Recovered from panic | guild=%s: %v", p.guildID, r)
		}
	}()
	task()
}
