package player

import (
	"context"
	"log"
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// GatewayFactory returns the voice gateway for a guild.
type GatewayFactory func(guildID snowflake.ID) Gateway

// Registry owns one Player per guild for the lifetime of the process.
type Registry struct {
	ctx      context.Context
	cancel   context.CancelFunc
	gateways GatewayFactory
	notifier Notifier

	mu      sync.Mutex
	players map[snowflake.ID]*Player
	wg      sync.WaitGroup
}

func NewRegistry(ctx context.Context, gateways GatewayFactory, notifier Notifier) *Registry {
	ctx, cancel := context.WithCancel(ctx)
	return &Registry{
		ctx:      ctx,
		cancel:   cancel,
		gateways: gateways,
		notifier: notifier,
		players:  make(map[snowflake.ID]*Player),
	}
}

// GetOrCreate returns the guild's player, starting it on first use.
func (r *Registry) GetOrCreate(guildID snowflake.ID) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[guildID]; ok {
		return p
	}

	p := New(guildID, r.gateways(guildID), r.notifier)
	r.players[guildID] = p

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		p.Run(r.ctx)
	}()

	log.Printf("[Player] Created player for guild %s", guildID)
	return p
}

// Lookup returns the guild's player without creating one.
func (r *Registry) Lookup(guildID snowflake.ID) (*Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[guildID]
	return p, ok
}

// Close stops every player worker and waits for them to exit.
func (r *Registry) Close() {
	r.cancel()
	r.wg.Wait()
}
