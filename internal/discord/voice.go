package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/Redini/DiscordBot/internal/bot"
	"github.com/Redini/DiscordBot/internal/music/player"
	"github.com/Redini/DiscordBot/internal/music/stream"
	"github.com/Redini/DiscordBot/internal/music/track"
	"github.com/Redini/DiscordBot/pkg/util"
)

var errAlreadyPlaying = errors.New("voice gateway is already playing")

const disconnectWorkers = 8

// VoiceManager owns the bot's voice connections and hands out one gateway
// per guild.
type VoiceManager struct {
	dg *discordgo.Session

	mu       sync.Mutex
	gateways map[snowflake.ID]*Voice
}

func NewVoiceManager(dg *discordgo.Session) *VoiceManager {
	return &VoiceManager{dg: dg, gateways: make(map[snowflake.ID]*Voice)}
}

// Gateway returns the guild's voice gateway.
func (m *VoiceManager) Gateway(guildID snowflake.ID) player.Gateway {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.gateways[guildID]
	if !ok {
		v = &Voice{manager: m, guildID: guildID}
		m.gateways[guildID] = v
	}
	return v
}

func (m *VoiceManager) connection(guildID snowflake.ID) *discordgo.VoiceConnection {
	m.dg.RLock()
	defer m.dg.RUnlock()
	return m.dg.VoiceConnections[guildID.String()]
}

func (m *VoiceManager) Connected(guildID snowflake.ID) bool {
	return m.connection(guildID) != nil
}

// JoinUserChannel joins the voice channel the user is currently in.
func (m *VoiceManager) JoinUserChannel(guildID snowflake.ID, userID string) error {
	if m.Connected(guildID) {
		return bot.ErrAlreadyConnected
	}

	channelID, err := m.findUserVoiceChannel(guildID, userID)
	if err != nil {
		return err
	}

	if _, err := m.dg.ChannelVoiceJoin(guildID.String(), channelID, false, true); err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}
	log.Printf("[Voice] Joined voice channel %s on guild %s", channelID, guildID)
	return nil
}

// Leave disconnects from the guild's voice channel.
func (m *VoiceManager) Leave(guildID snowflake.ID) error {
	vc := m.connection(guildID)
	if vc == nil {
		return bot.ErrNotConnected
	}
	if err := vc.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	log.Printf("[Voice] Left voice channel on guild %s", guildID)
	return nil
}

// DisconnectAll is used on shutdown.
func (m *VoiceManager) DisconnectAll() {
	m.dg.RLock()
	conns := make([]*discordgo.VoiceConnection, 0, len(m.dg.VoiceConnections))
	for _, vc := range m.dg.VoiceConnections {
		conns = append(conns, vc)
	}
	m.dg.RUnlock()

	err := util.Parallel(context.Background(), conns, disconnectWorkers, func(_ context.Context, vc *discordgo.VoiceConnection) error {
		if err := vc.Disconnect(); err != nil {
			return fmt.Errorf("guild %s: %w", vc.GuildID, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("[WARN] [Voice] Failed to disconnect: %v", err)
	}
}

// findUserVoiceChannel finds the voice channel of a user
func (m *VoiceManager) findUserVoiceChannel(guildID snowflake.ID, userID string) (string, error) {
	guild, err := m.dg.State.Guild(guildID.String())
	if err != nil {
		return "", fmt.Errorf("error retrieving guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs.ChannelID, nil
		}
	}
	return "", bot.ErrUserNotInVoice
}

// Voice streams tracks into one guild's voice connection.
type Voice struct {
	manager *VoiceManager
	guildID snowflake.ID

	mu   sync.Mutex
	stop chan struct{}
}

func (v *Voice) Play(src track.Source, onComplete func(error)) error {
	vc := v.manager.connection(v.guildID)
	if vc == nil {
		return bot.ErrNotConnected
	}

	v.mu.Lock()
	if v.stop != nil {
		v.mu.Unlock()
		return errAlreadyPlaying
	}
	stop := make(chan struct{})
	v.stop = stop
	v.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	pcm, err := src.Open(ctx)
	if err != nil {
		cancel()
		v.clear(stop)
		return err
	}

	go func() {
		defer cancel()

		if err := vc.Speaking(true); err != nil {
			log.Printf("[WARN] [Voice] Couldn't set speaking on guild %s: %v", v.guildID, err)
		}
		err := stream.StreamToDiscord(pcm, stop, vc.OpusSend)
		if err := vc.Speaking(false); err != nil {
			log.Printf("[WARN] [Voice] Couldn't clear speaking on guild %s: %v", v.guildID, err)
		}
		if cerr := pcm.Close(); cerr != nil {
			log.Printf("[Voice] Decoder exited: %v", cerr)
		}

		v.clear(stop)
		onComplete(err)
	}()
	return nil
}

// Stop ends the current stream; the stream goroutine reports completion.
func (v *Voice) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stop != nil {
		close(v.stop)
		v.stop = nil
	}
}

func (v *Voice) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stop != nil
}

func (v *Voice) clear(stop chan struct{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stop == stop {
		v.stop = nil
	}
}
