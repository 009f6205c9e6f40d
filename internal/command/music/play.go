package music

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Redini/DiscordBot/internal/command"
	"github.com/Redini/DiscordBot/internal/music/resolver"
	"github.com/Redini/DiscordBot/internal/music/track"
	"github.com/Redini/DiscordBot/pkg/cmd"
)

type PlayCommand struct{ *Deps }

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Plays a song or playlist" }
func (c *PlayCommand) Usage() string       { return "<query or url>" }

func (c *PlayCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}
	query, err := inv.Rest()
	if err != nil {
		return err
	}

	if !c.Voice.Connected(mc.GuildID) {
		return mc.Reply("Join a voice channel first using `!join`.")
	}

	if err := mc.Chat.Typing(mc.ChannelID); err != nil {
		log.Printf("[WARN] Failed to send typing indicator: %v", err)
	}

	tracks, err := c.Resolver.Resolve(ctx, query)
	switch {
	case errors.Is(err, resolver.ErrNoResults):
		return mc.Reply("⚠️ Could not retrieve the song.")
	case err != nil:
		log.Printf("[ERR] Failed to resolve %q: %v", query, err)
		return mc.Reply(fmt.Sprintf("⚠️ Failed to retrieve the song: %v", err))
	case len(tracks) == 0:
		return mc.Reply("⚠️ Could not retrieve the song.")
	}

	p := c.player(mc)
	p.Enqueue(tracks...)

	if err := mc.Reply(addedMessage(tracks)); err != nil {
		log.Printf("[WARN] Failed to confirm enqueue: %v", err)
	}

	return p.EnsurePlaying()
}

func addedMessage(tracks []*track.Track) string {
	if len(tracks) == 1 {
		return fmt.Sprintf("🎵 **Added to queue:** %s", tracks[0].DisplayTitle())
	}

	title := tracks[0].Playlist
	if title == "" {
		title = "Unknown Playlist"
	}
	return fmt.Sprintf("📜 **Added Playlist**\n**Playlist:** %s\n**Playlist Length:** %s | **Tracks:** %d",
		title, track.FormatClock(track.TotalDuration(tracks)), len(tracks))
}
