package music

import (
	"context"
	"errors"
	"log"

	"github.com/Redini/DiscordBot/internal/bot"
	"github.com/Redini/DiscordBot/internal/command"
	"github.com/Redini/DiscordBot/pkg/cmd"
)

type JoinCommand struct{ *Deps }

func (c *JoinCommand) Name() string        { return "join" }
func (c *JoinCommand) Description() string { return "Bot joins the voice channel" }

func (c *JoinCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}

	err := c.Voice.JoinUserChannel(mc.GuildID, mc.UserID)
	switch {
	case errors.Is(err, bot.ErrUserNotInVoice):
		return mc.Reply("Join a voice channel first.")
	case errors.Is(err, bot.ErrAlreadyConnected):
		return mc.Reply("I am already in a voice channel.")
	}
	return err
}

type LeaveCommand struct{ *Deps }

func (c *LeaveCommand) Name() string        { return "leave" }
func (c *LeaveCommand) Description() string { return "Bot leaves the voice channel" }

func (c *LeaveCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}
	if !c.Voice.Connected(mc.GuildID) {
		return mc.Reply("I'm not in a voice channel.")
	}

	if p, ok := c.Players.Lookup(mc.GuildID); ok {
		if err := p.Stop(); err != nil {
			log.Printf("[WARN] Failed to stop player for guild %s: %v", mc.GuildID, err)
		}
	}

	if err := c.Voice.Leave(mc.GuildID); err != nil {
		if errors.Is(err, bot.ErrNotConnected) {
			return mc.Reply("I'm not in a voice channel.")
		}
		return err
	}
	return mc.Reply("👋 Left the voice channel and cleared the queue.")
}
