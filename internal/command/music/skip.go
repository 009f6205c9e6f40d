package music

import (
	"context"
	"errors"

	"github.com/Redini/DiscordBot/internal/command"
	"github.com/Redini/DiscordBot/internal/music/player"
	"github.com/Redini/DiscordBot/pkg/cmd"
)

type SkipCommand struct{ *Deps }

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skips the current song" }

func (c *SkipCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}

	err := c.player(mc).Skip()
	if errors.Is(err, player.ErrNoTrackPlaying) {
		return mc.Reply("⚠️ No song is currently playing.")
	}
	return err
}

type LoopCommand struct{}

func (c *LoopCommand) Name() string        { return "loop" }
func (c *LoopCommand) Description() string { return "Loops the current song or queue" }
func (c *LoopCommand) Usage() string       { return "[song|queue]" }

func (c *LoopCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}
	return mc.Reply("Looping is not yet implemented.")
}
