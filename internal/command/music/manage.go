package music

import (
	"context"
	"errors"
	"fmt"

	"github.com/Redini/DiscordBot/internal/command"
	"github.com/Redini/DiscordBot/internal/music/queue"
	"github.com/Redini/DiscordBot/pkg/cmd"
)

type ClearCommand struct{ *Deps }

func (c *ClearCommand) Name() string        { return "clear" }
func (c *ClearCommand) Description() string { return "Clears the song queue" }

func (c *ClearCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}
	c.player(mc).Clear()
	return mc.Reply("🗑️ Queue cleared!")
}

type RemoveCommand struct{ *Deps }

func (c *RemoveCommand) Name() string        { return "remove" }
func (c *RemoveCommand) Description() string { return "Removes a song from the queue by its position" }
func (c *RemoveCommand) Usage() string       { return "<position>" }

func (c *RemoveCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}
	position, err := inv.Int(0)
	if err != nil {
		return err
	}

	removed, err := c.player(mc).Remove(position)
	if errors.Is(err, queue.ErrInvalidPosition) {
		return mc.Reply("Invalid position in the queue.")
	}
	if err != nil {
		return err
	}
	return mc.Reply(fmt.Sprintf("❌ Removed **%s** from the queue.", removed.DisplayTitle()))
}

type ShuffleCommand struct{ *Deps }

func (c *ShuffleCommand) Name() string        { return "shuffle" }
func (c *ShuffleCommand) Description() string { return "Shuffles the song queue" }

func (c *ShuffleCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}
	if !c.player(mc).Shuffle() {
		return mc.Reply("Not enough songs in the queue to shuffle.")
	}
	return mc.Reply("🔀 Queue shuffled!")
}
