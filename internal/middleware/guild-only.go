package middleware

import (
	"context"

	"github.com/Redini/DiscordBot/internal/command"
	"github.com/Redini/DiscordBot/pkg/cmd"
)

// WithGuildOnly wraps a command to enforce guild-only access
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if v, ok := command.FromInvocation(inv); ok && v.GuildID == 0 {
				return v.Reply("You must be in a guild to use this command.")
			}
			return c.Run(ctx, inv)
		})
	}
}
