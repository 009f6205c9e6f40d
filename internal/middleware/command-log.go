package middleware

import (
	"context"
	"log"
	"time"

	"github.com/Redini/DiscordBot/internal/command"
	"github.com/Redini/DiscordBot/pkg/cmd"
)

// WithCommandLogger wraps a command to log its execution
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			v, ok := command.FromInvocation(inv)
			if !ok {
				log.Printf("[INFO] Command %s args=%q took %v err=%v", c.Name(), inv.Args, time.Since(start), err)
				return err
			}
			log.Printf("[INFO] Command %s by %s (%s) guild=%s channel=%s args=%q took %v err=%v",
				c.Name(), v.Username, v.UserID, v.GuildID, v.ChannelID, inv.Args, time.Since(start), err)
			return err
		})
	}
}
