package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Redini/DiscordBot/internal/command"
	"github.com/Redini/DiscordBot/pkg/cmd"
)

const msgCooldown = "⏳ Slow down! Try that command again in a moment."

// WithCooldown lets each user run a command at most once per interval.
// A zero interval disables the check.
func WithCooldown(interval time.Duration) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		if interval <= 0 {
			return c
		}

		var (
			mu       sync.Mutex
			limiters = make(map[string]*rate.Limiter)
		)
		allow := func(userID string) bool {
			mu.Lock()
			defer mu.Unlock()
			lim, ok := limiters[userID]
			if !ok {
				lim = rate.NewLimiter(rate.Every(interval), 1)
				limiters[userID] = lim
			}
			return lim.Allow()
		}

		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if v, ok := command.FromInvocation(inv); ok && !allow(v.UserID) {
				return v.Reply(msgCooldown)
			}
			return c.Run(ctx, inv)
		})
	}
}
