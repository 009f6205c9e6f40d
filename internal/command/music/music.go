// Package music implements the text commands that drive a guild's player.
package music

import (
	"github.com/Redini/DiscordBot/internal/bot"
	"github.com/Redini/DiscordBot/internal/command"
	"github.com/Redini/DiscordBot/internal/music/player"
	"github.com/Redini/DiscordBot/internal/music/resolver"
	"github.com/Redini/DiscordBot/pkg/cmd"
)

const defaultPageSize = 10

// Deps is what every music command needs.
type Deps struct {
	Players  *player.Registry
	Resolver resolver.Resolver
	Voice    bot.BotVoice
	PageSize int
}

// Commands returns the music command set, unwrapped.
func Commands(d *Deps) []cmd.Command {
	if d.PageSize < 1 {
		d.PageSize = defaultPageSize
	}
	return []cmd.Command{
		&PlayCommand{d},
		&QueueCommand{d},
		&SkipCommand{d},
		&JoinCommand{d},
		&LeaveCommand{d},
		&ClearCommand{d},
		&RemoveCommand{d},
		&ShuffleCommand{d},
		&LoopCommand{},
	}
}

// player returns the guild's player with notices bound to the channel the
// command came from.
func (d *Deps) player(c *command.MessageContext) *player.Player {
	p := d.Players.GetOrCreate(c.GuildID)
	p.BindChannel(c.ChannelID)
	return p
}
