package command

import (
	"github.com/disgoorg/snowflake/v2"

	"github.com/Redini/DiscordBot/internal/bot"
	"github.com/Redini/DiscordBot/pkg/cmd"
)

// MessageContext is what the chat adapter passes as cmd.Invocation.Data for a
// prefixed text command.
type MessageContext struct {
	GuildID   snowflake.ID // zero in direct messages
	ChannelID string
	UserID    string
	Username  string
	Chat      bot.Chat
}

// Reply sends message to the channel the command came from.
func (c *MessageContext) Reply(message string) error {
	return c.Chat.SendText(c.ChannelID, message)
}

// FromInvocation extracts the message context set by the adapter.
func FromInvocation(inv *cmd.Invocation) (*MessageContext, bool) {
	if inv == nil {
		return nil, false
	}
	c, ok := inv.Data.(*MessageContext)
	return c, ok && c != nil
}
