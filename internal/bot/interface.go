// Package bot holds the contracts the chat adapter offers to commands.
package bot

import (
	"errors"

	"github.com/disgoorg/snowflake/v2"
)

var (
	ErrUserNotInVoice   = errors.New("user not in any voice channel")
	ErrAlreadyConnected = errors.New("already connected to a voice channel")
	ErrNotConnected     = errors.New("not connected to a voice channel")
)

// BotVoice manages the bot's voice connection in each guild.
type BotVoice interface {
	// JoinUserChannel connects to the voice channel userID is sitting in.
	JoinUserChannel(guildID snowflake.ID, userID string) error
	Leave(guildID snowflake.ID) error
	Connected(guildID snowflake.ID) bool
}

// Chat sends messages to text channels.
type Chat interface {
	SendText(channelID, message string) error
	// SendPages posts the first page and lets userID flip through the rest.
	SendPages(channelID, userID string, pages []Page) error
	Typing(channelID string) error
}

// Page is one screen of a paged listing.
type Page struct {
	Title string
	Body  string
}
