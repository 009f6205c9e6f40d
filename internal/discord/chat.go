package discord

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Redini/DiscordBot/internal/bot"
)

const (
	emojiPrev  = "⬅️"
	emojiNext  = "➡️"
	embedColor = 0x3498db
)

// SendText posts a plain message. It also serves as the player's notifier.
func (b *Bot) SendText(channelID, message string) error {
	if _, err := b.dg.ChannelMessageSend(channelID, message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) Typing(channelID string) error {
	return b.dg.ChannelTyping(channelID)
}

// SendPages posts pages[0] as an embed. With more than one page, the author
// can flip pages with reactions until the pager sits idle for the configured
// timeout, after which the reactions are cleared.
func (b *Bot) SendPages(channelID, userID string, pages []bot.Page) error {
	if len(pages) == 0 {
		return nil
	}

	msg, err := b.dg.ChannelMessageSendEmbed(channelID, pageEmbed(pages[0]))
	if err != nil {
		return fmt.Errorf("failed to send page: %w", err)
	}
	if len(pages) == 1 {
		return nil
	}

	for _, emoji := range []string{emojiPrev, emojiNext} {
		if err := b.dg.MessageReactionAdd(channelID, msg.ID, emoji); err != nil {
			log.Printf("[WARN] Failed to add reaction %s: %v", emoji, err)
		}
	}

	pg := &pager{pages: pages, owner: userID, messageID: msg.ID}
	pg.start(b.dg, channelID, b.cfg.QueuePageTimeout)
	return nil
}

func pageEmbed(page bot.Page) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       page.Title,
		Description: page.Body,
		Color:       embedColor,
	}
}

// pager tracks one paged message.
type pager struct {
	mu        sync.Mutex
	pages     []bot.Page
	current   int
	owner     string
	messageID string
	timer     *time.Timer
	closed    bool
}

// flip moves one page in the direction of emoji. It reports whether the
// visible page changed.
func (p *pager) flip(emoji string) (bot.Page, bool) {
	switch {
	case emoji == emojiNext && p.current < len(p.pages)-1:
		p.current++
	case emoji == emojiPrev && p.current > 0:
		p.current--
	default:
		return p.pages[p.current], false
	}
	return p.pages[p.current], true
}

// accepts reports whether the reaction belongs to this pager.
func (p *pager) accepts(r *discordgo.MessageReaction) bool {
	return r.MessageID == p.messageID && r.UserID == p.owner &&
		(r.Emoji.Name == emojiPrev || r.Emoji.Name == emojiNext)
}

func (p *pager) start(s *discordgo.Session, channelID string, timeout time.Duration) {
	var removeHandler func()

	expire := func() {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		p.closed = true
		p.mu.Unlock()

		removeHandler()
		if err := s.MessageReactionsRemoveAll(channelID, p.messageID); err != nil {
			log.Printf("[WARN] Missing permissions to clear reactions: %v", err)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	removeHandler = s.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if !p.accepts(r.MessageReaction) {
			return
		}

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		page, changed := p.flip(r.Emoji.Name)
		p.timer.Reset(timeout)
		p.mu.Unlock()

		if changed {
			if _, err := s.ChannelMessageEditEmbed(channelID, p.messageID, pageEmbed(page)); err != nil {
				log.Printf("[WARN] Failed to edit page: %v", err)
			}
		}
		if err := s.MessageReactionRemove(channelID, p.messageID, r.Emoji.Name, r.UserID); err != nil {
			log.Printf("[WARN] Failed to remove reaction: %v", err)
		}
	})
	p.timer = time.AfterFunc(timeout, expire)
}
