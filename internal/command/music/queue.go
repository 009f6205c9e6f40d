package music

import (
	"context"
	"fmt"
	"strings"

	"github.com/Redini/DiscordBot/internal/bot"
	"github.com/Redini/DiscordBot/internal/command"
	"github.com/Redini/DiscordBot/internal/music/queue"
	"github.com/Redini/DiscordBot/pkg/cmd"
)

type QueueCommand struct{ *Deps }

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Shows the current queue" }

func (c *QueueCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}

	var pages []bot.Page
	for page := range c.player(mc).Queue().Pages(c.PageSize) {
		pages = append(pages, renderPage(page))
	}
	if len(pages) == 0 {
		return mc.Reply("🎵 The queue is currently empty!")
	}
	return mc.Chat.SendPages(mc.ChannelID, mc.UserID, pages)
}

func renderPage(page queue.Page) bot.Page {
	var b strings.Builder
	b.WriteString("```\n")
	for _, e := range page.Entries {
		fmt.Fprintf(&b, "%d. %s\n", e.Position, e.Title)
	}
	b.WriteString("```")

	return bot.Page{
		Title: fmt.Sprintf("📜 **Upcoming Songs (Page %d/%d)**", page.Number, page.Total),
		Body:  b.String(),
	}
}
