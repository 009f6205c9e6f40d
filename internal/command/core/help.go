// Package core holds commands that are not tied to a feature.
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/Redini/DiscordBot/internal/command"
	"github.com/Redini/DiscordBot/internal/version"
	"github.com/Redini/DiscordBot/pkg/cmd"
)

type HelpCommand struct {
	Registry *cmd.Registry
	Prefix   string
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Shows this message" }

func (c *HelpCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}
	return mc.Reply(c.render())
}

func (c *HelpCommand) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s v%s**\n", version.AppName, version.AppVersion)
	b.WriteString("**Available commands:**\n")
	for _, entry := range c.Registry.GetAll() {
		usage := c.Prefix + entry.Name()
		if u := cmd.Usage(entry); u != "" {
			usage += " " + u
		}
		fmt.Fprintf(&b, "`%s` - %s\n", usage, entry.Description())
	}
	return strings.TrimRight(b.String(), "\n")
}
