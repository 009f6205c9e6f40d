package discord

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/Redini/DiscordBot/internal/command"
	"github.com/Redini/DiscordBot/internal/command/core"
	"github.com/Redini/DiscordBot/internal/command/music"
	"github.com/Redini/DiscordBot/internal/config"
	"github.com/Redini/DiscordBot/internal/middleware"
	"github.com/Redini/DiscordBot/internal/music/player"
	"github.com/Redini/DiscordBot/internal/music/resolver"
	"github.com/Redini/DiscordBot/pkg/cmd"
)

// Bot is a Discord bot
type Bot struct {
	ctx      context.Context
	dg       *discordgo.Session
	cfg      *config.Config
	resolver resolver.Resolver
	voice    *VoiceManager
	players  *player.Registry
	commands *cmd.Registry
}

// StartBot connects to Discord and serves commands until ctx is done.
func StartBot(ctx context.Context, cfg *config.Config, res resolver.Resolver) error {
	b := &Bot{
		ctx:      ctx,
		cfg:      cfg,
		resolver: res,
		commands: cmd.NewRegistry(),
	}
	if err := b.run(ctx, cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

// run starts the Discord bot
func (b *Bot) run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg
	b.voice = NewVoiceManager(dg)

	b.players = player.NewRegistry(ctx, b.voice.Gateway, b)
	defer b.players.Close()

	b.registerCommands()

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	// players stop their streams and delete their downloads before the
	// connections go away
	b.players.Close()
	b.voice.DisconnectAll()
	return nil
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsAll
}

func (b *Bot) registerCommands() {
	mws := []cmd.Middleware{
		middleware.WithGuildOnly(),
		middleware.WithCooldown(b.cfg.CommandCooldown),
		middleware.WithCommandLogger(),
	}

	deps := &music.Deps{
		Players:  b.players,
		Resolver: b.resolver,
		Voice:    b.voice,
		PageSize: b.cfg.QueuePageSize,
	}
	for _, c := range music.Commands(deps) {
		b.commands.Register(cmd.Apply(c, mws...))
	}
	b.commands.Register(cmd.Apply(&core.HelpCommand{Registry: b.commands, Prefix: b.cfg.CommandPrefix}, middleware.WithCommandLogger()))
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}

	if err := s.UpdateListeningStatus(b.cfg.CommandPrefix + "help"); err != nil {
		log.Println("[WARN] Failed to set presence:", err)
	}
	log.Printf("[INFO] ✅ Discord bot %v is running in %d guild(s).", botInfo.Username, len(r.Guilds))
}

// onMessageCreate dispatches prefixed text commands
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}

	name, args, ok := cmd.Parse(b.cfg.CommandPrefix, m.Content)
	if !ok {
		return
	}

	var guildID snowflake.ID
	if m.GuildID != "" {
		id, err := snowflake.Parse(m.GuildID)
		if err != nil {
			log.Printf("[WARN] Bad guild ID %q: %v", m.GuildID, err)
			return
		}
		guildID = id
	}

	inv := &cmd.Invocation{
		Name: name,
		Args: args,
		Data: &command.MessageContext{
			GuildID:   guildID,
			ChannelID: m.ChannelID,
			UserID:    m.Author.ID,
			Username:  m.Author.Username,
			Chat:      b,
		},
	}
	b.dispatch(inv, m.ChannelID)
}

func (b *Bot) dispatch(inv *cmd.Invocation, channelID string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERR] Command %s panicked: %v\n%s", inv.Name, r, debug.Stack())
		}
	}()

	if err := b.commands.Dispatch(b.ctx, inv); err != nil {
		if sendErr := b.SendText(channelID, errorMessage(b.cfg.CommandPrefix, err)); sendErr != nil {
			log.Printf("[WARN] Failed to report command error: %v", sendErr)
		}
	}
}
