// Package bot is the Discord presentation layer. It resolves users and
// command options, forwards them to the ledger and engine services, and
// renders their results and errors as chat replies. No lifecycle or
// balance logic lives here.
package bot

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/sentenza/internal/config"
	"github.com/fadedpez/sentenza/internal/logging"
	"github.com/fadedpez/sentenza/pkg/services/engine"
	"github.com/fadedpez/sentenza/pkg/services/ledger"
)

// Bot represents the Discord bot and its dependencies
type Bot struct {
	config     *config.Config
	session    *discordgo.Session
	commands   []*discordgo.ApplicationCommand
	ledger     *ledger.Service
	engine     *engine.Service
	logger     *logging.Logger
	shutdownWg sync.WaitGroup
}

// New creates a new instance of Bot
func New(cfg *config.Config, ledgerSvc *ledger.Service, engineSvc *engine.Service) (*Bot, error) {
	// Create Discord session
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := &Bot{
		config:   cfg,
		session:  session,
		commands: make([]*discordgo.ApplicationCommand, 0),
		ledger:   ledgerSvc,
		engine:   engineSvc,
		logger:   logging.Default,
	}

	session.AddHandler(bot.handleInteractionCreate)

	return bot, nil
}

// Start initializes the bot and connects to Discord
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the bot
func (b *Bot) Shutdown() {
	// Cleanup commands if in development
	if b.config.IsDevelopment() {
		b.cleanupCommands()
	}

	if err := b.session.Close(); err != nil {
		b.logger.Error("Error closing Discord session: %v", err)
	}

	b.shutdownWg.Wait()
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, command := range Commands {
		registered, err := b.session.ApplicationCommandCreate(b.config.AppID, b.config.GuildID, command)
		if err != nil {
			return fmt.Errorf("failed to register command %s: %w", command.Name, err)
		}
		b.commands = append(b.commands, registered)
	}
	return nil
}

// cleanupCommands removes registered commands on shutdown
func (b *Bot) cleanupCommands() {
	for _, command := range b.commands {
		if err := b.session.ApplicationCommandDelete(b.config.AppID, b.config.GuildID, command.ID); err != nil {
			b.logger.Warn("Failed to delete command %s: %v", command.Name, err)
		}
	}
}

// handleInteractionCreate handles Discord interaction events
func (b *Bot) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	b.handleSlashCommand(s, i)
}
