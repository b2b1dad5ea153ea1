// Package bot implements the Telegram front end. It is stateless and does
// not talk to the API: it answers a fixed set of commands.
package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"gopkg.in/telebot.v3"

	"finbot/internal/log"
	"finbot/internal/metrics"
)

const (
	CommandStart = "/start"
	CommandHelp  = "/help"

	startReply = "I'm a bot, please talk to me!"
)

// Config holds the bot settings
type Config struct {
	Token       string
	PollTimeout time.Duration

	// Offline skips the getMe call on construction. Used in tests.
	Offline bool
}

type Bot struct {
	b       *telebot.Bot
	logger  *log.Logger
	metrics *metrics.Bot

	mu      sync.Mutex
	polling bool
	stopped bool
}

// New creates the bot and registers its command handlers. A nil metrics
// collector disables instrumentation.
func New(cfg Config, logger *log.Logger, m *metrics.Bot) (*Bot, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if logger == nil {
		logger = log.Discard()
	}

	bot := &Bot{
		logger:  logger.WithComponent(log.ComponentBot),
		metrics: m,
	}

	b, err := telebot.NewBot(telebot.Settings{
		Token:   cfg.Token,
		Poller:  &telebot.LongPoller{Timeout: cfg.PollTimeout},
		OnError: bot.onError,
		Offline: cfg.Offline,
	})
	if err != nil {
		return nil, err
	}
	bot.b = b

	bot.handle(CommandStart, bot.handleStart)
	bot.handle(CommandHelp, bot.handleHelp)
	return bot, nil
}

// Start polls for updates until Stop is called. It returns at once if the
// bot was already stopped.
func (bot *Bot) Start() {
	bot.mu.Lock()
	if bot.stopped || bot.polling {
		bot.mu.Unlock()
		return
	}
	bot.polling = true
	bot.mu.Unlock()

	bot.logger.Info("Bot polling started", "username", bot.b.Me.Username)
	bot.b.Start()
}

// Stop ends polling. telebot's Stop blocks until the poll loop answers, so
// it is only called when Start got that far.
func (bot *Bot) Stop() {
	bot.mu.Lock()
	polling := bot.polling
	bot.polling = false
	bot.stopped = true
	bot.mu.Unlock()

	if !polling {
		return
	}
	bot.b.Stop()
	bot.logger.Info("Bot polling stopped")
}

// Shutdown stops polling, giving up when ctx is done.
func (bot *Bot) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		bot.Stop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handle registers h for command with logging and metrics around it
func (bot *Bot) handle(command string, h telebot.HandlerFunc) {
	bot.b.Handle(command, bot.instrument(command, h))
}

func (bot *Bot) instrument(command string, next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		fields := []any{log.FieldBotCommand, command}
		if chat := c.Chat(); chat != nil {
			fields = append(fields, log.FieldChatID, chat.ID)
		}

		if err := next(c); err != nil {
			return err
		}
		bot.metrics.CommandProcessed(command)
		bot.logger.Debug("Command handled", fields...)
		return nil
	}
}

func (bot *Bot) onError(err error, c telebot.Context) {
	bot.metrics.Error()
	fields := log.NewFields().WithError(err).WithErrorType(log.ErrorTypeNetwork)
	if c != nil && c.Chat() != nil {
		fields[log.FieldChatID] = c.Chat().ID
	}
	bot.logger.Error("Bot handler failed", fields.ToSlice()...)
}

func (bot *Bot) handleStart(c telebot.Context) error {
	return c.Send(startReply)
}

func (bot *Bot) handleHelp(c telebot.Context) error {
	return c.Send(helpText())
}

func helpText() string {
	return strings.Join([]string{
		"Available commands:",
		CommandStart + " - say hello",
		CommandHelp + " - show this message",
	}, "\n")
}
