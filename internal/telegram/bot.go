// Package telegram runs the long-polling bot front end. It shares the
// agent loop with the HTTP API; each Telegram user maps to one
// conversation thread, reset by /start and /clear.
package telegram

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/siftlabs/sift/internal/agent"
)

// Telegram rejects messages longer than 4096 characters.
const messageLimit = 4096

const welcomeText = "Welcome to Sift!\n\n" +
	"I'm an AI assistant that can:\n" +
	"- Answer your questions\n" +
	"- Search the web for information\n" +
	"- Have contextual conversations\n\n" +
	"Just send me a message and I'll respond. Use /help for more commands."

const helpText = "Available commands:\n\n" +
	"/start - Start a new conversation\n" +
	"/help - Show this help message\n" +
	"/clear - Clear conversation history\n\n" +
	"Simply send any message to chat."

const clearedText = "Conversation history cleared! Starting fresh..."

const errorText = "Sorry, I ran into an error answering that.\n\n" +
	"Please try again or use /clear to reset the conversation."

// Runner runs one agent turn and returns the final answer. Satisfied
// by *agent.Loop.
type Runner interface {
	Run(ctx context.Context, threadID, input string, emit agent.EmitFunc) (string, error)
}

// Config carries the bot's dependencies.
type Config struct {
	Token  string
	Runner Runner
	Logger *slog.Logger
}

// Bot polls Telegram for updates and answers them through the agent
// loop.
type Bot struct {
	api    *tgbotapi.BotAPI
	runner Runner
	logger *slog.Logger

	mu      sync.Mutex
	threads map[int64]string
}

// New creates a Bot and verifies the token against the Telegram API.
func New(cfg Config) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram: bot token is required")
	}
	if cfg.Runner == nil {
		return nil, errors.New("telegram: runner is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	logger.Info("telegram bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:     api,
		runner:  cfg.Runner,
		logger:  logger,
		threads: make(map[int64]string),
	}, nil
}

// Start polls for updates until ctx is canceled. Each message is
// handled on its own goroutine so a slow turn does not block other
// users; same-thread turns still serialize inside the loop.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			wg.Wait()
			b.logger.Info("telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				wg.Wait()
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer wg.Done()
				b.handleMessage(ctx, msg)
			}(update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	if !msg.IsCommand() {
		// Typing indicator while the turn runs. Failures here are
		// cosmetic.
		if _, err := b.api.Request(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping)); err != nil {
			b.logger.Debug("sending chat action", "error", err)
		}
	}

	reply := b.respond(ctx, userID, msg.Text, msg.Command())

	for _, chunk := range chunkMessage(reply, messageLimit) {
		out := tgbotapi.NewMessage(msg.Chat.ID, chunk)
		if _, err := b.api.Send(out); err != nil {
			b.logger.Error("sending telegram message", "error", err, "user_id", userID)
			return
		}
	}
}

// respond produces the reply text for one incoming message. command is
// empty for free text.
func (b *Bot) respond(ctx context.Context, userID int64, text, command string) string {
	switch command {
	case "start":
		b.resetThread(userID)
		return welcomeText
	case "help":
		return helpText
	case "clear":
		b.resetThread(userID)
		return clearedText
	case "":
	default:
		return helpText
	}

	answer, err := b.runner.Run(ctx, b.threadFor(userID), text, nil)
	if err != nil {
		b.logger.Error("agent turn failed", "error", err, "user_id", userID)
		return errorText
	}
	if answer == "" {
		return errorText
	}
	return answer
}

// threadFor returns the user's conversation thread ID, creating one on
// first contact.
func (b *Bot) threadFor(userID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.threads[userID]
	if !ok {
		id = uuid.NewString()
		b.threads[userID] = id
	}
	return id
}

// resetThread gives the user a fresh thread, abandoning the old
// history.
func (b *Bot) resetThread(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.threads[userID] = uuid.NewString()
}

// chunkMessage splits text into rune-safe pieces of at most limit
// runes.
func chunkMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	chunks := make([]string, 0, len(runes)/limit+1)
	for start := 0; start < len(runes); start += limit {
		end := min(start+limit, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
