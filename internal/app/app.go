// Package app assembles the process: configuration in, a ready HTTP
// server and optional Telegram bot out.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openai/openai-go/option"

	"github.com/siftlabs/sift/internal/agent"
	"github.com/siftlabs/sift/internal/api"
	"github.com/siftlabs/sift/internal/chatstore"
	"github.com/siftlabs/sift/internal/checkpoint"
	"github.com/siftlabs/sift/internal/config"
	"github.com/siftlabs/sift/internal/database"
	"github.com/siftlabs/sift/internal/model"
	"github.com/siftlabs/sift/internal/telegram"
	"github.com/siftlabs/sift/internal/tools"
)

// assistantIdentity is the persona preamble for every turn.
const assistantIdentity = "You are Sift, a helpful AI assistant. " +
	"You can search the web for current information when a question needs it. " +
	"Answer concisely and cite what you found when you searched."

// App holds the assembled application.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Genkit      *genkit.Genkit
	Pool        *pgxpool.Pool
	Chats       *chatstore.Store
	Checkpoints *checkpoint.Store
	Loop        *agent.Loop
	Bot         *telegram.Bot
	Server      *api.Server
}

// Setup wires every component from cfg. Missing optional pieces
// (database, bot token) degrade with a log line rather than failing.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.ValidateServe(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{
		APIKey: cfg.GroqAPIKey,
		Opts: []option.RequestOption{
			option.WithBaseURL(cfg.ModelBaseURL),
		},
	}))
	if g == nil {
		return nil, errors.New("initializing genkit with openai provider")
	}
	logger.Info("initialized model provider", "model", cfg.ModelName, "base_url", cfg.ModelBaseURL)

	tavily, err := tools.NewTavily(tools.TavilyConfig{
		APIKey:     cfg.TavilyAPIKey,
		MaxResults: cfg.SearchMaxResults,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating search client: %w", err)
	}

	registry := tools.NewRegistry(logger)
	searchHandler, err := tools.NewSearchHandler(tavily, logger)
	if err != nil {
		return nil, fmt.Errorf("creating search handler: %w", err)
	}
	if err := registry.Register(tools.SearchToolName, searchHandler); err != nil {
		return nil, fmt.Errorf("registering search tool: %w", err)
	}
	searchTool := tools.DefineSearchTool(g, tavily)

	modelClient, err := model.New(model.Config{
		Genkit: g,
		Name:   "openai/" + cfg.ModelName,
		Tools:  []ai.ToolRef{searchTool},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}

	checkpoints := checkpoint.NewStore()
	loop, err := agent.New(agent.Config{
		Model:       modelClient,
		Tools:       registry,
		Checkpoints: checkpoints,
		Logger:      logger,
		Identity:    assistantIdentity,
	})
	if err != nil {
		return nil, fmt.Errorf("creating agent loop: %w", err)
	}

	app := &App{
		Config:      cfg,
		Logger:      logger,
		Genkit:      g,
		Checkpoints: checkpoints,
		Loop:        loop,
	}

	if cfg.PersistenceEnabled() {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := database.Migrate(pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		chats, err := chatstore.New(pool, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		app.Pool = pool
		app.Chats = chats
		logger.Info("chat persistence enabled")
	} else {
		logger.Warn("DATABASE_URL not set, chat persistence disabled")
	}

	if cfg.BotEnabled() {
		bot, err := telegram.New(telegram.Config{
			Token:  cfg.TelegramToken,
			Runner: loop,
			Logger: logger,
		})
		if err != nil {
			logger.Warn("creating telegram bot failed, running HTTP-only", "error", err)
		} else {
			app.Bot = bot
		}
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN not set, running HTTP-only")
	}

	serverCfg := api.ServerConfig{
		Logger:      logger,
		Runner:      loop,
		BotActive:   app.Bot != nil,
		CORSOrigins: cfg.CORSOrigins,
	}
	if app.Chats != nil {
		serverCfg.Chats = app.Chats
	}
	server, err := api.NewServer(serverCfg)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("creating http server: %w", err)
	}
	app.Server = server

	return app, nil
}

// Close releases held resources. Safe to call on a partially built App.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
