package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dudas-espanol/internal/ai"
	"dudas-espanol/internal/app"
	"dudas-espanol/internal/cache"
	"dudas-espanol/internal/config"
	"dudas-espanol/internal/pkg/logger"
	redisClient "dudas-espanol/internal/platform/redis"
)

type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Redis   *redis.Client
	History cache.HistoryStore
	Chat    *app.ChatService

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Logger:    log,
		StartedAt: time.Now(),
	}

	switch cfg.Session.Store {
	case config.StoreRedis:
		redisCli, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.Redis = redisCli
		a.History = cache.NewRedisHistory(redisCli, cfg.SessionTTL())
	default:
		a.History = cache.NewMemoryHistory(cfg.SessionTTL())
	}

	var completer app.Completer
	if cfg.LLMConfigured() {
		completer = ai.NewOpenAICompatibleClient(ai.ChatConfig{
			BaseURL:             cfg.LLM.BaseURL,
			APIKey:              cfg.LLM.APIKey,
			Model:               cfg.LLM.Model,
			MaxCompletionTokens: cfg.LLM.MaxCompletionTokens,
			Temperature:         cfg.LLM.Temperature,
			TopP:                cfg.LLM.TopP,
			Timeout:             cfg.LLMTimeout(),
		})
	} else {
		log.Warn("llm api key or model missing, questions will fail until configured",
			zap.String("base_url", cfg.LLM.BaseURL))
	}

	a.Chat = app.NewChatService(a.History, completer, cfg.LLM.SystemPrompt, log.Named("chat"))

	log.Info("app bootstrapped",
		zap.String("env", cfg.App.Env),
		zap.String("session_store", cfg.Session.Store),
		zap.String("model", cfg.LLM.Model),
	)
	return a, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}
