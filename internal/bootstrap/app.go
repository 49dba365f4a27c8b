package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mcp-chat/internal/cache"
	"mcp-chat/internal/config"
	"mcp-chat/internal/logger"
	"mcp-chat/internal/model"
	postgresClient "mcp-chat/internal/platform/postgres"
	rabbitmqClient "mcp-chat/internal/platform/rabbitmq"
	redisClient "mcp-chat/internal/platform/redis"
	"mcp-chat/internal/repository"
	"mcp-chat/internal/worker"
)

type App struct {
	Config        *config.Config
	Logger        *zap.Logger
	DB            *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	Cache         *cache.TranscriptCache
	TurnPublisher *rabbitmqClient.TurnPublisher
	CacheWorker   *worker.TranscriptCacheWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log := logger.New(cfg.Log.FilePath, cfg.App.Env == "prod")

	db, err := postgresClient.New(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.Conversation{}, &model.Message{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	transcriptCache := cache.NewTranscriptCache(
		redisCli,
		time.Duration(cfg.Redis.TranscriptTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.TranscriptDirtyTTLSeconds)*time.Second,
	)
	turnPublisher := rabbitmqClient.NewTurnPublisher(mqConn, cfg.RabbitMQ.TurnEventQueue)

	messageRepo := repository.NewMessageRepository(db)
	cacheWorker := worker.NewTranscriptCacheWorker(mqConn, messageRepo, transcriptCache, cfg.RabbitMQ.TurnEventQueue, log)
	if err := cacheWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start cache worker failed: %w", err)
	}

	return &App{
		Config:        cfg,
		Logger:        log,
		DB:            db,
		Redis:         redisCli,
		MQConn:        mqConn,
		Cache:         transcriptCache,
		TurnPublisher: turnPublisher,
		CacheWorker:   cacheWorker,
		StartedAt:     time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.CacheWorker != nil {
		a.CacheWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}
