package main

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yashrajoria/stripe-bridge/config"
	"github.com/yashrajoria/stripe-bridge/controllers"
	"github.com/yashrajoria/stripe-bridge/database"
	"github.com/yashrajoria/stripe-bridge/models"
	awspkg "github.com/yashrajoria/stripe-bridge/pkg/aws"
	"github.com/yashrajoria/stripe-bridge/repository"
)

// replayBackend is the configured replay store plus its health checks,
// cleanup and expiry housekeeping.
type replayBackend struct {
	store  repository.ReplayStore
	checks map[string]controllers.Pinger
	close  func()
	purge  func(ctx context.Context) (int64, error)
}

func openReplayStore(ctx context.Context, cfg *config.Config, awsCfg sdkaws.Config, log *zap.Logger) (*replayBackend, error) {
	switch cfg.ReplayStore {
	case config.ReplayStoreMemory:
		log.Warn("Using in-memory replay store; markers are lost on restart and not shared between instances")
		mem := repository.NewMemoryReplayStore()
		return &replayBackend{
			store: mem,
			close: func() {},
			purge: func(context.Context) (int64, error) { return int64(mem.Sweep()), nil },
		}, nil

	case config.ReplayStoreRedis:
		client, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, err
		}
		return &replayBackend{
			store:  repository.NewRedisReplayStore(client),
			checks: map[string]controllers.Pinger{"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() }},
			close:  func() { _ = client.Close() },
		}, nil

	case config.ReplayStorePostgres:
		db, err := database.ConnectPostgres(cfg.PostgresDSN(), log, &models.ProcessedEvent{})
		if err != nil {
			return nil, err
		}
		store := repository.NewGormReplayStore(db)
		return &replayBackend{
			store:  store,
			checks: map[string]controllers.Pinger{"postgres": pingGorm(db)},
			close: func() {
				if err := database.ClosePostgres(db); err != nil {
					log.Error("Database close error", zap.Error(err))
				}
			},
			purge: store.PurgeExpired,
		}, nil

	case config.ReplayStoreDynamoDB:
		client := awspkg.NewDynamoDBClient(awsCfg)
		return &replayBackend{
			store: repository.NewDynamoReplayStore(client, cfg.DynamoDBReplayTable),
			close: func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown replay store %q", cfg.ReplayStore)
}

func pingGorm(db *gorm.DB) controllers.Pinger {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// housekeep drops expired markers on stores that do not expire them
// natively. Redis and DynamoDB TTLs need no sweeping.
func (b *replayBackend) housekeep(ctx context.Context, every time.Duration, log *zap.Logger) {
	if b.purge == nil {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := b.purge(ctx)
			if err != nil {
				log.Warn("Replay marker purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("Purged expired replay markers", zap.Int64("count", n))
			}
		}
	}
}
