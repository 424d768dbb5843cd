package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"legend/api/types"
)

// New connects to MongoDB and Redis. Both clients are released with Close.
func New(ctx context.Context, cfg *types.Config) (*types.Database, error) {
	db := &types.Database{Name: cfg.MongoDatabase}

	if err := initMongoDB(ctx, db, cfg); err != nil {
		return nil, err
	}

	if err := initRedis(ctx, db, cfg); err != nil {
		Close(context.Background(), db)
		return nil, err
	}

	return db, nil
}

func Close(ctx context.Context, db *types.Database) {
	if db.MongoDB != nil {
		_ = db.MongoDB.Disconnect(ctx)
	}
	if db.Redis != nil {
		_ = db.Redis.Close()
	}
}

func initMongoDB(ctx context.Context, db *types.Database, cfg *types.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("error pinging MongoDB: %w", err)
	}

	db.MongoDB = client
	return nil
}

func initRedis(ctx context.Context, db *types.Database, cfg *types.Config) error {
	addr := cfg.RedisURI
	if after, ok := strings.CutPrefix(addr, "redis://"); ok {
		addr = after
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("error connecting to Redis: %w", err)
	}

	db.Redis = client
	return nil
}
