package main

import (
	"context"
	"fmt"
	"time"

	"github.com/zulandar/taskyard/internal/config"
	"github.com/zulandar/taskyard/internal/db"
	"github.com/zulandar/taskyard/internal/store"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// connectFromConfig loads the config and opens the configured store. The
// returned close func releases the underlying connection.
func connectFromConfig(configPath string) (*config.Config, store.Store, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	st, closeFn, err := openStore(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, st, closeFn, nil
}

func openStore(cfg *config.Config) (store.Store, func(), error) {
	if cfg.Database.Driver == config.DriverMongo {
		ms, closeFn, err := openMongo(cfg)
		if err != nil {
			return nil, nil, err
		}
		return ms, closeFn, nil
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.Database.Name, err)
	}
	return store.NewGormStore(gormDB), func() { closeSQL(gormDB) }, nil
}

func closeSQL(gormDB *gorm.DB) {
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}
}

func openMongo(cfg *config.Config) (*store.MongoStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Database.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	cb := store.NewBreaker("mongo", cfg.Breaker.MaxFailures,
		time.Duration(cfg.Breaker.TimeoutSeconds)*time.Second)
	ms := store.NewMongoStore(client.Database(cfg.Database.Name), cb)
	closeFn := func() {
		client.Disconnect(context.Background())
	}
	return ms, closeFn, nil
}
