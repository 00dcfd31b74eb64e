package main

import (
	"context"
	"fmt"

	"github.com/gbarzaghi/scontrino/internal/config"
	"github.com/gbarzaghi/scontrino/internal/engine"
	"github.com/gbarzaghi/scontrino/internal/service"
	"github.com/gbarzaghi/scontrino/internal/storage"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/scontrino/scontrino.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine builds a matching engine with thresholds from config, falling
// back to the defaults.
func initEngine() *engine.Engine {
	cfg := engine.DefaultConfig()
	if viper.IsSet("matching.match_threshold") {
		cfg.MatchThreshold = viper.GetFloat64("matching.match_threshold")
	}
	if viper.IsSet("matching.suggest_threshold") {
		cfg.SuggestThreshold = viper.GetFloat64("matching.suggest_threshold")
	}
	return engine.NewWithConfig(engine.NewLexicalScorer(), cfg)
}
