package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/job-tracker/internal/assistant"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/llm"
	"github.com/jonathan/job-tracker/internal/parsing"
	"github.com/jonathan/job-tracker/internal/store"
	"github.com/jonathan/job-tracker/internal/users"
)

// snapshotKey names the single state row in the database backends.
const snapshotKey = "default"

// app holds the services shared by the commands.
type app struct {
	cfg       *config.Config
	store     *store.Store
	users     users.Repository
	model     llm.Client
	extractor *parsing.Extractor
	assistant *assistant.Service
	closers   []func()
}

// newApp loads configuration and builds the model-backed services. The state
// backend and assistant are opened only when withState is set.
func newApp(ctx context.Context, withState bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	if withState {
		if err := a.openStore(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	if key := cfg.APIKey(); key != "" {
		client, err := llm.NewClient(ctx, cfg.LLMConfig(), key)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create model client: %w", err)
		}
		a.model = client
		a.closers = append(a.closers, func() { _ = client.Close() })
	} else {
		log.Printf("[config] no API key for provider %s, using keyword extraction and canned replies", cfg.Provider)
	}

	a.extractor = parsing.NewExtractor(a.model, parsing.WithTimeout(cfg.ExtractTimeoutOrDefault()))
	if a.store != nil {
		a.assistant = assistant.NewService(a.store, a.extractor, assistant.NewChatter(a.model, cfg.ChatTimeoutOrDefault()))
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	var (
		persister store.Persister
		repo      users.Repository
	)

	switch a.cfg.StoreBackend {
	case config.BackendFile:
		persister = store.NewFilePersister(a.cfg.StorePathOrDefault())
	case config.BackendSQLite:
		sqlite, err := db.OpenSQLite(ctx, a.cfg.StorePathOrDefault())
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = sqlite.Close() })
		persister = sqlite.Persister(snapshotKey)
		repo = sqlite
	case config.BackendPostgres:
		pg, err := db.Connect(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pg.Close)
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		persister = pg.Persister(snapshotKey)
		repo = pg
	}
	if repo == nil {
		repo = users.NewMemoryRepository()
	}
	a.users = repo

	// The seed goes in before the persister so it is only written when
	// nothing was stored yet.
	opts := []store.Option{store.WithNotificationDuration(a.cfg.NotificationDurationOrDefault())}
	if a.cfg.ShouldSeed() {
		opts = append(opts, store.WithSeed(store.DefaultSeed(time.Now())))
	}
	if persister != nil {
		opts = append(opts, store.WithPersister(persister))
	}
	a.store = store.New(opts...)
	a.closers = append(a.closers, a.store.Close)

	err := a.store.Load(ctx)
	switch {
	case err == nil:
		log.Printf("[store] restored state from %s backend", a.cfg.StoreBackend)
	case errors.Is(err, store.ErrNoSnapshot):
		if persister != nil {
			if err := a.store.Flush(ctx); err != nil {
				return fmt.Errorf("failed to write initial state: %w", err)
			}
		}
	default:
		return fmt.Errorf("failed to load state: %w", err)
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
