// Package app assembles the relay service from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/antoniostano/luna/internal/completion"
	"github.com/antoniostano/luna/internal/config"
	"github.com/antoniostano/luna/internal/httpapi"
	"github.com/antoniostano/luna/internal/messenger"
	"github.com/antoniostano/luna/internal/observability"
	"github.com/antoniostano/luna/internal/relay"
	"github.com/antoniostano/luna/internal/session"
)

const feedBuffer = 64

type BuildResult struct {
	Config     config.Config
	API        *httpapi.Server
	Store      session.Store
	Provider   completion.Provider
	Dispatcher *relay.Dispatcher
	Hub        *httpapi.Hub
	Metrics    *observability.Metrics

	// Cleanup drains queued messages and releases the session store. It
	// should run after the HTTP server stops accepting webhooks.
	Cleanup func(ctx context.Context) error
}

func Build(ctx context.Context, cfg config.Config, log zerolog.Logger) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	store, err := session.NewStore(ctx, session.Options{
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("session store init failed: %w", err)
	}

	provider, err := completion.NewProvider(completion.ProviderConfig{
		Mode:    cfg.CompletionMode,
		APIKey:  cfg.CompletionAPIKey,
		BaseURL: cfg.CompletionBaseURL,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("completion provider init failed: %w", err)
	}

	replies := completion.NewClient(completion.Config{
		Model:       cfg.CompletionModel,
		Temperature: cfg.CompletionTemperature,
		Timeout:     cfg.CompletionTimeout,
	}, store, provider, metrics, log)

	sender := messenger.NewSender(cfg.GraphAPIURL, cfg.PageAccessToken, nil)
	hub := httpapi.NewHub(feedBuffer)
	controller := relay.NewController(replies, sender, hub, metrics, log)
	dispatcher := relay.NewDispatcher(controller, cfg.RelayWorkers, cfg.RelayQueueSize, metrics, log)

	api := httpapi.New(cfg, store, dispatcher, hub, metrics, log)

	cleanup := func(ctx context.Context) error {
		var errs []error
		if err := dispatcher.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("relay drain: %w", err))
		}
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("session store close: %w", err))
		}
		return errors.Join(errs...)
	}

	return &BuildResult{
		Config:     cfg,
		API:        api,
		Store:      store,
		Provider:   provider,
		Dispatcher: dispatcher,
		Hub:        hub,
		Metrics:    metrics,
		Cleanup:    cleanup,
	}, nil
}
