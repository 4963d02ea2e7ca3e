package cmd

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zfogg/pageshare/pkg/config"
	clierrors "github.com/zfogg/pageshare/pkg/errors"
	"github.com/zfogg/pageshare/pkg/kv"
	"github.com/zfogg/pageshare/pkg/logger"
	"github.com/zfogg/pageshare/pkg/metrics"
	"github.com/zfogg/pageshare/pkg/post"
	"github.com/zfogg/pageshare/pkg/session"
	"github.com/zfogg/pageshare/pkg/snapshot"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// app is the per-command wiring: backend, store and metrics registry.
type app struct {
	backendName string
	backend     kv.Backend
	store       *snapshot.Store[post.Post]
	registry    *prometheus.Registry
}

func openApp(ctx context.Context) (*app, error) {
	cfg := config.Store()
	backend, err := kv.Open(ctx, cfg)
	if err != nil {
		return nil, clierrors.StorageError("Failed to open "+cfg.Backend+" store", err)
	}
	logger.Debug("Opened store", "backend", cfg.Backend)

	reg := prometheus.NewRegistry()
	store := snapshot.New[post.Post](backend, snapshot.Options[post.Post]{
		MaxRecords: config.GetInt("store.max_records"),
		MaxBytes:   config.GetInt("store.max_bytes"),
		Newer:      post.NewestFirst,
		Metrics:    metrics.New(reg),
	})

	return &app{
		backendName: cfg.Backend,
		backend:     backend,
		store:       store,
		registry:    reg,
	}, nil
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		logger.Warn("Failed to close store", "err", err)
	}
}

// withApp opens the store for the duration of fn.
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// actingHandle resolves --as or the saved session, failing when neither is set.
func actingHandle() (string, error) {
	handle, err := session.Handle(asHandle)
	if err != nil {
		return "", clierrors.NewCLIError(clierrors.ErrorTypeSession, "Failed to read session", err)
	}
	if handle == "" {
		return "", clierrors.SessionError()
	}
	return handle, nil
}
