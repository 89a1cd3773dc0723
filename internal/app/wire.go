package app

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"sealkv/internal/config"
	"sealkv/internal/domain"
	"sealkv/internal/inspect"
	"sealkv/internal/keyring"
	"sealkv/internal/log"
	"sealkv/internal/metrics"
	"sealkv/internal/store"
)

// Wire bundles the registry, inspector and instrumentation for the CLI.
type Wire struct {
	Config    config.Config
	Logger    log.Logger
	Keys      domain.MasterKeySource
	Registry  *store.Registry
	Inspector *inspect.Inspector
	Metrics   *metrics.Store
	Gatherer  prometheus.Gatherer
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg config.Config, logger log.Logger) (*Wire, error) {
	if cfg.Storage.Home == "" {
		return nil, errors.New("storage home not set")
	}

	keys, err := keyring.New(keyring.Mode(cfg.Keyring.Mode), filepath.Join(cfg.Storage.Home, "keyring"), cfg.Keyring.Passphrase)
	if err != nil {
		return nil, err
	}

	m := metrics.NewStore()
	gatherer := metrics.Init(m, logger)

	reg, err := store.NewRegistry(store.Options{
		Root:          cfg.Storage.Home,
		Keys:          keys,
		User:          domain.UserID(cfg.Session.User),
		MaxValueBytes: cfg.Storage.MaxValueBytes,
		Observer:      m,
		Logger:        &logger,
	})
	if err != nil {
		return nil, err
	}

	return &Wire{
		Config:    cfg,
		Logger:    logger,
		Keys:      keys,
		Registry:  reg,
		Inspector: inspect.New(reg),
		Metrics:   m,
		Gatherer:  gatherer,
	}, nil
}

// Close releases every open store.
func (w *Wire) Close() error {
	return w.Registry.Close()
}
