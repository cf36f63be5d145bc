// Package app owns the process-wide state: the transient upload store,
// the loaded inference engine, and the augmentation provider. Startup
// must succeed before the HTTP server begins serving; Shutdown removes
// the store after the server stops. There is no re-initialization path.
package app

import (
	"context"
	"fmt"

	"github.com/voicescribe/voicescribe/internal/augment"
	"github.com/voicescribe/voicescribe/internal/config"
	"github.com/voicescribe/voicescribe/internal/stt"
	"github.com/voicescribe/voicescribe/internal/tempstore"
)

type App struct {
	cfg       *config.Config
	store     *tempstore.Store
	engine    stt.Engine
	augmenter augment.Provider
}

func New(cfg *config.Config) *App {
	return &App{
		cfg:   cfg,
		store: tempstore.New(cfg.Store.Dir),
	}
}

// Startup provisions the store, probes the inference engine, and
// constructs the augmentation provider. Any failure here is fatal.
func (a *App) Startup(ctx context.Context) error {
	if err := a.store.Provision(); err != nil {
		return fmt.Errorf("provision upload store: %w", err)
	}

	engine := stt.NewWhisperEngine(stt.WhisperConfig{
		BaseURL: a.cfg.STT.BaseURL,
		Model:   a.cfg.STT.Model,
		APIKey:  a.cfg.STT.APIKey,
	})
	if err := engine.Load(ctx); err != nil {
		return fmt.Errorf("load inference engine: %w", err)
	}
	a.engine = engine

	augmenter, err := augment.New(a.cfg.Augment)
	if err != nil {
		return fmt.Errorf("configure augmentation: %w", err)
	}
	a.augmenter = augmenter

	return nil
}

// Shutdown removes the upload store and everything left in it.
func (a *App) Shutdown() error {
	return a.store.Teardown()
}

func (a *App) Config() *config.Config { return a.cfg }

func (a *App) Store() *tempstore.Store { return a.store }

func (a *App) Engine() stt.Engine { return a.engine }

func (a *App) Augmenter() augment.Provider { return a.augmenter }
