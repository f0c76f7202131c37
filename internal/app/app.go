package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"pixsort/internal/config"
	"pixsort/internal/costtracker"
	"pixsort/internal/history"
	"pixsort/internal/library"
	"pixsort/internal/sorter"
	"pixsort/pkg/classifier"
)

// App holds the wired-up services every command works against.
type App struct {
	Config      *config.Config
	Library     *library.Library
	History     *history.Store
	Classifier  classifier.ImageClassifier
	CostTracker costtracker.CostTracker
	Sorter      *sorter.Sorter
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &App{Config: cfg}

	if err := app.initLibrary(); err != nil {
		return nil, err
	}
	if err := app.initHistory(); err != nil {
		return nil, err
	}
	if err := app.initClassifier(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}

	app.Sorter = sorter.New(app.Classifier, app.Library, app.History)
	log.Debug("Application initialization complete.")
	return app, nil
}

// Close releases the ledger and any provider clients.
func (a *App) Close() {
	if closer, ok := a.Classifier.(interface{ Close() error }); ok && closer != nil {
		if err := closer.Close(); err != nil {
			log.Warnf("Failed to close classifier client: %v", err)
		}
	}
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			log.Warnf("Failed to close history store: %v", err)
		}
	}
}

func (a *App) initLibrary() error {
	lib, err := library.Open(a.Config.Folders.Output)
	if err != nil {
		return fmt.Errorf("init library: %w", err)
	}
	a.Library = lib
	return nil
}

func (a *App) initHistory() error {
	store, err := history.Open(a.Config.History.DBPath)
	if err != nil {
		return fmt.Errorf("init history store: %w", err)
	}
	a.History = store
	return nil
}

func (a *App) initClassifier(ctx context.Context) error {
	a.CostTracker = costtracker.New(a.Config.Pricing)

	prompt, err := config.LoadPromptContent(a.Config.Classifier.PromptTemplate)
	if err != nil {
		return fmt.Errorf("init classifier: %w", err)
	}

	cfg := a.Config.Classifier
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		clf, err := classifier.NewOpenRouterClassifier(cfg.OpenrouterApiKey, cfg.BaseURL, cfg.Model, prompt, a.CostTracker)
		if err != nil {
			return fmt.Errorf("init classifier: %w", err)
		}
		a.Classifier = clf
	case config.ProviderGemini:
		clf, err := classifier.NewGeminiClassifier(ctx, cfg.GeminiApiKey, cfg.Model, prompt, a.CostTracker)
		if err != nil {
			return fmt.Errorf("init classifier: %w", err)
		}
		a.Classifier = clf
	default:
		return fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}
	return nil
}

func (a *App) cleanupPartialInit() {
	if a.History != nil {
		a.History.Close()
		a.History = nil
	}
}
