package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"promptforge/internal/assets"
	"promptforge/internal/config"
	"promptforge/internal/database"
	"promptforge/internal/events"
	"promptforge/internal/fsaccess"
	"promptforge/internal/importer"
	"promptforge/internal/logging"
	"promptforge/internal/services"
	"promptforge/internal/tokens"
)

// App holds the wired services for one CLI invocation.
type App struct {
	ctx context.Context
	cfg *config.Config

	db            *gorm.DB
	services      *services.DbServices
	keyring       *services.KeyringService
	clients       *services.ClientService
	importer      *services.ImporterService
	conversations *services.ConversationService

	tokenizer  tokens.Tokenizer
	worker     *tokens.Worker
	countModel string
}

// NewApp creates a new App for cfg.
func NewApp(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// startup opens the database and keyring and wires the services. Token
// counting is set up lazily by dispatcher.
func (a *App) startup(ctx context.Context) error {
	a.ctx = ctx

	if err := logging.Init(logging.Config{
		Level:      a.cfg.Log.Level,
		Format:     a.cfg.Log.Format,
		OutputPath: a.cfg.Log.Output,
	}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	events.EnableLogEmitter()

	gormLevel := logger.Warn
	if a.cfg.Log.Level == "debug" {
		gormLevel = logger.Info
	}
	db, err := database.Init(database.Config{Path: a.cfg.Database.Path, LogLevel: gormLevel})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.db = db

	ring, err := services.OpenKeyring()
	if err != nil {
		return err
	}
	a.keyring = services.NewKeyringService(ring)

	a.services = services.NewDbServices(db, assets.ModelsData, a.cfg.Chats.UndoWindow, a.openRoot)
	if err := a.services.Models.Startup(ctx); err != nil {
		return err
	}
	a.clients = services.NewClientService(a.keyring, a.services.Models, a.cfg.LLM.Timeout)
	a.importer = services.NewImporterService(importer.LimitsFromConfig(a.cfg.Limits))

	a.tokenizer, err = tokens.LoadTokenizer(a.cfg.Tokens.Tokenizer, a.cfg.Tokens.TokenizerModel, a.cfg.Tokens.TokenizerFile)
	if err != nil {
		logging.Warn("tokenizer unavailable, using heuristic counts", zap.String("tokenizer", a.cfg.Tokens.Tokenizer), zap.Error(err))
		a.tokenizer = tokens.HeuristicTokenizer{}
	}
	a.conversations = services.NewConversationService(a.services.Chats, a.clients, a.tokenizer)
	return nil
}

// shutdown is called when the command finishes. Clean up resources here.
func (a *App) shutdown() {
	if a.clients != nil {
		a.clients.StopAll()
	}
	if a.worker != nil {
		a.worker.Close()
	}
	if a.tokenizer != nil {
		a.tokenizer.Close()
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			logging.Error("failed to close database", zap.Error(err))
		}
		a.db = nil
	}
	_ = logging.Sync()
}

func (a *App) scanOptions() fsaccess.Options {
	return fsaccess.Options{
		Exclude:          a.cfg.Scan.Exclude,
		DefaultIgnores:   a.cfg.Scan.DefaultIgnores,
		RespectGitignore: a.cfg.Scan.RespectGitignore,
		IgnoreFile:       a.cfg.Scan.IgnoreFile,
	}
}

// openRoot reopens a saved root. OS handle ids are absolute paths.
func (a *App) openRoot(id string) (fsaccess.DirectoryHandle, error) {
	return fsaccess.OpenDir(id, a.scanOptions())
}

const defaultCountModel = "gemini-2.5-flash"

// dispatcher starts the token worker on first use. With tokens.remote set
// and a Gemini key available, counts come from the countTokens API.
func (a *App) dispatcher() tokens.Dispatcher {
	if a.worker != nil {
		return a.worker
	}
	var backend tokens.Backend = tokens.NewLocalBackend(a.tokenizer)
	a.countModel = a.cfg.Tokens.TokenizerModel
	if a.cfg.Tokens.Remote {
		remote, err := a.clients.TokenBackend(a.ctx)
		if err != nil {
			logging.Warn("remote token counting unavailable, counting locally", zap.Error(err))
		} else {
			backend = remote
			a.countModel = defaultCountModel
			if m, err := a.services.Models.GetModel(a.cfg.LLM.Model); err == nil && m.ProviderID == "gemini" {
				a.countModel = m.APIName
			}
		}
	}
	a.worker = tokens.NewWorker(backend, a.cfg.Tokens.CacheSize)
	return a.worker
}

func (a *App) newEstimator(session string, onChange func(tokens.Estimate)) *tokens.Estimator {
	d := a.dispatcher()
	return tokens.NewEstimator(d, a.countModel, tokens.EstimatorOptions{
		Debounce: a.cfg.Tokens.Debounce,
		Timeout:  a.cfg.Tokens.Timeout,
		Session:  session,
		OnChange: onChange,
	})
}
