package commands

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/gnmanager/casting/internal/config"
	"github.com/gnmanager/casting/pkg/clients/gmailclient"
	"github.com/gnmanager/casting/pkg/clients/sheetsclient"
	"github.com/gnmanager/casting/pkg/db"
	"github.com/gnmanager/casting/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands.
// Google clients are created on first use, since only the publishing and
// announcing commands need OAuth.
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database db.Database
	Logger   *zap.Logger
	Ctx      context.Context

	oauthCfg     *config.OAuthClientConfig
	sheetsClient *sheetsclient.Client
	gmailClient  *gmailclient.Client
}

// OpenDatabase connects the store selected by the config
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.Database, error) {
	switch cfg.Store {
	case config.StorePostgres:
		logger.Info("Connecting to PostgreSQL")
		pg, err := postgres.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.StoreMemory:
		if cfg.MemorySeedFile == "" {
			logger.Info("Using empty in-memory store")
			return db.NewMemoryStore(), nil
		}
		logger.Info("Using in-memory store", zap.String("seed_file", cfg.MemorySeedFile))
		store, err := db.NewMemoryStoreFromFile(cfg.MemorySeedFile)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Postgres returns the database as a PostgreSQL store, for commands that
// manage the schema or import data
func (app *AppContext) Postgres() (*postgres.DB, error) {
	pg, ok := app.Database.(*postgres.DB)
	if !ok {
		return nil, fmt.Errorf("this command needs store %q, configured store is %q", config.StorePostgres, app.Cfg.Store)
	}
	return pg, nil
}

func (app *AppContext) loadOAuth() error {
	if app.oauthCfg != nil {
		return nil
	}
	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}
	app.oauthCfg = oauthCfg
	return nil
}

// SheetsClient returns the Google Sheets client, authorizing on first use
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}
	if err := app.loadOAuth(); err != nil {
		return nil, err
	}

	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(app.Ctx, app.oauthCfg, app.Env, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.sheetsClient = client
	return client, nil
}

// GmailClient returns the Gmail client. It shares the token of the sheets client.
func (app *AppContext) GmailClient() (*gmailclient.Client, error) {
	if app.gmailClient != nil {
		return app.gmailClient, nil
	}
	sheets, err := app.SheetsClient()
	if err != nil {
		return nil, err
	}

	app.Logger.Info("Initializing gmail client")
	client, err := gmailclient.NewClient(app.Ctx, app.oauthCfg, sheets.Token(), app.Cfg.Gmail.Sender)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	app.gmailClient = client
	return client, nil
}

// parseEventID parses the event ID argument of a command
func parseEventID(arg string) (int, error) {
	eventID, err := strconv.Atoi(arg)
	if err != nil || eventID <= 0 {
		return 0, fmt.Errorf("event_id must be a positive number, got %q", arg)
	}
	return eventID, nil
}
