package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "crypto-graves/internal/api"
	"crypto-graves/internal/api/handler"
	"crypto-graves/internal/config"
	"crypto-graves/internal/repository"
	"crypto-graves/internal/repository/postgres"
	"crypto-graves/internal/service"
	"crypto-graves/internal/util"
	"crypto-graves/pkg/db"
	"crypto-graves/pkg/ethsig"
)

const (
	serviceName    = "Crypto Graves API"
	serviceVersion = "1.0.0"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository     repository.UserRepository
	PositionRepository repository.PositionRepository
	LossRepository     repository.LossRepository
	MintRepository     repository.MintRepository

	// Services
	UserService     service.UserService
	PositionService service.PositionService
	LossService     service.LossService
	MintService     service.MintService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.LogLevel, cfg.LogFormat)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")
	if cfg.Debug {
		app.Logger.Debug("Effective configuration", "config", cfg.String())
	}

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(app.DB); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		app.Logger.Info("Database migrations applied.")
	}

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.PositionRepository = postgres.NewPositionRepository(app.DB)
	app.LossRepository = postgres.NewLossRepository(app.DB)
	app.MintRepository = postgres.NewMintRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize Services
	// app.DB serves both as the DBTxBeginner and as the DBExecutor for reads.
	app.UserService = service.NewUserService(
		app.DB,
		app.DB,
		app.UserRepository,
		ethsig.NewVerifier(app.Logger),
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.PositionService = service.NewPositionService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.PositionRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.LossService = service.NewLossService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.LossRepository,
		cfg.MaxUploadSize,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.MintService = service.NewMintService(
		app.DB,
		app.DB,
		app.PositionRepository,
		app.LossRepository,
		app.MintRepository,
		service.MintSettings{
			NFTContractAddress:   cfg.Chain.NFTContractAddress,
			TokenContractAddress: cfg.Chain.TokenContractAddress,
			NFTImageBaseURL:      cfg.Chain.NFTImageBaseURL,
			ChainID:              cfg.Chain.ChainID,
		},
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	// 6. Initialize HTTP Handlers and Router
	handlers := router.Handlers{
		System: handler.NewSystemHandler(handler.PingerFunc(func(ctx context.Context) bool {
			return db.Ping(ctx, app.DB)
		}), serviceName, serviceVersion, app.Logger),
		User:     handler.NewUserHandler(app.UserService, app.Logger),
		Position: handler.NewPositionHandler(app.PositionService, app.Logger),
		Loss:     handler.NewLossHandler(app.LossService, cfg.MaxUploadSize, app.Logger),
		Mint:     handler.NewMintHandler(app.MintService, app.Logger),
	}
	app.HTTPHandler = router.NewRouter(handlers, router.RouterOptions{
		APIPrefix:          cfg.APIPrefix,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
