package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"

	"RecipeKeeper/internal/config"
	"RecipeKeeper/internal/infrastructure/storage"
	"RecipeKeeper/internal/logging"
	"RecipeKeeper/internal/parser"
	"RecipeKeeper/internal/usecase"
	"RecipeKeeper/internal/web"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	db     *sql.DB
	server *web.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repository := storage.NewPostgresRepository(db)

	importer := parser.NewSiteImporter(
		&http.Client{Timeout: cfg.Parser.Timeout()},
		logging.Component(baseLogger, "parser"),
	)

	importUsecase := usecase.NewImporter(usecase.ImporterDeps{
		Parser:  importer,
		Recipes: repository,
		Logger:  logging.Component(baseLogger, "importer"),
	})

	handlers := web.NewHandlers(web.HandlerDeps{
		Importer:    importUsecase,
		Recommender: usecase.NewRecommender(repository),
		Recipes:     repository,
		Shopping:    repository,
		Stats:       repository,
		Logger:      logging.Component(baseLogger, "api"),
	})

	server := web.NewServer(cfg.Server.Addr, handlers, logging.Component(baseLogger, "http"))

	return &Application{cfg: cfg, db: db, server: server}, nil
}

// Run serves HTTP until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()
	return a.server.Run(ctx)
}
