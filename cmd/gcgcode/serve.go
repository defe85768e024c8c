package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/dvaJi/genshin-builds-sub003/internal/httpapi"
	"github.com/dvaJi/genshin-builds-sub003/postgres"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the deck share code HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			codec, catalog, err := a.load()
			if err != nil {
				return err
			}

			var store httpapi.DeckStore
			if a.cfg.DatabaseURL != "" {
				db, err := openDB(cmd.Context(), a.cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer db.Close()
				store = &postgres.Store{DB: db, Codec: codec, Catalog: catalog}
			}

			e := newServer(a.logger)
			httpapi.NewHandler(codec, catalog, store, a.logger).Register(e)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				a.logger.Info("starting server", "addr", a.cfg.HTTPAddr, "cards", catalog.Len(), "store", store != nil)
				errc <- e.Start(a.cfg.HTTPAddr)
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			a.logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}

// newServer returns an echo instance with the request middleware chain.
// Recover sits inside the request id and logging middleware so a panicking
// handler still produces a logged 500 response.
func newServer(logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(httpapi.RequestIDMiddleware())
	e.Use(httpapi.LoggingMiddleware(logger))
	e.Use(middleware.Recover())
	return e
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the deck store schema and load the catalog into it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			_, catalog, err := a.load()
			if err != nil {
				return err
			}
			db, err := openDB(cmd.Context(), a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(cmd.Context(), db, postgres.DefaultConfig()); err != nil {
				return err
			}
			if err := postgres.SaveCatalog(cmd.Context(), db, catalog); err != nil {
				return err
			}
			a.logger.Info("migrated", "cards", catalog.Len())
			return nil
		},
	}
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
