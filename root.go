package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/video-stream/shelf/internal/auth"
	"github.com/video-stream/shelf/internal/config"
	"github.com/video-stream/shelf/internal/db"
	"github.com/video-stream/shelf/internal/logging"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the streamshelf CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "streamshelf",
		Short:        "Self-hosted media browser with per-account watch history",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewAccountCmd())

	return cmd
}

// app is the wired core shared by the subcommands.
type app struct {
	cfg      *config.Config
	database *db.Database
	svc      *auth.Service
}

func openApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	logging.Init(cfg.Log.Level, cfg.Log.Format)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, oops.Code("DATA_DIR_FAILED").With("path", cfg.Database.Path).Wrap(err)
	}
	database, err := db.NewSQLite(cfg.Database.Path, cfg.Database.MaxConns)
	if err != nil {
		return nil, oops.Code("DB_OPEN_FAILED").With("path", cfg.Database.Path).Wrap(err)
	}

	svc, err := auth.NewService(database, auth.ServiceConfig{
		SessionSecret: []byte(cfg.Auth.SessionSecret),
		BcryptCost:    cfg.Auth.BcryptCost,
	})
	if err != nil {
		database.Close()
		return nil, err
	}
	return &app{cfg: cfg, database: database, svc: svc}, nil
}

// identityProvider bootstraps the accounts the configured mode needs and
// returns the matching provider.
func (a *app) identityProvider(ctx context.Context) (auth.IdentityProvider, error) {
	var local auth.Identity
	switch a.cfg.Auth.Mode {
	case auth.ModeLocal:
		id, err := a.svc.EnsureLocalAccount(ctx)
		if err != nil {
			return nil, err
		}
		local = id
	default:
		if err := a.svc.EnsureAdmin(ctx, a.cfg.Auth.AdminUsername, a.cfg.Auth.AdminPassword); err != nil {
			return nil, err
		}
	}
	return auth.NewIdentityProvider(a.cfg.Auth.Mode, a.svc.Ledger(), local)
}

func (a *app) Close() error {
	return a.database.Close()
}
