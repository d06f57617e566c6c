package main

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/config"
	"storefront/internal/infra/db"
	"storefront/internal/logging"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// bootDB は設定を読み、DBへ接続する。
func bootDB(ctx context.Context) (config.Config, *gorm.DB, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	log := logging.New(cfg.LogLevel)

	gdb, err := db.Connect(ctx, cfg)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("connect db: %w", err)
	}
	return cfg, gdb, log, nil
}

func closeDB(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// storefront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, gdb, log, err := bootDB(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB(gdb)

		if err := db.Migrate(gdb); err != nil {
			return err
		}
		log.Info("migration completed")
		return nil
	},
}

var seedOpts db.SeedOptions

// storefront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample categories, products and an admin user",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, gdb, log, err := bootDB(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB(gdb)

		if err := db.Migrate(gdb); err != nil {
			return err
		}
		if err := db.Seed(cmd.Context(), gdb, seedOpts); err != nil {
			return err
		}
		log.Info("seed completed", "admin_email", seedOpts.AdminEmail)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedOpts.AdminEmail, "admin-email", "", "create an ADMIN user with this email")
	seedCmd.Flags().StringVar(&seedOpts.AdminPassword, "admin-password", "", "password for the admin user")
}
