package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"github.com/tbourn/cuentos-backend/internal/config"
	"github.com/tbourn/cuentos-backend/internal/identity"
	"github.com/tbourn/cuentos-backend/internal/repo"
	"github.com/tbourn/cuentos-backend/internal/sysutil"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cuentos",
		Short:         "Anonymous stories API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("loading %s: %w", envFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().String("env-file", ".env", "Dotenv file loaded before reading the environment")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newIdentityCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// loadConfig reads the environment and installs the global logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, os.Stderr)
	return cfg, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := repo.OpenSQLite(cfg.DBPath, repo.Options{LogLevel: logger.Warn})
			if err != nil {
				return fmt.Errorf("opening %s: %w", cfg.DBPath, err)
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := repo.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date: %s\n", cfg.DBPath)
			return nil
		},
	}
}

func newIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Print the identity derived from browser signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			s := identity.Signals{}
			s.UserAgent, _ = f.GetString("ua")
			s.Language, _ = f.GetString("lang")
			s.TimezoneOffset, _ = f.GetInt("tz-offset")
			s.ColorDepth, _ = f.GetInt("color-depth")
			s.ScreenWidth, _ = f.GetInt("width")
			s.ScreenHeight, _ = f.GetInt("height")
			s.HardwareConcurrency, _ = f.GetInt("cores")
			fmt.Fprintln(cmd.OutOrStdout(), identity.Derive(s))
			return nil
		},
	}
	f := cmd.Flags()
	f.String("ua", identity.DefaultUserAgent, "User agent")
	f.String("lang", identity.DefaultLanguage, "Primary language tag")
	f.Int("tz-offset", 0, "Timezone offset in minutes")
	f.Int("color-depth", identity.DefaultColorDepth, "Screen color depth")
	f.Int("width", 0, "Screen width")
	f.Int("height", 0, "Screen height")
	f.Int("cores", 0, "Hardware concurrency (0 when unknown)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildVersion())
		},
	}
}

func buildVersion() string {
	return sysutil.FirstNonEmpty(version, os.Getenv("APP_VERSION"), "dev")
}
