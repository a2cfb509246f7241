package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/charsetlab/internal/api"
	"github.com/JonMunkholm/charsetlab/internal/config"
	"github.com/JonMunkholm/charsetlab/internal/logging"
	"github.com/JonMunkholm/charsetlab/internal/site"
	"github.com/JonMunkholm/charsetlab/internal/web"
)

type rootFlags struct {
	port      int
	publicDir string
	dataFile  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "charsetlab",
		Short: "Static file server with a Shift_JIS/UTF-8 JSON test endpoint",
		Long: `charsetlab serves a public directory and a single /api endpoint that
returns the users CSV as JSON in UTF-8 or Shift_JIS, with correct or
deliberately incomplete Content-Type charsets.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if it exists (Overload overwrites existing env vars)
			if err := godotenv.Overload(); err != nil {
				slog.Debug("no .env file found, using environment variables")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.IntVarP(&flags.port, "port", "p", 0, "port to listen on (overrides SERVER_PORT)")
	pf.StringVar(&flags.publicDir, "public-dir", "", "static document root (overrides PUBLIC_DIR)")
	pf.StringVar(&flags.dataFile, "data-file", "", "Shift_JIS users CSV (overrides DATA_FILE)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd, flags)
			},
		},
		&cobra.Command{
			Use:   "build",
			Short: "Write the Shift_JIS test harness into the public directory",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(flags)
				if err != nil {
					return err
				}
				if err := site.Build(cfg.Paths.PublicDir); err != nil {
					slog.Error("build failed", "error", err)
					return err
				}
				slog.Info("build complete", "public_dir", cfg.Paths.PublicDir)
				return nil
			},
		},
		&cobra.Command{
			Use:   "init-data",
			Short: "Write a sample Shift_JIS users CSV to the data file path",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(flags)
				if err != nil {
					return err
				}
				if err := site.WriteSampleDataset(cfg.Paths.DataFile); err != nil {
					slog.Error("init-data failed", "error", err)
					return err
				}
				slog.Info("sample dataset written", "path", cfg.Paths.DataFile)
				return nil
			},
		},
	)

	return root
}

// loadConfig loads and validates configuration, then sets up logging.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.LoadWithOverrides(config.Overrides{
		Port:      flags.port,
		PublicDir: flags.publicDir,
		DataFile:  flags.dataFile,
	})
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return nil, err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())
	return cfg, nil
}

func runServe(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Paths.DataFile); err != nil {
		// Not fatal: /api reports the failure per request.
		slog.Warn("dataset not readable", "path", cfg.Paths.DataFile, "error", err)
	}

	server := web.NewServer(cfg)

	// Graceful shutdown
	shutdownErr := make(chan error, 1)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		shutdownErr <- server.Shutdown(ctx)
	}()

	printBanner(cmd.OutOrStdout(), cfg)
	slog.Info("server starting", "addr", cfg.Server.Addr())

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		return err
	}

	if err := <-shutdownErr; err != nil {
		slog.Error("shutdown error", "error", err)
		return err
	}
	slog.Info("server stopped")
	return nil
}

func printBanner(w io.Writer, cfg *config.Config) {
	root := cfg.Paths.PublicDir
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	bold := color.New(color.FgGreen, color.Bold)
	dim := color.New(color.Faint)

	bold.Fprintf(w, "Serving at port %d\n", cfg.Server.Port)
	fmt.Fprintf(w, "Document root: %s\n", root)
	fmt.Fprintf(w, "Dataset:       %s\n", cfg.Paths.DataFile)
	for _, v := range api.Variants() {
		dim.Fprintf(w, "  GET %s?api=%-22s %s\n", web.APIPath, v.Query(), v.ContentType())
	}
	fmt.Fprintln(w, "Press Ctrl+C to stop.")
}
