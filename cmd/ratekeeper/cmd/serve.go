package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/parcelforge/ratekeeper/internal/core/api"
	"github.com/parcelforge/ratekeeper/internal/core/auth"
	"github.com/parcelforge/ratekeeper/internal/core/config"
	"github.com/parcelforge/ratekeeper/internal/core/db"
	"github.com/parcelforge/ratekeeper/internal/core/logger"
	"github.com/parcelforge/ratekeeper/internal/core/server"
	"github.com/parcelforge/ratekeeper/internal/core/store"
)

const Version = "0.1.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin API service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	serveCmd.Flags().Int("port", 8080, "HTTP server port")
	serveCmd.Flags().Bool("no-auth", false, "disable API key authentication")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Port = port
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	log, err := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	statuses, err := db.MigrateStatus(database)
	if err != nil {
		return fmt.Errorf("failed to check migrations: %w", err)
	}
	for _, status := range statuses {
		if !status.Applied {
			return fmt.Errorf("migration %s not applied - run 'ratekeeper migrate' first", status.ID)
		}
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	noAuth, _ := cmd.Flags().GetBool("no-auth")
	var authenticator *auth.Authenticator
	if !noAuth {
		secrets, err := config.HMACSecrets()
		if err != nil {
			return fmt.Errorf("failed to load HMAC secrets: %w", err)
		}
		if len(secrets) == 0 {
			return fmt.Errorf("no HMAC secrets configured (set RK_HMAC_SECRET environment variable or pass --no-auth)")
		}
		authenticator = auth.NewAuthenticator(secrets, queries)
	} else {
		log.Warn("authentication disabled")
	}

	groups := store.NewSQLStore(queries)

	service, err := api.NewService(groups, database, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	httpServer, err := server.NewHTTPServer(cfg, service, authenticator)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Info("starting admin API", "version", Version, "host", cfg.Host, "port", cfg.Port)
	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		log.Info("shutting down gracefully")
		return httpServer.Shutdown(ctx)
	}
}
