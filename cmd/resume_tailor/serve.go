package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/auth"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/profile"
	"github.com/jonathan/resume-tailor/internal/server"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
	"github.com/jonathan/resume-tailor/internal/tailoring"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Start the HTTP server that streams tailoring runs over SSE and exposes the project merge, résumé parse, saved résumé and account endpoints.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the database schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if serveMigrate {
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("Database schema applied")
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}
	tokens := auth.NewTokenService(jwtConfig)

	backends, err := buildAgents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	orchestrator := tailoring.New(profile.NewAggregator(database, logger), backends.tailor, tokens, logger, tailoring.Options{
		PollInterval: cfg.Agent.PollInterval.Std(),
		Ceiling:      cfg.Agent.TailorTimeout.Std(),
		EngineID:     cfg.Agent.EngineID,
		Tools:        backends.tools,
		DevMode:      cfg.DevMode,
	})

	writeTimeout := server.WriteTimeoutFor(
		cfg.Agent.TailorTimeout.Std(),
		cfg.Agent.MergeTimeout.Std(),
		cfg.Agent.ParseTimeout.Std(),
	)
	srv := server.New(server.Config{Port: cfg.Port, DevMode: cfg.DevMode, WriteTimeout: writeTimeout}, server.Deps{
		Tailor:   orchestrator,
		Merger:   newMergeEngine(backends.merge, database, cfg, logger),
		Parser:   newParser(backends.parse, cfg, logger),
		Resumes:  database,
		Accounts: auth.NewAccountService(database, passwordConfig),
		Tokens:   tokens,
		Health:   database,
		Limiter:  ratelimit.NewLimiter(ratelimit.LoadConfig()),
		Logger:   logger,
	})

	return srv.Start(ctx)
}
