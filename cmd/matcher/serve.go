package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meghanahima/Resume-Matches-sub000/internal/cache"
	"github.com/meghanahima/Resume-Matches-sub000/internal/config"
	"github.com/meghanahima/Resume-Matches-sub000/internal/db"
	"github.com/meghanahima/Resume-Matches-sub000/internal/keypool"
	"github.com/meghanahima/Resume-Matches-sub000/internal/logger"
	"github.com/meghanahima/Resume-Matches-sub000/internal/matching"
	"github.com/meghanahima/Resume-Matches-sub000/internal/oracle"
	"github.com/meghanahima/Resume-Matches-sub000/internal/server"
	"github.com/meghanahima/Resume-Matches-sub000/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the job-matching endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	pool, err := keypool.New(cfg.GeminiAPIKeys)
	if err != nil {
		return err
	}

	oracleConfig := oracle.DefaultConfig()
	oracleConfig.Model = cfg.GeminiModel
	oracleConfig.MaxRetries = cfg.MaxRetries
	oracleClient := oracle.NewClient(
		pool,
		oracle.NewBudget(cfg.OracleLimit, cfg.OracleWindow),
		oracleConfig,
		log,
	)

	refineConfig := matching.DefaultRefineConfig()
	refineConfig.TopK = cfg.TopK
	refineConfig.BatchSize = cfg.BatchSize
	refineConfig.Cooldown = cfg.Cooldown
	engine := matching.NewEngine(oracleClient, refineConfig, log)

	results := cache.New(cfg.CacheTTL)
	defer results.Stop()

	postings := db.NewJobPostingStore(database)
	service := matching.NewService(
		db.NewResumeStore(database),
		postings,
		engine,
		results,
		log,
	)

	srv := server.New(server.Config{
		Port:      cfg.Port,
		JWTSecret: cfg.JWTSecret,
		RateLimit: ratelimit.DefaultConfig(),
	}, service, postings, log)

	log.Info("matcher configured",
		zap.Int("api_keys", pool.Size()),
		zap.Int("refine_top_k", refineConfig.TopK),
		zap.Int("refine_batch_size", refineConfig.BatchSize))

	return srv.Start()
}
