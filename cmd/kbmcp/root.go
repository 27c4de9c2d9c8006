package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/enrich"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/enrich/noop"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/enrich/ollama"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/logging"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/mcpadapter"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/ratelimit"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/restapi"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/search"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/sysstate"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/writepipeline"
	"github.com/shirokuma-library/mcp-knowledge-base/pkg/config"
)

// Version is set at build time via -ldflags.
var Version = "0.1.0"

var (
	configPath string
	restMode   bool
)

var rootCmd = &cobra.Command{
	Use:     "kbmcp",
	Short:   "Dynamic-type knowledge base with lexical, semantic, and relational retrieval",
	Version: Version,
	Long: `kbmcp stores and retrieves typed knowledge base items with tags,
keywords, concepts, directed relations, and a hybrid lexical/embedding
search engine.

Run with no flags to start the MCP stdio server. Pass --rest to start
the HTTP mirror instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		if restMode {
			runREST()
			return
		}
		runMCP()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&restMode, "rest", false, "run the REST mirror instead of the MCP stdio server")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadAndOpen() (*config.Config, *store.Store) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	search.Init(cfg.Retrieval.ReadTimeout)
	return cfg, db
}

func buildEnricher(cfg *config.Config) enrich.Enricher {
	switch cfg.Enrichment.Provider {
	case "ollama":
		return ollama.New(ollama.Config{
			BaseURL:        cfg.Enrichment.OllamaBaseURL,
			EmbeddingModel: cfg.Enrichment.EmbeddingModel,
			ChatModel:      cfg.Enrichment.ChatModel,
			Timeout:        cfg.Enrichment.Timeout,
		})
	default:
		return noop.New()
	}
}

func buildRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	tools := make([]ratelimit.ToolLimit, len(cfg.RateLimit.Tools))
	for i, t := range cfg.RateLimit.Tools {
		tools[i] = ratelimit.ToolLimit{Name: t.Name, RequestsPerSecond: t.RequestsPerSecond, BurstSize: t.BurstSize}
	}
	return ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:           cfg.RateLimit.Enabled,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		Tools:             tools,
	})
}

func runWithShutdown(run func(ctx context.Context) error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func runMCP() {
	cfg, db := loadAndOpen()
	defer db.Close()

	pipeline := writepipeline.New(db, buildEnricher(cfg), cfg.Retrieval.EmbeddingDimension)
	sysState := sysstate.New(db, cfg.Retrieval.ReadTimeout)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = buildRateLimiter(cfg)
	}

	server := mcpadapter.NewServer(mcpadapter.Deps{
		DB:            db,
		Pipeline:      pipeline,
		SysState:      sysState,
		EmbeddingDim:  cfg.Retrieval.EmbeddingDimension,
		RateLimiter:   limiter,
		ServerName:    cfg.MCP.ServerName,
		ServerVersion: cfg.MCP.ServerVersion,
	})

	runWithShutdown(server.Run)
}

func runREST() {
	cfg, db := loadAndOpen()
	defer db.Close()

	pipeline := writepipeline.New(db, buildEnricher(cfg), cfg.Retrieval.EmbeddingDimension)
	sysState := sysstate.New(db, cfg.Retrieval.ReadTimeout)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = buildRateLimiter(cfg)
	}

	server := restapi.NewServer(restapi.Deps{
		DB:           db,
		Pipeline:     pipeline,
		SysState:     sysState,
		EmbeddingDim: cfg.Retrieval.EmbeddingDimension,
		CORS:         cfg.RestAPI.CORS,
		APIKey:       cfg.RestAPI.APIKey,
		AllowOrigins: cfg.RestAPI.AllowOrigins,
		RateLimiter:  limiter,
	})

	runWithShutdown(func(ctx context.Context) error {
		return server.Run(ctx, fmt.Sprintf("%s:%d", cfg.RestAPI.Host, cfg.RestAPI.Port))
	})
}
