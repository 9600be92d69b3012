package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/nextdocs/mcp-server/internal/cache"
	"github.com/nextdocs/mcp-server/internal/config"
	"github.com/nextdocs/mcp-server/internal/registry"
	"github.com/nextdocs/mcp-server/internal/runtime"
	"github.com/nextdocs/mcp-server/internal/search"
	"github.com/nextdocs/mcp-server/tools"
)

const (
	version     = "0.3.0"
	serverName  = "nextdocs-mcp-server"
	description = "MCP server for versioned framework documentation search"
)

var (
	configPath string
	httpAddr   string
)

var rootCmd = &cobra.Command{
	Use:     serverName,
	Short:   description,
	Version: version,
	Long: `Serve ranked full-text search over versioned documentation snapshots.

By default the server speaks MCP over stdio. Use --http to serve the
streamable HTTP transport instead.

Snapshots (docs-metadata.json, docs-metadata-<version>.json) are read from
the data directory and built with the indexer command.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "nextdocs.toml", "Path to the TOML config file")
	rootCmd.Flags().StringVar(&httpAddr, "http", "", "Serve streamable HTTP on this address instead of stdio (e.g. :8080)")
}

func main() {
	// Set up logging to stderr (MCP uses stdout for protocol)
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log.Printf("%s v%s starting...", serverName, version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	resultCache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	svc := tools.NewDocService(reg, resultCache, cfg.CacheTTL())
	defer svc.Close()

	// Load the default version up front; failures are retried on first use
	if _, err := reg.EnsureLoaded(ctx, ""); err != nil {
		log.Printf("Warning: Documentation initialization failed: %v", err)
		log.Printf("Documentation search will attempt to initialize on first use")
	}

	server := createMCPServer()
	tools.RegisterDocTools(server, svc)

	log.Printf("✓ Server ready and waiting for connections")

	if httpAddr != "" {
		return runHTTP(ctx, server, httpAddr)
	}
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// createMCPServer initializes the MCP server
func createMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		nil, // Default options
	)

	log.Printf("Server initialized: %s v%s", serverName, version)
	return server
}

// newRegistry wires the snapshot store, version detector and engine factory
func newRegistry(cfg config.Config) (*registry.Registry, error) {
	store, err := registry.NewFileStore(os.DirFS(cfg.DataDir))
	if err != nil {
		return nil, err
	}

	synonyms := search.DefaultSynonyms()
	if cfg.SynonymsFile != "" {
		if synonyms, err = search.LoadSynonyms(cfg.SynonymsFile); err != nil {
			return nil, err
		}
		log.Printf("✓ Synonyms loaded from %s (%d terms)", cfg.SynonymsFile, len(synonyms))
	}

	log.Printf("✓ Data directory: %s", cfg.DataDir)

	return registry.New(store,
		registry.WithDetector(runtime.PackageJSONDetector{Dir: cfg.ProjectDir}),
		registry.WithDefaultVersion(cfg.DefaultVersion),
		registry.WithEngineFactory(func() (*search.Engine, error) {
			return search.NewBleveEngine(search.WithSynonyms(synonyms))
		}),
	), nil
}

// newCache builds the configured result cache. Without a backend the
// cache reports every read as unavailable.
func newCache(ctx context.Context, cfg config.Config) (*cache.Cache, func(), error) {
	noop := func() {}
	opts := []cache.Option{cache.WithDefaultTTL(cfg.CacheTTL())}

	switch cfg.Cache.Backend {
	case config.CacheMemory:
		log.Printf("✓ Result cache: memory (ttl %v)", cfg.CacheTTL())
		return cache.New(cache.NewMemoryBackend(), opts...), noop, nil

	case config.CacheSQLite:
		backend := cache.NewSQLiteBackend(cfg.Cache.Path)
		if err := backend.Open(); err != nil {
			return nil, noop, err
		}
		if n, err := backend.Purge(ctx); err != nil {
			log.Printf("Warning: Failed to purge expired cache entries: %v", err)
		} else if n > 0 {
			log.Printf("Purged %d expired cache entries", n)
		}
		log.Printf("✓ Result cache: sqlite %s (ttl %v)", cfg.Cache.Path, cfg.CacheTTL())
		return cache.New(backend, opts...), func() { backend.Close() }, nil

	default:
		log.Printf("Result cache disabled")
		return cache.New(nil), noop, nil
	}
}
