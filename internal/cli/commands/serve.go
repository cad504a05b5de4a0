package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/resourcegraph/internal/cli/config"
	"github.com/conduit-lang/resourcegraph/internal/cli/ui"
	"github.com/conduit-lang/resourcegraph/internal/web/cache"
	"github.com/conduit-lang/resourcegraph/internal/web/server"
)

type serveFlags struct {
	port  int
	host  string
	cache string
}

func newServeCommand(global *globalFlags) *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the fixture as a read-only JSON:API",
		Long: `Serve the fixture as a read-only JSON:API.

Routes:
  GET /{type}                               collection, paged
  GET /{type}/{id}                          single resource
  GET /{type}/{id}/{relation}               related resources
  GET /{type}/{id}/relationships/{relation} relationship linkage
  GET /metrics                              Prometheus metrics

The server stops gracefully on SIGINT or SIGTERM.`,
		Example: `  # Serve on the configured address
  resourcegraph serve --fixture blog.yaml

  # Serve on port 8080 with a memory cache
  resourcegraph serve --port 8080 --cache memory`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(global)
			if err != nil {
				return err
			}
			applyServeFlags(cmd, env.config, flags)

			logger, err := newLogger(env.config.Log)
			if err != nil {
				return display(ui.ConfigError(err.Error(), nil, color.NoColor), err)
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, docCache, err := newAPIServer(ctx, env, logger)
			if err != nil {
				return err
			}

			gs := server.NewGracefulShutdown(srv, env.config.Server.ShutdownTimeout, logger)
			if docCache != nil {
				gs.RegisterHook(func(ctx context.Context) error {
					return docCache.Close()
				})
			}

			if err := gs.Run(ctx); err != nil {
				return err
			}
			ui.WriteSuccess(cmd.ErrOrStderr(), "Server stopped", color.NoColor)
			return nil
		},
	}

	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "Port to listen on (overrides config)")
	cmd.Flags().StringVar(&flags.host, "host", "", "Host to bind (overrides config)")
	cmd.Flags().StringVar(&flags.cache, "cache", "", "Document cache: none, memory or redis (overrides config)")

	return cmd
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config, flags *serveFlags) {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = flags.port
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = flags.host
	}
	if cmd.Flags().Changed("cache") {
		cfg.Cache.Driver = flags.cache
	}
}

// newAPIServer wires the store, the document cache and the router into a
// server bound to the configured address. The returned cache is nil when
// caching is disabled.
func newAPIServer(ctx context.Context, env *environment, logger *zap.Logger) (*server.Server, cache.Cache, error) {
	docCache, err := newDocumentCache(ctx, env.config.Cache)
	if err != nil {
		return nil, nil, err
	}

	handler, err := server.NewAPI(server.APIConfig{
		Store:      env.store,
		Serializer: env.opts,
		Limits:     env.config.PageLimits(),
		Prefix:     env.config.Server.APIPrefix,
		Cache:      docCache,
		CacheTTL:   env.config.Cache.TTL,
		Logger:     logger,
	})
	if err != nil {
		closeCache(docCache)
		return nil, nil, err
	}

	srvConfig := server.DefaultConfig(handler)
	srvConfig.Address = env.config.Addr()
	if env.config.Server.ReadTimeout > 0 {
		srvConfig.ReadTimeout = env.config.Server.ReadTimeout
	}
	if env.config.Server.WriteTimeout > 0 {
		srvConfig.WriteTimeout = env.config.Server.WriteTimeout
	}

	srv, err := server.New(srvConfig)
	if err != nil {
		closeCache(docCache)
		return nil, nil, err
	}

	logger.Info("api configured",
		zap.String("addr", srvConfig.Address),
		zap.String("prefix", env.config.Server.APIPrefix),
		zap.String("cache", env.config.Cache.Driver),
		zap.Strings("types", env.types.names),
	)
	return srv, docCache, nil
}

func newDocumentCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	cacheConfig := cache.DefaultConfig()
	if cfg.TTL > 0 {
		cacheConfig.DefaultTTL = cfg.TTL
	}
	if cfg.MaxEntries > 0 {
		cacheConfig.MaxEntries = cfg.MaxEntries
	}

	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "memory":
		return cache.NewMemoryCache(cacheConfig), nil
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:   cfg.RedisAddr,
			Config: cacheConfig,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

func closeCache(c cache.Cache) {
	if c != nil {
		c.Close()
	}
}

// newLogger builds a JSON production logger, or a console development logger
// when log.development is set
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", cfg.Level, err)
	}

	zapConfig := zap.NewProductionConfig()
	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	return zapConfig.Build()
}
