package commands

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seometa/seometa/internal/cli/config"
	"github.com/seometa/seometa/internal/web"
)

var serveAddr string

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	st, db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	eng, err := buildEngine(cfg, st)
	if err != nil {
		return err
	}

	api := &web.API{Engine: eng, Logger: logger}

	if cfg.Auth.Secret != "" {
		api.Auth = web.NewTokenAuth(cfg.Auth.Secret, cfg.Auth.TokenTTL())
	} else {
		logger.Warn("no auth secret configured; record writes are unauthenticated")
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		limiterCfg := web.DefaultRateLimiterConfig(client)
		limiterCfg.Limit = cfg.Redis.RateLimit
		if cfg.Redis.RateWindowSecs > 0 {
			limiterCfg.Window = time.Duration(cfg.Redis.RateWindowSecs) * time.Second
		}
		limiter, err := web.NewRateLimiter(limiterCfg)
		if err != nil {
			return fmt.Errorf("configuring rate limiter: %w", err)
		}
		api.Limiter = limiter
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	serverCfg := web.DefaultServerConfig(api.Router())
	serverCfg.Address = addr
	serverCfg.Database = web.DefaultDatabasePool(db)
	if cfg.Database.Driver == "sqlite3" || cfg.Database.Driver == "sqlite" {
		// SQLite tolerates few writers; keep the pool small.
		serverCfg.Database.MaxOpenConns = 1
	}

	srv, err := web.NewServer(serverCfg, logger)
	if err != nil {
		return err
	}

	logger.Info("starting seometa",
		zap.String("addr", addr),
		zap.Strings("groups", eng.Groups()),
	)
	return srv.Start()
}
