package web

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// Address is the listen address, e.g. ":8080".
	Address string

	Handler http.Handler

	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// Database, when set, has its connection pool tuned and is pinged at
	// startup so a bad DSN fails fast instead of on the first request.
	Database *DatabasePool
}

// DatabasePool holds connection-pool settings for the backing database.
type DatabasePool struct {
	DB              *sql.DB
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultServerConfig returns production-ready timeouts.
func DefaultServerConfig(handler http.Handler) *ServerConfig {
	return &ServerConfig{
		Address:           ":8080",
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ShutdownTimeout:   30 * time.Second,
	}
}

// DefaultDatabasePool returns pool settings suited to a metadata workload:
// read-heavy, short queries.
func DefaultDatabasePool(db *sql.DB) *DatabasePool {
	return &DatabasePool{
		DB:              db,
		MaxOpenConns:    50,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
	}
}

// Server wraps http.Server with pool configuration and graceful shutdown.
type Server struct {
	httpServer *http.Server
	config     *ServerConfig
	logger     *zap.Logger
	listener   net.Listener
}

// NewServer validates the configuration and creates a server.
func NewServer(config *ServerConfig, logger *zap.Logger) (*Server, error) {
	if config == nil {
		return nil, fmt.Errorf("server config cannot be nil")
	}
	if config.Handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if config.Database != nil {
		if err := configurePool(config.Database); err != nil {
			return nil, fmt.Errorf("configuring database pool: %w", err)
		}
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              config.Address,
			Handler:           config.Handler,
			ReadTimeout:       config.ReadTimeout,
			WriteTimeout:      config.WriteTimeout,
			IdleTimeout:       config.IdleTimeout,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
			MaxHeaderBytes:    config.MaxHeaderBytes,
		},
		config: config,
		logger: logger,
	}, nil
}

// Start listens and serves until a SIGINT/SIGTERM arrives, then shuts down
// gracefully within the configured timeout.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("creating listener: %w", err)
	}
	s.listener = listener

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.Addr()))
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server failed: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		s.logger.Info("shutdown signal received")
		return s.Shutdown()
	case err := <-errChan:
		return err
	}
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown() error {
	timeout := s.config.ShutdownTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server shut down cleanly")
	return nil
}

// Addr returns the bound address, useful when listening on ":0".
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Address
}

func configurePool(pool *DatabasePool) error {
	if pool.DB == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	pool.DB.SetMaxOpenConns(pool.MaxOpenConns)
	pool.DB.SetMaxIdleConns(pool.MaxIdleConns)
	pool.DB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	pool.DB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}
