// Package db provides the SurrealDB connection behind the surreal storage backend.
package db

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

// Auth levels accepted in Config.AuthLevel.
const (
	AuthRoot     = "root"
	AuthDatabase = "database"
)

const (
	defaultRetries    = 3
	defaultMaxBackoff = 5 * time.Second
	pingTimeout       = 5 * time.Second
)

func init() {
	// wss upgrades fail when TLS negotiates HTTP/2.
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

// Config describes where the kv table lives and how to sign in.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	AuthLevel string // AuthRoot (default) or AuthDatabase

	// Reconnect attempts after a dropped connection. A CLI run should fail
	// fast rather than wait out a long backoff, so the defaults are small.
	Retries    int
	MaxBackoff time.Duration
}

// Client is a signed-in connection scoped to one namespace and database.
type Client struct {
	conn   *rews.Connection[*gorillaws.Connection]
	db     *surrealdb.DB
	logger *slog.Logger
}

// NewClient connects, signs in and selects the configured database.
func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("url", cfg.URL, "namespace", cfg.Namespace, "database", cfg.Database)

	auth, err := authFor(cfg)
	if err != nil {
		return nil, err
	}

	conn := dial(cfg, logger.New(log.Handler()))
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("from connection: %w", err)
	}
	if _, err := db.SignIn(ctx, auth); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("signin as %s user %q: %w", authLevel(cfg), cfg.Username, err)
	}
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("use %s/%s: %w", cfg.Namespace, cfg.Database, err)
	}

	log.Debug("surreal storage connected", "auth_level", authLevel(cfg))
	return &Client{conn: conn, db: db, logger: log}, nil
}

// dial builds an auto-reconnecting websocket connection with bounded backoff.
func dial(cfg Config, sdkLogger logger.Logger) *rews.Connection[*gorillaws.Connection] {
	codec := surrealcbor.New()
	baseURL := rpcBaseURL(cfg.URL)

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			return gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      sdkLogger,
			}), nil
		},
		pingTimeout,
		codec,
		sdkLogger,
	)

	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = 500 * time.Millisecond
	retryer.Multiplier = 2.0
	retryer.MaxRetries = cfg.Retries
	if retryer.MaxRetries <= 0 {
		retryer.MaxRetries = defaultRetries
	}
	retryer.MaxDelay = cfg.MaxBackoff
	if retryer.MaxDelay <= 0 {
		retryer.MaxDelay = defaultMaxBackoff
	}
	conn.Retryer = retryer
	return conn
}

// rpcBaseURL strips the /rpc suffix; gorillaws appends it itself.
func rpcBaseURL(url string) string {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	return strings.TrimSuffix(url, "/rpc")
}

func authLevel(cfg Config) string {
	if cfg.AuthLevel == "" {
		return AuthRoot
	}
	return cfg.AuthLevel
}

// authFor builds the sign-in credentials for cfg's auth level.
func authFor(cfg Config) (surrealdb.Auth, error) {
	switch authLevel(cfg) {
	case AuthRoot:
		return surrealdb.Auth{Username: cfg.Username, Password: cfg.Password}, nil
	case AuthDatabase:
		return surrealdb.Auth{
			Namespace: cfg.Namespace,
			Database:  cfg.Database,
			Username:  cfg.Username,
			Password:  cfg.Password,
		}, nil
	}
	return surrealdb.Auth{}, fmt.Errorf("unsupported surreal auth level %q", cfg.AuthLevel)
}

// Close closes the connection.
func (c *Client) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// InitSchema defines the kv table if it does not exist.
func (c *Client) InitSchema(ctx context.Context) error {
	if _, err := surrealdb.Query[any](ctx, c.db, SchemaSQL, nil); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	c.logger.Debug("kv schema ready")
	return nil
}

// WipeData deletes every stored key. Use for testing only.
func (c *Client) WipeData(ctx context.Context) error {
	c.logger.Warn("wiping kv table")
	if _, err := surrealdb.Query[any](ctx, c.db, "DELETE kv", nil); err != nil {
		return fmt.Errorf("delete kv: %w", err)
	}
	return nil
}
