package store

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/tracelog"
)

const defaultConnectTimeout = 10 * time.Second

// Querier is the subset of pgx.Conn and pgx.Tx used to run statements.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// TxBeginner starts transactions. *pgx.Conn and *pgxpool.Pool satisfy it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ConnConfig holds the PostgreSQL connection settings.
type ConnConfig struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	SSLMode  string
}

// URL renders the settings as a postgres:// connection string.
func (c ConnConfig) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{c.SSLMode}}.Encode()
	}
	return u.String()
}

// Connect opens a single connection and verifies it with a ping. When the
// logger has debug enabled every statement is traced through it.
func Connect(ctx context.Context, log *slog.Logger, cfg ConnConfig) (*pgx.Conn, error) {
	pgCfg, err := pgx.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	if log.Enabled(ctx, slog.LevelDebug) {
		pgCfg.Tracer = &tracelog.TraceLog{
			Logger:   slogTracer(log),
			LogLevel: tracelog.LogLevelDebug,
		}
	}

	log.Info("connecting to postgres", "host", cfg.Host, "port", cfg.Port, "database", cfg.Database, "username", cfg.Username)

	connectCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	conn, err := pgx.ConnectConfig(connectCtx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := conn.Ping(connectCtx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return conn, nil
}

func slogTracer(log *slog.Logger) tracelog.Logger {
	return tracelog.LoggerFunc(func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		attrs := make([]any, 0, 2*len(data))
		for k, v := range data {
			attrs = append(attrs, k, v)
		}
		switch level {
		case tracelog.LogLevelError:
			log.ErrorContext(ctx, msg, attrs...)
		case tracelog.LogLevelWarn:
			log.WarnContext(ctx, msg, attrs...)
		case tracelog.LogLevelInfo:
			log.InfoContext(ctx, msg, attrs...)
		default:
			log.DebugContext(ctx, msg, attrs...)
		}
	})
}

// TableName is a table name, optionally schema qualified ("public.json1").
type TableName string

// Sanitize quotes every part of the name for use in SQL.
func (t TableName) Sanitize() string {
	return pgx.Identifier(strings.Split(string(t), ".")).Sanitize()
}
