package storetesting

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

type DBConfig struct {
	Database       string
	Username       string
	Password       string
	ContainerImage string
}

func (cfg *DBConfig) Validate() error {
	if cfg.Database == "" {
		cfg.Database = "ifaceload"
	}
	if cfg.Username == "" {
		cfg.Username = "ifaceload"
	}
	if cfg.Password == "" {
		cfg.Password = "password"
	}
	if cfg.ContainerImage == "" {
		cfg.ContainerImage = "postgres:16-alpine"
	}
	return nil
}

// Container is a PostgreSQL server shared by the tests of a package. Tests
// isolate themselves by loading into distinct tables.
type Container struct {
	container *tcpostgres.PostgresContainer
	connStr   string
	tables    atomic.Int64
}

// NewContainer starts a PostgreSQL container. A nil cfg uses defaults.
func NewContainer(ctx context.Context, cfg *DBConfig) (*Container, error) {
	if cfg == nil {
		cfg = &DBConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate DB config: %w", err)
	}

	// Retry container start up to 3 times for retryable errors
	var container *tcpostgres.PostgresContainer
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		var err error
		container, err = tcpostgres.Run(ctx,
			cfg.ContainerImage,
			tcpostgres.WithDatabase(cfg.Database),
			tcpostgres.WithUsername(cfg.Username),
			tcpostgres.WithPassword(cfg.Password),
			tcpostgres.BasicWaitStrategies(),
		)
		if err != nil {
			lastErr = err
			if isRetryableContainerStartErr(err) && attempt < 3 {
				time.Sleep(time.Duration(attempt) * 750 * time.Millisecond)
				continue
			}
			return nil, fmt.Errorf("failed to start postgres container: %w", err)
		}
		break
	}
	if container == nil {
		return nil, fmt.Errorf("failed to start postgres container after retries: %w", lastErr)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &Container{container: container, connStr: connStr}, nil
}

// ConnString returns the postgres:// URL of the server.
func (c *Container) ConnString() string {
	return c.connStr
}

// Conn opens a connection that is closed when the test ends.
func (c *Container) Conn(t testing.TB) *pgx.Conn {
	t.Helper()
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, c.connStr)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := conn.Close(context.Background()); err != nil {
			t.Logf("failed to close postgres connection: %v", err)
		}
	})
	return conn
}

// NewTable returns a table name no other test in the package uses.
func (c *Container) NewTable() string {
	return fmt.Sprintf("ifaces_%d", c.tables.Add(1))
}

// Terminate stops the container.
func (c *Container) Terminate(ctx context.Context) error {
	return c.container.Terminate(ctx)
}

func isRetryableContainerStartErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "wait until ready") ||
		strings.Contains(s, "mapped port") ||
		strings.Contains(s, "timeout") ||
		strings.Contains(s, "context deadline exceeded") ||
		strings.Contains(s, "/containers/") && strings.Contains(s, "json") ||
		strings.Contains(s, "Get \"http://%2Fvar%2Frun%2Fdocker.sock")
}
