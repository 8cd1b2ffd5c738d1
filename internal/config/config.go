package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/malbeclabs/ifaceload/internal/store"
)

// Environment variables read by FromEnv.
const (
	EnvPostgresHost     = "POSTGRES_HOST"
	EnvPostgresPort     = "POSTGRES_PORT"
	EnvPostgresDB       = "POSTGRES_DB"
	EnvPostgresUser     = "POSTGRES_USER"
	EnvPostgresPassword = "POSTGRES_PASSWORD"
	EnvPostgresSSLMode  = "POSTGRES_SSLMODE"
	EnvTable            = "IFACELOAD_TABLE"
	EnvInput            = "IFACELOAD_INPUT"
	EnvPolicyFile       = "IFACELOAD_POLICY_FILE"
	EnvPushgatewayURL   = "PUSHGATEWAY_URL"
)

const (
	defaultPostgresHost    = "localhost"
	defaultPostgresPort    = "5432"
	defaultPostgresSSLMode = "disable"
)

var (
	tableNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

	sslModes = map[string]bool{
		"disable":     true,
		"allow":       true,
		"prefer":      true,
		"require":     true,
		"verify-ca":   true,
		"verify-full": true,
	}
)

// Config is the configuration of a single ifaceload run.
type Config struct {
	Verbose bool

	Input      string
	PolicyFile string
	Ignore     []string
	Include    []string

	Postgres store.ConnConfig
	Table    string

	Yes    bool
	DryRun bool
	All    bool

	PushgatewayURL string
}

// FromEnv returns a Config with every environment-backed field populated,
// falling back to defaults for unset variables. Flags are bound on top of it.
func FromEnv() Config {
	return Config{
		Input:      getenv(EnvInput, ""),
		PolicyFile: getenv(EnvPolicyFile, ""),
		Postgres: store.ConnConfig{
			Host:     getenv(EnvPostgresHost, defaultPostgresHost),
			Port:     getenv(EnvPostgresPort, defaultPostgresPort),
			Database: getenv(EnvPostgresDB, ""),
			Username: getenv(EnvPostgresUser, ""),
			Password: getenv(EnvPostgresPassword, ""),
			SSLMode:  getenv(EnvPostgresSSLMode, defaultPostgresSSLMode),
		},
		Table:          getenv(EnvTable, string(store.DefaultTable)),
		PushgatewayURL: getenv(EnvPushgatewayURL, ""),
	}
}

// Validate checks the settings shared by every subcommand and fills in
// defaults for fields left empty.
func (c *Config) Validate() error {
	if c.Table == "" {
		c.Table = string(store.DefaultTable)
	}
	if !tableNameRE.MatchString(c.Table) {
		return fmt.Errorf("invalid table name %q (set %s or --table)", c.Table, EnvTable)
	}
	if c.Yes && c.DryRun {
		return errors.New("--yes and --dry-run are mutually exclusive")
	}
	for _, group := range c.Ignore {
		for _, included := range c.Include {
			if group == included {
				return fmt.Errorf("interface group %q is both ignored and included", group)
			}
		}
	}
	return nil
}

// ValidateInput checks that an input file is configured.
func (c *Config) ValidateInput() error {
	if c.Input == "" {
		return fmt.Errorf("input file is empty (set %s or --input)", EnvInput)
	}
	return nil
}

// ValidatePostgres checks the connection settings and fills in defaults.
func (c *Config) ValidatePostgres() error {
	pg := &c.Postgres
	if pg.Host == "" {
		pg.Host = defaultPostgresHost
	}
	if pg.Port == "" {
		pg.Port = defaultPostgresPort
	}
	if pg.SSLMode == "" {
		pg.SSLMode = defaultPostgresSSLMode
	}
	if port, err := strconv.ParseUint(pg.Port, 10, 16); err != nil || port == 0 {
		return fmt.Errorf("invalid %s=%q", EnvPostgresPort, pg.Port)
	}
	if !sslModes[pg.SSLMode] {
		return fmt.Errorf("invalid %s=%q", EnvPostgresSSLMode, pg.SSLMode)
	}
	if pg.Database == "" {
		return fmt.Errorf("postgres database is empty (set %s)", EnvPostgresDB)
	}
	if pg.Username == "" {
		return fmt.Errorf("postgres user is empty (set %s)", EnvPostgresUser)
	}
	return nil
}

// TableName returns the destination table.
func (c *Config) TableName() store.TableName {
	return store.TableName(c.Table)
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
