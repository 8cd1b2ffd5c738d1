package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/malbeclabs/ifaceload/internal/config"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

func Run() ExitCode {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	rootCmd := newRootCmd(&cfg, os.Stdin, os.Stdout)

	if err := rootCmd.Execute(); err != nil {
		return exitCodeError
	}

	return exitCodeSuccess
}

func newRootCmd(cfg *config.Config, in io.Reader, out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "ifaceload",
		Short:        "Load interfaces from an IOS-XE configuration export into PostgreSQL.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := cmd.Help()
			if err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "set debug logging level")
	flags.StringVar(&cfg.Table, "table", cfg.Table, "destination table, optionally schema qualified (env: "+config.EnvTable+")")
	flags.StringVar(&cfg.PushgatewayURL, "pushgateway-url", cfg.PushgatewayURL, "prometheus pushgateway to push run metrics to (env: "+config.EnvPushgatewayURL+")")

	rootCmd.AddCommand(
		NewLoadCmd(cfg).Command(),
		NewExtractCmd(cfg).Command(),
		NewShowCmd(cfg).Command(),
	)

	return rootCmd
}

// bindInputFlags registers the flags that select and filter the input export.
func bindInputFlags(flags *pflag.FlagSet, cfg *config.Config) {
	flags.StringVarP(&cfg.Input, "input", "i", cfg.Input, "device configuration export (env: "+config.EnvInput+")")
	flags.StringVar(&cfg.PolicyFile, "policy-file", cfg.PolicyFile, "YAML interface group policy (env: "+config.EnvPolicyFile+")")
	flags.StringSliceVar(&cfg.Ignore, "ignore", nil, "interface group types to skip, in addition to the policy")
	flags.StringSliceVar(&cfg.Include, "include", nil, "interface group types to extract even if the policy skips them")
}

// newLogger logs to stderr; stdout carries records and tables.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
