package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/ifaceload/internal/config"
	"github.com/malbeclabs/ifaceload/internal/ifconfig"
)

type ExtractCmd struct {
	cfg       *config.Config
	linksOnly bool
}

func NewExtractCmd(cfg *config.Config) *ExtractCmd {
	return &ExtractCmd{cfg: cfg}
}

func (c *ExtractCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Print the records a load would insert, as JSON lines, without touching the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	bindInputFlags(flags, c.cfg)
	flags.BoolVar(&c.linksOnly, "links-only", false, "print only records that reference a port-channel")

	return cmd
}

func (c *ExtractCmd) run(ctx context.Context, out io.Writer) error {
	cfg := c.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateInput(); err != nil {
		return err
	}

	log := newLogger(cfg.Verbose)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	records, err := extractRecords(log, cfg)
	if err != nil {
		return err
	}
	if c.linksOnly {
		records = ifconfig.Filter(records)
	}

	writer := ifconfig.NewJSONLinesWriter(ifconfig.WithJSONLinesOutput(out))
	if err := writer.WriteRecords(ctx, records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}
