package cli

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/ifaceload/internal/config"
	"github.com/malbeclabs/ifaceload/internal/store"
)

type ShowCmd struct {
	cfg *config.Config
}

func NewShowCmd(cfg *config.Config) *ShowCmd {
	return &ShowCmd{cfg: cfg}
}

func (c *ShowCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the rows of the destination table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&c.cfg.All, "all", false, "print every column")

	return cmd
}

func (c *ShowCmd) run(ctx context.Context, out io.Writer) error {
	cfg := c.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidatePostgres(); err != nil {
		return err
	}

	log := newLogger(cfg.Verbose)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conn, err := store.Connect(ctx, log, cfg.Postgres)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(context.Background()); err != nil {
			log.Warn("failed to close postgres connection", "error", err)
		}
	}()

	rows, err := store.ListRows(ctx, conn, cfg.TableName(), cfg.All)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		log.Info("no rows", "table", cfg.Table)
	}
	printRows(out, rows, cfg.All)
	return nil
}
