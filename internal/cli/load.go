package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"

	"github.com/malbeclabs/ifaceload/internal/config"
	"github.com/malbeclabs/ifaceload/internal/ifconfig"
	"github.com/malbeclabs/ifaceload/internal/store"
)

const (
	pushJobName = "ifaceload"
	pushTimeout = 10 * time.Second
)

type LoadCmd struct {
	cfg *config.Config
}

func NewLoadCmd(cfg *config.Config) *LoadCmd {
	return &LoadCmd{cfg: cfg}
}

func (c *LoadCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Extract interfaces and load them into PostgreSQL in one transaction",
		Long: `Extract interfaces from a device configuration export, insert them into the
destination table and link member interfaces to their port-channel rows. The
pending rows are printed and the transaction is committed only when confirmed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	bindInputFlags(flags, c.cfg)
	flags.BoolVarP(&c.cfg.Yes, "yes", "y", false, "commit without prompting")
	flags.BoolVar(&c.cfg.DryRun, "dry-run", false, "print the pending rows and roll back")
	flags.BoolVar(&c.cfg.All, "all", false, "read back every column")

	return cmd
}

func (c *LoadCmd) run(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg := c.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateInput(); err != nil {
		return err
	}
	if err := cfg.ValidatePostgres(); err != nil {
		return err
	}

	log := newLogger(cfg.Verbose)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	records, err := extractRecords(log, cfg)
	if err != nil {
		return err
	}
	links := ifconfig.Filter(records)
	log.Debug("filtered port-channel members", "records", len(records), "links", len(links))

	conn, err := store.Connect(ctx, log, cfg.Postgres)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(context.Background()); err != nil {
			log.Warn("failed to close postgres connection", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	loader, err := store.NewLoader(conn,
		store.WithTable(cfg.TableName()),
		store.WithReadBackAll(cfg.All),
		store.WithLoaderLogger(log),
		store.WithLoaderMetrics(store.NewMetrics(registry)),
	)
	if err != nil {
		return fmt.Errorf("failed to create loader: %w", err)
	}

	res, loadErr := loader.Load(ctx, records, links, c.decider(in, out))

	if cfg.PushgatewayURL != "" {
		pushMetrics(log, cfg.PushgatewayURL, registry)
	}

	if loadErr != nil {
		return loadErr
	}

	log.Info("load finished",
		"table", cfg.Table,
		"outcome", res.Outcome,
		"records", res.Records,
		"inserted", res.Inserted,
		"linked", res.Linked,
	)
	return nil
}

// decider prints the pending rows and then commits, rolls back or asks,
// depending on --yes and --dry-run.
func (c *LoadCmd) decider(in io.Reader, out io.Writer) store.Decider {
	var decide store.Decider
	switch {
	case c.cfg.Yes:
		decide = store.AutoCommit
	case c.cfg.DryRun:
		decide = store.AlwaysRollback
	default:
		decide = NewPromptDecider(in, out)
	}

	all := c.cfg.All
	return func(ctx context.Context, summary store.Summary) (store.Decision, error) {
		printSummary(out, summary)
		printRows(out, summary.Rows, all)
		return decide(ctx, summary)
	}
}

// extractRecords reads the export and extracts records under the configured
// policy.
func extractRecords(log *slog.Logger, cfg *config.Config) ([]ifconfig.Record, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	doc, err := ifconfig.LoadDocument(cfg.Input)
	if err != nil {
		return nil, err
	}

	extractor := ifconfig.NewExtractor(
		ifconfig.WithPolicy(policy),
		ifconfig.WithExtractorLogger(log),
	)
	return extractor.Extract(doc)
}

// pushMetrics pushes the run's metrics to a pushgateway. Failures are logged
// and do not fail the run.
func pushMetrics(log *slog.Logger, url string, gatherer prometheus.Gatherer) {
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	err := push.New(url, pushJobName).Gatherer(gatherer).PushContext(ctx)
	if err != nil {
		log.Warn("failed to push metrics", "url", url, "error", err)
		return
	}
	log.Debug("pushed metrics", "url", url)
}
