package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/malbeclabs/ifaceload/internal/ifconfig"
)

// DefaultTable is the table interfaces are loaded into.
const DefaultTable TableName = "json1"

// Stage is a step of a load run, logged as the run progresses.
type Stage string

const (
	StageSchemaEnsured Stage = "schema_ensured"
	StageInserted      Stage = "inserted"
	StageLinked        Stage = "linked"
	StageCommitted     Stage = "committed"
	StageRolledBack    Stage = "rolled_back"
)

// Decision is the caller's verdict on a pending load.
type Decision int

const (
	DecisionRollback Decision = iota
	DecisionCommit
)

func (d Decision) String() string {
	if d == DecisionCommit {
		return "commit"
	}
	return "rollback"
}

// Outcome is how a load transaction ended.
type Outcome string

const (
	OutcomeCommitted  Outcome = "committed"
	OutcomeRolledBack Outcome = "rolled_back"
)

// Summary describes the pending, uncommitted state of a load.
type Summary struct {
	Table    TableName
	Records  int
	Links    int
	Inserted int64
	Linked   int64
	Rows     []Row
}

// Decider chooses whether a pending load is committed. It runs while the
// transaction is still open, so Summary.Rows reflect the uncommitted writes.
type Decider func(ctx context.Context, summary Summary) (Decision, error)

// AutoCommit commits every load.
func AutoCommit(context.Context, Summary) (Decision, error) {
	return DecisionCommit, nil
}

// AlwaysRollback discards every load.
func AlwaysRollback(context.Context, Summary) (Decision, error) {
	return DecisionRollback, nil
}

// Result is the final state of a load.
type Result struct {
	Summary
	Outcome Outcome
}

// Loader writes extracted interfaces into PostgreSQL in a single transaction.
type Loader struct {
	db          TxBeginner
	table       TableName
	readBackAll bool
	logger      *slog.Logger
	metrics     *Metrics
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithTable sets the destination table.
func WithTable(table TableName) LoaderOption {
	return func(l *Loader) {
		l.table = table
	}
}

// WithReadBackAll selects every column during read-back instead of the
// short projection.
func WithReadBackAll(all bool) LoaderOption {
	return func(l *Loader) {
		l.readBackAll = all
	}
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithLoaderMetrics sets the loader metrics.
func WithLoaderMetrics(metrics *Metrics) LoaderOption {
	return func(l *Loader) {
		l.metrics = metrics
	}
}

// NewLoader creates a Loader on top of db.
func NewLoader(db TxBeginner, opts ...LoaderOption) (*Loader, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}

	l := &Loader{
		db:      db,
		table:   DefaultTable,
		metrics: NewMetrics(nil),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.table == "" {
		return nil, errors.New("table name is required")
	}
	if l.logger == nil {
		l.logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return l, nil
}

// Load ensures the table exists, inserts records, links the records in links
// to their port-channel rows and reads the table back, all in one
// transaction. decide is then asked to commit or roll back. The transaction
// is always closed when Load returns; on error it is rolled back.
func (l *Loader) Load(ctx context.Context, records, links []ifconfig.Record, decide Decider) (*Result, error) {
	if decide == nil {
		return nil, errors.New("commit decider is required")
	}

	timer := prometheus.NewTimer(l.metrics.LoadDuration)
	defer timer.ObserveDuration()

	res, err := l.load(ctx, records, links, decide)
	if err != nil {
		l.metrics.LoadErrors.Inc()
		return nil, err
	}
	l.metrics.Outcomes.WithLabelValues(string(res.Outcome)).Inc()
	return res, nil
}

func (l *Loader) load(ctx context.Context, records, links []ifconfig.Record, decide Decider) (*Result, error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	// No-op once the transaction is committed or rolled back.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := EnsureSchema(ctx, tx, l.table); err != nil {
		return nil, err
	}
	l.stage(StageSchemaEnsured)

	l.metrics.RecordsReceived.Add(float64(len(records)))
	inserted, err := InsertRecords(ctx, tx, l.table, records)
	if err != nil {
		return nil, err
	}
	l.metrics.RowsInserted.Add(float64(inserted))
	l.stage(StageInserted, "records", len(records), "inserted", inserted)

	linked, err := LinkPortChannels(ctx, tx, l.table, links)
	if err != nil {
		return nil, err
	}
	l.metrics.RowsLinked.Add(float64(linked))
	l.stage(StageLinked, "links", len(links), "linked", linked)

	rows, err := SelectRows(ctx, tx, l.table, l.readBackAll)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Summary: Summary{
			Table:    l.table,
			Records:  len(records),
			Links:    len(links),
			Inserted: inserted,
			Linked:   linked,
			Rows:     rows,
		},
	}

	decision, err := decide(ctx, res.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to decide on commit: %w", err)
	}

	switch decision {
	case DecisionCommit:
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		res.Outcome = OutcomeCommitted
		l.stage(StageCommitted)
	default:
		if err := tx.Rollback(ctx); err != nil {
			return nil, fmt.Errorf("failed to roll back transaction: %w", err)
		}
		res.Outcome = OutcomeRolledBack
		l.stage(StageRolledBack)
	}

	return res, nil
}

func (l *Loader) stage(s Stage, attrs ...any) {
	l.logger.Debug("load stage", append([]any{"stage", string(s), "table", string(l.table)}, attrs...)...)
}

// EnsureSchema creates the interface table if it does not exist.
func EnsureSchema(ctx context.Context, q Querier, table TableName) error {
	if _, err := q.Exec(ctx, buildCreateTable(table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// InsertRecords inserts records, skipping names that already exist, and
// returns the number of rows inserted. Batches larger than the bind
// parameter limit are split across statements.
func InsertRecords(ctx context.Context, q Querier, table TableName, records []ifconfig.Record) (int64, error) {
	var inserted int64
	for _, batch := range chunk(records, maxInsertRows) {
		query, args := buildInsert(table, batch)
		tag, err := q.Exec(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert rows: %w", err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// LinkPortChannels sets port_channel_id on the rows named by records to the
// id of the row named by each record's PortChannelName. Rows that are already
// linked, and references with no matching row, are left untouched. Records
// without a PortChannelName are ignored.
func LinkPortChannels(ctx context.Context, q Querier, table TableName, records []ifconfig.Record) (int64, error) {
	links := ifconfig.Filter(records)

	var linked int64
	for _, batch := range chunk(links, maxLinkRows) {
		query, args := buildLink(table, batch)
		tag, err := q.Exec(ctx, query, args...)
		if err != nil {
			return linked, fmt.Errorf("failed to link port-channels: %w", err)
		}
		linked += tag.RowsAffected()
	}
	return linked, nil
}
