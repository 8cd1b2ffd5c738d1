package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Row is a persisted interface row. Columns outside the selected projection
// are left nil.
type Row struct {
	ID            int32
	Connection    *int32
	Name          string
	Description   *string
	Config        *string
	Type          *string
	InfraType     *string
	PortChannelID *int32
	MaxFrameSize  *int32
}

func (r *Row) scanTargets(all bool) []any {
	if all {
		return []any{
			&r.ID, &r.Connection, &r.Name, &r.Description, &r.Config,
			&r.Type, &r.InfraType, &r.PortChannelID, &r.MaxFrameSize,
		}
	}
	return []any{&r.ID, &r.Name, &r.Description, &r.MaxFrameSize, &r.PortChannelID}
}

// SelectRows returns every row of the table ordered by id. With all unset only
// id, name, description, max_frame_size and port_channel_id are read.
func SelectRows(ctx context.Context, q Querier, table TableName, all bool) ([]Row, error) {
	rows, err := q.Query(ctx, buildSelect(table, all))
	if err != nil {
		return nil, fmt.Errorf("failed to select rows: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Row, error) {
		var r Row
		err := row.Scan(r.scanTargets(all)...)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan rows: %w", err)
	}
	return out, nil
}

// ListRows reads the table outside of any load. A table that does not exist
// yet lists as empty.
func ListRows(ctx context.Context, q Querier, table TableName, all bool) ([]Row, error) {
	rows, err := q.Query(ctx, "SELECT to_regclass($1) IS NOT NULL", table.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	exists, err := pgx.CollectExactlyOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		return nil, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	if !exists {
		return nil, nil
	}
	return SelectRows(ctx, q, table, all)
}
