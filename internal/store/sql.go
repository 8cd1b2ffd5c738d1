package store

import (
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	"github.com/malbeclabs/ifaceload/internal/ifconfig"
)

// Column names of the interface table.
const (
	ColID            = "id"
	ColConnection    = "connection"
	ColName          = "name"
	ColDescription   = "description"
	ColConfig        = "config"
	ColType          = "type"
	ColInfraType     = "infra_type"
	ColPortChannelID = "port_channel_id"
	ColMaxFrameSize  = "max_frame_size"
)

// maxBindParams is the PostgreSQL limit on parameters per statement.
const maxBindParams = 65535

var insertColumns = []string{ColName, ColDescription, ColConfig, ColMaxFrameSize}

const (
	maxInsertRows = maxBindParams / 4
	maxLinkRows   = maxBindParams / 2
)

func buildCreateTable(table TableName) string {
	ctb := sqlbuilder.PostgreSQL.NewCreateTableBuilder()
	ctb.CreateTable(table.Sanitize()).IfNotExists()
	ctb.Define(ColID, "SERIAL")
	ctb.Define(ColConnection, "INTEGER")
	ctb.Define(ColName, "VARCHAR(255)", "NOT NULL")
	ctb.Define(ColDescription, "VARCHAR(255)")
	ctb.Define(ColConfig, "json")
	ctb.Define(ColType, "VARCHAR(50)")
	ctb.Define(ColInfraType, "VARCHAR(50)")
	ctb.Define(ColPortChannelID, "INTEGER")
	ctb.Define(ColMaxFrameSize, "INTEGER")
	ctb.Define(fmt.Sprintf("PRIMARY KEY(%s)", ColID))
	ctb.Define(fmt.Sprintf("UNIQUE(%s)", ColName))
	query, _ := ctb.Build()
	return query
}

// buildInsert renders one multi-row insert. Rows whose name already exists
// are skipped by the database.
func buildInsert(table TableName, records []ifconfig.Record) (string, []any) {
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(table.Sanitize())
	ib.Cols(insertColumns...)
	for _, r := range records {
		ib.Values(r.Name, r.Description, r.Config, r.MaxFrameSize)
	}
	ib.SQL(fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", ColName))
	return ib.Build()
}

// buildLink renders one batched update that points each record's row at the
// row named by its port-channel reference. The table is joined twice: as the
// target matched by name and as the port-channel lookup. Rows that are
// already linked are left alone.
func buildLink(table TableName, records []ifconfig.Record) (string, []any) {
	tuples := make([]string, 0, len(records))
	args := make([]any, 0, 2*len(records))
	for _, r := range records {
		tuples = append(tuples, "(%v::text, %v::text)")
		args = append(args, r.Name, *r.PortChannelName)
	}

	t := table.Sanitize()
	format := fmt.Sprintf(
		"UPDATE %s AS t SET %s = pc.%s FROM (VALUES %s) AS v(%s, port_channel_name) "+
			"JOIN %s AS pc ON pc.%s = v.port_channel_name "+
			"WHERE t.%s = v.%s AND t.%s IS NULL",
		t, ColPortChannelID, ColID, strings.Join(tuples, ", "), ColName,
		t, ColName,
		ColName, ColName, ColPortChannelID,
	)
	return sqlbuilder.Buildf(format, args...).BuildWithFlavor(sqlbuilder.PostgreSQL)
}

// readBackColumns returns the read-back projection. The short form matches
// what an operator wants to eyeball after a load.
func readBackColumns(all bool) []string {
	if all {
		return []string{
			ColID, ColConnection, ColName, ColDescription,
			ColConfig + "::text AS " + ColConfig,
			ColType, ColInfraType, ColPortChannelID, ColMaxFrameSize,
		}
	}
	return []string{ColID, ColName, ColDescription, ColMaxFrameSize, ColPortChannelID}
}

func buildSelect(table TableName, all bool) string {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(readBackColumns(all)...)
	sb.From(table.Sanitize())
	sb.OrderBy(ColID).Asc()
	query, _ := sb.Build()
	return query
}

// chunk splits records into consecutive batches of at most size records.
func chunk(records []ifconfig.Record, size int) [][]ifconfig.Record {
	var batches [][]ifconfig.Record
	for len(records) > size {
		batches = append(batches, records[:size])
		records = records[size:]
	}
	if len(records) > 0 {
		batches = append(batches, records)
	}
	return batches
}
