package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/malbeclabs/ifaceload/internal/store"
)

const nullCell = "NULL"

func printSummary(out io.Writer, s store.Summary) {
	fmt.Fprintln(out, "Table:", s.Table)
	fmt.Fprintf(out, "Records: %d (%d inserted)\n", s.Records, s.Inserted)
	fmt.Fprintf(out, "Port-channel links: %d (%d linked)\n", s.Links, s.Linked)
}

func printRows(out io.Writer, rows []store.Row, all bool) {
	table := tablewriter.NewWriter(out)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetRowLine(true)

	if all {
		table.SetHeader([]string{
			store.ColID, store.ColConnection, store.ColName, store.ColDescription, store.ColConfig,
			store.ColType, store.ColInfraType, store.ColPortChannelID, store.ColMaxFrameSize,
		})
	} else {
		table.SetHeader([]string{
			store.ColID, store.ColName, store.ColDescription, store.ColMaxFrameSize, store.ColPortChannelID,
		})
	}

	for _, r := range rows {
		if all {
			table.Append([]string{
				strconv.Itoa(int(r.ID)),
				intCell(r.Connection),
				r.Name,
				stringCell(r.Description),
				stringCell(r.Config),
				stringCell(r.Type),
				stringCell(r.InfraType),
				intCell(r.PortChannelID),
				intCell(r.MaxFrameSize),
			})
			continue
		}
		table.Append([]string{
			strconv.Itoa(int(r.ID)),
			r.Name,
			stringCell(r.Description),
			intCell(r.MaxFrameSize),
			intCell(r.PortChannelID),
		})
	}
	table.Render()
}

func stringCell(v *string) string {
	if v == nil {
		return nullCell
	}
	return *v
}

func intCell(v *int32) string {
	if v == nil {
		return nullCell
	}
	return strconv.Itoa(int(*v))
}
