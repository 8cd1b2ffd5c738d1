package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malbeclabs/ifaceload/internal/config"
	"github.com/malbeclabs/ifaceload/internal/ifconfig"
	"github.com/malbeclabs/ifaceload/internal/store"
)

const testInput = "../ifconfig/testdata/config.json"

func ptr[T any](v T) *T {
	return &v
}

func execute(t *testing.T, cfg config.Config, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&cfg, strings.NewReader(stdin), &out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeLines(t *testing.T, out string) []ifconfig.Record {
	t.Helper()
	var records []ifconfig.Record
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var r ifconfig.Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		records = append(records, r)
	}
	require.NoError(t, scanner.Err())
	return records
}

func names(records []ifconfig.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func TestIfaceLoad_CLI_Extract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "default policy",
			args: []string{"extract", "--input", testInput},
			want: []string{"Port-channel5", "Port-channel20", "TenGigabitEthernet1/0/1", "TenGigabitEthernet1/0/2", "GigabitEthernet0"},
		},
		{
			name: "links only",
			args: []string{"extract", "-i", testInput, "--links-only"},
			want: []string{"TenGigabitEthernet1/0/1", "TenGigabitEthernet1/0/2"},
		},
		{
			name: "ignore and include",
			args: []string{"extract", "--input", testInput, "--ignore", "GigabitEthernet,Port-channel", "--include", "Loopback"},
			want: []string{"TenGigabitEthernet1/0/1", "TenGigabitEthernet1/0/2", "Loopback0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := execute(t, config.Config{}, "", tt.args...)
			require.NoError(t, err)
			require.Equal(t, tt.want, names(decodeLines(t, out)))
		})
	}
}

func TestIfaceLoad_CLI_Extract_PortChannelName(t *testing.T) {
	t.Parallel()

	out, err := execute(t, config.Config{}, "", "extract", "--input", testInput, "--links-only")
	require.NoError(t, err)

	records := decodeLines(t, out)
	require.Len(t, records, 2)
	require.Equal(t, ptr("Port-channel5"), records[0].PortChannelName)
	require.Equal(t, ptr("Port-channel7"), records[1].PortChannelName)
}

func TestIfaceLoad_CLI_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.Config
		args    []string
		wantErr string
	}{
		{name: "extract without input", args: []string{"extract"}, wantErr: "input file is empty"},
		{name: "extract missing file", args: []string{"extract", "--input", "testdata/nope.json"}, wantErr: "failed to open input file"},
		{name: "load without input", args: []string{"load"}, wantErr: "input file is empty"},
		{name: "load yes and dry-run", args: []string{"load", "--input", testInput, "--yes", "--dry-run"}, wantErr: "mutually exclusive"},
		{name: "load without postgres user", cfg: config.Config{Postgres: store.ConnConfig{Database: "Frinx"}}, args: []string{"load", "--input", testInput}, wantErr: "postgres user is empty"},
		{name: "show bad table", args: []string{"show", "--table", "json1;"}, wantErr: "invalid table name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := execute(t, tt.cfg, "", tt.args...)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestIfaceLoad_CLI_PromptDecider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  store.Decision
	}{
		{input: "y\n", want: store.DecisionCommit},
		{input: "Y\n", want: store.DecisionCommit},
		{input: "  y  \n", want: store.DecisionCommit},
		{input: "y", want: store.DecisionCommit},
		{input: "n\n", want: store.DecisionRollback},
		{input: "yes\n", want: store.DecisionRollback},
		{input: "\n", want: store.DecisionRollback},
		{input: "", want: store.DecisionRollback},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			decide := NewPromptDecider(strings.NewReader(tt.input), &out)

			got, err := decide(context.Background(), store.Summary{})
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.True(t, strings.HasPrefix(out.String(), commitPrompt))
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("tty gone")
}

func TestIfaceLoad_CLI_PromptDecider_ReadError(t *testing.T) {
	t.Parallel()

	decide := NewPromptDecider(failingReader{}, io.Discard)
	got, err := decide(context.Background(), store.Summary{})
	require.ErrorContains(t, err, "failed to read confirmation")
	require.Equal(t, store.DecisionRollback, got)
}

func TestIfaceLoad_CLI_PromptDecider_Cancelled(t *testing.T) {
	t.Parallel()

	// A pipe with no writer blocks the read until the context is cancelled.
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	decide := NewPromptDecider(pr, io.Discard)
	got, err := decide(ctx, store.Summary{})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, store.DecisionRollback, got)
}

func TestIfaceLoad_CLI_LoadDecider(t *testing.T) {
	t.Parallel()

	summary := store.Summary{
		Table:    store.DefaultTable,
		Records:  2,
		Links:    1,
		Inserted: 2,
		Linked:   1,
		Rows: []store.Row{
			{ID: 1, Name: "Port-channel5", MaxFrameSize: ptr(int32(9000))},
			{ID: 2, Name: "TenGigabitEthernet1/0/1", PortChannelID: ptr(int32(1))},
		},
	}

	tests := []struct {
		name  string
		cfg   config.Config
		stdin string
		want  store.Decision
	}{
		{name: "yes", cfg: config.Config{Yes: true}, want: store.DecisionCommit},
		{name: "dry run", cfg: config.Config{DryRun: true}, stdin: "y\n", want: store.DecisionRollback},
		{name: "prompt accepted", stdin: "y\n", want: store.DecisionCommit},
		{name: "prompt declined", stdin: "n\n", want: store.DecisionRollback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			cfg := tt.cfg
			decide := NewLoadCmd(&cfg).decider(strings.NewReader(tt.stdin), &out)

			got, err := decide(context.Background(), summary)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)

			printed := out.String()
			require.Contains(t, printed, "Table: json1")
			require.Contains(t, printed, "Records: 2 (2 inserted)")
			require.Contains(t, printed, "Port-channel links: 1 (1 linked)")
			require.Contains(t, printed, "TenGigabitEthernet1/0/1")
		})
	}
}

func TestIfaceLoad_CLI_PrintRows(t *testing.T) {
	t.Parallel()

	rows := []store.Row{
		{ID: 1, Name: "Port-channel5", Description: ptr("uplink bundle"), Config: ptr(`{"name":5}`), MaxFrameSize: ptr(int32(9000))},
		{ID: 2, Name: "TenGigabitEthernet1/0/1", PortChannelID: ptr(int32(1))},
	}

	var short bytes.Buffer
	printRows(&short, rows, false)
	require.Contains(t, short.String(), "port_channel_id")
	require.NotContains(t, short.String(), "infra_type")
	require.Contains(t, short.String(), "uplink bundle")
	require.Contains(t, short.String(), "9000")
	require.Contains(t, short.String(), nullCell)

	var all bytes.Buffer
	printRows(&all, rows, true)
	require.Contains(t, all.String(), "infra_type")
	require.Contains(t, all.String(), `{"name":5}`)
}
