package ifconfig

import (
	"context"
	"encoding/json"
	"io"
	"os"
)

// JSONLinesWriter writes Records as JSON lines, one record per line.
type JSONLinesWriter struct {
	writer  io.Writer
	encoder *json.Encoder
}

// JSONLinesWriterOption configures a JSONLinesWriter.
type JSONLinesWriterOption func(*JSONLinesWriter)

// WithJSONLinesOutput sets a custom writer (defaults to os.Stdout).
func WithJSONLinesOutput(w io.Writer) JSONLinesWriterOption {
	return func(s *JSONLinesWriter) {
		s.writer = w
	}
}

// NewJSONLinesWriter creates a new JSONLinesWriter with the given options.
func NewJSONLinesWriter(opts ...JSONLinesWriterOption) *JSONLinesWriter {
	s := &JSONLinesWriter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.encoder = json.NewEncoder(s.writer)
	return s
}

// WriteRecords encodes each record on its own line.
func (s *JSONLinesWriter) WriteRecords(ctx context.Context, records []Record) error {
	for _, record := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.encoder.Encode(record); err != nil {
			return err
		}
	}
	return nil
}
