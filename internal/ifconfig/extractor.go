package ifconfig

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Record is a flattened interface ready to be loaded.
type Record struct {
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	Config          json.RawMessage `json:"config"`
	MaxFrameSize    *int32          `json:"max_frame_size"`
	PortChannelName *string         `json:"port_channel_name,omitempty"`
}

// Extractor flattens the interface groups of a Document into Records.
type Extractor struct {
	policy Policy
	logger *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithPolicy sets the group policy.
func WithPolicy(policy Policy) ExtractorOption {
	return func(e *Extractor) {
		e.policy = policy
	}
}

// WithExtractorLogger sets the logger.
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an Extractor. Without options it uses DefaultPolicy.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		policy: DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.policy.PortChannelPrefix == "" {
		e.policy.PortChannelPrefix = GroupPortChannel
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return e
}

// Extract returns one Record per entry of every group the policy does not
// ignore, in document order. Entries of ignored groups are not decoded.
func (e *Extractor) Extract(doc *Document) ([]Record, error) {
	var records []Record

	for _, group := range doc.Groups {
		if e.policy.Ignored(group.Type) {
			e.logger.Debug("skipping ignored interface group", "group", group.Type, "entries", len(group.Entries))
			continue
		}

		for i, raw := range group.Entries {
			entry, err := ParseEntry(raw)
			if err != nil {
				return nil, fmt.Errorf("interface group %q entry %d: %w", group.Type, i, err)
			}
			records = append(records, e.record(group.Type, entry))
		}
	}

	e.logger.Debug("extracted interfaces", "records", len(records))
	return records, nil
}

func (e *Extractor) record(groupType string, entry Entry) Record {
	r := Record{
		Name:         groupType + entry.Name,
		Description:  entry.Description,
		Config:       entry.Raw,
		MaxFrameSize: entry.MTU,
	}
	if entry.ChannelGroup != nil {
		name := e.policy.PortChannelPrefix + *entry.ChannelGroup
		r.PortChannelName = &name
	}
	return r
}

// Filter returns the records that reference a port-channel, preserving order.
func Filter(records []Record) []Record {
	var linked []Record
	for _, r := range records {
		if r.PortChannelName != nil {
			linked = append(linked, r)
		}
	}
	return linked
}
