package ifconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Keys of the uniconfig export that lead to the interface groups.
const (
	KeyConfiguration = "frinx-uniconfig-topology:configuration"
	KeyNative        = "Cisco-IOS-XE-native:native"
	KeyInterface     = "interface"

	KeyName         = "name"
	KeyDescription  = "description"
	KeyMTU          = "mtu"
	KeyChannelGroup = "Cisco-IOS-XE-ethernet:channel-group"
	KeyNumber       = "number"
)

var (
	// ErrMissingKey is returned when a required key is absent from the export.
	ErrMissingKey = errors.New("missing required key")
)

// Document is a parsed configuration export. Groups keep the order in which
// they appear in the source file so that row ids follow the document.
type Document struct {
	Groups []Group
}

// Group is one interface group of the export, e.g. "GigabitEthernet".
// Entries are left undecoded until the extractor decides the group is wanted.
type Group struct {
	Type    string
	Entries []json.RawMessage
}

type exportEnvelope struct {
	Configuration *struct {
		Native *struct {
			Interface json.RawMessage `json:"interface"`
		} `json:"Cisco-IOS-XE-native:native"`
	} `json:"frinx-uniconfig-topology:configuration"`
}

// LoadDocument reads and parses the export at path.
func LoadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	doc, err := ParseDocument(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// ParseDocument decodes an export and locates its interface groups.
func ParseDocument(r io.Reader) (*Document, error) {
	var env exportEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if env.Configuration == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingKey, KeyConfiguration)
	}
	if env.Configuration.Native == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrMissingKey, KeyConfiguration, KeyNative)
	}
	raw := env.Configuration.Native.Interface
	if isNull(raw) {
		return nil, fmt.Errorf("%w: %s.%s.%s", ErrMissingKey, KeyConfiguration, KeyNative, KeyInterface)
	}

	groups, err := decodeGroups(raw)
	if err != nil {
		return nil, err
	}
	return &Document{Groups: groups}, nil
}

// decodeGroups walks the interface object token by token; a map would lose
// the group order.
func decodeGroups(raw json.RawMessage) ([]Group, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", KeyInterface, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%s must be an object, got %v", KeyInterface, tok)
	}

	var groups []Group
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read interface group: %w", err)
		}
		groupType, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token in %s: %v", KeyInterface, tok)
		}

		var entries []json.RawMessage
		if err := dec.Decode(&entries); err != nil {
			return nil, fmt.Errorf("interface group %q: %w", groupType, err)
		}
		if entries == nil {
			return nil, fmt.Errorf("interface group %q must be a list", groupType)
		}
		groups = append(groups, Group{Type: groupType, Entries: entries})
	}

	return groups, nil
}

// Entry is a single interface entry with the fields the loader cares about.
type Entry struct {
	Name         string
	Description  *string
	MTU          *int32
	ChannelGroup *string
	Raw          json.RawMessage
}

// ParseEntry decodes one interface entry. Presence of each optional key is
// checked explicitly so that absent fields stay nil rather than zero values.
func ParseEntry(raw json.RawMessage) (Entry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Entry{}, fmt.Errorf("failed to decode interface entry: %w", err)
	}
	if fields == nil {
		return Entry{}, errors.New("interface entry must be an object")
	}

	var e Entry

	nameRaw, ok := fields[KeyName]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrMissingKey, KeyName)
	}
	name, err := scalarString(nameRaw)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid %s: %w", KeyName, err)
	}
	e.Name = name

	if v, ok := fields[KeyDescription]; ok {
		if err := json.Unmarshal(v, &e.Description); err != nil {
			return Entry{}, fmt.Errorf("interface %s: invalid %s: %w", name, KeyDescription, err)
		}
	}

	if v, ok := fields[KeyMTU]; ok {
		if err := json.Unmarshal(v, &e.MTU); err != nil {
			return Entry{}, fmt.Errorf("interface %s: invalid %s: %w", name, KeyMTU, err)
		}
	}

	if v, ok := fields[KeyChannelGroup]; ok {
		var link map[string]json.RawMessage
		if err := json.Unmarshal(v, &link); err != nil {
			return Entry{}, fmt.Errorf("interface %s: invalid %s: %w", name, KeyChannelGroup, err)
		}
		numRaw, ok := link[KeyNumber]
		if !ok {
			return Entry{}, fmt.Errorf("%w: interface %s: %s.%s", ErrMissingKey, name, KeyChannelGroup, KeyNumber)
		}
		number, err := scalarString(numRaw)
		if err != nil {
			return Entry{}, fmt.Errorf("interface %s: invalid %s.%s: %w", name, KeyChannelGroup, KeyNumber, err)
		}
		e.ChannelGroup = &number
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return Entry{}, fmt.Errorf("interface %s: failed to compact config: %w", name, err)
	}
	e.Raw = buf.Bytes()

	return e, nil
}

// scalarString renders a JSON string or number as text. IOS-XE encodes some
// interface names (Port-channel, Loopback) as numbers.
func scalarString(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	default:
		return "", fmt.Errorf("expected string or number, got %s", string(raw))
	}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
