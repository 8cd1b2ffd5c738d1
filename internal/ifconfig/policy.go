package ifconfig

import "maps"

// Interface group types found in IOS-XE exports.
const (
	GroupBDI                = "BDI"
	GroupLoopback           = "Loopback"
	GroupPortChannel        = "Port-channel"
	GroupTenGigabitEthernet = "TenGigabitEthernet"
	GroupGigabitEthernet    = "GigabitEthernet"
)

// Policy decides which interface groups are extracted and how port-channel
// references are named.
type Policy struct {
	// Ignore maps a group type to whether the group is skipped. Group types
	// that are not listed are extracted.
	Ignore map[string]bool

	// PortChannelPrefix is prepended to a channel-group number to form the
	// name of the port-channel row an interface links to.
	PortChannelPrefix string
}

// DefaultPolicy skips bridge-domain and loopback interfaces.
func DefaultPolicy() Policy {
	return Policy{
		Ignore: map[string]bool{
			GroupBDI:                true,
			GroupLoopback:           true,
			GroupPortChannel:        false,
			GroupTenGigabitEthernet: false,
			GroupGigabitEthernet:    false,
		},
		PortChannelPrefix: GroupPortChannel,
	}
}

// Ignored reports whether the group type is skipped.
func (p Policy) Ignored(groupType string) bool {
	return p.Ignore[groupType]
}

// With returns a copy of the policy with the given ignore overrides applied.
func (p Policy) With(overrides map[string]bool) Policy {
	out := Policy{
		Ignore:            make(map[string]bool, len(p.Ignore)+len(overrides)),
		PortChannelPrefix: p.PortChannelPrefix,
	}
	maps.Copy(out.Ignore, p.Ignore)
	maps.Copy(out.Ignore, overrides)
	return out
}
