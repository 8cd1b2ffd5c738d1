package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/malbeclabs/ifaceload/internal/ifconfig"
)

// PolicyFile is the YAML form of an ifconfig.Policy.
//
//	port_channel_prefix: Port-channel
//	ignore:
//	  BDI: true
//	  Loopback: true
type PolicyFile struct {
	PortChannelPrefix string          `yaml:"port_channel_prefix"`
	Ignore            map[string]bool `yaml:"ignore"`
}

// LoadPolicyFile reads a policy file. Unknown keys are rejected.
func LoadPolicyFile(path string) (*PolicyFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open policy file: %w", err)
	}
	defer f.Close()

	var pf PolicyFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}
	return &pf, nil
}

// Policy builds the extraction policy: the defaults, then the policy file,
// then the --ignore and --include flags.
func (c *Config) Policy() (ifconfig.Policy, error) {
	policy := ifconfig.DefaultPolicy()

	if c.PolicyFile != "" {
		pf, err := LoadPolicyFile(c.PolicyFile)
		if err != nil {
			return ifconfig.Policy{}, err
		}
		policy = policy.With(pf.Ignore)
		if pf.PortChannelPrefix != "" {
			policy.PortChannelPrefix = pf.PortChannelPrefix
		}
	}

	overrides := make(map[string]bool, len(c.Ignore)+len(c.Include))
	for _, group := range c.Ignore {
		overrides[group] = true
	}
	for _, group := range c.Include {
		overrides[group] = false
	}
	return policy.With(overrides), nil
}
