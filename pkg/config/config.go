package config

import (
	"io"
	"os"
	"sort"

	"github.com/hatidata/hati/pkg/consts"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type (
	// Config is the persisted per-project configuration stored in
	// .hati/config.yaml. All values are plain strings; tier is optional and
	// interpreted by the tier package.
	Config struct {
		// CloudEndpoint is the control plane base URL for push/pull
		CloudEndpoint string `yaml:"cloud_endpoint"`

		// APIKey authenticates cloud operations (hd_live_... / hd_test_...)
		APIKey string `yaml:"api_key"`

		// DefaultTarget is the push target used when --target is not given
		DefaultTarget string `yaml:"default_target"`

		// OrgID is the organization this project belongs to
		OrgID string `yaml:"org_id"`

		// Tier is the configured subscription tier name, if any
		Tier string `yaml:"tier,omitempty"`
	}
)

// ErrUnknownKey is returned by Get/Set for keys outside Keys().
var ErrUnknownKey = errors.New("unknown config key")

// Load parses a configuration from the provided io.Reader, applying defaults
// for the endpoint and target when unset.
func Load(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if cfg.CloudEndpoint == "" {
		cfg.CloudEndpoint = consts.DefaultCloudEndpoint
	}
	if cfg.DefaultTarget == "" {
		cfg.DefaultTarget = consts.DefaultTarget
	}

	return &cfg, nil
}

// LoadFile loads a configuration from the specified file path. This is a
// convenience wrapper around Load.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open config file for writing: %s", path)
	}
	defer func() { _ = f.Close() }()

	enc := yaml.NewEncoder(f)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "failed to write config")
	}

	return errors.Wrap(enc.Close(), "failed to close yaml encoder")
}

// Keys returns the valid keys for `hati config set/get`, sorted.
func Keys() []string {
	keys := []string{"cloud_endpoint", "api_key", "default_target", "org_id", "tier"}
	sort.Strings(keys)
	return keys
}

// Get returns the value for a key, or ErrUnknownKey.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "cloud_endpoint":
		return c.CloudEndpoint, nil
	case "api_key":
		return c.APIKey, nil
	case "default_target":
		return c.DefaultTarget, nil
	case "org_id":
		return c.OrgID, nil
	case "tier":
		return c.Tier, nil
	default:
		return "", errors.Wrapf(ErrUnknownKey, "'%s'", key)
	}
}

// Set updates the value for a key, or returns ErrUnknownKey.
func (c *Config) Set(key, value string) error {
	switch key {
	case "cloud_endpoint":
		c.CloudEndpoint = value
	case "api_key":
		c.APIKey = value
	case "default_target":
		c.DefaultTarget = value
	case "org_id":
		c.OrgID = value
	case "tier":
		c.Tier = value
	default:
		return errors.Wrapf(ErrUnknownKey, "'%s'", key)
	}

	return nil
}

// MaskAPIKey redacts an API key for display, keeping the prefix and the last
// four characters. Keys too short to redact meaningfully become "****".
func MaskAPIKey(key string) string {
	if len(key) <= 12 {
		return "****"
	}
	return key[:8] + "..." + key[len(key)-4:]
}
