package qgate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/qgate/internal/expand"
	"github.com/viant/qgate/internal/logger"
	"github.com/viant/qgate/policy"
	"github.com/viant/qgate/service/node"
	"gopkg.in/yaml.v3"
)

// Config is the serialisable gateway configuration, loaded from YAML or JSON.
type Config struct {
	Listen      string         `json:"listen" yaml:"listen"`
	Node        node.Config    `json:"node" yaml:"node"`
	Keystore    KeystoreConfig `json:"keystore" yaml:"keystore"`
	Logging     logger.Config  `json:"logging" yaml:"logging"`
	Policy      *policy.Config `json:"policy,omitempty" yaml:"policy,omitempty"`
	DownloadURL string         `json:"downloadURL" yaml:"downloadURL"`
	CacheSize   int            `json:"cacheSize" yaml:"cacheSize"`
	Console     bool           `json:"console" yaml:"console"`
	Tracing     TracingConfig  `json:"tracing" yaml:"tracing"`
}

// KeystoreConfig locates the encrypted key material.
type KeystoreConfig struct {
	URL string `json:"url" yaml:"url"`
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
}

// TracingConfig enables the stdout or file span exporter.
type TracingConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Output  string `json:"output,omitempty" yaml:"output,omitempty"`
}

// DefaultConfig returns a configuration for a local node.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8989",
		Node:        node.DefaultConfig(),
		Keystore:    KeystoreConfig{Key: "blowfish://default"},
		Logging:     logger.Config{Format: "text", Level: "info"},
		DownloadURL: "Downloads",
		CacheSize:   128,
		Console:     true,
	}
}

// Validate returns an aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		errs = append(errs, fmt.Errorf("invalid listen address %q: %w", c.Listen, err))
	}
	if err := c.Node.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.CacheSize < 0 {
		errs = append(errs, errors.New("cacheSize must be >= 0"))
	}
	if c.Policy != nil {
		switch c.Policy.Mode {
		case "", policy.ModeAsk, policy.ModeAuto, policy.ModeDeny:
		default:
			errs = append(errs, fmt.Errorf("invalid policy mode %q", c.Policy.Mode))
		}
	}
	return errors.Join(errs...)
}

// LoadConfig reads a configuration from any afs URL, expands ${env.KEY}
// references and applies it over DefaultConfig.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	if ext := strings.ToLower(path.Ext(URL)); ext != ".yaml" && ext != ".yml" && ext != ".json" {
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	text := expand.Env(string(data))
	if err = yaml.Unmarshal([]byte(text), ret); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, ret.Validate()
}
