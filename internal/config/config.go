package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/sitekit/internal/topology"
)

// EnvPrefix is the prefix of environment overrides. Nested keys use a double
// underscore, e.g. SITEKIT_INFRA__BUCKET_NAME.
const EnvPrefix = "SITEKIT_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SITEKIT_*), then the plain AWS/CDK
// variables for any infra field still empty.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	applyEnvFallbacks(cfg, os.Getenv)
	return cfg, nil
}

// applyEnvFallbacks fills empty infra fields from the variables the AWS and
// CDK tooling already export, so CI pipelines work without a config file.
func applyEnvFallbacks(cfg *Config, getenv func(string) string) {
	if v := getenv("BUCKET_NAME"); v != "" && cfg.Infra.BucketName == "" {
		cfg.Infra.BucketName = v
	}
	if cfg.Infra.BucketName == "" {
		cfg.Infra.BucketName = DefaultBucketName
	}
	if cfg.Infra.Account == "" {
		cfg.Infra.Account = firstNonEmpty(getenv("CDK_DEFAULT_ACCOUNT"), getenv("AWS_ACCOUNT_ID"))
	}
	if cfg.Infra.Region == "" {
		cfg.Infra.Region = firstNonEmpty(getenv("CDK_DEFAULT_REGION"), getenv("AWS_REGION"), DefaultRegion)
	}
	if cfg.Infra.Environment == "" {
		cfg.Infra.Environment = firstNonEmpty(getenv("ENVIRONMENT"), DefaultEnvironment)
	}
	if cfg.Infra.Tags == nil {
		cfg.Infra.Tags = make(map[string]string)
	}
	for k, v := range DefaultTags(cfg.Infra.Environment) {
		if _, ok := cfg.Infra.Tags[k]; !ok {
			cfg.Infra.Tags[k] = v
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Site.OutputDir == "" {
		return fmt.Errorf("site.output_dir is required")
	}
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return fmt.Errorf("preview.port %d out of range", c.Preview.Port)
	}
	if c.StateDir == "" {
		return fmt.Errorf("state_dir is required")
	}
	if len(c.Publish.InvalidatePaths) == 0 {
		return fmt.Errorf("publish.invalidate_paths must not be empty")
	}
	for _, p := range c.Publish.InvalidatePaths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("invalid invalidation path %q: must start with /", p)
		}
	}
	for _, r := range c.Publish.CacheRules {
		if r.Pattern == "" || r.CacheControl == "" {
			return fmt.Errorf("cache rule needs both pattern and cache_control")
		}
	}
	if err := c.Topology().Validate(); err != nil {
		return fmt.Errorf("infra: %w", err)
	}
	return nil
}

// Topology converts the infra section into the planner's input.
func (c *Config) Topology() topology.Config {
	tags := make(map[string]string, len(c.Infra.Tags))
	for k, v := range c.Infra.Tags {
		tags[k] = v
	}
	return topology.Config{
		StackName:      c.Infra.StackName,
		BucketName:     c.Infra.BucketName,
		DistributionID: c.Infra.DistributionID,
		Account:        c.Infra.Account,
		Region:         c.Infra.Region,
		Tags:           tags,
		RemovalPolicy:  c.Infra.RemovalPolicy,
		PriceClass:     c.Infra.PriceClass,
		Description:    c.Infra.Description,
	}
}
