package config

import "github.com/ziadkadry99/sitekit/internal/topology"

// Config is the top-level sitekit configuration, corresponding to .sitekit.yml.
type Config struct {
	Site     SiteConfig    `yaml:"site" koanf:"site"`
	Preview  PreviewConfig `yaml:"preview" koanf:"preview"`
	Infra    InfraConfig   `yaml:"infra" koanf:"infra"`
	Publish  PublishConfig `yaml:"publish" koanf:"publish"`
	StateDir string        `yaml:"state_dir" koanf:"state_dir"`
}

// SiteConfig controls bundle generation.
type SiteConfig struct {
	Title       string `yaml:"title" koanf:"title"`
	ContentFile string `yaml:"content_file" koanf:"content_file"`
	OutputDir   string `yaml:"output_dir" koanf:"output_dir"`
}

// PreviewConfig controls the local preview server.
type PreviewConfig struct {
	Port  int  `yaml:"port" koanf:"port"`
	Open  bool `yaml:"open" koanf:"open"`
	Watch bool `yaml:"watch" koanf:"watch"`
}

// InfraConfig holds the deploy-time inputs of the hosting stack.
type InfraConfig struct {
	StackName      string                 `yaml:"stack_name" koanf:"stack_name"`
	BucketName     string                 `yaml:"bucket_name" koanf:"bucket_name"`
	DistributionID string                 `yaml:"distribution_id" koanf:"distribution_id"`
	Account        string                 `yaml:"account" koanf:"account"`
	Region         string                 `yaml:"region" koanf:"region"`
	Environment    string                 `yaml:"environment" koanf:"environment"`
	RemovalPolicy  topology.RemovalPolicy `yaml:"removal_policy" koanf:"removal_policy"`
	PriceClass     topology.PriceClass    `yaml:"price_class" koanf:"price_class"`
	Description    string                 `yaml:"description" koanf:"description"`
	Tags           map[string]string      `yaml:"tags" koanf:"tags"`
}

// CacheRule assigns a Cache-Control header to uploaded keys matching Pattern.
type CacheRule struct {
	Pattern      string `yaml:"pattern" koanf:"pattern"`
	CacheControl string `yaml:"cache_control" koanf:"cache_control"`
}

// PublishConfig controls bundle upload and cache invalidation.
type PublishConfig struct {
	Include         []string    `yaml:"include" koanf:"include"`
	Exclude         []string    `yaml:"exclude" koanf:"exclude"`
	DeleteStale     bool        `yaml:"delete_stale" koanf:"delete_stale"`
	InvalidatePaths []string    `yaml:"invalidate_paths" koanf:"invalidate_paths"`
	CacheRules      []CacheRule `yaml:"cache_rules" koanf:"cache_rules"`
}
