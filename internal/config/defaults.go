package config

import "github.com/ziadkadry99/sitekit/internal/topology"

const (
	DefaultStackName   = "WebsiteStack"
	DefaultBucketName  = "aws-sls-website-prod"
	DefaultRegion      = "us-east-1"
	DefaultEnvironment = "production"
)

// DefaultExcludes are glob patterns never uploaded by publish.
var DefaultExcludes = []string{
	"**/.DS_Store",
	"**/*.map",
	".sitekit/**",
}

// DefaultCacheRules keep documents revalidated and fingerprinted assets cached
// for a year. The first matching rule wins.
var DefaultCacheRules = []CacheRule{
	{Pattern: "**/*.html", CacheControl: "no-cache"},
	{Pattern: "assets/**", CacheControl: "public, max-age=31536000, immutable"},
	{Pattern: "**", CacheControl: "public, max-age=86400"},
}

// DefaultTags returns the stack tags applied when none are configured.
func DefaultTags(environment string) map[string]string {
	return map[string]string{
		"Project":     "aws-sls-website",
		"Environment": environment,
		"ManagedBy":   "sitekit",
	}
}

// DefaultConfig returns a Config with sensible defaults. Region and
// Environment stay empty so Load can resolve them from the AWS environment
// before falling back to DefaultRegion and DefaultEnvironment.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Title:     "Serverless Static Website",
			OutputDir: "dist",
		},
		Preview: PreviewConfig{
			Port:  8080,
			Watch: true,
		},
		Infra: InfraConfig{
			StackName:     DefaultStackName,
			RemovalPolicy: topology.RemovalDestroy,
			PriceClass:    topology.PriceClassAll,
			Description:   "Serverless Static Website - S3 + CloudFront",
		},
		Publish: PublishConfig{
			Include:         []string{"**"},
			Exclude:         DefaultExcludes,
			DeleteStale:     true,
			InvalidatePaths: []string{"/*"},
			CacheRules:      DefaultCacheRules,
		},
		StateDir: ".sitekit",
	}
}
