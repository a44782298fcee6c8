package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/sitekit/internal/topology"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "dist", cfg.Site.OutputDir)
	assert.Equal(t, 8080, cfg.Preview.Port)
	assert.Equal(t, DefaultStackName, cfg.Infra.StackName)
	assert.Equal(t, topology.RemovalDestroy, cfg.Infra.RemovalPolicy)
	assert.Equal(t, []string{"/*"}, cfg.Publish.InvalidatePaths)
	// Resolved from the environment by Load.
	assert.Empty(t, cfg.Infra.Region)
	assert.Empty(t, cfg.Infra.Environment)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.sitekit.yml")

	original := DefaultConfig()
	original.Site.Title = "Acme"
	original.Infra.BucketName = "site-abc123"
	original.Infra.Region = "eu-west-1"
	original.Infra.RemovalPolicy = topology.RemovalRetain
	original.Infra.Tags = map[string]string{"Team": "web"}
	original.Publish.Exclude = []string{"**/*.map", "drafts/**"}

	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Acme", loaded.Site.Title)
	assert.Equal(t, "site-abc123", loaded.Infra.BucketName)
	assert.Equal(t, "eu-west-1", loaded.Infra.Region)
	assert.Equal(t, topology.RemovalRetain, loaded.Infra.RemovalPolicy)
	assert.Equal(t, "web", loaded.Infra.Tags["Team"])
	// Default tags are filled in next to user tags.
	assert.Equal(t, "sitekit", loaded.Infra.Tags["ManagedBy"])
	assert.Equal(t, []string{"**/*.map", "drafts/**"}, loaded.Publish.Exclude)
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultStackName, cfg.Infra.StackName)
	assert.NotEmpty(t, cfg.Infra.BucketName, "expected a bucket name fallback")
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yml")
	require.NoError(t, DefaultConfig().Save(path))

	t.Setenv("SITEKIT_INFRA__BUCKET_NAME", "from-env-bucket")
	t.Setenv("SITEKIT_STATE_DIR", "/tmp/state")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env-bucket", loaded.Infra.BucketName)
	assert.Equal(t, "/tmp/state", loaded.StateDir)
}

func TestApplyEnvFallbacks(t *testing.T) {
	env := map[string]string{
		"BUCKET_NAME":         "legacy-bucket",
		"CDK_DEFAULT_ACCOUNT": "123456789012",
		"AWS_REGION":          "eu-central-1",
		"ENVIRONMENT":         "staging",
	}
	cfg := DefaultConfig()
	applyEnvFallbacks(cfg, func(k string) string { return env[k] })

	assert.Equal(t, "legacy-bucket", cfg.Infra.BucketName)
	assert.Equal(t, "123456789012", cfg.Infra.Account)
	assert.Equal(t, "eu-central-1", cfg.Infra.Region)
	assert.Equal(t, "staging", cfg.Infra.Environment)
	assert.Equal(t, "staging", cfg.Infra.Tags["Environment"])
}

func TestApplyEnvFallbacksKeepsConfiguredValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Infra.BucketName = "configured"
	applyEnvFallbacks(cfg, func(k string) string {
		if k == "BUCKET_NAME" {
			return "legacy"
		}
		return ""
	})
	assert.Equal(t, "configured", cfg.Infra.BucketName)
	assert.Equal(t, DefaultRegion, cfg.Infra.Region)
	assert.Equal(t, DefaultEnvironment, cfg.Infra.Environment)
}

func TestLoadUsesAWSEnvFallbacks(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("ENVIRONMENT", "staging")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Infra.Region)
	assert.Equal(t, "staging", cfg.Infra.Environment)
	assert.Equal(t, "staging", cfg.Infra.Tags["Environment"])
}

func TestLoadRegionPrecedence(t *testing.T) {
	t.Setenv("CDK_DEFAULT_REGION", "ap-southeast-2")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "ap-southeast-2", cfg.Infra.Region, "CDK_DEFAULT_REGION wins over AWS_REGION")

	// A region in the file beats both variables.
	path := filepath.Join(t.TempDir(), "site.yml")
	saved := DefaultConfig()
	saved.Infra.Region = "us-west-2"
	require.NoError(t, saved.Save(path))

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", cfg.Infra.Region)
}

func TestLoadDefaultsWithoutAWSEnv(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRegion, cfg.Infra.Region)
	assert.Equal(t, DefaultEnvironment, cfg.Infra.Environment)
	assert.Equal(t, DefaultEnvironment, cfg.Infra.Tags["Environment"])
}

// validConfig returns defaults resolved the way Load resolves them.
func validConfig() *Config {
	cfg := DefaultConfig()
	applyEnvFallbacks(cfg, func(string) string { return "" })
	cfg.Infra.BucketName = "site-abc123"
	return cfg
}

func TestValidateValid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRequiresRegion(t *testing.T) {
	cfg := validConfig()
	cfg.Infra.Region = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateBadBucket(t *testing.T) {
	cfg := validConfig()
	cfg.Infra.BucketName = "Not_A_Bucket"
	assert.Error(t, cfg.Validate())
}

func TestValidateBadRemovalPolicy(t *testing.T) {
	cfg := validConfig()
	cfg.Infra.RemovalPolicy = "snapshot"
	assert.Error(t, cfg.Validate())
}

func TestValidateInvalidationPath(t *testing.T) {
	cfg := validConfig()
	cfg.Publish.InvalidatePaths = []string{"index.html"}
	assert.Error(t, cfg.Validate(), "relative invalidation path")
}

func TestValidatePort(t *testing.T) {
	cfg := validConfig()
	cfg.Preview.Port = 70000
	assert.Error(t, cfg.Validate(), "out of range port")
}

func TestTopologyCopiesTags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Infra.Tags = map[string]string{"Project": "x"}
	tc := cfg.Topology()
	tc.Tags["Project"] = "mutated"
	assert.Equal(t, "x", cfg.Infra.Tags["Project"], "Topology() should copy the tag map")
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"**/*.map", []string{"**/*.map"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitAndTrim(tt.input), "splitAndTrim(%q)", tt.input)
	}
}

func TestMain(m *testing.M) {
	// Keep ambient AWS variables from leaking into Load.
	for _, k := range []string{"BUCKET_NAME", "CDK_DEFAULT_ACCOUNT", "AWS_ACCOUNT_ID", "CDK_DEFAULT_REGION", "AWS_REGION", "ENVIRONMENT"} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}
