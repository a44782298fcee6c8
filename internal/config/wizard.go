package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/sitekit/internal/topology"
)

// regions offered by the wizard. Any region can still be set in the file.
var wizardRegions = []string{
	"us-east-1", "us-east-2", "us-west-2",
	"eu-central-1", "eu-west-1", "ap-northeast-1", "ap-southeast-2",
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to sitekit! Let's configure your site.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Site title.
	titlePrompt := promptui.Prompt{
		Label:   "Site title",
		Default: cfg.Site.Title,
	}
	title, err := titlePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site title: %w", err)
	}
	cfg.Site.Title = title

	// 2. Bucket name.
	bucketPrompt := promptui.Prompt{
		Label:    "S3 bucket name (globally unique)",
		Default:  firstNonEmpty(os.Getenv("BUCKET_NAME"), DefaultBucketName),
		Validate: topology.ValidateBucketName,
	}
	bucket, err := bucketPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("bucket name: %w", err)
	}
	cfg.Infra.BucketName = bucket

	// 3. Region.
	regionPrompt := promptui.Select{
		Label: "Select AWS region",
		Items: wizardRegions,
	}
	_, region, err := regionPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("region selection: %w", err)
	}
	cfg.Infra.Region = region

	// 4. Environment.
	envPrompt := promptui.Prompt{
		Label:   "Environment name",
		Default: DefaultEnvironment,
	}
	environment, err := envPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	cfg.Infra.Environment = environment
	cfg.Infra.Tags = DefaultTags(environment)

	// 5. Removal policy.
	removalPrompt := promptui.Select{
		Label: "What should happen to the bucket when the stack is destroyed?",
		Items: []string{
			"destroy: delete objects and bucket (dev/test)",
			"retain: keep the bucket (production)",
		},
	}
	removalIdx, _, err := removalPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("removal policy: %w", err)
	}
	cfg.Infra.RemovalPolicy = []topology.RemovalPolicy{topology.RemovalDestroy, topology.RemovalRetain}[removalIdx]

	// 6. Extra publish excludes.
	excludePrompt := promptui.Prompt{
		Label:   "Extra publish exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if excludeStr != "" {
		cfg.Publish.Exclude = append(append([]string{}, DefaultExcludes...), splitAndTrim(excludeStr)...)
	}

	if os.Getenv("AWS_PROFILE") == "" && os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		fmt.Println("\nNote: configure AWS credentials (AWS_PROFILE or AWS_ACCESS_KEY_ID) before running sitekit deploy.")
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
