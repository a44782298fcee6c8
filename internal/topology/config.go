// Package topology describes the static-site hosting stack as data: a private
// S3 bucket, the origin-access identity that reads it, and the CloudFront
// distribution in front of it. Plan is a pure function from Config to the
// resource graph; provisioning engines consume the result.
package topology

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
)

var (
	// ErrInvalidBucketName is returned when a bucket name breaks the S3 naming rules.
	ErrInvalidBucketName = errors.New("invalid bucket name")
	// ErrInvalidConfig wraps every other validation failure.
	ErrInvalidConfig = errors.New("invalid topology config")
	// ErrCycle is returned when resource dependencies do not form a DAG.
	ErrCycle = errors.New("resource graph is not a DAG")
)

// RemovalPolicy decides what happens to the bucket when the stack is torn down.
type RemovalPolicy string

const (
	RemovalDestroy RemovalPolicy = "destroy"
	RemovalRetain  RemovalPolicy = "retain"
)

// PriceClass selects the set of CloudFront edge locations.
type PriceClass string

const (
	PriceClassAll PriceClass = "PriceClass_All"
	PriceClass200 PriceClass = "PriceClass_200"
	PriceClass100 PriceClass = "PriceClass_100"
)

// Config enumerates the deploy-time inputs of the stack.
type Config struct {
	StackName      string            `json:"stack_name"`
	BucketName     string            `json:"bucket_name"`
	DistributionID string            `json:"distribution_id,omitempty"`
	Account        string            `json:"account,omitempty"`
	Region         string            `json:"region"`
	Tags           map[string]string `json:"tags,omitempty"`
	RemovalPolicy  RemovalPolicy     `json:"removal_policy"`
	PriceClass     PriceClass        `json:"price_class"`
	Description    string            `json:"description,omitempty"`
}

var (
	bucketNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)
	stackNameRe  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]{0,127}$`)
	regionRe     = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d+$`)
	accountRe    = regexp.MustCompile(`^\d{12}$`)
)

// ValidateBucketName applies the S3 general purpose bucket naming rules.
func ValidateBucketName(name string) error {
	switch {
	case len(name) < 3 || len(name) > 63:
		return fmt.Errorf("%w: %q must be 3-63 characters", ErrInvalidBucketName, name)
	case !bucketNameRe.MatchString(name):
		return fmt.Errorf("%w: %q may only contain lowercase letters, digits, dots and hyphens, and must start and end with a letter or digit", ErrInvalidBucketName, name)
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q contains adjacent periods", ErrInvalidBucketName, name)
	case net.ParseIP(name) != nil:
		return fmt.Errorf("%w: %q is formatted as an IP address", ErrInvalidBucketName, name)
	case strings.HasPrefix(name, "xn--"), strings.HasPrefix(name, "sthree-"):
		return fmt.Errorf("%w: %q uses a reserved prefix", ErrInvalidBucketName, name)
	case strings.HasSuffix(name, "-s3alias"), strings.HasSuffix(name, "--ol-s3"):
		return fmt.Errorf("%w: %q uses a reserved suffix", ErrInvalidBucketName, name)
	}
	return nil
}

// Validate checks the config. Empty RemovalPolicy and PriceClass are
// accepted and resolved to their defaults by Plan.
func (c Config) Validate() error {
	if c.StackName == "" {
		return fmt.Errorf("%w: stack name is required", ErrInvalidConfig)
	}
	if !stackNameRe.MatchString(c.StackName) {
		return fmt.Errorf("%w: stack name %q must start with a letter and contain only letters, digits and hyphens", ErrInvalidConfig, c.StackName)
	}
	if c.BucketName == "" {
		return fmt.Errorf("%w: bucket name is required", ErrInvalidBucketName)
	}
	if err := ValidateBucketName(c.BucketName); err != nil {
		return err
	}
	if c.Region == "" {
		return fmt.Errorf("%w: region is required", ErrInvalidConfig)
	}
	if !regionRe.MatchString(c.Region) {
		return fmt.Errorf("%w: region %q is malformed", ErrInvalidConfig, c.Region)
	}
	if c.Account != "" && !accountRe.MatchString(c.Account) {
		return fmt.Errorf("%w: account %q must be 12 digits", ErrInvalidConfig, c.Account)
	}
	switch c.RemovalPolicy {
	case "", RemovalDestroy, RemovalRetain:
	default:
		return fmt.Errorf("%w: removal policy %q must be destroy or retain", ErrInvalidConfig, c.RemovalPolicy)
	}
	switch c.PriceClass {
	case "", PriceClassAll, PriceClass200, PriceClass100:
	default:
		return fmt.Errorf("%w: unknown price class %q", ErrInvalidConfig, c.PriceClass)
	}
	for k := range c.Tags {
		if k == "" || strings.HasPrefix(strings.ToLower(k), "aws:") {
			return fmt.Errorf("%w: tag key %q is not allowed", ErrInvalidConfig, k)
		}
	}
	return nil
}

// withDefaults returns a copy with empty knobs resolved.
func (c Config) withDefaults() Config {
	if c.RemovalPolicy == "" {
		c.RemovalPolicy = RemovalDestroy
	}
	if c.PriceClass == "" {
		c.PriceClass = PriceClassAll
	}
	tags := make(map[string]string, len(c.Tags))
	for k, v := range c.Tags {
		tags[k] = v
	}
	c.Tags = tags
	return c
}
