package topology

import (
	"fmt"
	"strings"
)

// Partition returns the AWS partition a region belongs to.
func Partition(region string) string {
	switch {
	case strings.HasPrefix(region, "cn-"):
		return "aws-cn"
	case strings.HasPrefix(region, "us-gov-"):
		return "aws-us-gov"
	default:
		return "aws"
	}
}

// BucketARN returns the ARN of a bucket. S3 bucket ARNs carry neither
// region nor account.
func BucketARN(partition, bucket string) string {
	return fmt.Sprintf("arn:%s:s3:::%s", partition, bucket)
}

// DistributionARN returns the ARN of a CloudFront distribution. CloudFront is
// global, so the region field is empty.
func DistributionARN(partition, account, distributionID string) string {
	return fmt.Sprintf("arn:%s:cloudfront::%s:distribution/%s", partition, account, distributionID)
}

// partitionOf extracts the partition from an ARN.
func partitionOf(arn string) (string, error) {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) < 6 || parts[0] != "arn" || parts[1] == "" {
		return "", fmt.Errorf("malformed ARN %q", arn)
	}
	return parts[1], nil
}
