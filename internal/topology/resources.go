package topology

import (
	"fmt"
	"sort"
)

// Logical ids of the planned resources.
const (
	BucketID       = "WebsiteBucket"
	BucketPolicyID = "WebsiteBucketPolicy"
	OAIID          = "WebsiteOAI"
	CachePolicyID  = "WebsiteCachePolicy"
	DistributionID = "WebsiteDistribution"

	originID = "S3Origin"
)

// CloudFormation resource types.
const (
	TypeBucket       = "AWS::S3::Bucket"
	TypeBucketPolicy = "AWS::S3::BucketPolicy"
	TypeOAI          = "AWS::CloudFront::CloudFrontOriginAccessIdentity"
	TypeCachePolicy  = "AWS::CloudFront::CachePolicy"
	TypeDistribution = "AWS::CloudFront::Distribution"
)

// Resource is one node of the planned graph. Properties are already in
// CloudFormation shape.
type Resource struct {
	LogicalID      string         `json:"logical_id"`
	Type           string         `json:"type"`
	Properties     map[string]any `json:"properties"`
	DependsOn      []string       `json:"depends_on,omitempty"`
	DeletionPolicy string         `json:"deletion_policy,omitempty"`
}

func ref(id string) map[string]any { return map[string]any{"Ref": id} }

func getAtt(id, attr string) map[string]any {
	return map[string]any{"Fn::GetAtt": []any{id, attr}}
}

func join(parts ...any) map[string]any {
	return map[string]any{"Fn::Join": []any{"", parts}}
}

// cfnTags renders tags as a key-sorted CloudFormation tag list.
func cfnTags(tags map[string]string) []any {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, map[string]any{"Key": k, "Value": tags[k]})
	}
	return out
}

func deletionPolicy(p RemovalPolicy) string {
	if p == RemovalRetain {
		return "Retain"
	}
	return "Delete"
}

func bucketResource(c Config) Resource {
	props := map[string]any{
		"BucketName": c.BucketName,
		"PublicAccessBlockConfiguration": map[string]any{
			"BlockPublicAcls":       true,
			"BlockPublicPolicy":     true,
			"IgnorePublicAcls":      true,
			"RestrictPublicBuckets": true,
		},
		"BucketEncryption": map[string]any{
			"ServerSideEncryptionConfiguration": []any{
				map[string]any{
					"ServerSideEncryptionByDefault": map[string]any{"SSEAlgorithm": "AES256"},
				},
			},
		},
		"OwnershipControls": map[string]any{
			"Rules": []any{map[string]any{"ObjectOwnership": "BucketOwnerEnforced"}},
		},
	}
	if len(c.Tags) > 0 {
		props["Tags"] = cfnTags(c.Tags)
	}
	return Resource{
		LogicalID:      BucketID,
		Type:           TypeBucket,
		Properties:     props,
		DeletionPolicy: deletionPolicy(c.RemovalPolicy),
	}
}

func oaiResource(c Config) Resource {
	return Resource{
		LogicalID: OAIID,
		Type:      TypeOAI,
		Properties: map[string]any{
			"CloudFrontOriginAccessIdentityConfig": map[string]any{
				"Comment": "OAI for " + c.BucketName,
			},
		},
	}
}

// bucketPolicyResource denies plain HTTP and grants the identity read access.
func bucketPolicyResource() Resource {
	bucketARN := getAtt(BucketID, "Arn")
	objectsARN := join(getAtt(BucketID, "Arn"), "/*")
	return Resource{
		LogicalID: BucketPolicyID,
		Type:      TypeBucketPolicy,
		Properties: map[string]any{
			"Bucket": ref(BucketID),
			"PolicyDocument": map[string]any{
				"Version": policyVersion,
				"Statement": []any{
					map[string]any{
						"Sid":       "EnforceSSL",
						"Effect":    "Deny",
						"Principal": map[string]any{"AWS": "*"},
						"Action":    "s3:*",
						"Resource":  []any{bucketARN, objectsARN},
						"Condition": map[string]any{
							"Bool": map[string]any{"aws:SecureTransport": "false"},
						},
					},
					map[string]any{
						"Sid":       "AllowOriginAccessIdentityRead",
						"Effect":    "Allow",
						"Principal": map[string]any{"CanonicalUser": getAtt(OAIID, "S3CanonicalUserId")},
						"Action":    []any{"s3:GetObject*", "s3:GetBucket*", "s3:List*"},
						"Resource":  []any{bucketARN, objectsARN},
					},
				},
			},
		},
		DependsOn: []string{BucketID, OAIID},
	}
}

func cachePolicyResource(c Config, b Behavior) Resource {
	return Resource{
		LogicalID: CachePolicyID,
		Type:      TypeCachePolicy,
		Properties: map[string]any{
			"CachePolicyConfig": map[string]any{
				"Name":       fmt.Sprintf("%s-%s-%s", c.StackName, CachePolicyID, c.Region),
				"DefaultTTL": int64(b.DefaultTTL.Seconds()),
				"MinTTL":     int64(b.MinTTL.Seconds()),
				"MaxTTL":     int64(b.MaxTTL.Seconds()),
				"ParametersInCacheKeyAndForwardedToOrigin": map[string]any{
					"EnableAcceptEncodingGzip":   b.Compress,
					"EnableAcceptEncodingBrotli": b.Compress,
					"QueryStringsConfig":         map[string]any{"QueryStringBehavior": "none"},
					"HeadersConfig":              map[string]any{"HeaderBehavior": "none"},
					"CookiesConfig":              map[string]any{"CookieBehavior": "none"},
				},
			},
		},
	}
}

func distributionResource(c Config, b Behavior) Resource {
	errorResponses := make([]any, 0, len(b.ErrorResponses))
	for _, er := range b.ErrorResponses {
		errorResponses = append(errorResponses, map[string]any{
			"ErrorCode":          er.ErrorCode,
			"ResponseCode":       er.ResponseCode,
			"ResponsePagePath":   er.ResponsePagePath,
			"ErrorCachingMinTTL": int64(er.CachingMinTTL.Seconds()),
		})
	}
	methods := make([]any, 0, len(b.AllowedMethods))
	for _, m := range b.AllowedMethods {
		methods = append(methods, m)
	}

	cfg := map[string]any{
		"Enabled":           true,
		"DefaultRootObject": b.DefaultRootObject,
		"IPV6Enabled":       b.IPv6,
		"HttpVersion":       b.HTTPVersion,
		"PriceClass":        string(b.PriceClass),
		"Origins": []any{
			map[string]any{
				"Id":         originID,
				"DomainName": getAtt(BucketID, "RegionalDomainName"),
				"S3OriginConfig": map[string]any{
					"OriginAccessIdentity": join("origin-access-identity/cloudfront/", ref(OAIID)),
				},
			},
		},
		"DefaultCacheBehavior": map[string]any{
			"TargetOriginId":       originID,
			"ViewerProtocolPolicy": b.ViewerProtocolPolicy,
			"AllowedMethods":       methods,
			"CachedMethods":        methods,
			"CachePolicyId":        ref(CachePolicyID),
			"Compress":             b.Compress,
		},
		"CustomErrorResponses": errorResponses,
	}
	if c.Description != "" {
		cfg["Comment"] = truncate(c.Description, 128)
	}

	props := map[string]any{"DistributionConfig": cfg}
	if len(c.Tags) > 0 {
		props["Tags"] = cfnTags(c.Tags)
	}
	return Resource{
		LogicalID:  DistributionID,
		Type:       TypeDistribution,
		Properties: props,
		DependsOn:  []string{BucketID, OAIID, CachePolicyID},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
