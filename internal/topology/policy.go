package topology

import (
	"encoding/json"
	"errors"
	"fmt"
)

const policyVersion = "2012-10-17"

// Statement is one IAM policy statement.
type Statement struct {
	Sid      string   `json:"Sid,omitempty"`
	Effect   string   `json:"Effect"`
	Action   []string `json:"Action"`
	Resource []string `json:"Resource"`
}

// PolicyDocument is a complete IAM policy.
type PolicyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// DeploymentPolicy returns the minimal statements a CI actor needs to upload
// the bundle and invalidate the cache. The result depends only on its
// arguments; call it again whenever the bucket or distribution changes.
func DeploymentPolicy(bucketARN, distributionID, account string) ([]Statement, error) {
	if bucketARN == "" {
		return nil, errors.New("deployment policy: bucket ARN is required")
	}
	if distributionID == "" {
		return nil, errors.New("deployment policy: distribution id is required")
	}
	if account == "" {
		return nil, errors.New("deployment policy: account is required")
	}
	partition, err := partitionOf(bucketARN)
	if err != nil {
		return nil, fmt.Errorf("deployment policy: %w", err)
	}

	return []Statement{
		{
			Sid:    "SiteObjects",
			Effect: "Allow",
			Action: []string{
				"s3:PutObject",
				"s3:PutObjectAcl",
				"s3:GetObject",
				"s3:DeleteObject",
				"s3:ListBucket",
			},
			Resource: []string{bucketARN, bucketARN + "/*"},
		},
		{
			Sid:    "CacheInvalidation",
			Effect: "Allow",
			Action: []string{
				"cloudfront:CreateInvalidation",
				"cloudfront:GetInvalidation",
				"cloudfront:ListInvalidations",
			},
			Resource: []string{DistributionARN(partition, account, distributionID)},
		},
	}, nil
}

// NewPolicyDocument wraps statements into a policy.
func NewPolicyDocument(statements []Statement) PolicyDocument {
	return PolicyDocument{Version: policyVersion, Statement: statements}
}

// JSON renders the document as indented IAM JSON.
func (d PolicyDocument) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
