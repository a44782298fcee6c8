package deploy

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/ziadkadry99/sitekit/internal/topology"
)

// PolicyName is the inline policy name used when attaching the deployment
// policy to a CI role.
const PolicyName = "sitekit-deploy"

// IAMAPI is the subset of the IAM client used to attach policies.
type IAMAPI interface {
	PutRolePolicy(ctx context.Context, params *iam.PutRolePolicyInput, optFns ...func(*iam.Options)) (*iam.PutRolePolicyOutput, error)
}

// STSAPI resolves the calling account.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// AttachPolicy writes doc as the inline PolicyName policy of role. Putting an
// identical document again is a no-op on the IAM side.
func AttachPolicy(ctx context.Context, client IAMAPI, role string, doc topology.PolicyDocument) error {
	if role == "" {
		return fmt.Errorf("role name is required")
	}
	body, err := doc.JSON()
	if err != nil {
		return fmt.Errorf("encoding policy: %w", err)
	}
	if _, err := client.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
		RoleName:       aws.String(role),
		PolicyName:     aws.String(PolicyName),
		PolicyDocument: aws.String(string(body)),
	}); err != nil {
		return fmt.Errorf("attaching policy to role %s: %w", role, err)
	}
	return nil
}

// AccountID returns the account of the current credentials.
func AccountID(ctx context.Context, client STSAPI) (string, error) {
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("resolving account id: %w", err)
	}
	return aws.ToString(out.Account), nil
}
