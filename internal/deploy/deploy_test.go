package deploy

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/sitekit/internal/topology"
)

// fakeCloudFormation models a single stack. Change sets settle immediately.
type fakeCloudFormation struct {
	mu sync.Mutex

	stack       *types.Stack
	noChanges   bool
	failStack   bool
	createErr   error
	changeSet   *cloudformation.CreateChangeSetInput
	executed    int
	deletedSets int
	deleted     bool
	calls       []string
}

func (f *fakeCloudFormation) record(call string) {
	f.calls = append(f.calls, call)
}

func stackOutputs() []types.Output {
	return []types.Output{
		{OutputKey: aws.String(topology.OutputBucketName), OutputValue: aws.String("my-site-bucket")},
		{OutputKey: aws.String(topology.OutputDistributionID), OutputValue: aws.String("E2EXAMPLE")},
		{OutputKey: aws.String(topology.OutputDomainName), OutputValue: aws.String("d111111abcdef8.cloudfront.net")},
		{OutputKey: aws.String(topology.OutputBucketARN), OutputValue: aws.String("arn:aws:s3:::my-site-bucket")},
	}
}

func (f *fakeCloudFormation) DescribeStacks(_ context.Context, in *cloudformation.DescribeStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DescribeStacks")
	if f.stack == nil {
		return nil, &smithy.GenericAPIError{
			Code:    "ValidationError",
			Message: "Stack with id " + aws.ToString(in.StackName) + " does not exist",
		}
	}
	return &cloudformation.DescribeStacksOutput{Stacks: []types.Stack{*f.stack}}, nil
}

func (f *fakeCloudFormation) CreateChangeSet(_ context.Context, in *cloudformation.CreateChangeSetInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateChangeSetOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateChangeSet")
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.changeSet = in
	return &cloudformation.CreateChangeSetOutput{
		Id:      aws.String("arn:aws:cloudformation:us-east-1:123456789012:changeSet/" + aws.ToString(in.ChangeSetName)),
		StackId: aws.String("arn:aws:cloudformation:us-east-1:123456789012:stack/" + aws.ToString(in.StackName)),
	}, nil
}

func (f *fakeCloudFormation) DescribeChangeSet(_ context.Context, _ *cloudformation.DescribeChangeSetInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeChangeSetOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DescribeChangeSet")
	if f.noChanges {
		return &cloudformation.DescribeChangeSetOutput{
			Status:       types.ChangeSetStatusFailed,
			StatusReason: aws.String("The submitted information didn't contain changes. Submit different information to create a change set."),
		}, nil
	}
	return &cloudformation.DescribeChangeSetOutput{Status: types.ChangeSetStatusCreateComplete}, nil
}

func (f *fakeCloudFormation) ExecuteChangeSet(_ context.Context, _ *cloudformation.ExecuteChangeSetInput, _ ...func(*cloudformation.Options)) (*cloudformation.ExecuteChangeSetOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ExecuteChangeSet")
	f.executed++
	status := types.StackStatusUpdateComplete
	if f.changeSet.ChangeSetType == types.ChangeSetTypeCreate {
		status = types.StackStatusCreateComplete
	}
	if f.failStack {
		status = types.StackStatusRollbackComplete
		if f.changeSet.ChangeSetType == types.ChangeSetTypeUpdate {
			status = types.StackStatusUpdateRollbackComplete
		}
	}
	f.stack = &types.Stack{
		StackName:   f.changeSet.StackName,
		StackStatus: status,
		Outputs:     stackOutputs(),
	}
	return &cloudformation.ExecuteChangeSetOutput{}, nil
}

func (f *fakeCloudFormation) DeleteChangeSet(_ context.Context, _ *cloudformation.DeleteChangeSetInput, _ ...func(*cloudformation.Options)) (*cloudformation.DeleteChangeSetOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteChangeSet")
	f.deletedSets++
	return &cloudformation.DeleteChangeSetOutput{}, nil
}

func (f *fakeCloudFormation) DeleteStack(_ context.Context, _ *cloudformation.DeleteStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteStack")
	f.deleted = true
	f.stack = nil
	return &cloudformation.DeleteStackOutput{}, nil
}

func existingStack() *types.Stack {
	return &types.Stack{
		StackName:   aws.String("WebsiteStack"),
		StackStatus: types.StackStatusCreateComplete,
		Outputs:     stackOutputs(),
	}
}

func testPlan(t *testing.T) *topology.Plan {
	t.Helper()
	plan, err := topology.NewPlan(topology.Config{
		StackName:   "WebsiteStack",
		BucketName:  "my-site-bucket",
		Region:      "us-east-1",
		Description: "Serverless Static Website - S3 + CloudFront",
		Tags:        map[string]string{"Project": "aws-sls-website", "Environment": "production"},
	})
	require.NoError(t, err)
	return plan
}

func newTestDeployer(cf CloudFormationAPI) *Deployer {
	d := NewDeployer(cf, nil)
	d.newID = func() string { return "00000000-0000-0000-0000-000000000001" }
	return d
}

func TestDeployCreatesMissingStack(t *testing.T) {
	cf := &fakeCloudFormation{}
	result, err := newTestDeployer(cf).Deploy(context.Background(), testPlan(t))
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.False(t, result.NoChanges)
	assert.Equal(t, types.ChangeSetTypeCreate, cf.changeSet.ChangeSetType)
	assert.Equal(t, "sitekit-00000000-0000-0000-0000-000000000001", aws.ToString(cf.changeSet.ChangeSetName))
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", aws.ToString(cf.changeSet.ClientToken))
	assert.Contains(t, aws.ToString(cf.changeSet.TemplateBody), "AWS::CloudFront::Distribution")
	assert.Equal(t, 1, cf.executed)

	require.Len(t, cf.changeSet.Tags, 2)
	assert.Equal(t, "Environment", aws.ToString(cf.changeSet.Tags[0].Key))
	assert.Equal(t, "Project", aws.ToString(cf.changeSet.Tags[1].Key))

	assert.Equal(t, Outputs{
		BucketName:     "my-site-bucket",
		DistributionID: "E2EXAMPLE",
		DomainName:     "d111111abcdef8.cloudfront.net",
		BucketARN:      "arn:aws:s3:::my-site-bucket",
	}, result.Outputs)
	assert.Equal(t, "https://d111111abcdef8.cloudfront.net", result.Outputs.URL())
}

func TestDeployUpdatesExistingStack(t *testing.T) {
	cf := &fakeCloudFormation{stack: existingStack()}
	result, err := newTestDeployer(cf).Deploy(context.Background(), testPlan(t))
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Equal(t, types.ChangeSetTypeUpdate, cf.changeSet.ChangeSetType)
	assert.Equal(t, 1, cf.executed)
}

func TestDeployReviewInProgressIsCreate(t *testing.T) {
	stack := existingStack()
	stack.StackStatus = types.StackStatusReviewInProgress
	cf := &fakeCloudFormation{stack: stack}

	_, err := newTestDeployer(cf).Deploy(context.Background(), testPlan(t))
	require.NoError(t, err)
	assert.Equal(t, types.ChangeSetTypeCreate, cf.changeSet.ChangeSetType)
}

func TestDeployWithoutChanges(t *testing.T) {
	cf := &fakeCloudFormation{stack: existingStack(), noChanges: true}
	result, err := newTestDeployer(cf).Deploy(context.Background(), testPlan(t))
	require.NoError(t, err)

	assert.True(t, result.NoChanges)
	assert.Equal(t, 0, cf.executed)
	assert.Equal(t, 1, cf.deletedSets)
	assert.Equal(t, "E2EXAMPLE", result.Outputs.DistributionID)
}

func TestDeployDoesNotRetry(t *testing.T) {
	cf := &fakeCloudFormation{createErr: errors.New("throttled")}
	_, err := newTestDeployer(cf).Deploy(context.Background(), testPlan(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")

	creates := 0
	for _, c := range cf.calls {
		if c == "CreateChangeSet" {
			creates++
		}
	}
	assert.Equal(t, 1, creates)
}

func TestDeployReportsStackFailure(t *testing.T) {
	cf := &fakeCloudFormation{stack: existingStack(), failStack: true}
	_, err := newTestDeployer(cf).Deploy(context.Background(), testPlan(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "waiting for stack WebsiteStack")
}

func TestDeployRefusesRolledBackStack(t *testing.T) {
	stack := existingStack()
	stack.StackStatus = types.StackStatusRollbackComplete
	cf := &fakeCloudFormation{stack: stack}

	_, err := newTestDeployer(cf).Deploy(context.Background(), testPlan(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be destroyed")
	assert.Nil(t, cf.changeSet)
}

func TestOutputsMissingStack(t *testing.T) {
	_, err := newTestDeployer(&fakeCloudFormation{}).Outputs(context.Background(), "WebsiteStack")
	assert.ErrorIs(t, err, ErrStackNotFound)
}

func TestOutputsOtherErrorsAreNotMissing(t *testing.T) {
	assert.False(t, isStackMissing(errors.New("does not exist")))
	assert.False(t, isStackMissing(&smithy.GenericAPIError{Code: "AccessDenied", Message: "does not exist"}))
	assert.True(t, isStackMissing(&smithy.GenericAPIError{Code: "ValidationError", Message: "Stack with id x does not exist"}))
}

func TestDestroy(t *testing.T) {
	cf := &fakeCloudFormation{stack: existingStack()}
	require.NoError(t, newTestDeployer(cf).Destroy(context.Background(), "WebsiteStack"))
	assert.True(t, cf.deleted)

	err := newTestDeployer(cf).Destroy(context.Background(), "WebsiteStack")
	assert.ErrorIs(t, err, ErrStackNotFound)
}

type fakeIAM struct {
	input *iam.PutRolePolicyInput
	err   error
}

func (f *fakeIAM) PutRolePolicy(_ context.Context, in *iam.PutRolePolicyInput, _ ...func(*iam.Options)) (*iam.PutRolePolicyOutput, error) {
	f.input = in
	return &iam.PutRolePolicyOutput{}, f.err
}

func TestAttachPolicy(t *testing.T) {
	stmts, err := topology.DeploymentPolicy("arn:aws:s3:::my-site-bucket", "E2EXAMPLE", "123456789012")
	require.NoError(t, err)

	client := &fakeIAM{}
	require.NoError(t, AttachPolicy(context.Background(), client, "github-deployer", topology.NewPolicyDocument(stmts)))
	assert.Equal(t, "github-deployer", aws.ToString(client.input.RoleName))
	assert.Equal(t, PolicyName, aws.ToString(client.input.PolicyName))
	assert.True(t, strings.Contains(aws.ToString(client.input.PolicyDocument), "cloudfront:CreateInvalidation"))

	assert.Error(t, AttachPolicy(context.Background(), client, "", topology.NewPolicyDocument(stmts)))

	client.err = errors.New("AccessDenied")
	assert.ErrorContains(t, AttachPolicy(context.Background(), client, "github-deployer", topology.NewPolicyDocument(stmts)), "github-deployer")
}

type fakeSTS struct{}

func (fakeSTS) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return &sts.GetCallerIdentityOutput{Account: aws.String("123456789012")}, nil
}

func TestAccountID(t *testing.T) {
	account, err := AccountID(context.Background(), fakeSTS{})
	require.NoError(t, err)
	assert.Equal(t, "123456789012", account)
}
