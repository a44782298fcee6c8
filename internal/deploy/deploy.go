// Package deploy applies a topology plan to AWS through CloudFormation change
// sets and reads the resulting stack outputs back.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/ziadkadry99/sitekit/internal/logging"
	"github.com/ziadkadry99/sitekit/internal/topology"
)

// DefaultTimeout bounds each wait on CloudFormation. Distributions routinely
// take ten to twenty minutes to create.
const DefaultTimeout = 45 * time.Minute

var (
	// ErrStackNotFound is returned when the named stack does not exist.
	ErrStackNotFound = errors.New("stack not found")
	// ErrNoChanges marks a change set that matches the deployed stack. Deploy
	// reports it as Result.NoChanges rather than an error.
	ErrNoChanges = errors.New("no changes")
)

// CloudFormationAPI is the subset of the CloudFormation client used by the
// deployer. *cloudformation.Client satisfies it.
type CloudFormationAPI interface {
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	CreateChangeSet(ctx context.Context, params *cloudformation.CreateChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateChangeSetOutput, error)
	DescribeChangeSet(ctx context.Context, params *cloudformation.DescribeChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeChangeSetOutput, error)
	ExecuteChangeSet(ctx context.Context, params *cloudformation.ExecuteChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ExecuteChangeSetOutput, error)
	DeleteChangeSet(ctx context.Context, params *cloudformation.DeleteChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteChangeSetOutput, error)
	DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
}

// Outputs are the deployed values of the stack outputs.
type Outputs struct {
	BucketName     string `json:"bucket_name"`
	DistributionID string `json:"distribution_id"`
	DomainName     string `json:"domain_name"`
	BucketARN      string `json:"bucket_arn"`
}

// URL is the public website address.
func (o Outputs) URL() string {
	if o.DomainName == "" {
		return ""
	}
	return "https://" + o.DomainName
}

// Result describes a finished deployment.
type Result struct {
	Stack       string  `json:"stack"`
	ChangeSetID string  `json:"change_set_id,omitempty"`
	Created     bool    `json:"created"`
	NoChanges   bool    `json:"no_changes"`
	Outputs     Outputs `json:"outputs"`
}

// Deployer applies plans. Failures are returned as-is; nothing is retried.
type Deployer struct {
	client  CloudFormationAPI
	logger  *slog.Logger
	timeout time.Duration
	newID   func() string
}

// NewDeployer creates a Deployer. logger may be nil.
func NewDeployer(client CloudFormationAPI, logger *slog.Logger) *Deployer {
	return &Deployer{
		client:  client,
		logger:  logging.OrDiscard(logger),
		timeout: DefaultTimeout,
		newID:   uuid.NewString,
	}
}

// WithTimeout overrides the per-wait timeout.
func (d *Deployer) WithTimeout(t time.Duration) *Deployer {
	if t > 0 {
		d.timeout = t
	}
	return d
}

// Deploy creates or updates the plan's stack through a change set and waits
// for it to settle. A change set without changes is deleted and reported as
// NoChanges along with the current outputs.
func (d *Deployer) Deploy(ctx context.Context, plan *topology.Plan) (*Result, error) {
	stack := plan.Config.StackName
	logger := d.logger.With(logging.Stack(stack), logging.Region(plan.Config.Region))

	body, err := topology.RenderTemplate(plan, topology.FormatYAML)
	if err != nil {
		return nil, fmt.Errorf("rendering template: %w", err)
	}

	changeSetType, err := d.changeSetType(ctx, stack)
	if err != nil {
		return nil, err
	}

	id := d.newID()
	name := "sitekit-" + id
	logger.Info("Creating change set", logging.Op(string(changeSetType)), slog.String("change_set", name))
	input := &cloudformation.CreateChangeSetInput{
		StackName:     aws.String(stack),
		ChangeSetName: aws.String(name),
		ChangeSetType: changeSetType,
		ClientToken:   aws.String(id),
		TemplateBody:  aws.String(string(body)),
		Capabilities:  []types.Capability{types.CapabilityCapabilityIam},
		Tags:          stackTags(plan.Config.Tags),
	}
	if plan.Config.Description != "" {
		input.Description = aws.String(truncate(plan.Config.Description, 1024))
	}
	created, err := d.client.CreateChangeSet(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("creating change set: %w", err)
	}
	changeSetID := aws.ToString(created.Id)

	result := &Result{
		Stack:       stack,
		ChangeSetID: changeSetID,
		Created:     changeSetType == types.ChangeSetTypeCreate,
	}

	if err := d.waitChangeSet(ctx, stack, changeSetID); err != nil {
		if !errors.Is(err, ErrNoChanges) {
			return nil, err
		}
		logger.Info("No changes to deploy")
		if _, err := d.client.DeleteChangeSet(ctx, &cloudformation.DeleteChangeSetInput{
			StackName:     aws.String(stack),
			ChangeSetName: aws.String(changeSetID),
		}); err != nil {
			logger.Warn("Failed to delete empty change set", logging.Error(err))
		}
		outputs, err := d.Outputs(ctx, stack)
		if err != nil {
			return nil, err
		}
		result.NoChanges = true
		result.Outputs = *outputs
		return result, nil
	}

	logger.Info("Executing change set")
	if _, err := d.client.ExecuteChangeSet(ctx, &cloudformation.ExecuteChangeSetInput{
		StackName:          aws.String(stack),
		ChangeSetName:      aws.String(changeSetID),
		ClientRequestToken: aws.String(id),
	}); err != nil {
		return nil, fmt.Errorf("executing change set: %w", err)
	}

	describe := &cloudformation.DescribeStacksInput{StackName: aws.String(stack)}
	if result.Created {
		err = cloudformation.NewStackCreateCompleteWaiter(d.client).Wait(ctx, describe, d.timeout)
	} else {
		err = cloudformation.NewStackUpdateCompleteWaiter(d.client).Wait(ctx, describe, d.timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("waiting for stack %s: %w", stack, err)
	}

	outputs, err := d.Outputs(ctx, stack)
	if err != nil {
		return nil, err
	}
	result.Outputs = *outputs
	logger.Info("Deployed stack", logging.Bucket(outputs.BucketName), logging.Distribution(outputs.DistributionID))
	return result, nil
}

// Outputs reads the outputs of an existing stack.
func (d *Deployer) Outputs(ctx context.Context, stack string) (*Outputs, error) {
	s, err := d.describeStack(ctx, stack)
	if err != nil {
		return nil, err
	}
	out := &Outputs{}
	for _, o := range s.Outputs {
		v := aws.ToString(o.OutputValue)
		switch aws.ToString(o.OutputKey) {
		case topology.OutputBucketName:
			out.BucketName = v
		case topology.OutputDistributionID:
			out.DistributionID = v
		case topology.OutputDomainName:
			out.DomainName = v
		case topology.OutputBucketARN:
			out.BucketARN = v
		}
	}
	return out, nil
}

// Destroy deletes the stack and waits for the deletion to finish. Deleting a
// stack that does not exist returns ErrStackNotFound.
func (d *Deployer) Destroy(ctx context.Context, stack string) error {
	if _, err := d.describeStack(ctx, stack); err != nil {
		return err
	}
	d.logger.Info("Deleting stack", logging.Stack(stack))
	if _, err := d.client.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName:          aws.String(stack),
		ClientRequestToken: aws.String(d.newID()),
	}); err != nil {
		return fmt.Errorf("deleting stack: %w", err)
	}
	waiter := cloudformation.NewStackDeleteCompleteWaiter(d.client)
	if err := waiter.Wait(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String(stack)}, d.timeout); err != nil {
		return fmt.Errorf("waiting for stack deletion: %w", err)
	}
	d.logger.Info("Deleted stack", logging.Stack(stack))
	return nil
}

// waitChangeSet waits for the change set to be created. A change set that
// failed only because it is empty yields ErrNoChanges.
func (d *Deployer) waitChangeSet(ctx context.Context, stack, changeSetID string) error {
	input := &cloudformation.DescribeChangeSetInput{
		StackName:     aws.String(stack),
		ChangeSetName: aws.String(changeSetID),
	}
	waitErr := cloudformation.NewChangeSetCreateCompleteWaiter(d.client).Wait(ctx, input, d.timeout)
	if waitErr == nil {
		return nil
	}
	desc, err := d.client.DescribeChangeSet(ctx, input)
	if err != nil {
		return fmt.Errorf("waiting for change set: %w", waitErr)
	}
	if isNoChanges(desc) {
		return ErrNoChanges
	}
	return fmt.Errorf("change set failed: %s: %w", aws.ToString(desc.StatusReason), waitErr)
}

// changeSetType is CREATE for a missing stack or one left in
// REVIEW_IN_PROGRESS by a failed first change set, UPDATE otherwise.
func (d *Deployer) changeSetType(ctx context.Context, stack string) (types.ChangeSetType, error) {
	s, err := d.describeStack(ctx, stack)
	if errors.Is(err, ErrStackNotFound) {
		return types.ChangeSetTypeCreate, nil
	}
	if err != nil {
		return "", err
	}
	switch s.StackStatus {
	case types.StackStatusReviewInProgress:
		return types.ChangeSetTypeCreate, nil
	case types.StackStatusRollbackComplete:
		return "", fmt.Errorf("stack %s is in %s and must be destroyed before redeploying", stack, s.StackStatus)
	}
	return types.ChangeSetTypeUpdate, nil
}

func (d *Deployer) describeStack(ctx context.Context, stack string) (*types.Stack, error) {
	out, err := d.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String(stack)})
	if err != nil {
		if isStackMissing(err) {
			return nil, fmt.Errorf("%w: %s", ErrStackNotFound, stack)
		}
		return nil, fmt.Errorf("describing stack %s: %w", stack, err)
	}
	if len(out.Stacks) == 0 || out.Stacks[0].StackStatus == types.StackStatusDeleteComplete {
		return nil, fmt.Errorf("%w: %s", ErrStackNotFound, stack)
	}
	return &out.Stacks[0], nil
}

// isStackMissing matches CloudFormation's "Stack with id X does not exist",
// which is reported as a generic ValidationError.
func isStackMissing(err error) bool {
	var ae smithy.APIError
	return errors.As(err, &ae) &&
		ae.ErrorCode() == "ValidationError" &&
		strings.Contains(ae.ErrorMessage(), "does not exist")
}

func isNoChanges(out *cloudformation.DescribeChangeSetOutput) bool {
	if out.Status != types.ChangeSetStatusFailed {
		return false
	}
	reason := aws.ToString(out.StatusReason)
	return strings.Contains(reason, "didn't contain changes") ||
		strings.Contains(reason, "No updates are to be performed")
}

func stackTags(tags map[string]string) []types.Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]types.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
