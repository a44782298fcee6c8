package topology

import "fmt"

// Output is a published stack output.
type Output struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	ExportName  string `json:"export_name"`
	Value       any    `json:"value"`
}

// Output keys, shared with the deployer that reads them back.
const (
	OutputBucketName     = "BucketName"
	OutputDistributionID = "DistributionId"
	OutputDomainName     = "DistributionDomainName"
	OutputBucketARN      = "BucketArn"
)

// Plan is the desired end state of one environment.
type Plan struct {
	Config    Config     `json:"config"`
	Behavior  Behavior   `json:"behavior"`
	Resources []Resource `json:"resources"`
	Outputs   []Output   `json:"outputs"`
}

// NewPlan validates cfg and returns the resource graph in dependency order.
// It performs no I/O; the same Config always yields an identical Plan.
func NewPlan(cfg Config) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	behavior := DefaultBehavior(cfg.PriceClass)

	resources, err := sortResources([]Resource{
		bucketResource(cfg),
		oaiResource(cfg),
		bucketPolicyResource(),
		cachePolicyResource(cfg, behavior),
		distributionResource(cfg, behavior),
	})
	if err != nil {
		return nil, fmt.Errorf("ordering resources: %w", err)
	}

	return &Plan{
		Config:    cfg,
		Behavior:  behavior,
		Resources: resources,
		Outputs:   outputs(cfg.StackName),
	}, nil
}

func outputs(stack string) []Output {
	return []Output{
		{
			Key:         OutputBucketName,
			Description: "S3 Bucket name for static website files",
			ExportName:  stack + "-BucketName",
			Value:       ref(BucketID),
		},
		{
			Key:         OutputDistributionID,
			Description: "CloudFront Distribution ID",
			ExportName:  stack + "-DistributionId",
			Value:       ref(DistributionID),
		},
		{
			Key:         OutputDomainName,
			Description: "CloudFront Distribution Domain Name (website URL)",
			ExportName:  stack + "-DomainName",
			Value:       getAtt(DistributionID, "DomainName"),
		},
		{
			Key:         OutputBucketARN,
			Description: "S3 Bucket ARN",
			ExportName:  stack + "-BucketArn",
			Value:       getAtt(BucketID, "Arn"),
		},
	}
}

// Resource returns the planned resource with the given logical id.
func (p *Plan) Resource(logicalID string) (Resource, bool) {
	for _, r := range p.Resources {
		if r.LogicalID == logicalID {
			return r, true
		}
	}
	return Resource{}, false
}

// Partition is the AWS partition of the planned region.
func (p *Plan) Partition() string { return Partition(p.Config.Region) }

// BucketARN is known before deployment since bucket ARNs are name-derived.
func (p *Plan) BucketARN() string { return BucketARN(p.Partition(), p.Config.BucketName) }

// Distribution returns the serving behavior of the planned distribution.
func (p *Plan) Distribution() Behavior { return p.Behavior }
