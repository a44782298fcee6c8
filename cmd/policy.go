package cmd

import (
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sitekit/internal/deploy"
	"github.com/ziadkadry99/sitekit/internal/topology"
)

var (
	policyBucketARN      string
	policyDistributionID string
	policyAttachRole     string
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Print the least-privilege policy for CI deployments",
	Long: `Prints the IAM policy a CI actor needs to upload the bundle and invalidate
the distribution. Values not given as flags come from the config and, for the
distribution id, from the deployed stack outputs. With --attach-role the
policy is also written as the inline "sitekit-deploy" policy of that role.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		logger := newLogger()

		bucketARN := policyBucketARN
		if bucketARN == "" {
			plan, err := topology.NewPlan(cfg.Topology())
			if err != nil {
				return err
			}
			bucketARN = plan.BucketARN()
		}
		distributionID := firstNonEmpty(policyDistributionID, cfg.Infra.DistributionID)

		needAWS := distributionID == "" || cfg.Infra.Account == "" || policyAttachRole != ""
		var account string
		if !needAWS {
			account = cfg.Infra.Account
		} else {
			awsCfg, err := loadAWS(ctx, cfg.Infra.Region)
			if err != nil {
				return err
			}
			if distributionID == "" {
				out, err := stackOutputs(ctx, newDeployer(awsCfg, logger), cfg.Infra.StackName)
				if err != nil {
					return err
				}
				distributionID = out.DistributionID
				if policyBucketARN == "" && out.BucketARN != "" {
					bucketARN = out.BucketARN
				}
			}
			if account, err = resolveAccount(ctx, cfg, awsCfg); err != nil {
				return err
			}
			if policyAttachRole != "" {
				doc, err := deploymentPolicy(bucketARN, distributionID, account)
				if err != nil {
					return err
				}
				if err := deploy.AttachPolicy(ctx, iam.NewFromConfig(awsCfg), policyAttachRole, doc); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Attached %s to role %s\n", deploy.PolicyName, policyAttachRole)
			}
		}

		doc, err := deploymentPolicy(bucketARN, distributionID, account)
		if err != nil {
			return err
		}
		body, err := doc.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil
	},
}

func deploymentPolicy(bucketARN, distributionID, account string) (topology.PolicyDocument, error) {
	stmts, err := topology.DeploymentPolicy(bucketARN, distributionID, account)
	if err != nil {
		return topology.PolicyDocument{}, err
	}
	return topology.NewPolicyDocument(stmts), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	policyCmd.Flags().StringVar(&policyBucketARN, "bucket-arn", "", "bucket ARN (default from config or stack outputs)")
	policyCmd.Flags().StringVar(&policyDistributionID, "distribution-id", "", "distribution id (default from config or stack outputs)")
	policyCmd.Flags().StringVar(&policyAttachRole, "attach-role", "", "also attach the policy inline to this IAM role")
	rootCmd.AddCommand(policyCmd)
}
