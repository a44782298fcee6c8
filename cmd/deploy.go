package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sitekit/internal/history"
	"github.com/ziadkadry99/sitekit/internal/logging"
	"github.com/ziadkadry99/sitekit/internal/topology"
)

var deployJSON bool

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Create or update the hosting stack",
	Long: `Applies the planned stack through a CloudFormation change set and prints
the stack outputs. Nothing is retried; a failed deployment leaves CloudFormation
to roll back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		plan, err := topology.NewPlan(cfg.Topology())
		if err != nil {
			return err
		}

		database, err := openState(cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		runs := history.NewStore(database)
		run := history.Run{Kind: history.KindDeploy, Stack: plan.Config.StackName, StartedAt: time.Now().UTC()}

		awsCfg, err := loadAWS(ctx, plan.Config.Region)
		if err != nil {
			recordRun(ctx, runs, logger, run, err, false)
			return err
		}
		result, err := newDeployer(awsCfg, logger).Deploy(ctx, plan)
		if err != nil {
			recordRun(ctx, runs, logger, run, err, false)
			return err
		}
		run.Detail = result.ChangeSetID
		recordRun(ctx, runs, logger, run, nil, result.NoChanges)

		if err := topology.SaveState(planStatePath(cfg), plan); err != nil {
			logger.Warn("Failed to save plan state", logging.Error(err))
		}

		if deployJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		if result.NoChanges {
			fmt.Printf("Stack %s is up to date.\n", result.Stack)
		} else if result.Created {
			fmt.Printf("Created stack %s.\n", result.Stack)
		} else {
			fmt.Printf("Updated stack %s.\n", result.Stack)
		}
		printOutputs(result.Outputs.BucketName, result.Outputs.DistributionID, result.Outputs.DomainName, result.Outputs.BucketARN)
		if url := result.Outputs.URL(); url != "" {
			fmt.Printf("\nWebsite URL: %s\n", url)
		}
		return nil
	},
}

func printOutputs(bucket, distributionID, domain, bucketARN string) {
	fmt.Printf("  %-18s %s\n", topology.OutputBucketName, bucket)
	fmt.Printf("  %-18s %s\n", topology.OutputDistributionID, distributionID)
	fmt.Printf("  %-18s %s\n", topology.OutputDomainName, domain)
	fmt.Printf("  %-18s %s\n", topology.OutputBucketARN, bucketARN)
}

func init() {
	deployCmd.Flags().BoolVar(&deployJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(deployCmd)
}
