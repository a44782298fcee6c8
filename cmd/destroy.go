package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sitekit/internal/deploy"
	"github.com/ziadkadry99/sitekit/internal/history"
	"github.com/ziadkadry99/sitekit/internal/publish"
	"github.com/ziadkadry99/sitekit/internal/topology"
)

var destroyYes bool

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Tear down the hosting stack",
	Long: `Deletes the CloudFormation stack. With the destroy removal policy the
bucket is emptied first so CloudFormation can delete it; with retain the
bucket and its objects are left in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		stack := cfg.Infra.StackName

		if !destroyYes {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Delete stack %s", stack),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				return errors.New("aborted")
			}
		}

		database, err := openState(cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		runs := history.NewStore(database)
		run := history.Run{Kind: history.KindDestroy, Stack: stack, StartedAt: time.Now().UTC()}

		err = destroyStack(ctx, logger, cfg.Infra.Region, stack, cfg.Infra.RemovalPolicy)
		recordRun(ctx, runs, logger, run, err, false)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted stack %s.\n", stack)
		return nil
	},
}

func destroyStack(ctx context.Context, logger *slog.Logger, region, stack string, removal topology.RemovalPolicy) error {
	awsCfg, err := loadAWS(ctx, region)
	if err != nil {
		return err
	}
	d := newDeployer(awsCfg, logger)

	if removal != topology.RemovalRetain {
		out, err := d.Outputs(ctx, stack)
		if errors.Is(err, deploy.ErrStackNotFound) {
			return fmt.Errorf("%w: nothing to destroy", err)
		}
		if err != nil {
			return err
		}
		if out.BucketName != "" {
			p := publish.NewAWS(s3.NewFromConfig(awsCfg), cloudfront.NewFromConfig(awsCfg), logger)
			if _, err := p.EmptyBucket(ctx, out.BucketName); err != nil {
				return err
			}
		}
	}
	if err := d.Destroy(ctx, stack); err != nil {
		if errors.Is(err, deploy.ErrStackNotFound) {
			return fmt.Errorf("%w: nothing to destroy", err)
		}
		return err
	}
	return nil
}

func init() {
	destroyCmd.Flags().BoolVarP(&destroyYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(destroyCmd)
}
