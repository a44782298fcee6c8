package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sitekit/internal/config"
	"github.com/ziadkadry99/sitekit/internal/history"
	"github.com/ziadkadry99/sitekit/internal/progress"
	"github.com/ziadkadry99/sitekit/internal/publish"
)

var (
	publishDir     string
	publishNoBuild bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload the bundle and invalidate the CDN cache",
	Long: `Builds the bundle (unless --no-build), uploads it to the stack's bucket with
per-file content types and cache headers, deletes stale objects and creates a
CloudFront invalidation. Bucket and distribution default to the stack outputs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		database, err := openState(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		dir := cfg.Site.OutputDir
		if publishDir != "" {
			dir = publishDir
		} else if !publishNoBuild {
			manager := newThemeManager(ctx, database, logger)
			if _, err := buildSite(cfg, manager.Current(), logger); err != nil {
				return err
			}
		}

		runs := history.NewStore(database)
		run := history.Run{Kind: history.KindPublish, Stack: cfg.Infra.StackName, StartedAt: time.Now().UTC()}

		report, err := runPublish(ctx, logger, cfg, dir)
		if report != nil && report.InvalidationID != "" {
			run.Detail = "invalidation " + report.InvalidationID
		}
		recordRun(ctx, runs, logger, run, err, false)
		if err != nil {
			return err
		}

		fmt.Printf("Uploaded %d files, deleted %d stale objects.\n", len(report.Uploaded), len(report.Deleted))
		if report.InvalidationID != "" {
			fmt.Printf("Invalidation %s created.\n", report.InvalidationID)
		}
		return nil
	},
}

func runPublish(ctx context.Context, logger *slog.Logger, cfg *config.Config, dir string) (*publish.Report, error) {
	awsCfg, err := loadAWS(ctx, cfg.Infra.Region)
	if err != nil {
		return nil, err
	}

	bucket := cfg.Infra.BucketName
	distributionID := cfg.Infra.DistributionID
	if distributionID == "" {
		out, err := stackOutputs(ctx, newDeployer(awsCfg, logger), cfg.Infra.StackName)
		if err != nil {
			return nil, err
		}
		bucket = firstNonEmpty(out.BucketName, bucket)
		distributionID = out.DistributionID
	}

	rules := make([]publish.CacheRule, 0, len(cfg.Publish.CacheRules))
	for _, r := range cfg.Publish.CacheRules {
		rules = append(rules, publish.CacheRule{Pattern: r.Pattern, CacheControl: r.CacheControl})
	}

	p := publish.NewAWS(s3.NewFromConfig(awsCfg), cloudfront.NewFromConfig(awsCfg), logger).
		WithReporter(progress.NewReporter("Uploading"))
	return p.Publish(ctx, publish.Options{
		Dir:             dir,
		Bucket:          bucket,
		DistributionID:  distributionID,
		Include:         cfg.Publish.Include,
		Exclude:         cfg.Publish.Exclude,
		DeleteStale:     cfg.Publish.DeleteStale,
		InvalidatePaths: cfg.Publish.InvalidatePaths,
		CacheRules:      rules,
	})
}

func init() {
	publishCmd.Flags().StringVarP(&publishDir, "dir", "d", "", "publish this directory instead of building")
	publishCmd.Flags().BoolVar(&publishNoBuild, "no-build", false, "publish the existing output dir without rebuilding")
	rootCmd.AddCommand(publishCmd)
}
