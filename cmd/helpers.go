package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/ziadkadry99/sitekit/internal/config"
	"github.com/ziadkadry99/sitekit/internal/content"
	"github.com/ziadkadry99/sitekit/internal/db"
	"github.com/ziadkadry99/sitekit/internal/deploy"
	"github.com/ziadkadry99/sitekit/internal/history"
	"github.com/ziadkadry99/sitekit/internal/logging"
	"github.com/ziadkadry99/sitekit/internal/site"
	"github.com/ziadkadry99/sitekit/internal/theme"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `sitekit init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// openState opens the local state database under the configured state dir.
func openState(cfg *config.Config) (*db.DB, error) {
	database, err := db.OpenInDir(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("opening state: %w", err)
	}
	return database, nil
}

// newThemeManager restores the persisted theme preference, falling back to
// the terminal's color scheme.
func newThemeManager(ctx context.Context, database *db.DB, logger *slog.Logger) *theme.Manager {
	return theme.NewManager(ctx, theme.NewSQLStore(database), theme.FromEnv(os.Getenv), logger)
}

// loadContent reads the landing page content, applying the configured title.
func loadContent(cfg *config.Config) (*content.Site, error) {
	s, err := content.Load(cfg.Site.ContentFile)
	if err != nil {
		return nil, err
	}
	if cfg.Site.Title != "" {
		s.Title = cfg.Site.Title
	}
	return s, nil
}

// buildSite renders the bundle into the configured output dir.
func buildSite(cfg *config.Config, mode theme.Mode, logger *slog.Logger) ([]string, error) {
	s, err := loadContent(cfg)
	if err != nil {
		return nil, err
	}
	gen := site.NewGenerator(s, cfg.Site.OutputDir)
	gen.InitialMode = mode
	gen.Logger = logger
	return gen.Generate()
}

// loadAWS resolves credentials the standard SDK way, pinned to region.
func loadAWS(ctx context.Context, region string) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	return awsCfg, nil
}

// resolveAccount returns the configured account, asking STS when unset.
func resolveAccount(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (string, error) {
	if cfg.Infra.Account != "" {
		return cfg.Infra.Account, nil
	}
	return deploy.AccountID(ctx, sts.NewFromConfig(awsCfg))
}

func newDeployer(awsCfg aws.Config, logger *slog.Logger) *deploy.Deployer {
	return deploy.NewDeployer(cloudformation.NewFromConfig(awsCfg), logger)
}

// stackOutputs reads the deployed outputs, treating a missing stack as a
// user error.
func stackOutputs(ctx context.Context, d *deploy.Deployer, stack string) (*deploy.Outputs, error) {
	out, err := d.Outputs(ctx, stack)
	if errors.Is(err, deploy.ErrStackNotFound) {
		return nil, fmt.Errorf("%w\nRun `sitekit deploy` first", err)
	}
	return out, err
}

// recordRun stores the outcome of a remote operation. Failures to record are
// logged, never returned, so they cannot mask the operation's own result.
func recordRun(ctx context.Context, store *history.Store, logger *slog.Logger, run history.Run, opErr error, noChanges bool) {
	run.Status = history.StatusOf(opErr, noChanges)
	run.FinishedAt = time.Now().UTC()
	if opErr != nil && run.Detail == "" {
		run.Detail = opErr.Error()
	}
	if _, err := store.Record(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("Failed to record run history", logging.Op(string(run.Kind)), logging.Error(err))
	}
}

// signalContext is cancelled on interrupt or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func planStatePath(cfg *config.Config) string {
	return filepath.Join(cfg.StateDir, "plan.json")
}
