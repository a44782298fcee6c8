package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sitekit/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sitekit",
	Short: "Build, preview and ship a static landing page on S3 + CloudFront",
	Long: `sitekit renders a themeable static landing page, serves it locally the
way CloudFront will, and deploys it to a private S3 bucket fronted by a
CloudFront distribution. The hosting stack is planned declaratively and
applied through CloudFormation change sets.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".sitekit.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// newLogger returns the command logger. Logs go to stderr so stdout stays
// clean for templates and policies.
func newLogger() *slog.Logger {
	return logging.New(os.Stderr, verbose)
}
