package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildOutput string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate the static site bundle",
	Long:  `Renders the landing page content into index.html, 404.html and the shared style and script assets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if buildOutput != "" {
			cfg.Site.OutputDir = buildOutput
		}
		logger := newLogger()

		database, err := openState(cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		manager := newThemeManager(cmd.Context(), database, logger)

		files, err := buildSite(cfg, manager.Current(), logger)
		if err != nil {
			return err
		}
		fmt.Printf("Generated %d files in %s\n", len(files), cfg.Site.OutputDir)
		for _, f := range files {
			fmt.Printf("  %s\n", f)
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output directory (default from config)")
	rootCmd.AddCommand(buildCmd)
}
