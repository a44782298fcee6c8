package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sitekit/internal/history"
	"github.com/ziadkadry99/sitekit/internal/logging"
	"github.com/ziadkadry99/sitekit/internal/site"
	"github.com/ziadkadry99/sitekit/internal/topology"
)

var (
	previewPort    int
	previewOpen    bool
	previewNoWatch bool
	previewCORS    bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Build and serve the site locally the way CloudFront will",
	Long: `Builds the bundle and serves it with the distribution's behavior: the
root object, the SPA error rewrites and the cache TTLs. The theme API and a
live-reload websocket are mounted alongside, and the content file is watched
for changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Preview.Port = previewPort
		}
		logger := newLogger()

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		database, err := openState(cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		manager := newThemeManager(ctx, database, logger)

		if _, err := buildSite(cfg, manager.Current(), logger); err != nil {
			return err
		}

		srv := site.NewPreviewServer(site.PreviewConfig{
			Port:     cfg.Preview.Port,
			Dir:      cfg.Site.OutputDir,
			Behavior: topology.DefaultBehavior(cfg.Infra.PriceClass),
			AllowAll: previewCORS,
		}, manager, history.NewStore(database), logger)

		watch := cfg.Preview.Watch && !previewNoWatch
		if watch {
			files := []string{cfgFile}
			if cfg.Site.ContentFile != "" {
				files = append(files, cfg.Site.ContentFile)
			}
			w := &site.Watcher{
				Files:  files,
				Logger: logger,
				OnChange: func() {
					next, err := loadConfig()
					if err != nil {
						logger.Warn("Config reload failed", logging.Error(err))
						next = cfg
					}
					next.Site.OutputDir = cfg.Site.OutputDir
					if _, err := buildSite(next, manager.Current(), logger); err != nil {
						logger.Warn("Rebuild failed", logging.Error(err))
						return
					}
					srv.Hub().Reload()
				},
			}
			go func() {
				if err := w.Run(ctx); err != nil {
					logger.Warn("Watcher stopped", logging.Error(err))
				}
			}()
		}

		url := fmt.Sprintf("http://localhost:%d", cfg.Preview.Port)
		abs, _ := filepath.Abs(cfg.Site.OutputDir)
		fmt.Printf("Previewing %s at %s (theme: %s, watch: %v)\n", abs, url, manager.Current(), watch)
		if cfg.Preview.Open || previewOpen {
			site.OpenBrowser(url)
		}
		return srv.Start(ctx)
	},
}

func init() {
	previewCmd.Flags().IntVarP(&previewPort, "port", "p", 8080, "port to listen on")
	previewCmd.Flags().BoolVar(&previewOpen, "open", false, "open the site in the default browser")
	previewCmd.Flags().BoolVar(&previewNoWatch, "no-watch", false, "do not rebuild on content changes")
	previewCmd.Flags().BoolVar(&previewCORS, "cors-allow-all", false, "allow all CORS origins")
	rootCmd.AddCommand(previewCmd)
}
