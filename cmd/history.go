package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sitekit/internal/history"
)

var (
	historyLimit int
	historyKind  string
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent deploy, publish and destroy runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openState(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		runs, err := history.NewStore(database).List(cmd.Context(), history.Filter{
			Stack: cfg.Infra.StackName,
			Kind:  history.Kind(historyKind),
			Limit: historyLimit,
		})
		if err != nil {
			return err
		}

		if historyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tKIND\tSTATUS\tDURATION\tDETAIL")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.StartedAt.Local().Format(time.DateTime),
				r.Kind,
				r.Status,
				r.Duration().Round(time.Second),
				r.Detail,
			)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "only show deploy, publish or destroy runs")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print runs as JSON")
	rootCmd.AddCommand(historyCmd)
}
