package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sitekit/internal/diagrams"
	"github.com/ziadkadry99/sitekit/internal/topology"
)

var (
	planFormat  string
	planDiagram bool
	planDiff    bool
	planNoSave  bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the hosting stack that deploy would create",
	Long: `Plans the S3 bucket, origin access identity, bucket policy, cache policy and
CloudFront distribution without calling AWS. By default the resources are
listed in dependency order; --format prints the CloudFormation template and
--diagram a mermaid graph. The plan is saved to the state dir so the next
run can --diff against it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		plan, err := topology.NewPlan(cfg.Topology())
		if err != nil {
			return err
		}
		statePath := planStatePath(cfg)

		switch {
		case planDiff:
			prev, err := topology.LoadState(statePath)
			if err != nil {
				return err
			}
			steps, err := topology.Diff(prev, plan)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "OP\tLOGICAL ID\tTYPE")
			for _, s := range steps {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Op, s.LogicalID, s.Type)
			}
			w.Flush()
			if !topology.HasChanges(steps) {
				fmt.Println("\nNo changes.")
			}
		case planDiagram:
			fmt.Println(diagrams.TopologyDiagram(plan.Resources))
		case planFormat != "":
			body, err := topology.RenderTemplate(plan, topology.Format(planFormat))
			if err != nil {
				return err
			}
			os.Stdout.Write(body)
		default:
			printPlan(plan)
		}

		if planNoSave {
			return nil
		}
		return topology.SaveState(statePath, plan)
	},
}

func printPlan(plan *topology.Plan) {
	fmt.Printf("Stack %s in %s (%s)\n\n", plan.Config.StackName, plan.Config.Region, plan.Partition())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOGICAL ID\tTYPE\tDEPENDS ON")
	for _, r := range plan.Resources {
		deps := "-"
		if len(r.DependsOn) > 0 {
			deps = strings.Join(r.DependsOn, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.LogicalID, r.Type, deps)
	}
	w.Flush()

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OUTPUT\tEXPORT")
	for _, o := range plan.Outputs {
		fmt.Fprintf(w, "%s\t%s\n", o.Key, o.ExportName)
	}
	w.Flush()

	b := plan.Distribution()
	fmt.Printf("\nBucket ARN: %s\n", plan.BucketARN())
	fmt.Printf("Root object: %s, default TTL %s, price class %s\n", b.DefaultRootObject, b.DefaultTTL, b.PriceClass)
}

func init() {
	planCmd.Flags().StringVarP(&planFormat, "format", "f", "", "print the template as yaml or json")
	planCmd.Flags().BoolVar(&planDiagram, "diagram", false, "print a mermaid diagram of the resources")
	planCmd.Flags().BoolVar(&planDiff, "diff", false, "compare against the previously saved plan")
	planCmd.Flags().BoolVar(&planNoSave, "no-save", false, "do not save the plan state")
	rootCmd.AddCommand(planCmd)
}
