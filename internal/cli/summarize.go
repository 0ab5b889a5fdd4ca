package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tfdeploy-io/tfdeploy/internal/summary"
	"github.com/tfdeploy-io/tfdeploy/internal/tfplan"
)

var (
	summarizeDetails bool
	summarizeFormat  string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <plan.json>",
	Short: "Summarize a Terraform plan JSON file",
	Long: `Reads a Terraform plan in JSON form (terraform show -json plan.out)
and prints aggregate change counts.

The summary groups changes three ways:
  • Overall, by planned action
  • By AWS service (with --details)
  • By Terraform module (with --details)`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().BoolVarP(&summarizeDetails, "details", "d", false, "Show breakdown by service and module")
	summarizeCmd.Flags().StringVarP(&summarizeFormat, "format", "f", "text", "Output format (text, markdown, json)")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	format, err := summary.ParseFormat(summarizeFormat)
	if err != nil {
		return err
	}

	plan, err := tfplan.LoadFile(args[0])
	if err != nil {
		return err
	}

	out, err := summary.Report(plan, summarizeDetails, format)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
