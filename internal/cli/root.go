package cli

import (
	"github.com/spf13/cobra"
	"github.com/tfdeploy-io/tfdeploy/internal/logging"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "tfdeploy",
	Short: "Deployment orchestration for the AWS data platform",
	Long: `tfdeploy wraps Terraform and Terragrunt deployments of the AWS
data platform and summarizes Terraform plans.

It sequences validation, planning, apply, and post-deployment checks,
and renders human-readable change summaries from plan JSON.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logLevel)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}
