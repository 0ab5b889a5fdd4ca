package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tfdeploy-io/tfdeploy/internal/config"
	"github.com/tfdeploy-io/tfdeploy/internal/deploy"
	"github.com/tfdeploy-io/tfdeploy/internal/logging"
	"github.com/tfdeploy-io/tfdeploy/internal/preflight"
	"github.com/tfdeploy-io/tfdeploy/internal/terragrunt"
)

var deployCfg config.Deployment

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the platform to an environment",
	Long: `Runs a full deployment: prerequisite validation, plan generation,
plan summary, confirmation, apply, and post-deployment checks.

A metadata record for the deployment is written next to the project,
win or lose.`,
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().StringVarP(&deployCfg.Environment, "environment", "e", "", "Target environment (dev, staging, prod)")
	deployCmd.Flags().StringVarP(&deployCfg.Region, "region", "r", "", "Target AWS region")
	deployCmd.Flags().StringSliceVarP(&deployCfg.Modules, "modules", "m", nil, "Specific modules to deploy (default: all)")
	deployCmd.Flags().BoolVar(&deployCfg.SkipValidation, "skip-validation", false, "Skip prerequisite validation")
	deployCmd.Flags().BoolVar(&deployCfg.AutoApprove, "auto-approve", false, "Apply changes without prompting")
	deployCmd.Flags().BoolVar(&deployCfg.DryRun, "dry-run", false, "Generate and summarize the plan, do not apply")
	deployCmd.Flags().BoolVar(&deployCfg.Destroy, "destroy", false, "Plan a destroy instead of an apply")
	_ = deployCmd.MarkFlagRequired("environment")
	_ = deployCmd.MarkFlagRequired("region")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	project, err := config.LoadProject(root)
	if err != nil {
		return err
	}
	if err := deployCfg.Validate(project); err != nil {
		return err
	}

	checker, err := preflight.NewChecker(cmd.Context(), deployCfg.Region, "")
	if err != nil {
		return err
	}

	runner := newRunner(project)
	d := deploy.NewDeployer(root, &deployCfg, project, runner, checker)

	// Tee logs and tool output into the per-deployment log file.
	logPath := fmt.Sprintf("deployment_%s.log", d.ID())
	closeLog, err := logging.InitWithFile(logLevel, logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}
	defer logFile.Close()
	runner.Stdout = logFile
	runner.Stderr = logFile

	return d.Run(cmd.Context())
}

// newRunner builds the terragrunt runner, honoring binary overrides from
// the project file.
func newRunner(project *config.Project) *terragrunt.Runner {
	runner := terragrunt.NewRunner()
	if project.Terraform.TerraformBin != "" {
		runner.TerraformBin = project.Terraform.TerraformBin
	}
	if project.Terraform.TerragruntBin != "" {
		runner.TerragruntBin = project.Terraform.TerragruntBin
	}
	return runner
}
