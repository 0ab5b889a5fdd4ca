package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tfdeploy-io/tfdeploy/internal/config"
)

var validateCfg config.Deployment

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the Terraform configuration",
	Long: `Runs terraform fmt in check mode over the project and terragrunt
validate for the selected environment, without planning or applying.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateCfg.Environment, "environment", "e", "", "Target environment")
	validateCmd.Flags().StringVarP(&validateCfg.Region, "region", "r", "", "Target AWS region")
	validateCmd.Flags().StringSliceVarP(&validateCfg.Modules, "modules", "m", nil, "Specific modules to validate (default: all)")
	_ = validateCmd.MarkFlagRequired("environment")
	_ = validateCmd.MarkFlagRequired("region")
}

func runValidate(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	project, err := config.LoadProject(root)
	if err != nil {
		return err
	}
	if err := validateCfg.Validate(project); err != nil {
		return err
	}

	envPath := validateCfg.EnvironmentPath(root)
	if info, err := os.Stat(envPath); err != nil || !info.IsDir() {
		return fmt.Errorf("environment path does not exist: %s", envPath)
	}

	runner := newRunner(project)
	runner.Stdout = cmd.OutOrStdout()
	runner.Stderr = cmd.ErrOrStderr()
	ctx := cmd.Context()

	fmt.Fprint(cmd.OutOrStdout(), "Checking formatting... ")
	if err := runner.FmtCheck(ctx, root); err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "FAILED")
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "OK")

	if len(validateCfg.Modules) > 0 {
		for _, module := range validateCfg.Modules {
			fmt.Fprintf(cmd.OutOrStdout(), "Validating %s... ", module)
			if err := runner.Validate(ctx, filepath.Join(envPath, module)); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "FAILED")
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), "Validating all modules... ")
		if err := runner.ValidateAll(ctx, envPath); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "FAILED")
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "OK")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nConfiguration is valid!")
	return nil
}
