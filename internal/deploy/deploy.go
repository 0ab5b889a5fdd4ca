// Package deploy sequences a full deployment: preflight checks, plan,
// summary, confirmation, apply, post-deploy smoke checks, and the metadata
// record. Terraform/Terragrunt do all the real work; this package only
// orders their invocations and decides when to stop.
package deploy

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tfdeploy-io/tfdeploy/internal/config"
	"github.com/tfdeploy-io/tfdeploy/internal/logging"
	"github.com/tfdeploy-io/tfdeploy/internal/metadata"
	"github.com/tfdeploy-io/tfdeploy/internal/summary"
	"github.com/tfdeploy-io/tfdeploy/internal/tfplan"
)

// ErrCancelled is returned when the operator declines the confirmation
// prompt. Nothing has been applied at that point.
var ErrCancelled = errors.New("deployment cancelled")

// toolRunner is the terragrunt surface the deployer needs.
type toolRunner interface {
	TerraformVersion(ctx context.Context, dir string) (string, error)
	TerragruntVersion(ctx context.Context, dir string) (string, error)
	FmtCheck(ctx context.Context, dir string) error
	Validate(ctx context.Context, moduleDir string) error
	ValidateAll(ctx context.Context, envDir string) error
	Plan(ctx context.Context, dir, outFile string, destroy bool) (bool, error)
	PlanAll(ctx context.Context, envDir, outFile string, destroy bool) (bool, error)
	ShowJSON(ctx context.Context, dir, planFile string) ([]byte, error)
	Apply(ctx context.Context, dir, planFile string) error
	ApplyAll(ctx context.Context, envDir, planFile string) error
	IntegrationTests(ctx context.Context, dir, environment, region string) error
}

// awsChecker is the preflight surface the deployer needs.
type awsChecker interface {
	CallerIdentity(ctx context.Context) (string, error)
	ProjectBuckets(ctx context.Context, environment string) ([]string, error)
	ProjectFunctions(ctx context.Context, environment string) ([]string, error)
}

// Deployer runs one deployment end to end.
type Deployer struct {
	cfg     *config.Deployment
	project *config.Project
	runner  toolRunner
	checker awsChecker
	root    string
	id      string

	// Out receives progress and the plan summary. Confirm asks the
	// operator to approve the apply; tests swap it out.
	Out     io.Writer
	Confirm func() bool
}

// NewDeployer builds a Deployer with a timestamp-derived deployment id.
func NewDeployer(root string, cfg *config.Deployment, project *config.Project, runner toolRunner, checker awsChecker) *Deployer {
	return &Deployer{
		cfg:     cfg,
		project: project,
		runner:  runner,
		checker: checker,
		root:    root,
		id:      time.Now().Format("20060102-150405"),
		Out:     os.Stdout,
		Confirm: confirmOnStdin,
	}
}

// ID returns the deployment identifier, used in plan, log, and metadata
// file names.
func (d *Deployer) ID() string { return d.id }

// Run executes the deployment sequence. A metadata record is written on
// every outcome, including failures; metadata write errors never override
// the deployment result.
func (d *Deployer) Run(ctx context.Context) error {
	logging.Info("starting deployment",
		"deployment_id", d.id,
		"project", d.project.Name,
		"environment", d.cfg.Environment,
		"region", d.cfg.Region,
		"modules", strings.Join(d.cfg.Modules, ","))

	planSummary := ""
	err := d.run(ctx, &planSummary)

	rec := metadata.Record{
		DeploymentID: d.id,
		Environment:  d.cfg.Environment,
		Region:       d.cfg.Region,
		Modules:      d.cfg.Modules,
		Success:      err == nil,
		PlanSummary:  planSummary,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if path, mdErr := metadata.Write(d.root, rec); mdErr != nil {
		logging.Warn("failed to write deployment metadata", "error", mdErr)
	} else {
		logging.Info("deployment metadata saved", "path", path)
	}

	return err
}

func (d *Deployer) run(ctx context.Context, planSummary *string) error {
	envPath := d.cfg.EnvironmentPath(d.root)

	if !d.cfg.SkipValidation {
		if err := d.preflight(ctx, envPath); err != nil {
			return err
		}
	}

	changes, err := d.plan(ctx, envPath, planSummary)
	if err != nil {
		return err
	}

	if !changes {
		logging.Info("no changes detected in plan")
		return nil
	}

	if d.cfg.DryRun {
		logging.Info("dry run mode, skipping apply")
		return nil
	}

	if !d.cfg.AutoApprove {
		fmt.Fprint(d.Out, "\nDo you want to proceed with applying changes? (yes/no): ")
		if !d.Confirm() {
			logging.Info("deployment cancelled by operator")
			return ErrCancelled
		}
	}

	if err := d.apply(ctx, envPath); err != nil {
		return err
	}

	if err := d.smokeChecks(ctx); err != nil {
		return fmt.Errorf("deployment applied but post-deploy checks failed: %w", err)
	}

	logging.Info("deployment completed", "deployment_id", d.id)
	return nil
}

// preflight validates the environment path, AWS credentials, tool
// availability, and the terraform/terragrunt configuration.
func (d *Deployer) preflight(ctx context.Context, envPath string) error {
	logging.Info("validating deployment prerequisites")

	if info, err := os.Stat(envPath); err != nil || !info.IsDir() {
		return fmt.Errorf("environment path does not exist: %s", envPath)
	}

	arn, err := d.checker.CallerIdentity(ctx)
	if err != nil {
		return err
	}
	logging.Info("AWS identity verified", "arn", arn)

	tfVersion, err := d.runner.TerraformVersion(ctx, envPath)
	if err != nil {
		return err
	}
	tgVersion, err := d.runner.TerragruntVersion(ctx, envPath)
	if err != nil {
		return err
	}
	logging.Info("tool versions", "terraform", tfVersion, "terragrunt", tgVersion)

	if err := d.runner.FmtCheck(ctx, d.root); err != nil {
		return err
	}

	if len(d.cfg.Modules) > 0 {
		for _, module := range d.cfg.Modules {
			moduleDir := filepath.Join(envPath, module)
			if _, err := os.Stat(moduleDir); err != nil {
				logging.Warn("module path does not exist", "module", module, "path", moduleDir)
				continue
			}
			if err := d.runner.Validate(ctx, moduleDir); err != nil {
				return err
			}
		}
	} else {
		if err := d.runner.ValidateAll(ctx, envPath); err != nil {
			return err
		}
	}

	logging.Info("all prerequisites validated")
	return nil
}

// plan generates the terragrunt plan(s), aggregates every planned change
// into one summary, and renders it to Out. Returns whether any module has
// pending changes.
func (d *Deployer) plan(ctx context.Context, envPath string, planSummary *string) (bool, error) {
	logging.Info("generating plan", "plan_file", d.planFile())

	combined := &tfplan.Plan{}
	anyChanges := false

	for _, dir := range d.moduleDirs(envPath) {
		var (
			changes bool
			err     error
		)
		if len(d.cfg.Modules) > 0 {
			changes, err = d.runner.Plan(ctx, dir, d.planFile(), d.cfg.Destroy)
		} else {
			changes, err = d.runner.PlanAll(ctx, dir, d.planFile(), d.cfg.Destroy)
		}
		if err != nil {
			return false, err
		}
		if !changes {
			continue
		}
		anyChanges = true

		data, err := d.runner.ShowJSON(ctx, dir, d.planFile())
		if err != nil {
			return false, err
		}
		plan, err := tfplan.Load(bytes.NewReader(data))
		if err != nil {
			return false, err
		}
		combined.ResourceChanges = append(combined.ResourceChanges, plan.ResourceChanges...)
	}

	rendered, err := summary.Report(combined, true, summary.FormatText)
	if err != nil {
		return false, err
	}

	fmt.Fprintln(d.Out, rendered)
	*planSummary = rendered
	return anyChanges, nil
}

func (d *Deployer) apply(ctx context.Context, envPath string) error {
	logging.Info("applying changes", "deployment_id", d.id)

	if len(d.cfg.Modules) > 0 {
		for _, dir := range d.moduleDirs(envPath) {
			logging.Info("applying module", "path", dir)
			if err := d.runner.Apply(ctx, dir, d.planFile()); err != nil {
				return err
			}
		}
		return nil
	}
	return d.runner.ApplyAll(ctx, envPath, d.planFile())
}

// smokeChecks verifies the deployed environment is reachable: the project's
// S3 buckets and Lambda functions answer, and the integration test suite
// passes when the repository ships one. Failures leave the applied
// infrastructure in place.
func (d *Deployer) smokeChecks(ctx context.Context) error {
	logging.Info("running post-deployment checks")

	buckets, err := d.checker.ProjectBuckets(ctx, d.cfg.Environment)
	if err != nil {
		return err
	}
	logging.Info("project S3 buckets found", "count", len(buckets))

	functions, err := d.checker.ProjectFunctions(ctx, d.cfg.Environment)
	if err != nil {
		return err
	}
	logging.Info("project Lambda functions found", "count", len(functions))

	testDir := filepath.Join(d.root, "tests", "integration")
	if info, err := os.Stat(testDir); err == nil && info.IsDir() {
		logging.Info("running integration tests", "path", testDir)
		if err := d.runner.IntegrationTests(ctx, testDir, d.cfg.Environment, d.cfg.Region); err != nil {
			return err
		}
	}

	return nil
}

// moduleDirs returns the terragrunt working directories: one per selected
// module, or the environment root alone for run-all deployments.
func (d *Deployer) moduleDirs(envPath string) []string {
	if len(d.cfg.Modules) == 0 {
		return []string{envPath}
	}
	dirs := make([]string, 0, len(d.cfg.Modules))
	for _, module := range d.cfg.Modules {
		dirs = append(dirs, filepath.Join(envPath, module))
	}
	return dirs
}

func (d *Deployer) planFile() string {
	return fmt.Sprintf("deployment_plan_%s.out", d.id)
}

func confirmOnStdin() bool {
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	return strings.TrimSpace(strings.ToLower(scanner.Text())) == "yes"
}
