// Package terragrunt shells out to the terraform and terragrunt binaries.
// It owns process invocation only: what the plans mean is the caller's
// business.
package terragrunt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner invokes terraform/terragrunt in a working directory. Stdout and
// Stderr default to discarding output; the deploy orchestrator points them
// at the deployment log.
type Runner struct {
	TerraformBin  string
	TerragruntBin string
	GoBin         string
	Stdout        io.Writer
	Stderr        io.Writer
}

// NewRunner returns a Runner using the binaries found on PATH.
func NewRunner() *Runner {
	return &Runner{
		TerraformBin:  "terraform",
		TerragruntBin: "terragrunt",
		GoBin:         "go",
		Stdout:        io.Discard,
		Stderr:        io.Discard,
	}
}

// TerraformVersion probes the terraform binary and returns the first line
// of its version output.
func (r *Runner) TerraformVersion(ctx context.Context, dir string) (string, error) {
	out, err := r.capture(ctx, dir, r.TerraformBin, "version")
	if err != nil {
		return "", fmt.Errorf("failed to run terraform version: %w", err)
	}
	return firstLine(out), nil
}

// TerragruntVersion probes the terragrunt binary.
func (r *Runner) TerragruntVersion(ctx context.Context, dir string) (string, error) {
	out, err := r.capture(ctx, dir, r.TerragruntBin, "--version")
	if err != nil {
		return "", fmt.Errorf("failed to run terragrunt --version: %w", err)
	}
	return firstLine(out), nil
}

// FmtCheck runs terraform fmt in check mode over the project tree.
func (r *Runner) FmtCheck(ctx context.Context, dir string) error {
	if err := r.run(ctx, dir, r.TerraformBin, "fmt", "-check", "-recursive", "."); err != nil {
		return fmt.Errorf("terraform fmt check failed: %w", err)
	}
	return nil
}

// Validate runs terragrunt validate in a single module directory.
func (r *Runner) Validate(ctx context.Context, moduleDir string) error {
	if err := r.run(ctx, moduleDir, r.TerragruntBin, "validate"); err != nil {
		return fmt.Errorf("terragrunt validate failed in %s: %w", moduleDir, err)
	}
	return nil
}

// ValidateAll runs terragrunt run-all validate from the environment root.
func (r *Runner) ValidateAll(ctx context.Context, envDir string) error {
	if err := r.run(ctx, envDir, r.TerragruntBin, "run-all", "validate"); err != nil {
		return fmt.Errorf("terragrunt run-all validate failed: %w", err)
	}
	return nil
}

// Plan runs terragrunt plan with -detailed-exitcode and reports whether the
// plan contains changes. The error is nil for both the clean (0) and
// changes-pending (2) exit codes.
func (r *Runner) Plan(ctx context.Context, dir, outFile string, destroy bool) (bool, error) {
	return r.planExit(r.run(ctx, dir, r.TerragruntBin, planArgs(outFile, destroy, false)...))
}

// PlanAll is Plan across every module via run-all.
func (r *Runner) PlanAll(ctx context.Context, envDir, outFile string, destroy bool) (bool, error) {
	return r.planExit(r.run(ctx, envDir, r.TerragruntBin, planArgs(outFile, destroy, true)...))
}

func (r *Runner) planExit(err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 2 {
		return true, nil
	}
	return false, fmt.Errorf("terragrunt plan failed: %w", err)
}

// ShowJSON converts a saved plan file to its JSON representation.
func (r *Runner) ShowJSON(ctx context.Context, dir, planFile string) ([]byte, error) {
	out, err := r.capture(ctx, dir, r.TerragruntBin, "show", "-json", planFile)
	if err != nil {
		return nil, fmt.Errorf("failed to render plan JSON: %w", err)
	}
	return out, nil
}

// Apply applies a previously saved plan file in one module directory.
func (r *Runner) Apply(ctx context.Context, dir, planFile string) error {
	if err := r.run(ctx, dir, r.TerragruntBin, "apply", planFile); err != nil {
		return fmt.Errorf("terragrunt apply failed: %w", err)
	}
	return nil
}

// ApplyAll applies the saved plan across every module via run-all.
func (r *Runner) ApplyAll(ctx context.Context, envDir, planFile string) error {
	if err := r.run(ctx, envDir, r.TerragruntBin, "run-all", "apply", planFile); err != nil {
		return fmt.Errorf("terragrunt run-all apply failed: %w", err)
	}
	return nil
}

// IntegrationTests runs the Terratest suite in dir, exposing the target
// environment and region through the variables the tests read.
func (r *Runner) IntegrationTests(ctx context.Context, dir, environment, region string) error {
	cmd := exec.CommandContext(ctx, r.GoBin, "test", "-v", "-timeout", "30m", "./...")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"ENVIRONMENT="+environment,
		"AWS_REGION="+region,
	)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("integration tests failed: %w", err)
	}
	return nil
}

// planArgs builds the argument list for a plan invocation.
func planArgs(outFile string, destroy, all bool) []string {
	var args []string
	if all {
		args = append(args, "run-all")
	}
	args = append(args, "plan", "-detailed-exitcode")
	if destroy {
		args = append(args, "-destroy")
	}
	if outFile != "" {
		args = append(args, "-out="+outFile)
	}
	return args
}

func (r *Runner) run(ctx context.Context, dir, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	return cmd.Run()
}

func (r *Runner) capture(ctx context.Context, dir, bin string, args ...string) ([]byte, error) {
	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Stdout = &buf
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func firstLine(out []byte) string {
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}
