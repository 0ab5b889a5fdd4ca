// Package config holds the deployment configuration: the per-invocation
// options collected from CLI flags and the optional project file
// (tfdeploy.yaml) at the repository root.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// ProjectFileName is looked up relative to the project root.
const ProjectFileName = "tfdeploy.yaml"

// Deployment is one deployment invocation.
type Deployment struct {
	Environment    string
	Region         string
	Modules        []string
	SkipValidation bool
	AutoApprove    bool
	Destroy        bool
	DryRun         bool
}

// Project is the per-repository configuration file. Zero values fall back
// to the defaults the original platform used.
type Project struct {
	Name         string   `yaml:"name"`
	Environments []string `yaml:"environments"`
	Regions      []string `yaml:"regions"`
	Modules      []string `yaml:"modules"`

	Terraform struct {
		TerraformBin  string `yaml:"terraform_bin"`
		TerragruntBin string `yaml:"terragrunt_bin"`
	} `yaml:"terraform"`
}

// DefaultProject mirrors the environments and regions the platform deploys
// to when no project file is present.
func DefaultProject() *Project {
	return &Project{
		Name:         "data-platform",
		Environments: []string{"dev", "staging", "prod"},
		Regions:      []string{"us-east-1", "us-west-2"},
	}
}

// LoadProject reads tfdeploy.yaml from the project root, returning defaults
// if the file does not exist.
func LoadProject(root string) (*Project, error) {
	path := filepath.Join(root, ProjectFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultProject(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	project := DefaultProject()
	if err := yaml.Unmarshal(data, project); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return project, nil
}

// Validate checks the deployment options against the project's allowed
// environments, regions, and modules.
func (d *Deployment) Validate(project *Project) error {
	if d.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if !slices.Contains(project.Environments, d.Environment) {
		return fmt.Errorf("unknown environment %q (expected one of %v)", d.Environment, project.Environments)
	}
	if d.Region == "" {
		return fmt.Errorf("region is required")
	}
	if !slices.Contains(project.Regions, d.Region) {
		return fmt.Errorf("unknown region %q (expected one of %v)", d.Region, project.Regions)
	}
	if len(project.Modules) > 0 {
		for _, m := range d.Modules {
			if !slices.Contains(project.Modules, m) {
				return fmt.Errorf("unknown module %q (expected one of %v)", m, project.Modules)
			}
		}
	}
	return nil
}

// EnvironmentPath is the terragrunt working directory for this deployment:
// environments/<environment>/<region> under the project root.
func (d *Deployment) EnvironmentPath(root string) string {
	return filepath.Join(root, "environments", d.Environment, d.Region)
}
