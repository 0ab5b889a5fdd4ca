package tfplan

// Plan is the machine-readable form of a Terraform plan, produced by
// `terraform show -json <planfile>`.
type Plan struct {
	FormatVersion    string           `json:"format_version"`
	TerraformVersion string           `json:"terraform_version"`
	ResourceChanges  []ResourceChange `json:"resource_changes"`
}

// ResourceChange describes one planned mutation to a single resource.
type ResourceChange struct {
	Address       string `json:"address"`
	ModuleAddress string `json:"module_address"`
	Mode          string `json:"mode"`
	Type          string `json:"type"`
	Name          string `json:"name"`
	ProviderName  string `json:"provider_name"`
	Change        Change `json:"change"`
}

// Change carries the planned actions and the before/after values.
// Actions is ordered: a replacement is ["create","delete"] or
// ["delete","create"] depending on create_before_destroy.
type Change struct {
	Actions []string       `json:"actions"`
	Before  map[string]any `json:"before"`
	After   map[string]any `json:"after"`
}

// Module returns the module address owning the change, normalized so
// resources in the root module (where Terraform omits the field) report
// "root".
func (c *ResourceChange) Module() string {
	if c.ModuleAddress == "" {
		return "root"
	}
	return c.ModuleAddress
}
