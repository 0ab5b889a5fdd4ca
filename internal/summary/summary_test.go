package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfdeploy-io/tfdeploy/internal/tfplan"
)

func change(resourceType, module string, actions ...string) tfplan.ResourceChange {
	return tfplan.ResourceChange{
		Address:       resourceType + ".test",
		ModuleAddress: module,
		Type:          resourceType,
		Change:        tfplan.Change{Actions: actions},
	}
}

func planOf(changes ...tfplan.ResourceChange) *tfplan.Plan {
	return &tfplan.Plan{ResourceChanges: changes}
}

func TestSummarizeEmptyPlan(t *testing.T) {
	s, err := Summarize(planOf())
	require.NoError(t, err)

	assert.Equal(t, 0, s.Total)
	assert.Empty(t, s.ByAction)
	assert.Empty(t, s.ByService)
	assert.Empty(t, s.ByModule)
}

func TestSummarizeCountsEveryChangeOncePerDimension(t *testing.T) {
	s, err := Summarize(planOf(
		change("aws_instance", "", "create"),
		change("aws_instance", "", "create"),
		change("aws_s3_bucket", "", "create", "delete"),
		change("aws_lambda_function", "module.ingest", "update"),
		change("custom_widget", "module.ingest", "delete"),
	))
	require.NoError(t, err)

	assert.Equal(t, 5, s.Total)

	byAction := 0
	for _, n := range s.ByAction {
		byAction += n
	}
	byService := 0
	for _, n := range s.ByService {
		byService += n
	}
	byModule := 0
	for _, n := range s.ByModule {
		byModule += n
	}
	assert.Equal(t, s.Total, byAction)
	assert.Equal(t, s.Total, byService)
	assert.Equal(t, s.Total, byModule)
}

func TestSummarizeClassification(t *testing.T) {
	s, err := Summarize(planOf(
		change("aws_instance", "", "create"),
		change("aws_s3_bucket", "", "create", "delete"),
		change("aws_s3_bucket", "", "delete", "create"),
		change("custom_widget", "", "create"),
		change("aws_unknown_thing", "", "create"),
	))
	require.NoError(t, err)

	assert.Equal(t, 1, s.ByService[ServiceKey{Actions: "create", Service: "ec2"}])
	assert.Equal(t, 1, s.ByService[ServiceKey{Actions: "create_delete", Service: "s3"}])
	assert.Equal(t, 1, s.ByService[ServiceKey{Actions: "delete_create", Service: "s3"}])
	assert.Equal(t, 1, s.ByService[ServiceKey{Actions: "create", Service: "other"}])
	assert.Equal(t, 1, s.ByService[ServiceKey{Actions: "create", Service: "unknown"}])
}

func TestSummarizeModuleGrouping(t *testing.T) {
	s, err := Summarize(planOf(
		change("aws_subnet", "module.network", "create"),
		change("aws_route_table", "module.network", "update"),
		change("aws_s3_bucket", "", "delete"),
	))
	require.NoError(t, err)

	network := 0
	root := 0
	for k, n := range s.ByModule {
		switch k.Module {
		case "module.network":
			network += n
		case "root":
			root += n
		default:
			t.Fatalf("unexpected module %q", k.Module)
		}
	}
	assert.Equal(t, 2, network)
	assert.Equal(t, 1, root)
}

func TestSummarizeReplaceOrderPreserved(t *testing.T) {
	s, err := Summarize(planOf(
		change("aws_s3_bucket", "", "create", "delete"),
		change("aws_s3_bucket", "", "delete", "create"),
	))
	require.NoError(t, err)

	// The two replacement variants stay distinct keys in the tallies.
	assert.Equal(t, 1, s.ByAction[ActionKey("create_delete")])
	assert.Equal(t, 1, s.ByAction[ActionKey("delete_create")])
}

func TestSummarizeMissingActions(t *testing.T) {
	_, err := Summarize(planOf(change("aws_instance", "")))
	require.Error(t, err)
	assert.ErrorIs(t, err, tfplan.ErrInvalidInput)
}

func TestServiceName(t *testing.T) {
	tests := []struct {
		resourceType string
		expected     string
	}{
		{"aws_instance", "ec2"},
		{"aws_security_group", "ec2"},
		{"aws_security_group_rule", "ec2"},
		{"aws_subnet", "vpc"},
		{"aws_internet_gateway", "vpc"},
		{"aws_nat_gateway", "vpc"},
		{"aws_route_table_association", "vpc"},
		{"aws_s3_bucket", "s3"},
		{"aws_s3_bucket_versioning", "s3"},
		{"aws_iam_role", "iam"},
		{"aws_lambda_function", "lambda"},
		{"aws_step_functions_state_machine", "stepfunctions"},
		{"aws_dynamodb_table", "dynamodb"},
		{"aws_kinesis_stream", "kinesis"},
		{"aws_glue_catalog_database", "glue"},
		{"aws_cloudwatch_log_group", "cloudwatch"},
		{"aws_unknown_thing", "unknown"},
		{"custom_widget", "other"},
		{"null_resource", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.resourceType, func(t *testing.T) {
			assert.Equal(t, tt.expected, ServiceName(tt.resourceType))
		})
	}
}

func TestKeyForRoundTrip(t *testing.T) {
	key := KeyFor([]string{"create", "delete"})
	assert.Equal(t, ActionKey("create_delete"), key)
	assert.Equal(t, []string{"create", "delete"}, key.Tokens())

	// no-op uses a hyphen, so joining on underscore stays unambiguous
	assert.Equal(t, []string{"no-op"}, KeyFor([]string{"no-op"}).Tokens())
}
