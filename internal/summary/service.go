package summary

import "strings"

// serviceAliases maps the leading token(s) of an aws_* resource type to
// the service the resource belongs to. Types whose lead tokens are not
// listed fall back to their own first token, so new services group under
// a sensible name without a table update.
var serviceAliases = map[string]string{
	"instance":         "ec2",
	"vpc":              "vpc",
	"subnet":           "vpc",
	"internet_gateway": "vpc",
	"nat_gateway":      "vpc",
	"route_table":      "vpc",
	"security_group":   "ec2",
	"s3":               "s3",
	"iam":              "iam",
	"lambda":           "lambda",
	"cloudwatch":       "cloudwatch",
	"rds":              "rds",
	"dynamodb":         "dynamodb",
	"kinesis":          "kinesis",
	"glue":             "glue",
	"athena":           "athena",
	"msk":              "msk",
	"mwaa":             "mwaa",
	"step_functions":   "stepfunctions",
	"kms":              "kms",
	"secretsmanager":   "secretsmanager",
	"ssm":              "ssm",
	"cloudtrail":       "cloudtrail",
	"config":           "config",
	"guardduty":        "guardduty",
	"cloudformation":   "cloudformation",
	"route53":          "route53",
	"acm":              "acm",
	"waf":              "waf",
	"apigateway":       "apigateway",
	"cognito":          "cognito",
	"sns":              "sns",
	"sqs":              "sqs",
	"elasticsearch":    "elasticsearch",
	"opensearch":       "opensearch",
}

// ServiceName derives the owning AWS service from a Terraform resource
// type. Non-AWS types all classify as "other"; unknown aws_ types keep
// their first token as the service name. Two-token aliases are tried
// before the single token so aws_security_group_rule lands on ec2, not
// "security".
func ServiceName(resourceType string) string {
	rest, ok := strings.CutPrefix(resourceType, "aws_")
	if !ok {
		return "other"
	}

	parts := strings.Split(rest, "_")
	if len(parts) > 1 {
		if svc, ok := serviceAliases[parts[0]+"_"+parts[1]]; ok {
			return svc
		}
	}
	if svc, ok := serviceAliases[parts[0]]; ok {
		return svc
	}
	return parts[0]
}
