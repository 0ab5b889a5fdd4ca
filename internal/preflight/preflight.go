// Package preflight talks to AWS around a deployment: credential checks
// before, resource smoke checks after. It never mutates anything.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

// Checker wraps the AWS clients the deployment flow needs.
type Checker struct {
	stsClient    *sts.Client
	s3Client     *s3.Client
	lambdaClient *lambda.Client
}

// NewChecker loads the default AWS configuration for the region and builds
// the service clients. An optional shared-config profile can be given.
func NewChecker(ctx context.Context, region, profile string) (*Checker, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(region))
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &Checker{
		stsClient:    sts.NewFromConfig(cfg),
		s3Client:     s3.NewFromConfig(cfg),
		lambdaClient: lambda.NewFromConfig(cfg),
	}, nil
}

// CallerIdentity verifies the active credentials and returns the caller ARN.
func (c *Checker) CallerIdentity(ctx context.Context) (string, error) {
	out, err := c.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("AWS credentials validation failed: %w", classify(err))
	}
	return aws.ToString(out.Arn), nil
}

// ProjectBuckets lists S3 buckets whose names contain the environment name.
func (c *Checker) ProjectBuckets(ctx context.Context, environment string) ([]string, error) {
	out, err := c.s3Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list S3 buckets: %w", classify(err))
	}

	var names []string
	for _, b := range out.Buckets {
		name := aws.ToString(b.Name)
		if strings.Contains(name, environment) {
			names = append(names, name)
		}
	}
	return names, nil
}

// ProjectFunctions lists Lambda functions whose names contain the
// environment name, following pagination.
func (c *Checker) ProjectFunctions(ctx context.Context, environment string) ([]string, error) {
	var names []string
	paginator := lambda.NewListFunctionsPaginator(c.lambdaClient, &lambda.ListFunctionsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list Lambda functions: %w", classify(err))
		}
		for _, fn := range page.Functions {
			name := aws.ToString(fn.FunctionName)
			if strings.Contains(name, environment) {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

// classify surfaces the AWS error code when the failure is an API error,
// so logs show AccessDenied rather than a generic wrapper.
func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", apiErr.ErrorCode(), err)
	}
	return err
}
