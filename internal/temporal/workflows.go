package temporal

import (
	"fmt"
	"time"

	sdktemporal "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// BuildErrorType marks activity failures caused by the project itself, such
// as a missing entry or a failing plugin. They are not retried.
const BuildErrorType = "BuildError"

const maxAttempts = 3

// BuildInput holds the workflow parameters.
type BuildInput struct {
	// ConfigPath is read on the worker. Empty means defaults and RSPACK_*
	// environment only.
	ConfigPath string
	// Context overrides the configured project root when set.
	Context string
}

// BuildOutput holds the workflow result.
type BuildOutput struct {
	OutputPath string
	Target     string
	Plugins    []string
	Assets     []AssetResult
	TotalBytes int
	Warnings   []string
}

// AssetResult is one emitted file.
type AssetResult struct {
	Name string
	Size int
}

// BuildWorkflow validates the configuration on a worker and then runs the
// build there.
func BuildWorkflow(ctx workflow.Context, input BuildInput) (*BuildOutput, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &sdktemporal.RetryPolicy{
			MaximumAttempts:        maxAttempts,
			NonRetryableErrorTypes: []string{BuildErrorType},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var warnings []string
	if err := workflow.ExecuteActivity(ctx, ValidateConfigActivity, input).Get(ctx, &warnings); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	var output BuildOutput
	if err := workflow.ExecuteActivity(ctx, BuildActivity, input).Get(ctx, &output); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	output.Warnings = append(warnings, output.Warnings...)
	return &output, nil
}
