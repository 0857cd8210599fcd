package temporal

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/efebarandurmaz/rspack/internal/config"
)

// Dial connects to the Temporal frontend described by cfg.
func Dial(cfg config.TemporalConfig) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Host,
		Namespace: cfg.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("temporal client: %w", err)
	}
	return c, nil
}

// StartWorker creates and starts a Temporal worker.
func StartWorker(c client.Client, taskQueue string) (worker.Worker, error) {
	w := worker.New(c, taskQueue, worker.Options{})

	w.RegisterWorkflow(BuildWorkflow)
	w.RegisterActivity(ValidateConfigActivity)
	w.RegisterActivity(BuildActivity)

	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("starting worker: %w", err)
	}
	return w, nil
}

// RunRemoteBuild starts BuildWorkflow on taskQueue and waits for its result.
func RunRemoteBuild(ctx context.Context, c client.Client, taskQueue string, input BuildInput) (*BuildOutput, error) {
	opts := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("rspack-build-%d", time.Now().UnixNano()),
		TaskQueue: taskQueue,
	}
	run, err := c.ExecuteWorkflow(ctx, opts, BuildWorkflow, input)
	if err != nil {
		return nil, fmt.Errorf("starting build workflow: %w", err)
	}

	var out BuildOutput
	if err := run.Get(ctx, &out); err != nil {
		return nil, fmt.Errorf("build workflow %s: %w", run.GetID(), err)
	}
	return &out, nil
}
