package core

import "fmt"

// Build stages reported by BuildError.
const (
	StageApply   = "apply"
	StageModule  = "module"
	StageRender  = "render"
	StageProcess = "process-assets"
	StageEmit    = "emit"
)

// BuildError is returned by Compiler.Build. Plugin is empty when the failure
// is not attributable to a single plugin.
type BuildError struct {
	Stage  string
	Plugin string
	Err    error
}

func (e *BuildError) Error() string {
	if e.Plugin == "" {
		return fmt.Sprintf("build failed at %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("build failed at %s (%s): %v", e.Stage, e.Plugin, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
