package build

import (
	"fmt"

	"github.com/openal-orbis/oobuild/pkgs/buildsys"
)

// StageError reports the stage that stopped the pipeline.
type StageError struct {
	Stage State
	// Source is the translation unit being compiled, if any.
	Source string
	Err    error
}

func (e *StageError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s %s: %v", e.Stage, e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Status is the tool status carried by the error, or 1 if the failure did
// not come from a tool.
func (e *StageError) Status() buildsys.Status {
	return buildsys.StatusOf(e.Err)
}

// ExitStatus folds the result of Run into one process status: 0 on success,
// the failing tool's status for stage failures, 1 for anything else.
func ExitStatus(err error) int {
	return int(buildsys.StatusOf(err))
}
