package triage

import "fmt"

// StageError is the single failure type the engine surfaces. It tags the
// underlying error with the stage that raised it so callers can log the
// failure without inspecting internal state. The engine performs no
// retries; if any retry happens it belongs to the external-service client.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("triage stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
