package config

import "fmt"

// Stage names the step of Load that failed.
type Stage string

const (
	StageCreate Stage = "create"
	StageLoad   Stage = "load"
	StageSave   Stage = "save"
)

// LoadError describes one failed stage for one file. Load logs every
// LoadError before returning it.
type LoadError struct {
	File  string
	Stage Stage
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config: %s %s: %v", e.Stage, e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
