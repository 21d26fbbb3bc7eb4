package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying why a switch or interface failed.
var (
	ErrUnreachable      = errors.New("switch unreachable")
	ErrSession          = errors.New("session failed")
	ErrCommand          = errors.New("command failed")
	ErrTimeout          = errors.New("switch timed out")
	ErrValidationFailed = errors.New("validation failed")
)

// Stages at which a target can fail.
const (
	StageResolve  = "resolve"
	StageConnect  = "connect"
	StageDetect   = "detect"
	StageDiscover = "discover"
	StageRead     = "read"
	StageApply    = "apply"
	StageSave     = "save"
)

// TargetError is the failure of one switch, or one interface on it.
type TargetError struct {
	Switch    string
	Interface string
	Stage     string
	Err       error
}

func (e *TargetError) Error() string {
	target := e.Switch
	if e.Interface != "" {
		target += " " + e.Interface
	}
	return fmt.Sprintf("%s: %s failed: %v", target, e.Stage, e.Err)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}

// NewTargetError wraps err for a switch/interface at stage.
func NewTargetError(sw, iface, stage string, err error) *TargetError {
	return &TargetError{Switch: sw, Interface: iface, Stage: stage, Err: err}
}

// ValidationError represents one or more configuration problems
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}
