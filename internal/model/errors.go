package model

import (
	"errors"
	"fmt"
)

// ErrMissingStat is wrapped by ConfigError when a stat key is absent.
var ErrMissingStat = errors.New("missing stat")

// ConfigError reports malformed configuration detected at construction time.
// It is fatal for the object being built.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ContentError reports a malformed skill or buff definition observed during
// resolution: a failing formula, hook, or action, or a dangling buff id.
type ContentError struct {
	SkillID string
	BuffID  string
	Unit    string
	Op      string
	Err     error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content error: skill=%q buff=%q unit=%q op=%s: %v",
		e.SkillID, e.BuffID, e.Unit, e.Op, e.Err)
}

func (e *ContentError) Unwrap() error { return e.Err }

// StateError reports an operation attempted against invalid battle state.
type StateError struct {
	SkillID string
	Unit    string
	Op      string
	Err     error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error: skill=%q unit=%q op=%s: %v", e.SkillID, e.Unit, e.Op, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

// recovered turns a recovered panic value into an error.
func recovered(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", v)
}

// Guard runs fn and converts a panic into an error.
func Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return fn()
}
