package core

import "fmt"

// UnknownTaskKeyError is raised by Registry.Unit when a key has no
// registered unit — during connector wiring or during manifest reload.
type UnknownTaskKeyError struct {
	Key string
}

func (e *UnknownTaskKeyError) Error() string {
	return fmt.Sprintf("unknown task key %q", e.Key)
}

// TaskBodyFailureError wraps an error raised by a user-defined Body,
// preserving the task key that was executing when it failed.
type TaskBodyFailureError struct {
	Key string
	Err error
}

func (e *TaskBodyFailureError) Error() string {
	return fmt.Sprintf("task %q: %v", e.Key, e.Err)
}

func (e *TaskBodyFailureError) Unwrap() error { return e.Err }
