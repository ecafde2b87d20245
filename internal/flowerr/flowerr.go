// Package flowerr defines the error taxonomy shared by every subsystem of
// the executor. A *flowerr.Error is the only error type that crosses a task
// or graph boundary; everything else is wrapped into one before it leaves
// the package that produced it.
package flowerr

import "fmt"

// Kind classifies why a task or a graph registration failed.
type Kind string

const (
	CompileError     Kind = "COMPILE_ERROR"
	ValidationError  Kind = "VALIDATION_ERROR"
	UnknownGraph     Kind = "UNKNOWN_GRAPH"
	InputTimeout     Kind = "INPUT_TIMEOUT"
	RunError         Kind = "RUN_ERROR"
	NonMappingOutput Kind = "NON_MAPPING_OUTPUT"
	Cancelled        Kind = "CANCELLED"
	ParamBindError   Kind = "PARAM_BIND_ERROR"
)

// Error is the structured error record described by the error handling
// design: every record in a manager's error buffer carries a Kind, the FQN
// of the job it happened in (if any), the owning task ID, a human message
// and an optional underlying cause.
type Error struct {
	Kind    Kind
	JobFQN  string
	TaskID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.JobFQN != "" {
		return fmt.Sprintf("flow4ago: %s: job %s: %s", e.Kind, e.JobFQN, msg)
	}
	return fmt.Sprintf("flow4ago: %s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind around a lower-level cause.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// WithJob returns a copy of e annotated with the producing job's FQN.
func (e *Error) WithJob(fqn string) *Error {
	c := *e
	c.JobFQN = fqn
	return &c
}

// WithTask returns a copy of e annotated with the owning task ID.
func (e *Error) WithTask(taskID string) *Error {
	c := *e
	c.TaskID = taskID
	return &c
}
