package node

import "fmt"

// RunSeverity classifies a run-time error.
type RunSeverity int

const (
	SeverityWarning RunSeverity = iota
	SeverityError
	SeverityStop // StopProgram: halt silently, no stacktrace
)

// RunError is the result of invoking an instruction's Behavior. Messages
// may carry a "$fileName$" placeholder, resolved by the caller at print
// time using the originating MachineState's file name.
type RunError struct {
	Message  string
	Severity RunSeverity
}

func (e *RunError) Error() string {
	return e.Message
}

// Stop builds the silent StopProgram sentinel error.
func Stop() *RunError {
	return &RunError{Severity: SeverityStop}
}

// Warn builds a run-time warning.
func Warn(format string, args ...any) *RunError {
	return &RunError{Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// Fatal builds a run-time error that aborts execution.
func Fatal(format string, args ...any) *RunError {
	return &RunError{Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}
