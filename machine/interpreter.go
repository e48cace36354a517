package machine

import (
	"fmt"
	"strings"

	"github.com/tjbrennan/cm0asm/node"
)

// Outcome classifies how a run loop stopped.
type Outcome int

const (
	Continue Outcome = iota
	Stopped
	Halted // a RunError with SeverityError aborted execution
)

// Step fetches and executes exactly one instruction. A
// non-InstructionNode/SystemCall at PC is a fatal fetch error. After a
// successful behavior invocation, Step reads the (pre-increment) PC and
// LR: if they're equal, hasReturned is set before PC is advanced by 4 —
// this is what makes the raw PC=LR return copy used by print_char and
// print_int observable as "this call returned" to the stacktrace logic.
func Step(s *State) (Outcome, *node.RunError) {
	idx, ok := s.cellIndex(s.Regs[node.RegPC])
	if !ok {
		return Halted, node.Fatal("PC 0x%08X out of range", s.Regs[node.RegPC])
	}
	cell := s.Memory[idx]
	if cell.Kind != node.KindInstruction && cell.Kind != node.KindSystemCall {
		return Halted, node.Fatal("fetch at 0x%08X is not an instruction (%s)", s.Regs[node.RegPC], cell.Kind)
	}

	rerr := cell.Behavior(s)

	if s.Trace != nil {
		s.Trace.Record(s, cell)
	}

	switch {
	case rerr == nil:
		// fall through to hasReturned check below
	case rerr.Severity == node.SeverityStop:
		return Stopped, nil
	case rerr.Severity == node.SeverityWarning:
		PrintStackTrace(s)
	case rerr.Severity == node.SeverityError:
		PrintStackTrace(s)
		return Halted, rerr
	}

	if s.Regs[node.RegPC] == s.Regs[node.RegLR] {
		s.hasReturned = true
	}
	s.Regs[node.RegPC] += 4

	if rerr != nil && rerr.Severity == node.SeverityWarning {
		return Continue, rerr
	}
	return Continue, nil
}

// Run steps until the program stops (StopProgram) or a fatal run error
// aborts execution.
func Run(s *State) *node.RunError {
	return RunUntil(s, nil)
}

// RunUntil steps until stop, a fatal error, or pred(cell) returns true
// just before a fetch — the surface a debugger uses for breakpoints.
// Cancellation is cooperative: pred is only consulted at fetch
// boundaries, never mid-instruction.
func RunUntil(s *State, pred func(node.Cell) bool) *node.RunError {
	for {
		if pred != nil {
			idx, ok := s.cellIndex(s.Regs[node.RegPC])
			if ok && pred(s.Memory[idx]) {
				return nil
			}
		}
		outcome, err := Step(s)
		switch outcome {
		case Stopped:
			return nil
		case Halted:
			return err
		}
	}
}

// resolveFileNamePlaceholder substitutes the "$fileName$" placeholder
// some RunError messages carry with the machine's source file.
func (s *State) resolveFileNamePlaceholder(msg string) string {
	return strings.ReplaceAll(msg, "$fileName$", s.FileName)
}

// FormatError renders a RunError for a human, resolving its
// placeholder.
func (s *State) FormatError(err *node.RunError) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", severityLabel(err.Severity), s.resolveFileNamePlaceholder(err.Message))
}

func severityLabel(sev node.RunSeverity) string {
	switch sev {
	case node.SeverityWarning:
		return "warning"
	case node.SeverityError:
		return "error"
	case node.SeverityStop:
		return "stop"
	}
	return "unknown"
}
