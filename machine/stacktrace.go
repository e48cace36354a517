package machine

import (
	"fmt"
	"strings"

	"github.com/tjbrennan/cm0asm/node"
)

// StackFrame is one reconstructed call frame: either a source location
// in the user's program or a named internal system call.
type StackFrame struct {
	Internal bool
	Name     string // internal function name
	FileName string
	Line     int
	Source   string // trimmed source line text
}

func (f StackFrame) String() string {
	if f.Internal {
		return fmt.Sprintf("Internal function: %s", f.Name)
	}
	return fmt.Sprintf("File %q, line %d:\n\t%s", f.FileName, f.Line, f.Source)
}

// frameFor builds the frame describing the instruction at address addr.
func (s *State) frameFor(addr uint32) StackFrame {
	idx, ok := s.cellIndex(addr)
	if !ok {
		return StackFrame{Internal: true, Name: fmt.Sprintf("0x%08X", addr)}
	}
	cell := s.Memory[idx]
	if cell.Kind == node.KindSystemCall {
		return StackFrame{Internal: true, Name: cell.Name}
	}
	src := ""
	if cell.Line >= 1 && cell.Line <= len(s.Source) {
		src = strings.TrimSpace(s.Source[cell.Line-1])
	}
	return StackFrame{FileName: s.FileName, Line: cell.Line, Source: src}
}

// StackTrace reconstructs the call stack without a shadow call stack:
// the current PC, the current LR (only when no return has yet been
// observed), then every frame found by scanning
// memory[SP/4 .. __STACKSIZE/4] for DataNode cells tagged source=="LR",
// innermost call first.
func (s *State) StackTrace() []StackFrame {
	frames := []StackFrame{s.frameFor(s.Regs[node.RegPC])}
	if !s.hasReturned {
		frames = append(frames, s.frameFor(s.Regs[node.RegLR]))
	}

	sp := s.Regs[node.RegSP]
	top := s.stackSize
	for addr := sp; addr+4 <= top; addr += 4 {
		idx, ok := s.cellIndex(addr)
		if !ok {
			break
		}
		cell := s.Memory[idx]
		if cell.Kind == node.KindData && cell.Source == "LR" {
			frames = append(frames, s.frameFor(cell.Value))
		}
	}
	return frames
}

// PrintStackTrace writes the reconstructed stacktrace to the machine's
// output stream. Called for both Warning and Error run errors, never
// for StopProgram.
func PrintStackTrace(s *State) {
	for _, f := range s.StackTrace() {
		s.WriteOut(f.String() + "\n")
	}
}
