package machine

import (
	"fmt"
	"io"

	"github.com/tjbrennan/cm0asm/node"
)

// TraceEntry is one retired instruction: its PC, source line (or system
// call name), and a snapshot of all 16 registers immediately after it ran.
type TraceEntry struct {
	PC   uint32
	Line int
	Name string // set instead of Line for SystemCall cells
	Regs [16]uint32
}

// Trace is an optional execution trace, gated by config: entries
// accumulate in memory as the interpreter retires instructions and are
// flushed to Writer on demand. MaxEntries, when non-zero, bounds Entries
// to a ring buffer of that size, discarding the oldest entry on overflow.
type Trace struct {
	Writer     io.Writer
	Enabled    bool
	MaxEntries int
	Entries    []TraceEntry
}

// NewTrace builds an enabled Trace writing to w with no entry cap; set
// MaxEntries afterward to bound memory use.
func NewTrace(w io.Writer) *Trace {
	return &Trace{Writer: w, Enabled: true}
}

// Record appends one retired instruction, dropping the oldest entry
// first if MaxEntries would otherwise be exceeded. Called from Step
// after the cell's behavior has run but before PC is advanced by 4.
func (t *Trace) Record(s *State, cell node.Cell) {
	if !t.Enabled {
		return
	}
	if t.MaxEntries > 0 && len(t.Entries) >= t.MaxEntries {
		t.Entries = t.Entries[1:]
	}
	t.Entries = append(t.Entries, TraceEntry{
		PC: s.Regs[node.RegPC], Line: cell.Line, Name: cell.Name, Regs: s.Regs,
	})
}

// Flush writes every accumulated entry, one line per instruction, then
// clears the buffer.
func (t *Trace) Flush() error {
	for _, e := range t.Entries {
		label := e.Name
		if label == "" {
			label = fmt.Sprintf("line %d", e.Line)
		}
		if _, err := fmt.Fprintf(t.Writer, "PC=0x%08X %-12s R0=%08X R1=%08X R2=%08X R3=%08X SP=%08X LR=%08X\n",
			e.PC, label, e.Regs[0], e.Regs[1], e.Regs[2], e.Regs[3], e.Regs[node.RegSP], e.Regs[node.RegLR]); err != nil {
			return err
		}
	}
	t.Entries = t.Entries[:0]
	return nil
}
