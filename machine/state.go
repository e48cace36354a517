// Package machine implements node.Machine: the concrete register file,
// status flags and word-addressed memory the assembled node.Cell
// behaviors run against, plus the fetch-execute loop and stacktrace
// reconstruction described for the interpreter.
package machine

import (
	"io"
	"strings"

	"github.com/tjbrennan/cm0asm/asm"
	"github.com/tjbrennan/cm0asm/node"
)

// State is the concrete node.Machine. Registers are a flat 16-word array
// (SP=13, LR=14, PC=15) so no decoder ever special-cases them; Memory is
// one node.Cell per 32-bit word covering [stack][.text+syscalls][.bss][.data].
type State struct {
	Regs  [16]uint32
	Flags node.Flags

	Memory    []node.Cell
	Labels    map[string]node.Label
	stackSize uint32

	FileName string
	Source   []string // source lines, 1-indexed (Source[line-1]), for stacktrace printing

	hasReturned bool

	out    strings.Builder
	Stdout io.Writer // optional, mirrors WriteOut when non-nil

	Trace *Trace
}

// New builds a State from a finished asm.Layout: stack + text + bss +
// data, SP initialized to the stack size, PC initialized to the
// __STARTUP trampoline cell.
func New(lay *asm.Layout, fileName string, source []string) *State {
	mem := make([]node.Cell, 0, int(lay.StackSize)/4+len(lay.Text)+len(lay.BSS)+len(lay.Data))
	for i := 0; i < int(lay.StackSize)/4; i++ {
		mem = append(mem, node.DataWord(0, "SETUP", node.SectionStack, 0))
	}
	mem = append(mem, lay.Text...)
	mem = append(mem, lay.BSS...)
	mem = append(mem, lay.Data...)

	s := &State{
		Memory:    mem,
		Labels:    lay.Labels,
		stackSize: lay.StackSize,
		FileName:  fileName,
		Source:    source,
	}
	s.Regs[node.RegSP] = lay.StackSize
	s.Regs[node.RegPC] = lay.StartupAddr
	return s
}

// Output returns everything written via WriteOut so far.
func (s *State) Output() string {
	return s.out.String()
}

func (s *State) GetReg(i int) uint32   { return s.Regs[i] }
func (s *State) SetReg(i int, v uint32) { s.Regs[i] = v }

func (s *State) GetFlags() node.Flags  { return s.Flags }
func (s *State) SetFlags(f node.Flags) { s.Flags = f }

func (s *State) LabelAddress(name string) (uint32, bool) {
	l, ok := s.Labels[name]
	return l.Address, ok
}

func (s *State) StackSize() uint32 { return s.stackSize }

func (s *State) HasReturned() bool      { return s.hasReturned }
func (s *State) SetHasReturned(v bool)  { s.hasReturned = v }

func (s *State) WriteOut(str string) {
	s.out.WriteString(str)
	if s.Stdout != nil {
		_, _ = io.WriteString(s.Stdout, str)
	}
}

func (s *State) cellIndex(addr uint32) (int, bool) {
	idx := int(addr / 4)
	if idx < 0 || idx >= len(s.Memory) {
		return 0, false
	}
	return idx, true
}

// CellIndexAt exposes cellIndex to callers outside the package (the
// debugger, for source/disassembly views keyed off a memory address).
func (s *State) CellIndexAt(addr uint32) (int, bool) {
	return s.cellIndex(addr)
}

// Load implements node.Machine.Load, the LDR family's addressing and
// lane-extraction rules. Within a word, byte offset `addr%4` selects
// the lane counting from the LEAST significant byte (offset 0); that's
// the MSB-first byte index `3-offset` when the word is described
// big-endian.
func (s *State) Load(addr uint32, width int, signExt bool) (uint32, *node.RunError) {
	if err := checkAlignment(addr, width); err != nil {
		return 0, err
	}
	idx, ok := s.cellIndex(addr)
	if !ok {
		return 0, node.Fatal("address 0x%08X out of range", addr)
	}
	cell := s.Memory[idx]
	if cell.Kind != node.KindData {
		return 0, node.Fatal("load of %s at 0x%08X", cell.Kind, addr)
	}

	word := cell.Value
	offset := addr % 4
	var v uint32
	switch width {
	case 32:
		v = word
	case 16:
		if offset == 0 {
			v = (word >> 16) & 0xFFFF
		} else {
			v = word & 0xFFFF
		}
	case 8:
		v = (word >> (offset * 8)) & 0xFF
	}
	if signExt {
		v = signExtend(v, uint(width))
	}
	return v, nil
}

// Store implements node.Machine.Store, the STR family's addressing and
// permission rules. Storing into a DataNode cell is always legal;
// storing a full word into an instruction-bearing cell
// (InstructionNode/SystemCall) warns and replaces the cell with a
// DataNode, and a partial-width store into one is an error.
// Complementary lanes of the existing word are preserved.
func (s *State) Store(addr uint32, value uint32, width int, source string) *node.RunError {
	if err := checkAlignment(addr, width); err != nil {
		return err
	}
	idx, ok := s.cellIndex(addr)
	if !ok {
		return node.Fatal("address 0x%08X out of range", addr)
	}
	cell := s.Memory[idx]

	switch cell.Kind {
	case node.KindInstruction, node.KindSystemCall:
		if width != 32 {
			return node.Fatal("partial store to instruction at 0x%08X", addr)
		}
		s.Memory[idx] = node.DataWord(value, source, cell.Section, cell.Line)
		return node.Warn("full-word store replaced instruction at 0x%08X", addr)
	case node.KindData:
		word := cell.Value
		offset := addr % 4
		switch width {
		case 32:
			word = value
		case 16:
			if offset == 0 {
				word = (word & 0x0000FFFF) | ((value & 0xFFFF) << 16)
			} else {
				word = (word & 0xFFFF0000) | (value & 0xFFFF)
			}
		case 8:
			shift := offset * 8
			mask := uint32(0xFF) << shift
			word = (word &^ mask) | ((value & 0xFF) << shift)
		}
		s.Memory[idx] = node.DataWord(word, source, cell.Section, cell.Line)
		return nil
	default:
		return node.Fatal("store to non-data cell at 0x%08X", addr)
	}
}

func checkAlignment(addr uint32, width int) *node.RunError {
	switch width {
	case 32:
		if addr%4 != 0 {
			return node.Fatal("misaligned address 0x%08X for 32-bit access", addr)
		}
	case 16:
		if addr%2 != 0 {
			return node.Fatal("misaligned address 0x%08X for 16-bit access", addr)
		}
	case 8:
	default:
		return node.Fatal("unsupported access width %d", width)
	}
	return nil
}

func signExtend(v uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(v<<shift) >> shift)
}
