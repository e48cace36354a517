package asm

import (
	"strconv"

	"github.com/tjbrennan/cm0asm/node"
)

// behaviorPrintChar implements the print_char system call: writes
// chr(R0) to the machine's output stream, then returns via a raw PC=LR
// copy, relying on the interpreter's unconditional PC+=4 step to land on
// the instruction after the calling BL.
func behaviorPrintChar(m node.Machine) *node.RunError {
	m.WriteOut(string(rune(m.GetReg(0))))
	m.SetReg(node.RegPC, m.GetReg(node.RegLR))
	return nil
}

// behaviorPrintInt implements the print_int system call: writes signed
// decimal R0 followed by a newline.
func behaviorPrintInt(m node.Machine) *node.RunError {
	m.WriteOut(strconv.Itoa(int(int32(m.GetReg(0)))))
	m.WriteOut("\n")
	m.SetReg(node.RegPC, m.GetReg(node.RegLR))
	return nil
}

// behaviorStartup builds the __STARTUP trampoline: it behaves exactly
// like BL to startLabel, saving its own PC into LR before branching, so
// a top-level return through LR falls through to the stop sentinel
// immediately following this cell in .text.
func behaviorStartup(startLabel string) node.Behavior {
	return func(m node.Machine) *node.RunError {
		addr, ok := m.LabelAddress(startLabel)
		if !ok {
			return node.Fatal("unknown start label %q", startLabel)
		}
		m.SetReg(node.RegLR, m.GetReg(node.RegPC))
		m.SetReg(node.RegPC, addr-4)
		m.SetHasReturned(false)
		return nil
	}
}

// behaviorStop implements the stop sentinel cell appended after
// __STARTUP: reaching it halts the interpreter loop silently.
func behaviorStop(m node.Machine) *node.RunError {
	return node.Stop()
}
