package debugger

import (
	"fmt"
	"strconv"

	"github.com/tjbrennan/cm0asm/node"
)

func (d *Debugger) cmdRun(args []string) error {
	d.Running = true
	d.StepMode = StepNone
	d.Stopped = false
	d.Println("Running...")
	return nil
}

func (d *Debugger) cmdContinue(args []string) error {
	if d.Stopped {
		return fmt.Errorf("program has already halted")
	}
	d.Running = true
	d.StepMode = StepNone
	d.Println("Continuing...")
	return nil
}

func (d *Debugger) cmdStep(args []string) error {
	if d.Stopped {
		return fmt.Errorf("program has already halted")
	}
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

func (d *Debugger) cmdNext(args []string) error {
	if d.Stopped {
		return fmt.Errorf("program has already halted")
	}
	d.StepOverPC = d.State.GetReg(node.RegPC) + 4
	d.StepMode = StepOver
	d.Running = true
	return nil
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address|label>")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.Add(addr, false)
	d.Printf("Breakpoint %d at 0x%08X\n", bp.ID, addr)
	return nil
}

func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <address|label>")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.Add(addr, true)
	d.Printf("Temporary breakpoint %d at 0x%08X\n", bp.ID, addr)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.Delete(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.Enable(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.Disable(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

func (d *Debugger) cmdInfo(args []string) error {
	what := "registers"
	if len(args) > 0 {
		what = args[0]
	}
	switch what {
	case "registers", "reg", "r":
		d.printRegisters()
	case "breakpoints", "break", "b":
		d.printBreakpoints()
	case "flags":
		f := d.State.GetFlags()
		d.Printf("N=%v Z=%v C=%v V=%v\n", f.N, f.Z, f.C, f.V)
	default:
		return fmt.Errorf("unknown info target: %s", what)
	}
	return nil
}

func (d *Debugger) printRegisters() {
	s := d.State
	for i := 0; i < 16; i += 4 {
		d.Printf("R%-2d=%08X  R%-2d=%08X  R%-2d=%08X  R%-2d=%08X\n",
			i, s.GetReg(i), i+1, s.GetReg(i+1), i+2, s.GetReg(i+2), i+3, s.GetReg(i+3))
	}
	f := s.GetFlags()
	d.Printf("Flags: N=%v Z=%v C=%v V=%v\n", f.N, f.Z, f.C, f.V)
}

func (d *Debugger) printBreakpoints() {
	bps := d.Breakpoints.All()
	if len(bps) == 0 {
		d.Println("No breakpoints set.")
		return
	}
	for _, bp := range bps {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		kind := "breakpoint"
		if bp.Temporary {
			kind = "temporary breakpoint"
		}
		d.Printf("%s %d at 0x%08X (%s, hit %d times)\n", kind, bp.ID, bp.Address, status, bp.HitCount)
	}
}

func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <register|label>")
	}
	name := args[0]
	if reg, ok := registerIndex(name); ok {
		d.Printf("%s = 0x%08X (%d)\n", name, d.State.GetReg(reg), int32(d.State.GetReg(reg)))
		return nil
	}
	addr, err := d.ResolveAddress(name)
	if err != nil {
		return err
	}
	v, rerr := d.State.Load(addr, 32, false)
	if rerr != nil {
		return fmt.Errorf("%s", rerr.Message)
	}
	d.Printf("[0x%08X] = 0x%08X (%d)\n", addr, v, int32(v))
	return nil
}

func (d *Debugger) cmdMemory(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: memory <address> [count]")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	count := 8
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			count = n
		}
	}
	for i := 0; i < count; i++ {
		v, rerr := d.State.Load(addr+uint32(i*4), 32, false)
		if rerr != nil {
			return fmt.Errorf("%s", rerr.Message)
		}
		d.Printf("0x%08X: %08X\n", addr+uint32(i*4), v)
	}
	return nil
}

func (d *Debugger) cmdBacktrace(args []string) error {
	for i, f := range d.State.StackTrace() {
		d.Printf("#%d %s\n", i, f.String())
	}
	return nil
}

func (d *Debugger) cmdList(args []string) error {
	pc := d.State.GetReg(node.RegPC)
	idx, ok := d.State.CellIndexAt(pc)
	if !ok {
		d.Printf("PC=0x%08X (out of range)\n", pc)
		return nil
	}
	line := d.State.Memory[idx].Line
	const context = 3
	for l := line - context; l <= line+context; l++ {
		if l < 1 || l > len(d.State.Source) {
			continue
		}
		marker := "  "
		if l == line {
			marker = "->"
		}
		d.Printf("%s %4d  %s\n", marker, l, d.State.Source[l-1])
	}
	return nil
}

func (d *Debugger) cmdHelp(args []string) error {
	d.Println(`Commands:
  run, r                 start or resume execution (does not reset the machine)
  continue, c             resume execution
  step, s                 execute one instruction
  next, n                 step over a call
  break, b <addr|label>   set a breakpoint
  tbreak <addr|label>     set a temporary breakpoint
  delete, d [id]          delete breakpoint(s)
  enable/disable <id>     enable/disable a breakpoint
  info registers|flags|breakpoints
  print, p <reg|label>    show a register or memory word
  memory, x <addr> [n]    dump n words starting at addr
  backtrace, bt           show the call stack
  help, h                 show this message
  quit, q                 exit the debugger`)
	return nil
}

func registerIndex(name string) (int, bool) {
	switch name {
	case "sp", "SP":
		return node.RegSP, true
	case "lr", "LR":
		return node.RegLR, true
	case "pc", "PC":
		return node.RegPC, true
	}
	if len(name) >= 2 && (name[0] == 'r' || name[0] == 'R') {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 0 && n < 16 {
			return n, true
		}
	}
	return 0, false
}
