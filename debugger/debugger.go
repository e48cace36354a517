// Package debugger implements an interactive, breakpoint-aware front end
// for package machine, in both a line-oriented CLI and a tview-based TUI.
package debugger

import (
	"fmt"
	"strings"

	"github.com/tjbrennan/cm0asm/machine"
	"github.com/tjbrennan/cm0asm/node"
)

// StepMode selects how RunToStop advances the machine between prompts.
type StepMode int

const (
	StepNone StepMode = iota
	StepSingle
	StepOver
)

// Debugger wraps a machine.State with breakpoints, history, and a command
// dispatcher. Output goes to an internal buffer that the CLI/TUI front
// ends drain after each command.
type Debugger struct {
	State *machine.State

	Breakpoints *BreakpointManager
	History     *CommandHistory

	Running    bool
	StepMode   StepMode
	StepOverPC uint32

	LastCommand string
	Output      strings.Builder

	ExitCode int
	Stopped  bool
}

func New(s *machine.State) *Debugger {
	return &Debugger{
		State:       s,
		Breakpoints: NewBreakpointManager(),
		History:     NewCommandHistory(1000),
	}
}

func (d *Debugger) Printf(format string, args ...any) { fmt.Fprintf(&d.Output, format, args...) }
func (d *Debugger) Println(args ...any)               { fmt.Fprintln(&d.Output, args...) }

func (d *Debugger) GetOutput() string {
	s := d.Output.String()
	d.Output.Reset()
	return s
}

// ResolveAddress resolves a label or a 0x-prefixed/decimal literal to an
// address.
func (d *Debugger) ResolveAddress(s string) (uint32, error) {
	if addr, ok := d.State.LabelAddress(s); ok {
		return addr, nil
	}
	var addr uint32
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if _, err := fmt.Sscanf(s, "0x%x", &addr); err != nil {
			return 0, fmt.Errorf("invalid address: %s", s)
		}
		return addr, nil
	}
	if _, err := fmt.Sscanf(s, "%d", &addr); err != nil {
		return 0, fmt.Errorf("invalid address: %s", s)
	}
	return addr, nil
}

// ExecuteCommand parses and runs one debugger command line. An empty
// line repeats the last command, matching a shell-history-style REPL.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}
	if cmdLine == "" {
		return nil
	}

	fields := strings.Fields(cmdLine)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)
	case "info":
		return d.cmdInfo(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "memory", "x":
		return d.cmdMemory(args)
	case "backtrace", "bt":
		return d.cmdBacktrace(args)
	case "list", "l":
		return d.cmdList(args)
	case "help", "h":
		return d.cmdHelp(args)
	default:
		return fmt.Errorf("unknown command: %s (try 'help')", cmd)
	}
}

// ShouldBreak reports whether execution at the current PC should stop
// before the next instruction fires, and why.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.State.GetReg(node.RegPC)
	switch d.StepMode {
	case StepSingle:
		return true, "single step"
	case StepOver:
		if pc == d.StepOverPC {
			return true, "step over"
		}
	}
	if bp := d.Breakpoints.At(pc); bp != nil && bp.Enabled {
		if hit := d.Breakpoints.Hit(pc); hit != nil {
			return true, fmt.Sprintf("breakpoint %d", hit.ID)
		}
	}
	return false, ""
}

// RunToStop steps the machine, honoring breakpoints and step modes, until
// it halts, stops, or a break condition is hit. Called by both front ends
// after a run/continue/step/next command sets d.Running.
func (d *Debugger) RunToStop() {
	first := true
	for d.Running {
		if !first {
			if stop, reason := d.ShouldBreak(); stop {
				d.Running = false
				d.StepMode = StepNone
				d.Printf("Stopped: %s at PC=0x%08X\n", reason, d.State.GetReg(node.RegPC))
				return
			}
		}
		first = false

		outcome, err := machine.Step(d.State)
		switch outcome {
		case machine.Stopped:
			d.Running = false
			d.Stopped = true
			d.Println("Program stopped.")
			return
		case machine.Halted:
			d.Running = false
			d.Stopped = true
			d.Printf("Halted: %s\n", d.State.FormatError(err))
			return
		}
		if d.StepMode == StepSingle {
			d.Running = false
			d.StepMode = StepNone
			return
		}
	}
}
