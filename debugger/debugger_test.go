package debugger

import (
	"strconv"
	"strings"
	"testing"

	"github.com/tjbrennan/cm0asm/machine"
	"github.com/tjbrennan/cm0asm/node"
)

func newTestDebugger(t *testing.T, source string) *Debugger {
	t.Helper()
	s, diags := machine.Parse("test.s", source, 256, "_start")
	if diags != nil {
		t.Fatalf("unexpected parse error: %v", diags)
	}
	return New(s)
}

const loopSource = "_start:\nMOV R0, #0\nloop: ADD R0, R0, #1\nCMP R0, #3\nBNE loop\n"

func TestDebuggerBreakAndContinue(t *testing.T) {
	d := newTestDebugger(t, loopSource)

	addr, ok := d.State.LabelAddress("loop")
	if !ok {
		t.Fatal("label loop not found")
	}
	if err := d.cmdBreak([]string{"loop"}); err != nil {
		t.Fatalf("break failed: %v", err)
	}

	d.Running = true
	d.RunToStop()

	if d.State.GetReg(node.RegPC) != addr {
		t.Errorf("expected PC=0x%08X at breakpoint, got 0x%08X", addr, d.State.GetReg(node.RegPC))
	}
	if bp := d.Breakpoints.At(addr); bp == nil || bp.HitCount != 1 {
		t.Errorf("expected one hit at loop, got %+v", bp)
	}
}

func TestDebuggerStepSingle(t *testing.T) {
	d := newTestDebugger(t, loopSource)

	startPC := d.State.GetReg(node.RegPC)
	if err := d.cmdStep(nil); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	d.RunToStop()

	if d.State.GetReg(node.RegPC) == startPC {
		t.Error("expected PC to advance after a single step")
	}
	if d.Running {
		t.Error("expected Running to clear after one step")
	}
}

func TestDebuggerRunToCompletion(t *testing.T) {
	d := newTestDebugger(t, loopSource)

	d.Running = true
	d.RunToStop()

	if d.State.GetReg(0) != 3 {
		t.Errorf("expected R0=3, got %d", d.State.GetReg(0))
	}
}

func TestDebuggerDisabledBreakpointIsSkipped(t *testing.T) {
	d := newTestDebugger(t, loopSource)

	if err := d.cmdBreak([]string{"loop"}); err != nil {
		t.Fatalf("break failed: %v", err)
	}
	bps := d.Breakpoints.All()
	if len(bps) != 1 {
		t.Fatalf("expected 1 breakpoint, got %d", len(bps))
	}

	if err := d.cmdDisable([]string{strconv.Itoa(bps[0].ID)}); err != nil {
		t.Fatalf("disable failed: %v", err)
	}

	d.Running = true
	d.RunToStop()
	if d.State.GetReg(0) != 3 {
		t.Errorf("expected run to complete past a disabled breakpoint, got R0=%d", d.State.GetReg(0))
	}
}

func TestDebuggerExecuteCommandRepeatsLastOnEmpty(t *testing.T) {
	d := newTestDebugger(t, loopSource)

	if err := d.ExecuteCommand("info registers"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.GetOutput()

	if err := d.ExecuteCommand(""); err != nil {
		t.Fatalf("unexpected error on repeat: %v", err)
	}
	if !strings.Contains(d.GetOutput(), "R0 =") {
		t.Error("expected repeated 'info registers' output")
	}
}

func TestDebuggerPrintRegister(t *testing.T) {
	d := newTestDebugger(t, loopSource)

	if err := d.cmdPrint([]string{"pc"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(d.GetOutput(), "pc = ") {
		t.Error("expected print output to name the register")
	}
}
