package debugger

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/tjbrennan/cm0asm/node"
)

// TUI is the tview-based screen: source+registers+stack panels over a
// scrolling output log and a command line.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	SourceView   *tview.TextView
	RegisterView *tview.TextView
	StackView    *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField
}

func NewTUI(d *Debugger) *TUI {
	t := &TUI{Debugger: d, App: tview.NewApplication()}
	t.initializeViews()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) layout() tview.Primitive {
	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 8, 0, false).
		AddItem(t.StackView, 0, 1, false)

	content := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(t.SourceView, 0, 2, false).
		AddItem(right, 0, 1, false)

	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(content, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF10:
			t.executeCommand("next")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd == "" {
		return
	}
	if cmd == "quit" || cmd == "q" {
		t.App.Stop()
		return
	}
	t.executeCommand(cmd)
	t.CommandInput.SetText("")
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()
	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()
	if err != nil {
		t.writeOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.writeOutput(output)
	}
	if t.Debugger.Running {
		t.Debugger.RunToStop()
		t.writeOutput(t.Debugger.GetOutput())
	}
	t.refreshAll()
}

func (t *TUI) writeOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

func (t *TUI) refreshAll() {
	t.updateSourceView()
	t.updateRegisterView()
	t.updateStackView()
	t.App.Draw()
}

func (t *TUI) updateSourceView() {
	t.SourceView.Clear()
	s := t.Debugger.State
	pc := s.GetReg(node.RegPC)
	idx, ok := s.CellIndexAt(pc)
	if !ok {
		fmt.Fprint(t.SourceView, "[yellow]PC out of range[white]")
		return
	}
	line := s.Memory[idx].Line
	const context = 8
	for l := line - context; l <= line+context; l++ {
		if l < 1 || l > len(s.Source) {
			continue
		}
		if l == line {
			fmt.Fprintf(t.SourceView, "[yellow]-> %4d  %s[white]\n", l, s.Source[l-1])
		} else {
			fmt.Fprintf(t.SourceView, "   %4d  %s\n", l, s.Source[l-1])
		}
	}
}

func (t *TUI) updateRegisterView() {
	t.RegisterView.Clear()
	s := t.Debugger.State
	for i := 0; i < 16; i += 2 {
		fmt.Fprintf(t.RegisterView, "R%-2d=%08X  R%-2d=%08X\n", i, s.GetReg(i), i+1, s.GetReg(i+1))
	}
	f := s.GetFlags()
	fmt.Fprintf(t.RegisterView, "N=%v Z=%v C=%v V=%v\n", f.N, f.Z, f.C, f.V)
}

func (t *TUI) updateStackView() {
	t.StackView.Clear()
	for i, f := range t.Debugger.State.StackTrace() {
		fmt.Fprintf(t.StackView, "#%d %s\n", i, f.String())
	}
}

func (t *TUI) Run() error {
	t.refreshAll()
	return t.App.SetRoot(t.layout(), true).SetFocus(t.CommandInput).Run()
}
