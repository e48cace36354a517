package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// RunCLI runs the line-oriented debugger REPL on stdin/stdout.
func RunCLI(d *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(cm0asm-dbg) ")

		if !scanner.Scan() {
			break
		}
		cmdLine := strings.TrimSpace(scanner.Text())

		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := d.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
		if out := d.GetOutput(); out != "" {
			fmt.Print(out)
		}

		if d.Running {
			d.RunToStop()
			if out := d.GetOutput(); out != "" {
				fmt.Print(out)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	return nil
}

// RunTUI runs the tview-based debugger screen.
func RunTUI(d *Debugger) error {
	tui := NewTUI(d)
	return tui.Run()
}
