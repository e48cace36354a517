// Command cm0asm assembles and runs Cortex-M0 assembly source files.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tjbrennan/cm0asm/config"
	"github.com/tjbrennan/cm0asm/debugger"
	"github.com/tjbrennan/cm0asm/machine"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in debugger mode")
		tuiMode     = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		maxSteps    = flag.Uint64("max-steps", cfg.Execution.MaxSteps, "Maximum instructions before halt")
		stackSize   = flag.Uint("stack-size", cfg.Execution.DefaultStackSize, "Stack size in bytes")
		startLabel  = flag.String("entry", cfg.Execution.DefaultStartLabel, "Start label")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
		enableTrace = flag.Bool("trace", cfg.Execution.EnableTrace, "Enable execution trace")
		traceFile   = flag.String("trace-file", "", "Trace output file (default: trace.log in log dir)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("cm0asm %s (%s)\n", Version, Commit)
		os.Exit(0)
	}
	if *showHelp || flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	asmFile := flag.Arg(0)
	src, err := os.ReadFile(asmFile) // #nosec G304 -- user-specified assembly file path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Parsing %s...\n", asmFile)
	}

	state, diags := machine.Parse(asmFile, string(src), uint32(*stackSize), *startLabel)
	if diags != nil {
		fmt.Fprintln(os.Stderr, "Parse error:")
		fmt.Fprintln(os.Stderr, diags.Error())
		os.Exit(1)
	}
	state.Stdout = os.Stdout

	if *enableTrace {
		path := *traceFile
		if path == "" {
			path = config.GetLogPath() + string(os.PathSeparator) + "trace.log"
		}
		f, err := os.Create(path) // #nosec G304 -- user-specified trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		state.Trace = machine.NewTrace(f)
		state.Trace.MaxEntries = cfg.Trace.MaxEntries
		if *verboseMode {
			fmt.Printf("Execution trace enabled: %s\n", path)
		}
	}

	if *debugMode || *tuiMode {
		dbg := debugger.New(state)
		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Println("cm0asm debugger - type 'help' for commands")
			if err := debugger.RunCLI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	runErr := runWithLimit(state, *maxSteps)
	if state.Trace != nil {
		if err := state.Trace.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing trace: %v\n", err)
		}
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", state.FormatError(runErr))
		os.Exit(1)
	}
	os.Exit(0)
}

// runWithLimit steps the machine until it stops, a fatal error aborts
// it, or maxSteps instructions have retired.
func runWithLimit(s *machine.State, maxSteps uint64) error {
	for i := uint64(0); maxSteps == 0 || i < maxSteps; i++ {
		outcome, err := machine.Step(s)
		switch outcome {
		case machine.Stopped:
			return nil
		case machine.Halted:
			return err
		}
	}
	return fmt.Errorf("exceeded max-steps (%d) without stopping", maxSteps)
}

func printHelp() {
	fmt.Printf(`cm0asm %s

Usage: cm0asm [options] <assembly-file>

Options:
  -help              Show this help message
  -version           Show version information
  -debug             Start in debugger mode (CLI)
  -tui               Start in TUI debugger mode
  -max-steps N       Maximum instructions before halt (default: %d)
  -stack-size N      Stack size in bytes (default: %d)
  -entry LABEL       Start label (default: %s)
  -verbose           Enable verbose output
  -trace             Enable execution trace
  -trace-file FILE   Trace output file (default: trace.log in log dir)

Examples:
  cm0asm examples/hello.s
  cm0asm -debug examples/hello.s
  cm0asm -tui -stack-size 4096 examples/hello.s
`, Version, config.DefaultConfig().Execution.MaxSteps,
		config.DefaultConfig().Execution.DefaultStackSize,
		config.DefaultConfig().Execution.DefaultStartLabel)
}
