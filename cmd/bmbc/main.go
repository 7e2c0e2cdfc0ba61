// Command bmbc is the BMB compiler driver (spec.md §6.2): compile, check,
// and verify subcommands over a single source file, wired to
// internal/pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/sunholo/bmb/internal/errors"
	"github.com/sunholo/bmb/internal/pipeline"
)

// newFlagSet builds a per-subcommand flag.FlagSet (SPEC_FULL.md §10.3:
// the command surface is small and stable enough that flag.NewFlagSet per
// subcommand is sufficient, matching the corpus's own choice over a
// heavier CLI framework).
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

var (
	Version = "dev"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printHelp()
		return 1
	}

	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	command := args[0]
	rest := args[1:]

	switch command {
	case "compile":
		return cmdCompile(rest)
	case "check":
		return cmdCheck(rest)
	case "verify":
		return cmdVerify(rest)
	case "version":
		fmt.Printf("bmbc %s\n", bold(Version))
		return 0
	case "help", "-h", "--help":
		printHelp()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), command)
		printHelp()
		return 2
	}
}

func printHelp() {
	fmt.Println(bold("bmbc - the BMB compiler"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s <input.bmb> <output.ll> [flags]   compile to LLVM IR\n", cyan("bmbc compile"))
	fmt.Printf("  %s <input.bmb> [flags]                stop after type checking\n", cyan("bmbc check"))
	fmt.Printf("  %s <input.bmb> [flags]                stop after verification\n", cyan("bmbc verify"))
	fmt.Println()
	fmt.Println("Flags (compile/check/verify):")
	fmt.Println("  --solver-timeout-ms N   solver wall-clock timeout per query (default 5000)")
	fmt.Println("  --no-verify             skip contract verification (development only)")
	fmt.Println("  --json                  emit diagnostics as JSON instead of text")
	fmt.Println("  --no-color              disable colored terminal output")
	fmt.Println("  --emit-mir              dump MIR text before LLVM emission")
	fmt.Println("  --watch                 (check/verify only) re-run on each interactive input line")
}

type commonFlags struct {
	solverTimeoutMs int
	noVerify        bool
	jsonOut         bool
	noColor         bool
	emitMIR         bool
	watch           bool
}

func parseCommon(name string, args []string) (*commonFlags, []string) {
	fs := newFlagSet(name)
	f := &commonFlags{}
	fs.IntVar(&f.solverTimeoutMs, "solver-timeout-ms", 5000, "solver wall-clock timeout per query")
	fs.BoolVar(&f.noVerify, "no-verify", false, "skip contract verification")
	fs.BoolVar(&f.jsonOut, "json", false, "emit diagnostics as JSON")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored terminal output")
	fs.BoolVar(&f.emitMIR, "emit-mir", false, "dump MIR text before LLVM emission")
	fs.BoolVar(&f.watch, "watch", false, "re-run on each interactive input line")
	_ = fs.Parse(args)
	if f.noColor {
		color.NoColor = true
	}
	return f, fs.Args()
}

func buildConfig(f *commonFlags) pipeline.Config {
	return pipeline.Config{
		SolverTimeout: time.Duration(f.solverTimeoutMs) * time.Millisecond,
		NoVerify:      f.noVerify,
		EmitMIR:       f.emitMIR,
	}
}

func cmdCompile(args []string) int {
	f, pos := parseCommon("compile", args)
	if len(pos) < 2 {
		fmt.Fprintf(os.Stderr, "%s: usage: bmbc compile <input.bmb> <output.ll>\n", red("Error"))
		return 2
	}
	input, output := pos[0], pos[1]

	res, err := pipeline.New(buildConfig(f)).CompileFiles(context.Background(), []string{input})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return 2
	}

	printDiagnostics(res.Sink, f.jsonOut)
	if res.Sink.HasErrors() {
		return 1
	}

	if f.emitMIR {
		fmt.Fprint(os.Stderr, res.MIRText)
	}

	if output == "-" {
		fmt.Print(res.IR)
		return 0
	}
	if err := os.WriteFile(output, []byte(res.IR), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "%s: writing %s: %v\n", red("Error"), output, err)
		return 2
	}
	fmt.Printf("%s wrote %s\n", green("✓"), output)
	return 0
}

func cmdCheck(args []string) int {
	f, pos := parseCommon("check", args)
	if len(pos) < 1 {
		fmt.Fprintf(os.Stderr, "%s: usage: bmbc check <input.bmb>\n", red("Error"))
		return 2
	}
	f.noVerify = true
	if f.watch {
		return watchLoop(f, pos[0])
	}
	return checkOrVerifyOnce(f, pos[0])
}

func cmdVerify(args []string) int {
	f, pos := parseCommon("verify", args)
	if len(pos) < 1 {
		fmt.Fprintf(os.Stderr, "%s: usage: bmbc verify <input.bmb>\n", red("Error"))
		return 2
	}
	if f.watch {
		return watchLoop(f, pos[0])
	}
	return checkOrVerifyOnce(f, pos[0])
}

func checkOrVerifyOnce(f *commonFlags, input string) int {
	res, err := pipeline.New(buildConfig(f)).CompileFiles(context.Background(), []string{input})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return 2
	}
	printDiagnostics(res.Sink, f.jsonOut)
	if res.Sink.HasErrors() {
		return 1
	}
	fmt.Printf("%s no errors\n", green("✓"))
	return 0
}

// watchLoop implements the optional interactive development mode
// (SPEC_FULL.md §11, grounded in the corpus's own REPL use of liner):
// each line read from the prompt replaces the input file's contents and
// re-runs the pipeline, so a developer can iterate on one function's
// contracts without leaving the terminal.
func watchLoop(f *commonFlags, input string) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Printf("%s watching %s (Ctrl-D to exit)\n", cyan("▸"), input)
	for {
		text, err := line.Prompt("bmbc> ")
		if err != nil {
			fmt.Println()
			return 0
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		line.AppendHistory(text)

		if err := os.WriteFile(input, []byte(text+"\n"), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			continue
		}
		checkOrVerifyOnce(f, input)
	}
}

func printDiagnostics(sink *errors.Sink, jsonOut bool) {
	for _, r := range sink.Reports() {
		if jsonOut {
			text, err := r.ToJSON(false)
			if err != nil {
				continue
			}
			fmt.Fprintln(os.Stderr, text)
			continue
		}
		fmt.Fprintln(os.Stderr, colorizeSeverity(r))
	}
}

func colorizeSeverity(r *errors.Report) string {
	switch r.Severity {
	case errors.SevError:
		return red(r.String())
	case errors.SevWarning:
		return yellow(r.String())
	default:
		return cyan(r.String())
	}
}
