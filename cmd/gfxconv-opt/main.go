// Command gfxconv-opt lowers AMDGPU raw buffer IR to ROCDL.
//
// Usage:
//
//	gfxconv-opt [options] [input]
//
// Examples:
//
//	gfxconv-opt kernel.mlir                         # Convert for gfx000, print IR
//	gfxconv-opt --chipset gfx90a kernel.mlir        # Convert for MI200
//	gfxconv-opt --emit llvm -o kernel.ll kernel.mlir
//	gfxconv-opt --config gfx1030.yaml --stats < kernel.mlir
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"github.com/tebeka/atexit"

	"github.com/gogpu/gfxconv"
	"github.com/gogpu/gfxconv/ir"
	"github.com/gogpu/gfxconv/llvmir"
	"github.com/gogpu/gfxconv/rewrite"
	"github.com/gogpu/gfxconv/syntax"
)

var (
	chipset  = flag.String("chipset", "gfx000", "target chipset, e.g. gfx908, gfx90a, gfx1030")
	emit     = flag.String("emit", "ir", "output form: ir or llvm")
	output   = flag.StringP("output", "o", "", "output file (default: stdout)")
	config   = flag.String("config", "", "YAML options file; flags given explicitly override it")
	validate = flag.Bool("verify", true, "verify IR before conversion")
	stats    = flag.Bool("stats", false, "print conversion statistics to stderr")
	trace    = flag.Bool("trace", false, "log every pattern application")
	version  = flag.Bool("version", false, "print version")
)

const gfxconvVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("gfxconv-opt version %s\n", gfxconvVersion)
		atexit.Exit(0)
	}

	level := slog.LevelWarn
	if *trace {
		level = rewrite.LevelTrace
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts, err := loadOptions()
	if err != nil {
		fail("Error reading options: %v", err)
	}
	opts.Logger = logger

	inputPath, source, err := readInput(flag.Args())
	if err != nil {
		fail("Error reading input: %v", err)
	}

	module, err := syntax.ParseFile(inputPath, string(source))
	if err != nil {
		var errs syntax.SourceErrors
		if errors.As(err, &errs) {
			fail("%s", errs.FormatAll())
		}
		var serr *syntax.SourceError
		if errors.As(err, &serr) {
			fail("%s", serr.FormatWithContext())
		}
		fail("Parse error: %v", err)
	}

	res, err := gfxconv.Convert(module, opts)
	if res != nil && *stats {
		printStats(os.Stderr, res)
	}
	if err != nil {
		if res != nil {
			for _, d := range res.Diagnostics {
				fmt.Fprintln(os.Stderr, d.Error())
			}
		}
		fail("Conversion failed: %v", err)
	}

	var text string
	switch *emit {
	case "ir":
		text = ir.Print(module)
	case "llvm":
		if text, err = llvmir.ExportString(module); err != nil {
			fail("LLVM IR export error: %v", err)
		}
	default:
		fail("Unknown --emit value %q (want ir or llvm)", *emit)
	}

	if err := writeOutput(text); err != nil {
		fail("Error writing output: %v", err)
	}
	atexit.Exit(0)
}

// loadOptions merges defaults, the config file and explicitly set flags.
func loadOptions() (gfxconv.Options, error) {
	opts := gfxconv.DefaultOptions()
	if *config != "" {
		f, err := os.Open(*config)
		if err != nil {
			return opts, err
		}
		defer f.Close()
		if opts, err = gfxconv.LoadOptions(f); err != nil {
			return opts, err
		}
	}
	if *config == "" || flag.CommandLine.Changed("chipset") {
		opts.Chipset = *chipset
	}
	if *config == "" || flag.CommandLine.Changed("verify") {
		opts.Validate = *validate
	}
	return opts, nil
}

func readInput(args []string) (string, []byte, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(os.Stdin)
		return "<stdin>", b, err
	}
	b, err := os.ReadFile(args[0])
	return args[0], b, err
}

func writeOutput(text string) error {
	if *output == "" {
		_, err := io.WriteString(os.Stdout, text)
		return err
	}
	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	atexit.Register(func() { _ = f.Close() })
	_, err = io.WriteString(f, text)
	return err
}

func printStats(w io.Writer, res *rewrite.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Conversion statistics")
	t.AppendHeader(table.Row{"Op", "Converted", "Failed"})

	var names []string
	for n := range res.Converted {
		names = append(names, n)
	}
	for n := range res.Failed {
		if _, ok := res.Converted[n]; !ok {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	for _, n := range names {
		t.AppendRow(table.Row{n, res.Converted[n], res.Failed[n]})
	}
	t.AppendFooter(table.Row{"diagnostics", len(res.Diagnostics), len(res.Diagnostics.Errors())})
	t.Render()
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	atexit.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: gfxconv-opt [options] [input]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  gfxconv-opt kernel.mlir                     Convert to stdout\n")
	fmt.Fprintf(os.Stderr, "  gfxconv-opt --chipset gfx1030 kernel.mlir   Convert for RDNA\n")
	fmt.Fprintf(os.Stderr, "  gfxconv-opt --emit llvm -o k.ll kernel.mlir Emit LLVM IR\n")
}
