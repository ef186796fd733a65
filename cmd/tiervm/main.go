package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/tiervm/internal/code"
	"github.com/funvibe/tiervm/internal/config"
	"github.com/funvibe/tiervm/internal/diagnostics"
	"github.com/funvibe/tiervm/internal/nexus"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/samples"
	"github.com/funvibe/tiervm/internal/vm"
)

const usage = `Usage:
  tiervm list                         list the sample programs
  tiervm run [flags] <sample>...      run samples, "all" runs every one
  tiervm disasm [flags] <sample>      run a sample, then print its code
  tiervm fuzz [flags]                 compare tiers on generated functions

Flags:
`

// useColor is decided once: a terminal on stdout and NO_COLOR unset.
var useColor = func() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}()

func colorize(code, s string) string {
	if !useColor {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func bold(s string) string  { return colorize("1", s) }
func green(s string) string { return colorize("32", s) }
func red(s string) string   { return colorize("31", s) }

type options struct {
	configPath string
	trace      bool
	parallel   bool
	threshold  int64
	seed       int64
	count      int
}

func parseFlags(name string, args []string) (*options, []string) {
	opts := &options{}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to tiervm.yaml (default: searched from the working directory)")
	fs.BoolVar(&opts.trace, "trace", false, "log tier transitions")
	fs.BoolVar(&opts.parallel, "parallel", false, "run samples concurrently")
	fs.Int64Var(&opts.threshold, "threshold", 0, "override compile_threshold")
	fs.Int64Var(&opts.seed, "seed", 1, "fuzz: first seed")
	fs.IntVar(&opts.count, "count", 100, "fuzz: number of generated functions")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)
	return opts, fs.Args()
}

func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadConfig(opts.configPath)
	} else {
		cfg, err = config.Resolve(".")
	}
	if err != nil {
		return nil, err
	}
	if opts.trace {
		cfg.Trace = true
	}
	if opts.threshold > 0 {
		cfg.CompileThreshold = opts.threshold
	}
	return cfg, nil
}

func formatCall(name string, args []object.Object) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Inspect()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

// runSample builds s on a fresh runtime and calls it with every input.
func runSample(w io.Writer, cfg *config.Config, s samples.Sample) (*nexus.Function, error) {
	rt := nexus.New(cfg)
	if cfg.Trace {
		rt.SetLogger(log.New(w, "  trace: ", 0))
	}
	fn, err := s.Build(rt)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "%s  %s\n", bold("== "+s.Name), s.Description)
	for i, in := range s.Inputs {
		if s.Before != nil {
			if err := s.Before(i); err != nil {
				return nil, err
			}
		}
		res, err := fn.Invoke(in...)
		tier := fn.State().String()
		if err != nil {
			fmt.Fprintf(w, "  %s -> %s [%s]\n", formatCall(s.Name, in), red(err.Error()), tier)
			continue
		}
		fmt.Fprintf(w, "  %s = %s [%s]\n", formatCall(s.Name, in), green(res.Inspect()), tier)
	}

	st := fn.Stats()
	fmt.Fprintf(w, "  %s invocations, %d compilations, %d failures, %d deopts",
		humanize.Comma(st.Invocations), st.Compilations, st.CompileFailures, st.Deopts)
	if st.ProgramSize > 0 {
		fmt.Fprintf(w, ", program %s", humanize.Bytes(uint64(st.ProgramSize)))
	}
	if st.InterpretOnly {
		fmt.Fprint(w, ", interpret-only")
	}
	fmt.Fprintln(w)
	return fn, nil
}

func selectSamples(names []string) ([]samples.Sample, error) {
	if len(names) == 1 && names[0] == "all" {
		names = samples.Names()
	}
	out := make([]samples.Sample, 0, len(names))
	for _, name := range names {
		s, err := samples.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func handleList() {
	for _, name := range samples.Names() {
		s, _ := samples.Get(name)
		fmt.Printf("%-8s %s\n", name, s.Description)
	}
}

func handleRun(args []string) {
	opts, names := parseFlags("run", args)
	if len(names) == 0 {
		names = []string{"all"}
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		log.Fatalf("Error: %s", err)
	}
	list, err := selectSamples(names)
	if err != nil {
		log.Fatalf("Error: %s", err)
	}

	if !opts.parallel {
		for _, s := range list {
			if _, err := runSample(os.Stdout, cfg, s); err != nil {
				log.Fatalf("Error: %s: %s", s.Name, err)
			}
		}
		return
	}

	outputs := make([]bytes.Buffer, len(list))
	var g errgroup.Group
	for i, s := range list {
		i, s := i, s
		g.Go(func() error {
			if _, err := runSample(&outputs[i], cfg, s); err != nil {
				return fmt.Errorf("%s: %w", s.Name, err)
			}
			return nil
		})
	}
	err = g.Wait()
	for i := range outputs {
		os.Stdout.Write(outputs[i].Bytes())
	}
	if err != nil {
		log.Fatalf("Error: %s", err)
	}
}

func handleDisasm(args []string) {
	opts, names := parseFlags("disasm", args)
	if len(names) != 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		log.Fatalf("Error: %s", err)
	}
	s, err := samples.Get(names[0])
	if err != nil {
		log.Fatalf("Error: %s", err)
	}
	fn, err := runSample(os.Stdout, cfg, s)
	if err != nil {
		log.Fatalf("Error: %s", err)
	}

	fmt.Println()
	fmt.Print(code.Print(fn.Code()))
	fmt.Println()
	fmt.Println(bold("profile: ") + fn.Profile().String())
	if fn.Program() == nil && !fn.InterpretOnly() {
		if err := fn.ForceCompile(); err != nil {
			log.Fatalf("Error: %s", err)
		}
	}
	if p := fn.Program(); p != nil {
		fmt.Println()
		fmt.Print(vm.Disassemble(p))
	}
}

// fuzzOutcome runs one generated function twice over its inputs.
func fuzzOutcome(seed int64, cfg *config.Config) (string, []string, error) {
	g := samples.NewGenerator(seed)
	fn, err := g.Function(nexus.New(cfg), "gen")
	if err != nil {
		return "", nil, err
	}
	inputs := g.Inputs(4)
	var out []string
	for round := 0; round < 2; round++ {
		for _, in := range inputs {
			res, err := fn.Invoke(in...)
			if err != nil {
				out = append(out, diagnostics.KindOf(err)+": "+err.Error())
				continue
			}
			out = append(out, res.Inspect())
		}
	}
	return fn.Body().String(), out, nil
}

func handleFuzz(args []string) {
	opts, _ := parseFlags("fuzz", args)
	tree := config.Default()
	tree.Interpreter = config.InterpreterTree
	tree.CompileThreshold = 1 << 40
	tiered := config.Default()
	tiered.RecompileAfterDeopts = 1

	results := make([]string, opts.count)
	var g errgroup.Group
	for i := 0; i < opts.count; i++ {
		seed := opts.seed + int64(i)
		i := i
		g.Go(func() error {
			body, want, err := fuzzOutcome(seed, tree)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			_, got, err := fuzzOutcome(seed, tiered)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			if strings.Join(got, " ") != strings.Join(want, " ") {
				results[i] = fmt.Sprintf("seed %d: %s\n  tree:   %v\n  tiered: %v", seed, body, want, got)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Error: %s", err)
	}

	mismatches := 0
	for _, r := range results {
		if r != "" {
			mismatches++
			fmt.Println(red(r))
		}
	}
	fmt.Printf("%s functions, %d mismatches\n", humanize.Comma(int64(opts.count)), mismatches)
	if mismatches > 0 {
		os.Exit(1)
	}
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	switch os.Args[1] {
	case "list":
		handleList()
	case "run":
		handleRun(os.Args[2:])
	case "disasm":
		handleDisasm(os.Args[2:])
	case "fuzz":
		handleFuzz(os.Args[2:])
	case "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
}
