// Package checker defines the implementation of the checker commands.
// The same code drives the single-analysis driver that is
// conventionally provided for convenience along with each analysis
// package, and the test driver.
package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eller86/findbugs-slf4j/jvm/analysis"
	tracefile "github.com/eller86/findbugs-slf4j/jvm/analysis/internal/trace"
	"github.com/eller86/findbugs-slf4j/jvm/bytecode"
	"github.com/eller86/findbugs-slf4j/jvm/bytecode/inspector"
)

var (
	JSON = false

	// Debug is a set of single-letter flags:
	//
	//	p	disable [p]arallel execution of analyses
	//	s	do additional [s]anity checks on finding serialization
	//	t	show [t]iming info (NB: use 'p' flag to avoid GC/scheduler noise)
	//	v	show [v]erbose logging
	//
	Debug = ""

	Context = -1 // if >=0, display offending instruction plus this many instructions of context

	// Log files for optional performance tracing.
	CPUProfile, MemProfile, Trace string

	// Stdout and Stderr receive findings and errors respectively.
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// logger is replaced at the start of Run according to Debug.
var logger = zap.NewNop()

// RegisterFlags registers command-line flags used the analysis driver.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&JSON, "json", JSON, "emit JSON output")
	fs.StringVar(&Debug, "debug", Debug, `debug flags, any subset of "pstv"`)
	fs.IntVarP(&Context, "context", "c", Context, `display offending instruction with this many instructions of context`)

	fs.StringVar(&CPUProfile, "cpuprofile", "", "write CPU profile to this file")
	fs.StringVar(&MemProfile, "memprofile", "", "write memory profile to this file")
	fs.StringVar(&Trace, "trace", "", "write trace log to this file")
}

// Run loads the classes described by the trace files in args,
// then applies the specified analyses to them.
// Analysis flags must already have been set.
// It provides most of the logic for the main function of the
// singlechecker command.
func Run(args []string, analyses []*analysis.Analysis) (err error) {
	logger, err = newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if CPUProfile != "" {
		f, err := os.Create(CPUProfile)
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		// NB: profile won't be written in case of error.
		defer pprof.StopCPUProfile()
	}

	if Trace != "" {
		f, err := os.Create(Trace)
		if err != nil {
			return err
		}
		if err := trace.Start(f); err != nil {
			return err
		}
		// NB: trace log won't be written in case of error.
		defer func() {
			trace.Stop()
			logger.Info("to view the trace, run: go tool trace " + Trace)
		}()
	}

	if MemProfile != "" {
		f, err := os.Create(MemProfile)
		if err != nil {
			return err
		}
		// NB: memprofile won't be written in case of error.
		defer func() {
			runtime.GC() // get up-to-date statistics
			if werr := pprof.WriteHeapProfile(f); werr != nil && err == nil {
				err = fmt.Errorf("writing memory profile: %w", werr)
			}
			f.Close()
		}()
	}

	// Load the classes.
	logger.Debug("load", zap.Strings("files", args))
	prog, err := Load(args)
	if err != nil {
		return err
	}

	roots := analyze(prog, analyses)

	// Print the results.
	printFindings(prog, roots)

	return nil
}

func newLogger() (*zap.Logger, error) {
	if !dbg('v') && !dbg('t') {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// Load decodes the trace files concurrently and assembles them into
// one program, in argument order.
func Load(filenames []string) (*bytecode.Program, error) {
	if len(filenames) == 0 {
		return nil, fmt.Errorf("no trace files given")
	}
	perFile := make([][]*bytecode.Class, len(filenames))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, filename := range filenames {
		i, filename := i, filename
		g.Go(func() error {
			f, err := tracefile.Load(filename)
			if err != nil {
				return err
			}
			classes, err := f.Build()
			if err != nil {
				return fmt.Errorf("%s: %w", filename, err)
			}
			perFile[i] = classes
			logger.Debug("loaded", zap.String("file", filename), zap.Int("classes", len(classes)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var classes []*bytecode.Class
	seen := make(map[string]string)
	for i, cs := range perFile {
		for _, c := range cs {
			if prev, dup := seen[c.Name]; dup {
				return nil, fmt.Errorf("class %s defined in both %s and %s", c.Name, prev, filenames[i])
			}
			seen[c.Name] = filenames[i]
			classes = append(classes, c)
		}
	}
	return bytecode.NewProgram(classes), nil
}

// Analyze applies an analysis to one class of a program and returns
// the resulting unit.
//
// It is exposed for use in testing.
func Analyze(prog *bytecode.Program, class *bytecode.Class, a *analysis.Analysis) (*analysis.Unit, error) {
	act := analyzeClasses(prog, []*bytecode.Class{class}, []*analysis.Analysis{a})[0]
	return act.unit, act.err
}

func analyze(prog *bytecode.Program, analyses []*analysis.Analysis) []*action {
	return analyzeClasses(prog, prog.Classes, analyses)
}

func analyzeClasses(prog *bytecode.Program, classes []*bytecode.Class, analyses []*analysis.Analysis) []*action {
	// Construct the action graph.
	logger.Debug("building graph of analysis units",
		zap.Int("classes", len(classes)), zap.Int("analyses", len(analyses)))

	// Each graph node (action) is one unit of analysis.
	// Edges express analysis-to-analysis dependencies within a class.
	type key struct {
		*analysis.Analysis
		*bytecode.Class
	}
	actions := make(map[key]*action)

	var mkAction func(a *analysis.Analysis, c *bytecode.Class) *action
	mkAction = func(a *analysis.Analysis, c *bytecode.Class) *action {
		k := key{a, c}
		act, ok := actions[k]
		if !ok {
			act = &action{a: a, class: c, prog: prog}

			// Add a dependency on each required analyses.
			for _, req := range a.Requires {
				act.deps = append(act.deps, mkAction(req, c))
			}

			actions[k] = act
		}
		return act
	}

	// Build nodes for the classes.
	var roots []*action
	for _, a := range analyses {
		for _, c := range classes {
			root := mkAction(a, c)
			root.isroot = true
			roots = append(roots, root)
		}
	}

	// Execute the graph in parallel.
	execAll(roots)

	return roots
}

// printFindings prints the findings for the root actions in either
// plain text or JSON format. Errors of required analyses surface as
// failed prerequisites of the roots.
func printFindings(prog *bytecode.Program, roots []*action) {
	// Gather findings per analysis, in position order.
	sinks := make(map[*analysis.Analysis]*analysis.Sink)
	var names []*analysis.Analysis
	var failed []*action
	for _, act := range roots {
		if sinks[act.a] == nil {
			sinks[act.a] = new(analysis.Sink)
			names = append(names, act.a)
		}
		if act.err != nil {
			failed = append(failed, act)
		}
		if act.unit != nil {
			sinks[act.a].Add(act.unit.Findings...)
		}
	}

	if JSON {
		type jsonFinding struct {
			Category string            `json:"category,omitempty"`
			Severity analysis.Severity `json:"severity"`
			Posn     string            `json:"posn"`
			Message  string            `json:"message"`
			Called   string            `json:"called,omitempty"`
			Payload  interface{}       `json:"payload,omitempty"`
		}
		type jsonResult struct {
			Err      string        `json:"error,omitempty"`
			Findings []jsonFinding `json:"findings,omitempty"`
		}
		tree := make(map[string]map[string]*jsonResult) // class -> analysis -> result
		result := func(class string, a *analysis.Analysis) *jsonResult {
			m, ok := tree[class]
			if !ok {
				m = make(map[string]*jsonResult)
				tree[class] = m
			}
			r, ok := m[a.Name]
			if !ok {
				r = new(jsonResult)
				m[a.Name] = r
			}
			return r
		}
		for _, a := range names {
			for _, f := range sinks[a].Findings() {
				r := result(f.Pos.Class, a)
				r.Findings = append(r.Findings, jsonFinding{
					Category: f.Category,
					Severity: f.Severity,
					Posn:     f.Pos.String(),
					Message:  f.Message,
					Called:   f.Called,
					Payload:  f.Payload,
				})
			}
		}
		for _, act := range failed {
			result(act.class.Name, act.a).Err = act.err.Error()
		}

		data, err := json.MarshalIndent(tree, "", "\t")
		if err != nil {
			logger.Panic("internal error: JSON marshalling failed", zap.Error(err))
		}
		Stdout.Write(data)
		fmt.Fprintln(Stdout)
	} else {
		// plain text output

		// De-duplicate findings by position, in case a host emitted
		// the same class twice under different trace files.
		type key struct {
			bytecode.Pos
			*analysis.Analysis
			message, class string
		}
		seen := make(map[key]bool)
		var inspect *inspector.Inspector

		for _, act := range failed {
			fmt.Fprintf(Stderr, "%s: %v\n", act.a.Name, act.err)
		}
		for _, a := range names {
			for _, f := range sinks[a].Findings() {
				class := a.Name
				if f.Category != "" {
					class += "." + f.Category
				}

				k := key{f.Pos, a, f.Message, class}
				if seen[k] {
					continue // duplicate
				}
				seen[k] = true

				severityColor(f.Severity).Fprintf(Stdout, "%s: [%s] %s\n", f.Pos, class, f.Message)

				// -c=0: show offending instruction in context.
				if Context >= 0 {
					if inspect == nil {
						inspect = inspector.New(prog.Classes)
					}
					printContext(inspect, f.Pos)
				}
			}
		}
	}

	// Print timing info.
	if dbg('t') {
		if !dbg('p') {
			logger.Warn("times are mostly GC/scheduler noise; use -debug=tp to disable parallelism")
		}
		var all []*action
		var total time.Duration
		visited := make(map[*action]bool)
		var visit func(acts []*action)
		visit = func(acts []*action) {
			for _, act := range acts {
				if !visited[act] {
					visited[act] = true
					visit(act.deps)
					all = append(all, act)
					total += act.duration
				}
			}
		}
		visit(roots)
		sort.Slice(all, func(i, j int) bool {
			return all[i].duration > all[j].duration
		})

		// Print actions accounting for 90% of the total.
		var sum time.Duration
		for _, act := range all {
			fmt.Fprintf(Stderr, "%s\t%s\n", act.duration, act)
			sum += act.duration
			if sum >= total*9/10 {
				break
			}
		}
	}
}

var (
	highColor   = color.New(color.FgRed, color.Bold)
	normalColor = color.New(color.FgYellow)
	lowColor    = color.New(color.Reset)
)

func severityColor(s analysis.Severity) *color.Color {
	switch s {
	case analysis.High:
		return highColor
	case analysis.Normal:
		return normalColor
	}
	return lowColor
}

// printContext prints the instruction at pos with Context instructions
// on either side.
func printContext(inspect *inspector.Inspector, pos bytecode.Pos) {
	inspect.OpcodesWithContext(nil, func(c *bytecode.Class, m *bytecode.Method, code []*bytecode.Instruction, i int) bool {
		if c.Name != pos.Class || m.Name != pos.Method || m.Desc != pos.MethodDesc {
			return false // skip the rest of this method
		}
		if code[i].PC != pos.PC {
			return true
		}
		for j := i - Context; j <= i+Context; j++ {
			if 0 <= j && j < len(code) {
				mark := " "
				if j == i {
					mark = ">"
				}
				fmt.Fprintf(Stdout, "%s\t%s\n", mark, code[j])
			}
		}
		return false
	})
}

// An action represents one unit of analysis work: the application of
// one analysis to one class. Actions form a DAG within a class, as
// different analyses are applied, either in sequence or parallel.
type action struct {
	once     sync.Once
	a        *analysis.Analysis
	class    *bytecode.Class
	prog     *bytecode.Program
	unit     *analysis.Unit
	isroot   bool
	deps     []*action
	err      error
	duration time.Duration
}

func (act *action) String() string {
	return fmt.Sprintf("%s@%s", act.a, act.class)
}

func execAll(actions []*action) {
	if dbg('p') {
		for _, act := range actions {
			act.exec()
		}
		return
	}
	var g errgroup.Group
	for _, act := range actions {
		act := act
		g.Go(func() error {
			act.exec()
			return nil
		})
	}
	g.Wait() // actions record their own errors
}

func (act *action) exec() { act.once.Do(act.execOnce) }

func (act *action) execOnce() {
	// Analyze dependencies.
	execAll(act.deps)

	ctx, task := trace.NewTask(context.Background(), "exec")
	defer task.End()
	trace.Log(ctx, "unit", act.String())

	// Record time spent in this node but not its dependencies.
	// In parallel mode, due to GC/scheduler contention, the
	// time is much higher than in sequential mode.
	// So use -debug=tp.
	if dbg('t') {
		t0 := time.Now()
		defer func() { act.duration = time.Since(t0) }()
	}

	// Report an error if any dependency failed.
	var failed []string
	for _, dep := range act.deps {
		if dep.err != nil {
			failed = append(failed, dep.String())
		}
	}
	if failed != nil {
		sort.Strings(failed)
		act.err = fmt.Errorf("failed prerequisites: %s", strings.Join(failed, ", "))
		return
	}

	// Plumb the output values of the dependencies
	// into the inputs of this action.
	inputs := make(map[*analysis.Analysis]interface{})
	for _, dep := range act.deps {
		inputs[dep.a] = dep.unit.Output
	}

	// Run the analysis.
	unit := &analysis.Unit{
		Analysis: act.a,
		Class:    act.class,
		Program:  act.prog,
		Inputs:   inputs,
	}
	act.unit = unit

	var err error
	if act.class.Incomplete && !unit.Analysis.RunDespiteErrors {
		err = fmt.Errorf("analysis skipped due to errors in class")
	} else {
		err = unit.Analysis.Run(unit)
		if err == nil {
			if got, want := reflect.TypeOf(unit.Output), unit.Analysis.OutputType; got != want {
				err = fmt.Errorf(
					"internal error: on class %s, analysis %s produced Output %v, but declared OutputType %v",
					act.class, unit.Analysis, got, want)
			}
		}
	}
	act.err = err

	if dbg('s') {
		for _, f := range unit.Findings {
			if err := codeFinding(f); err != nil {
				logger.Panic("internal error: encoding of finding failed",
					zap.Stringer("action", act), zap.Stringer("finding", f), zap.Error(err))
			}
		}
	}
	logger.Debug("ran", zap.Stringer("action", act), zap.Int("findings", len(unit.Findings)), zap.Error(err))
}

// codeFinding encodes then decodes a finding,
// just to exercise that it survives crossing address spaces.
func codeFinding(f *analysis.Finding) error {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(f); err != nil {
		return err
	}
	var decoded analysis.Finding
	if err := msgpack.NewDecoder(&buf).Decode(&decoded); err != nil {
		return err
	}
	if decoded.Pos != f.Pos || decoded.Category != f.Category || decoded.Message != f.Message {
		return fmt.Errorf("finding changed in transit: %v became %v", f, &decoded)
	}
	return nil
}

func dbg(b byte) bool { return strings.IndexByte(Debug, b) >= 0 }
