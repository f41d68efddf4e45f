// Package analysistest provides utilities for testing analyses.
package analysistest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/eller86/findbugs-slf4j/jvm/analysis"
	"github.com/eller86/findbugs-slf4j/jvm/analysis/internal/checker"
	"github.com/eller86/findbugs-slf4j/jvm/analysis/internal/trace"
	"github.com/eller86/findbugs-slf4j/jvm/bytecode"
)

// TestData returns the effective filename of
// the program's "testdata" directory.
// This function may be overridden by projects using
// an alternative build system (such as Blaze) that
// does not run a test in its package directory.
var TestData = func() string {
	testdata, err := filepath.Abs("testdata")
	if err != nil {
		panic(err)
	}
	return testdata
}

// Testing is an abstraction of a *testing.T.
type Testing interface {
	Errorf(format string, args ...interface{})
}

// Run applies an analysis to each class described by the trace files
// of the named directories and checks that it reports the findings
// the traces expect.
//
// Directories are named relative to dir/src, and every trace file
// within them is loaded into one program, so that classes may refer
// to each other's hierarchy.
//
// An expectation is the "want" list of an instruction. Each entry is
// a regular expression that must match the text "[CATEGORY] message"
// of exactly one finding reported at that instruction, and every
// finding must be matched by some expectation.
//
// Run returns the units, one per class, for further checks of their
// Output.
func Run(t Testing, dir string, a *analysis.Analysis, dirs ...string) []*analysis.Unit {
	var (
		classes []*bytecode.Class
		wants   = make(map[key][]*regexp.Regexp)
	)
	for _, d := range dirs {
		files, err := traceFiles(filepath.Join(dir, "src", d))
		if err != nil {
			t.Errorf("%v", err)
			return nil
		}
		for _, filename := range files {
			f, err := trace.Load(filename)
			if err != nil {
				t.Errorf("%v", err)
				return nil
			}
			cs, err := f.Build()
			if err != nil {
				t.Errorf("%s: %v", filename, err)
				return nil
			}
			if err := expectations(f, wants); err != nil {
				t.Errorf("%s: %v", filename, err)
				return nil
			}
			classes = append(classes, cs...)
		}
	}
	prog := bytecode.NewProgram(classes)

	var units []*analysis.Unit
	for _, c := range prog.Classes {
		unit, err := checker.Analyze(prog, c, a)
		if err != nil {
			t.Errorf("error analyzing %s: %v", c, err)
		}
		if unit == nil {
			continue
		}
		units = append(units, unit)
		check(t, unit, wants)
	}

	// Reject surplus expectations.
	var surplus []string
	for k, rxs := range wants {
		for _, rx := range rxs {
			surplus = append(surplus, fmt.Sprintf("%s: no finding was reported matching %q", k, rx))
		}
	}
	sort.Strings(surplus)
	for _, msg := range surplus {
		t.Errorf("%s", msg)
	}
	return units
}

type key struct {
	class, method, desc string
	pc                  int
}

func (k key) String() string { return fmt.Sprintf("%s.%s%s@pc %d", k.class, k.method, k.desc, k.pc) }

func traceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := trace.FormatOf(e.Name()); err == nil {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if files == nil {
		return nil, fmt.Errorf("%s: no trace files", dir)
	}
	return files, nil
}

func expectations(f *trace.File, wants map[key][]*regexp.Regexp) error {
	for _, c := range f.Classes {
		for _, m := range c.Methods {
			for _, in := range m.Code {
				for _, w := range in.Want {
					rx, err := regexp.Compile(w)
					if err != nil {
						return fmt.Errorf("%s.%s@pc %d: %v", c.Name, m.Name, in.PC, err)
					}
					k := key{c.Name, m.Name, m.Desc, in.PC}
					wants[k] = append(wants[k], rx)
				}
			}
		}
	}
	return nil
}

// check matches each finding of unit against the expectations at its
// position, consuming the first that matches.
func check(t Testing, unit *analysis.Unit, wants map[key][]*regexp.Regexp) {
	for _, f := range unit.Findings {
		k := key{f.Pos.Class, f.Pos.Method, f.Pos.MethodDesc, f.Pos.PC}
		text := fmt.Sprintf("[%s] %s", f.Category, f.Message)

		rxs := wants[k]
		matched := false
		for i, rx := range rxs {
			if rx.MatchString(text) {
				wants[k] = append(rxs[:i:i], rxs[i+1:]...)
				if len(wants[k]) == 0 {
					delete(wants, k)
				}
				matched = true
				break
			}
		}
		if !matched {
			t.Errorf("%v: unexpected finding: %s", k, strings.TrimSpace(text))
		}
	}
}
