// Package analysis defines the interface between a modular static
// analysis of JVM bytecode and an analysis driver program.
//
// An Analysis describes one check: its name, documentation, flags,
// the analyses it depends on, and a Run function. The driver applies
// each Analysis to each class of the program in a Unit, plumbing the
// Outputs of required analyses into the Inputs of the unit, and
// collects the Findings the unit reports.
//
// The driver owns loading and decoding; an analysis sees fully
// decoded classes whose instructions already carry the abstract
// operand stack computed by the host interpreter.
package analysis

import (
	"flag"
	"fmt"
	"reflect"

	"github.com/eller86/findbugs-slf4j/jvm/bytecode"
)

// An Analysis describes an analysis function and its options.
type Analysis struct {
	// The Name of the analysis must be a valid Go identifier
	// as it may appear in command-line flags, URLs, and so on.
	Name string

	// Doc is the documentation for the analysis.
	Doc string

	// Flags defines any flags accepted by the analysis.
	// The manner in which these flags are exposed to the user
	// depends on the driver which runs the analysis.
	Flags flag.FlagSet

	// Run applies the analysis to a unit.
	// If Run returns an error, the driver reports it together with
	// whatever findings the unit managed to report first.
	Run func(unit *Unit) error

	// RunDespiteErrors allows the driver to invoke
	// the Run method of this analysis even on classes
	// that the host failed to decode completely.
	RunDespiteErrors bool

	// Requires is a set of analyses that must run successfully
	// before this one on a given class. The Output of each
	// is available in Unit.Inputs.
	Requires []*Analysis

	// OutputType is the type of the optional Output value
	// computed by this analysis and stored in Unit.Output.
	OutputType reflect.Type
}

func (a *Analysis) String() string { return a.Name }

// A Unit provides information to the Run function that
// applies a specific analysis to a single class.
// It forms the interface between the analysis logic and the driver
// program, and has both input and an output components.
type Unit struct {
	// -- inputs --

	Analysis *Analysis // the identity of the current analysis
	Class    *bytecode.Class
	Program  *bytecode.Program // all classes under analysis

	// Inputs provides the outputs of the analyses required by this one.
	Inputs map[*Analysis]interface{}

	// -- outputs --

	// Findings is the list of findings reported by this unit.
	// Only the goroutine running the unit appends to it.
	Findings []*Finding

	// Output is an immutable result computed by this analysis unit
	// and set by the Run function.
	// It will be made available as an input to any analysis that
	// depends directly on this one.
	// The type of Output must match Analysis.OutputType.
	Output interface{}
}

func (unit *Unit) String() string {
	return fmt.Sprintf("%s@%s", unit.Analysis.Name, unit.Class.Name)
}

// Report records a finding. A finding without a severity is
// reported as Normal.
func (unit *Unit) Report(f Finding) {
	if f.Severity == 0 {
		f.Severity = Normal
	}
	unit.Findings = append(unit.Findings, &f)
}
