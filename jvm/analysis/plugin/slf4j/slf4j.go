// Package slf4j checks calls to the SLF4J logging API for format
// strings that do not match their arguments.
//
// For each invokeinterface of org.slf4j.Logger.{trace,debug,info,warn,error}
// that takes a format, the analysis recovers the constant format string
// from the abstract operand stack, counts its "{}" placeholders, counts
// the arguments the call supplies, and reports:
//
//	SLF4J_PLACE_HOLDER_MISMATCH  the two counts differ
//	SLF4J_UNKNOWN_ARRAY          arguments come in an array of unknown length
//	SLF4J_FORMAT_SHOULD_BE_CONST the format is not a compile-time constant
//	SLF4J_SIGN_ONLY_FORMAT       the format contains no letters
//
// A Marker passed first and a Throwable passed last are not counted
// as arguments, matching how SLF4J renders them.
package slf4j

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/eller86/findbugs-slf4j/jvm/analysis"
	"github.com/eller86/findbugs-slf4j/jvm/analysis/plugin/inspect"
	"github.com/eller86/findbugs-slf4j/jvm/bytecode"
	"github.com/eller86/findbugs-slf4j/jvm/bytecode/inspector"
	"github.com/eller86/findbugs-slf4j/jvm/opstack"
	"github.com/eller86/findbugs-slf4j/jvm/types/descriptor"
)

const doc = `check consistency of SLF4J format strings and arguments

The slf4j analysis reports calls to org.slf4j.Logger whose format
string has a different number of {} placeholders than the call has
arguments, whose format is computed at run time, whose format consists
only of signs, or whose arguments are passed in an array built
elsewhere.`

var Analysis = &analysis.Analysis{
	Name:       "slf4j",
	Doc:        doc,
	Run:        run,
	Requires:   []*analysis.Analysis{inspect.Analysis},
	OutputType: reflect.TypeOf(0), // number of logging calls checked
}

var signOnly bool

func init() {
	Analysis.Flags.BoolVar(&signOnly, "signonly", true, "report format strings that contain no letters")
}

// Finding categories.
const (
	PlaceholderMismatch    = "SLF4J_PLACE_HOLDER_MISMATCH"
	UnknownArray           = "SLF4J_UNKNOWN_ARRAY"
	FormatShouldBeConstant = "SLF4J_FORMAT_SHOULD_BE_CONST"
	SignOnlyFormat         = "SLF4J_SIGN_ONLY_FORMAT"
)

// Mismatch is the payload of a PlaceholderMismatch finding.
type Mismatch struct {
	Placeholders int `json:"placeholders" msgpack:"placeholders"`
	Arguments    int `json:"arguments" msgpack:"arguments"`
}

// SignOnly is the payload of a SignOnlyFormat finding.
type SignOnly struct {
	Format string `json:"format" msgpack:"format"`
}

const loggerClass = "org/slf4j/Logger"

var logMethods = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Signatures of the logging methods that print their message verbatim.
// A marked message without arguments is still checked: a "{}" there is
// almost always a forgotten argument.
var withoutFormat = map[string]bool{
	"(Ljava/lang/String;)V":                                        true,
	"(Ljava/lang/String;Ljava/lang/Throwable;)V":                   true,
	"(Lorg/slf4j/Marker;Ljava/lang/String;Ljava/lang/Throwable;)V": true,
}

func run(unit *analysis.Unit) error {
	inspect := unit.Inputs[inspect.Analysis].(*inspector.Inspector)

	var throwables ThrowableClassifier
	if unit.Program != nil && unit.Program.Hierarchy != nil {
		throwables = unit.Program.Hierarchy
	} else {
		throwables = opstack.NewHierarchy()
	}

	var (
		checked int
		errs    []error
	)
	ops := []bytecode.Opcode{bytecode.Invokeinterface}
	inspect.Opcodes(ops, func(c *bytecode.Class, m *bytecode.Method, in *bytecode.Instruction) bool {
		site := &CallSite{
			Pos:   bytecode.PosOf(c, m, in),
			Owner: in.Owner,
			Name:  in.Name,
			Desc:  in.Desc,
			Stack: in.Stack,
		}
		if !site.isLogging() {
			return true
		}
		checked++
		findings, err := Check(site, throwables, signOnly)
		for _, f := range findings {
			unit.Report(f)
		}
		if err != nil {
			// Keep going: one bad call site must not hide the others.
			errs = append(errs, fmt.Errorf("%s: %w", site.Pos, err))
		}
		return true
	})

	unit.Output = checked
	return errors.Join(errs...)
}

// A CallSite is one invocation as seen by Check. The stack snapshot
// belongs to the host interpreter and is only read.
type CallSite struct {
	Pos   bytecode.Pos
	Owner string // internal name of the invoked type
	Name  string
	Desc  string
	Stack *opstack.Snapshot
}

func (site *CallSite) isLogging() bool {
	return site.Owner == loggerClass && logMethods[site.Name]
}

// Called returns the invoked method as "owner.name(desc)".
func (site *CallSite) Called() string {
	return site.Owner + "." + site.Name + site.Desc
}

func (site *CallSite) finding(category string, sev analysis.Severity, payload interface{}, format string, args ...interface{}) analysis.Finding {
	return analysis.Finding{
		Pos:      site.Pos,
		Category: category,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Called:   site.Called(),
		Payload:  payload,
	}
}

// Check analyzes one call site and returns its findings.
// Calls to anything other than the SLF4J logging methods, and calls
// that take no format, yield nothing. The error is non-nil only if
// the call's descriptor is malformed, in which case nothing else about
// the site is checked.
//
// If reportSignOnly is false, formats without letters are not
// reported.
func Check(site *CallSite, throwables ThrowableClassifier, reportSignOnly bool) ([]analysis.Finding, error) {
	if !site.isLogging() || withoutFormat[site.Desc] {
		return nil, nil
	}
	sig, err := descriptor.Parse(site.Desc)
	if err != nil {
		return nil, err
	}
	if site.Stack.Depth() < sig.NumParams() {
		// The interpreter lost track of the stack here;
		// there is nothing to reason about.
		return nil, nil
	}

	slot := formatSlot(sig, site.Stack)
	if slot == nil {
		return nil, nil
	}
	format, ok := constantFormat(slot)
	if !ok {
		return []analysis.Finding{
			site.finding(FormatShouldBeConstant, analysis.High, nil,
				"format string should be a compile-time constant"),
		}, nil
	}

	var findings []analysis.Finding
	if reportSignOnly && isSignOnly(format) {
		findings = append(findings, site.finding(SignOnlyFormat, analysis.Normal, SignOnly{format},
			"format string %q contains no letters", format))
	}

	placeholders := countPlaceholders(format)
	arguments, err := countArguments(sig, site.Stack, throwables)
	if errors.Is(err, ErrUnresolvedArrayArgument) {
		return append(findings, site.finding(UnknownArray, analysis.High, nil,
			"arguments are passed in an array of unknown length; cannot check the format")), nil
	}
	if err != nil {
		return findings, err
	}

	if placeholders != arguments {
		findings = append(findings, site.finding(PlaceholderMismatch, analysis.High,
			Mismatch{placeholders, arguments},
			"count of placeholders (%d) does not match count of arguments (%d)", placeholders, arguments))
	}
	return findings, nil
}
