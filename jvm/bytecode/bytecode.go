// Package bytecode defines the in-memory form of the JVM programs that
// analyses inspect: classes, their methods, and each method's decoded
// instruction stream annotated with the abstract operand stack that the
// host interpreter computed for it.
package bytecode

import (
	"fmt"

	"github.com/eller86/findbugs-slf4j/jvm/opstack"
)

// An Instruction is one decoded instruction of a method body.
type Instruction struct {
	PC   int
	Line int // source line, or 0 if unknown
	Op   Opcode

	// Owner, Name and Desc identify the target of an invoke
	// instruction: the internal name of the invoked type, the method
	// name and its descriptor. They are empty for other opcodes.
	Owner string
	Name  string
	Desc  string

	// Stack is the operand stack before the instruction executes.
	// It may be nil if the interpreter could not model the stack here.
	Stack *opstack.Snapshot
}

func (in *Instruction) String() string {
	if in.Op.IsInvoke() {
		return fmt.Sprintf("%d: %s %s.%s%s", in.PC, in.Op, in.Owner, in.Name, in.Desc)
	}
	return fmt.Sprintf("%d: %s", in.PC, in.Op)
}

// A Method is a method of a class together with its code.
type Method struct {
	Name string
	Desc string
	Code []*Instruction // in pc order
}

// A Class is a loaded class file.
type Class struct {
	Name       string // internal name, e.g. "pkg/UsingMarker"
	Super      string // internal name of the super class, or ""
	SourceFile string
	Methods    []*Method

	// Incomplete is set when the host failed to decode or model part
	// of the class. Analyses run on such classes only if they opt in.
	Incomplete bool
}

func (c *Class) String() string { return c.Name }

// A Program is the set of classes submitted for analysis, together
// with the class hierarchy derived from them.
type Program struct {
	Classes   []*Class
	Hierarchy *opstack.Hierarchy
}

// NewProgram returns a program over classes, registering each class
// in a fresh hierarchy.
func NewProgram(classes []*Class) *Program {
	h := opstack.NewHierarchy()
	for _, c := range classes {
		h.Add(c.Name, c.Super)
	}
	return &Program{Classes: classes, Hierarchy: h}
}

// A Pos identifies an instruction within a program.
type Pos struct {
	Class      string
	Method     string
	MethodDesc string // tells overloads apart
	SourceFile string
	Line       int
	PC         int
}

// PosOf returns the position of in within method m of class c.
func PosOf(c *Class, m *Method, in *Instruction) Pos {
	return Pos{
		Class:      c.Name,
		Method:     m.Name,
		MethodDesc: m.Desc,
		SourceFile: c.SourceFile,
		Line:       in.Line,
		PC:         in.PC,
	}
}

// String returns the position as "File.java:12 (pkg/C.method@pc 34)",
// omitting the parts that are unknown.
func (p Pos) String() string {
	where := fmt.Sprintf("%s.%s@pc %d", p.Class, p.Method, p.PC)
	switch {
	case p.SourceFile != "" && p.Line > 0:
		return fmt.Sprintf("%s:%d (%s)", p.SourceFile, p.Line, where)
	case p.SourceFile != "":
		return fmt.Sprintf("%s (%s)", p.SourceFile, where)
	}
	return where
}
