// Package opstack models the abstract operand stack that a bytecode
// interpreter maintains while it walks a method body.
//
// The interpreter itself lives outside this module; it hands each
// instruction a read-only Snapshot of the stack as it stood before the
// instruction executed. A Slot records what was statically known about
// one stack entry: its type, a compile-time constant, and an optional
// Tag attached by the interpreter.
package opstack

import (
	"fmt"
	"strings"
)

// A Tag is auxiliary data that the interpreter attaches to a stack
// slot. ArrayLiteral is the only variant.
type Tag interface {
	isTag()
}

// ArrayLiteral tags an array reference whose contents were stored by
// literal initialization immediately before use, as javac emits for a
// variadic call.
type ArrayLiteral struct {
	Size            int  // number of elements; negative if unknown
	ThrowableAtLast bool // the final element is statically a Throwable
}

func (*ArrayLiteral) isTag() {}

func (a *ArrayLiteral) String() string {
	if a.ThrowableAtLast {
		return fmt.Sprintf("array[%d]+throwable", a.Size)
	}
	return fmt.Sprintf("array[%d]", a.Size)
}

// A Slot is one entry of the abstract operand stack.
// The zero Slot carries no information.
type Slot struct {
	Signature string      // static type as a field descriptor, or ""
	Constant  interface{} // compile-time constant, or nil
	Tag       Tag         // or nil
}

// IsConstant reports whether the slot holds a compile-time constant.
func (s *Slot) IsConstant() bool { return s != nil && s.Constant != nil }

// ArrayLiteral returns the slot's array-literal tag, if any.
func (s *Slot) ArrayLiteral() (*ArrayLiteral, bool) {
	if s == nil {
		return nil, false
	}
	a, ok := s.Tag.(*ArrayLiteral)
	return a, ok && a != nil
}

func (s *Slot) String() string {
	if s == nil {
		return "?"
	}
	str := s.Signature
	if str == "" {
		str = "?"
	}
	if s.Constant != nil {
		str += fmt.Sprintf("=%#v", s.Constant)
	}
	if s.Tag != nil {
		str += fmt.Sprintf(" {%v}", s.Tag)
	}
	return str
}

// A Snapshot is the state of the operand stack at one program point.
// Slots are stored bottom first.
type Snapshot struct {
	slots []Slot
}

// NewSnapshot returns a snapshot holding slots, given bottom first.
func NewSnapshot(slots ...Slot) *Snapshot {
	return &Snapshot{slots: slots}
}

// Depth returns the number of slots on the stack.
func (s *Snapshot) Depth() int {
	if s == nil {
		return 0
	}
	return len(s.slots)
}

// Slot returns the slot i entries below the top of the stack, so that
// Slot(0) is the top. It returns nil if the stack is not that deep.
func (s *Snapshot) Slot(i int) *Slot {
	if i < 0 || i >= s.Depth() {
		return nil
	}
	return &s.slots[len(s.slots)-1-i]
}

func (s *Snapshot) String() string {
	if s == nil {
		return "[?]"
	}
	parts := make([]string, len(s.slots))
	for i := range s.slots {
		parts[i] = s.slots[i].String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
