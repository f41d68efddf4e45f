// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inspector provides helper functions for traversal over the
// instruction streams of a set of classes, including filtering by
// opcode.
//
// During construction, the inspector flattens every method body into a
// single list of events, each remembering where its method ends.
// Subsequent traversals scan this list and perform opcode filtering
// using a 256-bit set, so that analyses interested in a handful of
// opcodes do not each walk the class/method/instruction tree.
package inspector

import (
	"github.com/eller86/findbugs-slf4j/jvm/bytecode"
)

// An Inspector provides methods for inspecting
// (traversing) the instructions of a set of classes.
type Inspector struct {
	events []event
}

// New returns an Inspector for the specified classes.
func New(classes []*bytecode.Class) *Inspector {
	return &Inspector{traverse(classes)}
}

// An event represents one instruction of one method.
type event struct {
	class  *bytecode.Class
	method *bytecode.Method
	instr  *bytecode.Instruction
	end    int // index of the first event of the next method
}

// A Func is applied to each visited instruction, together with its
// enclosing class and method. If it returns false, the remaining
// instructions of the same method are skipped.
type Func func(c *bytecode.Class, m *bytecode.Method, in *bytecode.Instruction) bool

// Inspect applies f to every instruction of every method, in class,
// method and pc order.
func (in *Inspector) Inspect(f Func) {
	in.Opcodes(nil, f)
}

// Opcodes is like Inspect but calls f only for instructions whose
// opcode is among ops. A nil ops matches every opcode.
func (in *Inspector) Opcodes(ops []bytecode.Opcode, f Func) {
	mask := maskOf(ops)
	for i := 0; i < len(in.events); {
		ev := in.events[i]
		if mask.has(ev.instr.Op) {
			if !f(ev.class, ev.method, ev.instr) {
				i = ev.end
				continue
			}
		}
		i++
	}
}

// A FuncWithContext is like Func but additionally provides the code of
// the enclosing method and the index of in within it.
type FuncWithContext func(c *bytecode.Class, m *bytecode.Method, code []*bytecode.Instruction, index int) bool

// OpcodesWithContext is like Opcodes but supplies f with the position
// of each matching instruction within its method's code.
func (in *Inspector) OpcodesWithContext(ops []bytecode.Opcode, f FuncWithContext) {
	mask := maskOf(ops)
	start := 0 // index of the first event of the current method
	for i := 0; i < len(in.events); {
		ev := in.events[i]
		if i == 0 || in.events[i-1].end == i {
			start = i
		}
		if mask.has(ev.instr.Op) {
			if !f(ev.class, ev.method, ev.method.Code, i-start) {
				i = ev.end
				continue
			}
		}
		i++
	}
}

// traverse builds the table of events representing a traversal.
func traverse(classes []*bytecode.Class) []event {
	var n int
	for _, c := range classes {
		for _, m := range c.Methods {
			n += len(m.Code)
		}
	}
	events := make([]event, 0, n)

	for _, c := range classes {
		for _, m := range c.Methods {
			end := len(events) + len(m.Code)
			for _, instr := range m.Code {
				events = append(events, event{
					class:  c,
					method: m,
					instr:  instr,
					end:    end,
				})
			}
		}
	}
	return events
}

// An opset is a set of opcodes.
type opset [4]uint64

func (s *opset) has(op bytecode.Opcode) bool {
	return s[op>>6]&(1<<(op&63)) != 0
}

func maskOf(ops []bytecode.Opcode) *opset {
	var s opset
	if ops == nil {
		for i := range s {
			s[i] = 1<<64 - 1 // match all opcodes
		}
		return &s
	}
	for _, op := range ops {
		s[op>>6] |= 1 << (op & 63)
	}
	return &s
}
