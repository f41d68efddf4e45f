// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inspect is an analysis that provides an instruction
// inspector (github.com/eller86/findbugs-slf4j/jvm/bytecode/inspector)
// for the methods of a class. It is only a building block for other
// analyses.
//
// Example of use in another analysis:
//
// 	func run(unit *analysis.Unit) error {
// 		inspect := unit.Inputs[inspect.Analysis].(*inspector.Inspector)
// 		inspect.Opcodes(ops, func(c *bytecode.Class, m *bytecode.Method, in *bytecode.Instruction) bool {
// 			...
// 		})
// 		return nil
// 	}
//
package inspect

import (
	"reflect"

	"github.com/eller86/findbugs-slf4j/jvm/analysis"
	"github.com/eller86/findbugs-slf4j/jvm/bytecode"
	"github.com/eller86/findbugs-slf4j/jvm/bytecode/inspector"
)

var Analysis = &analysis.Analysis{
	Name:             "inspect",
	Doc:              "optimize instruction traversal for later passes",
	Run:              run,
	RunDespiteErrors: true,
	OutputType:       reflect.TypeOf(new(inspector.Inspector)),
}

func run(unit *analysis.Unit) error {
	unit.Output = inspector.New([]*bytecode.Class{unit.Class})
	return nil
}
