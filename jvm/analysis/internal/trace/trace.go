// Package trace decodes the files in which a host bytecode interpreter
// dumps the classes it decoded, one record per instruction, together
// with the abstract operand stack it computed before each instruction.
//
// A trace may be written as YAML, JSON or MessagePack; the format is
// chosen by file extension. In YAML:
//
//	classes:
//	- name: pkg/UsingMarker
//	  super: java/lang/Object
//	  source: UsingMarker.java
//	  methods:
//	  - name: method
//	    desc: ()V
//	    code:
//	    - {pc: 22, line: 19, op: invokeinterface, owner: org/slf4j/Logger,
//	       name: error, desc: (Lorg/slf4j/Marker;Ljava/lang/String;)V,
//	       stack: [{sig: Lorg/slf4j/Logger;}, {sig: Lorg/slf4j/Marker;},
//	               {sig: Ljava/lang/String;, const: "Hello, {}"}],
//	       want: ["SLF4J_PLACE_HOLDER_MISMATCH"]}
//
// Stack slots are listed bottom first. A slot may carry an array tag,
// {size: 3, throwableAtLast: true}, for an array built in place. An
// instruction without a stack is one the interpreter could not model.
package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/eller86/findbugs-slf4j/jvm/bytecode"
	"github.com/eller86/findbugs-slf4j/jvm/opstack"
)

// ErrUnknownOpcode is returned (wrapped) for an instruction whose
// mnemonic is not known.
var ErrUnknownOpcode = errors.New("unknown opcode")

// A Format is an encoding of a trace file.
type Format int

const (
	YAML Format = iota
	JSON
	MessagePack
)

func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case JSON:
		return "json"
	case MessagePack:
		return "msgpack"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatOf returns the format implied by the extension of filename.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	case ".msgpack", ".mpk":
		return MessagePack, nil
	}
	return 0, fmt.Errorf("%s: unrecognized trace file extension", filename)
}

// A File is the decoded contents of one trace file.
type File struct {
	Classes []Class `yaml:"classes" json:"classes" msgpack:"classes"`
}

type Class struct {
	Name    string   `yaml:"name" json:"name" msgpack:"name"`
	Super   string   `yaml:"super,omitempty" json:"super,omitempty" msgpack:"super,omitempty"`
	Source  string   `yaml:"source,omitempty" json:"source,omitempty" msgpack:"source,omitempty"`
	Methods []Method `yaml:"methods" json:"methods" msgpack:"methods"`

	Incomplete bool `yaml:"incomplete,omitempty" json:"incomplete,omitempty" msgpack:"incomplete,omitempty"`
}

type Method struct {
	Name string        `yaml:"name" json:"name" msgpack:"name"`
	Desc string        `yaml:"desc" json:"desc" msgpack:"desc"`
	Code []Instruction `yaml:"code" json:"code" msgpack:"code"`
}

type Instruction struct {
	PC    int    `yaml:"pc" json:"pc" msgpack:"pc"`
	Line  int    `yaml:"line,omitempty" json:"line,omitempty" msgpack:"line,omitempty"`
	Op    string `yaml:"op" json:"op" msgpack:"op"`
	Owner string `yaml:"owner,omitempty" json:"owner,omitempty" msgpack:"owner,omitempty"`
	Name  string `yaml:"name,omitempty" json:"name,omitempty" msgpack:"name,omitempty"`
	Desc  string `yaml:"desc,omitempty" json:"desc,omitempty" msgpack:"desc,omitempty"`
	Stack []Slot `yaml:"stack,omitempty" json:"stack,omitempty" msgpack:"stack,omitempty"`

	// Want lists expectations for test fixtures: each entry is a
	// regular expression that must match "[CATEGORY] message" of one
	// finding reported at this instruction. Drivers ignore it.
	Want []string `yaml:"want,omitempty" json:"want,omitempty" msgpack:"want,omitempty"`
}

type Slot struct {
	Sig   string      `yaml:"sig,omitempty" json:"sig,omitempty" msgpack:"sig,omitempty"`
	Const interface{} `yaml:"const,omitempty" json:"const,omitempty" msgpack:"const,omitempty"`
	Array *Array      `yaml:"array,omitempty" json:"array,omitempty" msgpack:"array,omitempty"`
}

type Array struct {
	Size            int  `yaml:"size" json:"size" msgpack:"size"`
	ThrowableAtLast bool `yaml:"throwableAtLast,omitempty" json:"throwableAtLast,omitempty" msgpack:"throwableAtLast,omitempty"`
}

// Load reads and decodes the trace file at filename.
func Load(filename string) (*File, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	f, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return f, nil
}

// Decode decodes a trace in the given format. Unknown fields are
// rejected so that misspelled keys do not silently drop data.
func Decode(r io.Reader, format Format) (*File, error) {
	var f File
	switch format {
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	case JSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	case MessagePack:
		dec := msgpack.NewDecoder(r)
		dec.DisallowUnknownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("decoding msgpack: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported trace format %v", format)
	}
	return &f, nil
}

// Encode writes f in the given format.
func Encode(w io.Writer, f *File, format Format) error {
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "\t")
		return enc.Encode(f)
	case MessagePack:
		return msgpack.NewEncoder(w).Encode(f)
	}
	return fmt.Errorf("unsupported trace format %v", format)
}

// Build converts the decoded trace into the bytecode model.
func (f *File) Build() ([]*bytecode.Class, error) {
	classes := make([]*bytecode.Class, 0, len(f.Classes))
	for _, tc := range f.Classes {
		if tc.Name == "" {
			return nil, fmt.Errorf("class without a name")
		}
		c := &bytecode.Class{
			Name:       tc.Name,
			Super:      tc.Super,
			SourceFile: tc.Source,
			Incomplete: tc.Incomplete,
		}
		for _, tm := range tc.Methods {
			m, err := tm.build()
			if err != nil {
				return nil, fmt.Errorf("%s.%s%s: %w", tc.Name, tm.Name, tm.Desc, err)
			}
			c.Methods = append(c.Methods, m)
		}
		classes = append(classes, c)
	}
	return classes, nil
}

func (tm *Method) build() (*bytecode.Method, error) {
	m := &bytecode.Method{Name: tm.Name, Desc: tm.Desc}
	for i, ti := range tm.Code {
		if i > 0 && ti.PC <= tm.Code[i-1].PC {
			return nil, fmt.Errorf("pc %d: instructions out of order", ti.PC)
		}
		op, ok := bytecode.Lookup(ti.Op)
		if !ok {
			return nil, fmt.Errorf("pc %d: %w %q", ti.PC, ErrUnknownOpcode, ti.Op)
		}
		in := &bytecode.Instruction{
			PC:    ti.PC,
			Line:  ti.Line,
			Op:    op,
			Owner: ti.Owner,
			Name:  ti.Name,
			Desc:  ti.Desc,
		}
		if op.IsInvoke() && (in.Owner == "" || in.Name == "" || in.Desc == "") {
			return nil, fmt.Errorf("pc %d: %s needs owner, name and desc", ti.PC, op)
		}
		if ti.Stack != nil {
			slots := make([]opstack.Slot, len(ti.Stack))
			for j, s := range ti.Stack {
				slots[j] = s.build()
			}
			in.Stack = opstack.NewSnapshot(slots...)
		}
		m.Code = append(m.Code, in)
	}
	return m, nil
}

func (s *Slot) build() opstack.Slot {
	slot := opstack.Slot{Signature: s.Sig, Constant: s.Const}
	if s.Array != nil {
		slot.Tag = &opstack.ArrayLiteral{Size: s.Array.Size, ThrowableAtLast: s.Array.ThrowableAtLast}
	}
	return slot
}
