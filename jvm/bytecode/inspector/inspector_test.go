package inspector_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/eller86/findbugs-slf4j/jvm/bytecode"
	"github.com/eller86/findbugs-slf4j/jvm/bytecode/inspector"
)

func method(name string, ops ...bytecode.Opcode) *bytecode.Method {
	m := &bytecode.Method{Name: name}
	for i, op := range ops {
		m.Code = append(m.Code, &bytecode.Instruction{PC: i, Op: op})
	}
	return m
}

var classes = []*bytecode.Class{
	{
		Name: "a/A",
		Methods: []*bytecode.Method{
			method("f", bytecode.Aload0, bytecode.Ldc, bytecode.Invokeinterface, bytecode.Return),
			method("g"),
			method("h", bytecode.Ldc, bytecode.Invokestatic, bytecode.Invokeinterface, bytecode.Return),
		},
	},
	{
		Name: "b/B",
		Methods: []*bytecode.Method{
			method("k", bytecode.Invokeinterface, bytecode.Areturn),
		},
	},
}

func visit(got *[]string) inspector.Func {
	return func(c *bytecode.Class, m *bytecode.Method, in *bytecode.Instruction) bool {
		*got = append(*got, c.Name+"."+m.Name+":"+in.Op.String())
		return true
	}
}

func TestInspectAll(t *testing.T) {
	var got []string
	inspector.New(classes).Inspect(visit(&got))
	if len(got) != 10 {
		t.Errorf("visited %d instructions, want 10: %s", len(got), got)
	}
	if got[0] != "a/A.f:aload_0" || got[len(got)-1] != "b/B.k:areturn" {
		t.Errorf("unexpected order: %s", got)
	}
}

func TestOpcodes(t *testing.T) {
	var got []string
	inspector.New(classes).Opcodes([]bytecode.Opcode{bytecode.Invokeinterface}, visit(&got))
	want := strings.Fields("a/A.f:invokeinterface a/A.h:invokeinterface b/B.k:invokeinterface")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

// Returning false skips the rest of the method but not the next one.
func TestPruning(t *testing.T) {
	var got []string
	inspector.New(classes).Inspect(func(c *bytecode.Class, m *bytecode.Method, in *bytecode.Instruction) bool {
		got = append(got, m.Name+":"+in.Op.String())
		return in.Op != bytecode.Ldc
	})
	want := strings.Fields("f:aload_0 f:ldc h:ldc k:invokeinterface k:areturn")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestOpcodesWithContext(t *testing.T) {
	var got []string
	inspector.New(classes).OpcodesWithContext([]bytecode.Opcode{bytecode.Invokeinterface},
		func(c *bytecode.Class, m *bytecode.Method, code []*bytecode.Instruction, index int) bool {
			prev := "-"
			if index > 0 {
				prev = code[index-1].Op.String()
			}
			got = append(got, m.Name+":"+prev)
			return true
		})
	want := strings.Fields("f:ldc h:invokestatic k:-")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func BenchmarkOpcodes(b *testing.B) {
	in := inspector.New(classes)
	ops := []bytecode.Opcode{bytecode.Invokeinterface}
	var n int
	for i := 0; i < b.N; i++ {
		in.Opcodes(ops, func(*bytecode.Class, *bytecode.Method, *bytecode.Instruction) bool {
			n++
			return true
		})
	}
}
