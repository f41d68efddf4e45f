package slf4j

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eller86/findbugs-slf4j/jvm/analysis"
	"github.com/eller86/findbugs-slf4j/jvm/bytecode"
	"github.com/eller86/findbugs-slf4j/jvm/opstack"
	"github.com/eller86/findbugs-slf4j/jvm/types/descriptor"
)

var pos = bytecode.Pos{Class: "pkg/C", Method: "method", SourceFile: "C.java", Line: 10, PC: 8}

func site(name, desc string, stack ...opstack.Slot) *CallSite {
	return &CallSite{
		Pos:   pos,
		Owner: "org/slf4j/Logger",
		Name:  name,
		Desc:  desc,
		Stack: opstack.NewSnapshot(stack...),
	}
}

// summary is a finding reduced to what the scenarios care about.
type summary struct {
	Category string
	Severity analysis.Severity
	Payload  interface{}
}

func check(t *testing.T, s *CallSite, signOnly bool) []summary {
	t.Helper()
	findings, err := Check(s, opstack.NewHierarchy(), signOnly)
	require.NoError(t, err)
	var out []summary
	for _, f := range findings {
		assert.Equal(t, pos, f.Pos)
		assert.Equal(t, s.Called(), f.Called)
		assert.NotEmpty(t, f.Message)
		out = append(out, summary{f.Category, f.Severity, f.Payload})
	}
	return out
}

func TestCheckScenarios(t *testing.T) {
	message := opstack.Slot{Signature: "Ljava/lang/String;"} // t.getMessage()
	computed := opstack.Slot{Signature: "Ljava/lang/String;"}

	for _, test := range []struct {
		name string
		site *CallSite
		want []summary
	}{
		{
			"one placeholder one argument",
			site("info", "(Ljava/lang/String;Ljava/lang/Object;)V", logger, str("My message is {}"), message),
			nil,
		},
		{
			"two placeholders two arguments",
			site("info", "(Ljava/lang/String;Ljava/lang/Object;Ljava/lang/Object;)V",
				logger, str("My {} is {}"), str("message"), message),
			nil,
		},
		{
			"three placeholders in array",
			site("info", "(Ljava/lang/String;[Ljava/lang/Object;)V", logger, str("My {} {} {}"), array(3, false)),
			nil,
		},
		{
			"marker and message without placeholder",
			site("error", "(Lorg/slf4j/Marker;Ljava/lang/String;)V", logger, marker, str("Hello, marker")),
			nil,
		},
		{
			"marker and placeholder without argument",
			site("error", "(Lorg/slf4j/Marker;Ljava/lang/String;)V", logger, marker, str("Hello, {}")),
			[]summary{{PlaceholderMismatch, analysis.High, Mismatch{Placeholders: 1, Arguments: 0}}},
		},
		{
			"marker and placeholder with argument",
			site("error", "(Lorg/slf4j/Marker;Ljava/lang/String;Ljava/lang/Object;)V",
				logger, marker, str("Hello, {}"), str("world")),
			nil,
		},
		{
			"plain message is never a format",
			site("debug", "(Ljava/lang/String;)V", logger, str("Hello, {}")),
			nil,
		},
		{
			"message and throwable is never a format",
			site("debug", "(Ljava/lang/String;Ljava/lang/Throwable;)V", logger, computed, exception),
			nil,
		},
		{
			"marker, message and throwable is never a format",
			site("error", "(Lorg/slf4j/Marker;Ljava/lang/String;Ljava/lang/Throwable;)V",
				logger, marker, str("failed {}"), exception),
			nil,
		},
		{
			"sign only format",
			site("warn", "(Ljava/lang/String;Ljava/lang/Object;)V", logger, str("???"), object),
			[]summary{
				{SignOnlyFormat, analysis.Normal, SignOnly{"???"}},
				{PlaceholderMismatch, analysis.High, Mismatch{Placeholders: 0, Arguments: 1}},
			},
		},
		{
			"sign only format with matching counts",
			site("warn", "(Ljava/lang/String;Ljava/lang/Object;)V", logger, str("{}"), object),
			[]summary{{SignOnlyFormat, analysis.Normal, SignOnly{"{}"}}},
		},
		{
			"computed format",
			site("info", "(Ljava/lang/String;Ljava/lang/Object;)V", logger, computed, object),
			[]summary{{FormatShouldBeConstant, analysis.High, nil}},
		},
		{
			"computed sign only format is not inspected",
			site("info", "(Ljava/lang/String;[Ljava/lang/Object;)V", logger, computed, opstack.Slot{Signature: "[Ljava/lang/Object;"}),
			[]summary{{FormatShouldBeConstant, analysis.High, nil}},
		},
		{
			"array from elsewhere",
			site("trace", "(Ljava/lang/String;[Ljava/lang/Object;)V", logger, str("values {} {}"), opstack.Slot{Signature: "[Ljava/lang/Object;"}),
			[]summary{{UnknownArray, analysis.High, nil}},
		},
		{
			"array with trailing throwable",
			site("error", "(Ljava/lang/String;[Ljava/lang/Object;)V", logger, str("{} and {} failed"), array(3, true)),
			nil,
		},
		{
			"trailing throwable takes no placeholder",
			site("error", "(Ljava/lang/String;Ljava/lang/Object;)V", logger, str("failed {}"), exception),
			[]summary{{PlaceholderMismatch, analysis.High, Mismatch{Placeholders: 1, Arguments: 0}}},
		},
		{
			"escaped placeholder",
			site("info", "(Ljava/lang/String;Ljava/lang/Object;)V", logger, str(`set \{} to {}`), object),
			nil,
		},
	} {
		got := check(t, test.site, true)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%s: findings mismatch (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestCheckSignOnlyDisabled(t *testing.T) {
	got := check(t, site("warn", "(Ljava/lang/String;Ljava/lang/Object;)V", logger, str("{}"), object), false)
	assert.Empty(t, got)
}

func TestCheckIgnoresOtherCalls(t *testing.T) {
	for _, s := range []*CallSite{
		{Owner: "org/slf4j/Logger", Name: "isDebugEnabled", Desc: "()Z"},
		{Owner: "org/slf4j/Logger", Name: "getName", Desc: "()Ljava/lang/String;"},
		{Owner: "org/apache/logging/log4j/Logger", Name: "info", Desc: "(Ljava/lang/String;Ljava/lang/Object;)V",
			Stack: opstack.NewSnapshot(logger, str("{} {}"), object)},
		{Owner: "java/util/List", Name: "add", Desc: "not a descriptor"},
	} {
		findings, err := Check(s, opstack.NewHierarchy(), true)
		assert.NoError(t, err, s.Called())
		assert.Empty(t, findings, s.Called())
	}
}

func TestCheckInvalidSignature(t *testing.T) {
	s := site("info", "(Ljava/lang/String", logger, str("{}"))
	findings, err := Check(s, opstack.NewHierarchy(), true)
	assert.Empty(t, findings)
	assert.True(t, errors.Is(err, descriptor.ErrInvalidSignature), "got %v", err)
}

// A stack the interpreter could not follow carries no evidence either way.
func TestCheckShortStack(t *testing.T) {
	s := &CallSite{Pos: pos, Owner: "org/slf4j/Logger", Name: "info", Desc: "(Ljava/lang/String;Ljava/lang/Object;)V"}
	assert.Empty(t, check(t, s, true))
}

// A user-defined exception type is recognized through the program's hierarchy.
func TestCheckProgramThrowable(t *testing.T) {
	prog := bytecode.NewProgram([]*bytecode.Class{{Name: "pkg/AppException", Super: "java/lang/RuntimeException"}})
	s := site("error", "(Ljava/lang/String;Ljava/lang/Object;Ljava/lang/Object;)V",
		logger, str("failed {}"), object, opstack.Slot{Signature: "Lpkg/AppException;"})

	findings, err := Check(s, prog.Hierarchy, true)
	require.NoError(t, err)
	assert.Empty(t, findings)

	findings, err = Check(s, opstack.NewHierarchy(), true)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, Mismatch{Placeholders: 1, Arguments: 2}, findings[0].Payload)
}
