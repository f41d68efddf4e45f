package opstack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eller86/findbugs-slf4j/jvm/opstack"
)

func TestSnapshotTopFirst(t *testing.T) {
	s := opstack.NewSnapshot(
		opstack.Slot{Signature: "Lorg/slf4j/Logger;"},
		opstack.Slot{Signature: "Ljava/lang/String;", Constant: "hello {}"},
		opstack.Slot{Signature: "Ljava/lang/Object;"},
	)
	require.Equal(t, 3, s.Depth())
	assert.Equal(t, "Ljava/lang/Object;", s.Slot(0).Signature)
	assert.Equal(t, "hello {}", s.Slot(1).Constant)
	assert.Equal(t, "Lorg/slf4j/Logger;", s.Slot(2).Signature)
	assert.Nil(t, s.Slot(3))
	assert.Nil(t, s.Slot(-1))
}

func TestNilSnapshot(t *testing.T) {
	var s *opstack.Snapshot
	assert.Equal(t, 0, s.Depth())
	assert.Nil(t, s.Slot(0))
}

func TestArrayLiteralTag(t *testing.T) {
	slot := &opstack.Slot{
		Signature: "[Ljava/lang/Object;",
		Tag:       &opstack.ArrayLiteral{Size: 3, ThrowableAtLast: true},
	}
	a, ok := slot.ArrayLiteral()
	require.True(t, ok)
	assert.Equal(t, 3, a.Size)
	assert.True(t, a.ThrowableAtLast)

	_, ok = (&opstack.Slot{Signature: "[Ljava/lang/Object;"}).ArrayLiteral()
	assert.False(t, ok)

	var none *opstack.Slot
	_, ok = none.ArrayLiteral()
	assert.False(t, ok)
	assert.False(t, none.IsConstant())
}

func TestHierarchyIsThrowable(t *testing.T) {
	h := opstack.NewHierarchy()
	h.Add("pkg/MyException", "java/lang/IllegalStateException")
	h.Add("pkg/Cycle", "pkg/Cycle")

	for sig, want := range map[string]bool{
		"Ljava/lang/Throwable;":           true,
		"Ljava/lang/RuntimeException;":    true,
		"Ljava/io/FileNotFoundException;": true,
		"Lpkg/MyException;":               true,
		"Ljava/lang/String;":              false,
		"Lpkg/Unknown;":                   false,
		"Lpkg/Cycle;":                     false,
		"[Ljava/lang/Throwable;":          false,
		"I":                               false,
		"":                                false,
	} {
		got := h.IsThrowable(&opstack.Slot{Signature: sig})
		assert.Equal(t, want, got, "IsThrowable(%q)", sig)
	}
	assert.False(t, h.IsThrowable(nil))
}
