package slf4j

import (
	"errors"

	"github.com/eller86/findbugs-slf4j/jvm/opstack"
	"github.com/eller86/findbugs-slf4j/jvm/types/descriptor"
)

// ErrUnresolvedArrayArgument is returned by countArguments when the
// arguments were passed as an array whose length cannot be known
// statically, for example because it was received from the caller.
var ErrUnresolvedArrayArgument = errors.New("argument array was not built in place")

// A ThrowableClassifier decides whether a stack slot statically holds
// a java.lang.Throwable. *opstack.Hierarchy is one.
type ThrowableClassifier interface {
	IsThrowable(slot *opstack.Slot) bool
}

// countArguments returns the number of arguments that a call with
// signature sig substitutes into placeholders, given the operand stack
// at the call. A trailing Throwable is rendered as a stack trace and a
// leading Marker only tags the event, so neither is counted.
func countArguments(sig *descriptor.Method, stack *opstack.Snapshot, throwables ThrowableClassifier) (int, error) {
	if sig.Last() == descriptor.ObjectArray {
		array, ok := stack.Slot(0).ArrayLiteral()
		if !ok || array.Size < 0 {
			return 0, ErrUnresolvedArrayArgument
		}
		n := array.Size
		if array.ThrowableAtLast {
			n--
		}
		return n, nil
	}

	n := sig.NumParams() - 1 // the format is not an argument
	if sig.Param(0) == descriptor.Marker {
		n--
	}
	if throwables.IsThrowable(stack.Slot(0)) {
		n--
	}
	return n, nil
}
