package slf4j

import (
	"fmt"

	"github.com/eller86/findbugs-slf4j/jvm/opstack"
	"github.com/eller86/findbugs-slf4j/jvm/types/descriptor"
)

// formatSlot returns the stack slot that holds the format argument of
// a call with signature sig: the first String parameter in declaration
// order. It returns nil if sig has no String parameter.
func formatSlot(sig *descriptor.Method, stack *opstack.Snapshot) *opstack.Slot {
	i := sig.IndexFromTop(descriptor.String)
	if i < 0 {
		return nil
	}
	return stack.Slot(i)
}

// constantFormat returns the compile-time value of the format slot.
func constantFormat(slot *opstack.Slot) (string, bool) {
	if !slot.IsConstant() {
		return "", false
	}
	if s, ok := slot.Constant.(string); ok {
		return s, true
	}
	return fmt.Sprint(slot.Constant), true
}
