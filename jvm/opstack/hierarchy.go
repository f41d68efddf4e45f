package opstack

import "github.com/eller86/findbugs-slf4j/jvm/types/descriptor"

const throwableClass = "java/lang/Throwable"

// wellKnown maps JDK exception classes to their super classes, so that
// a slot of such a type is recognized as a Throwable even when the
// analyzed program does not carry the JDK.
var wellKnown = map[string]string{
	"java/lang/Throwable":                       "java/lang/Object",
	"java/lang/Exception":                       "java/lang/Throwable",
	"java/lang/Error":                           "java/lang/Throwable",
	"java/lang/RuntimeException":                "java/lang/Exception",
	"java/lang/IllegalArgumentException":        "java/lang/RuntimeException",
	"java/lang/IllegalStateException":           "java/lang/RuntimeException",
	"java/lang/NullPointerException":            "java/lang/RuntimeException",
	"java/lang/UnsupportedOperationException":   "java/lang/RuntimeException",
	"java/lang/IndexOutOfBoundsException":       "java/lang/RuntimeException",
	"java/lang/ArrayIndexOutOfBoundsException":  "java/lang/IndexOutOfBoundsException",
	"java/lang/ClassCastException":              "java/lang/RuntimeException",
	"java/lang/ArithmeticException":             "java/lang/RuntimeException",
	"java/lang/NumberFormatException":           "java/lang/IllegalArgumentException",
	"java/lang/InterruptedException":            "java/lang/Exception",
	"java/lang/ReflectiveOperationException":    "java/lang/Exception",
	"java/lang/ClassNotFoundException":          "java/lang/ReflectiveOperationException",
	"java/lang/CloneNotSupportedException":      "java/lang/Exception",
	"java/lang/AssertionError":                  "java/lang/Error",
	"java/lang/OutOfMemoryError":                "java/lang/VirtualMachineError",
	"java/lang/StackOverflowError":              "java/lang/VirtualMachineError",
	"java/lang/VirtualMachineError":             "java/lang/Error",
	"java/io/IOException":                       "java/lang/Exception",
	"java/io/FileNotFoundException":             "java/io/IOException",
	"java/io/UncheckedIOException":              "java/lang/RuntimeException",
	"java/util/NoSuchElementException":          "java/lang/RuntimeException",
	"java/util/ConcurrentModificationException": "java/lang/RuntimeException",
	"java/util/concurrent/ExecutionException":   "java/lang/Exception",
	"java/util/concurrent/TimeoutException":     "java/lang/Exception",
}

// A Hierarchy records the super class of each known class and answers
// whether a stack slot statically holds a Throwable.
//
// A Hierarchy is populated before analysis starts and is read-only
// afterwards, so it may be shared by concurrent analyses.
type Hierarchy struct {
	super map[string]string
}

// NewHierarchy returns a hierarchy that knows the common JDK exception
// classes.
func NewHierarchy() *Hierarchy {
	h := &Hierarchy{super: make(map[string]string, len(wellKnown))}
	for class, super := range wellKnown {
		h.super[class] = super
	}
	return h
}

// Add records that class extends super. Both are internal names such
// as "java/lang/Exception".
func (h *Hierarchy) Add(class, super string) {
	if class == "" || super == "" {
		return
	}
	h.super[class] = super
}

// IsSubclass reports whether class is ancestor or extends it,
// transitively, as far as the hierarchy knows.
func (h *Hierarchy) IsSubclass(class, ancestor string) bool {
	seen := make(map[string]bool)
	for class != "" && !seen[class] {
		if class == ancestor {
			return true
		}
		seen[class] = true
		class = h.super[class]
	}
	return false
}

// IsThrowable reports whether the static type of slot is assignable to
// java.lang.Throwable. Slots of unknown type are not.
func (h *Hierarchy) IsThrowable(slot *Slot) bool {
	if slot == nil {
		return false
	}
	class := descriptor.Token(slot.Signature).ClassName()
	if class == "" {
		return false
	}
	return h.IsSubclass(class, throwableClass)
}
