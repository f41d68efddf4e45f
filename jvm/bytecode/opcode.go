package bytecode

import "fmt"

// An Opcode is a JVM instruction opcode.
type Opcode uint8

// The opcodes that analyses and the trace format refer to by name.
// Other opcodes are still representable by value.
const (
	Nop             Opcode = 0x00
	AconstNull      Opcode = 0x01
	Iconst0         Opcode = 0x03
	Bipush          Opcode = 0x10
	Sipush          Opcode = 0x11
	Ldc             Opcode = 0x12
	LdcW            Opcode = 0x13
	Aload           Opcode = 0x19
	Aload0          Opcode = 0x2a
	Aload1          Opcode = 0x2b
	Aload2          Opcode = 0x2c
	Aload3          Opcode = 0x2d
	Astore          Opcode = 0x3a
	Aastore         Opcode = 0x53
	Pop             Opcode = 0x57
	Dup             Opcode = 0x59
	Areturn         Opcode = 0xb0
	Return          Opcode = 0xb1
	Getstatic       Opcode = 0xb2
	Getfield        Opcode = 0xb4
	Invokevirtual   Opcode = 0xb6
	Invokespecial   Opcode = 0xb7
	Invokestatic    Opcode = 0xb8
	Invokeinterface Opcode = 0xb9
	Invokedynamic   Opcode = 0xba
	New             Opcode = 0xbb
	Anewarray       Opcode = 0xbd
	Athrow          Opcode = 0xbf
	Checkcast       Opcode = 0xc0
)

var mnemonics = map[Opcode]string{
	Nop:             "nop",
	AconstNull:      "aconst_null",
	Iconst0:         "iconst_0",
	Bipush:          "bipush",
	Sipush:          "sipush",
	Ldc:             "ldc",
	LdcW:            "ldc_w",
	Aload:           "aload",
	Aload0:          "aload_0",
	Aload1:          "aload_1",
	Aload2:          "aload_2",
	Aload3:          "aload_3",
	Astore:          "astore",
	Aastore:         "aastore",
	Pop:             "pop",
	Dup:             "dup",
	Areturn:         "areturn",
	Return:          "return",
	Getstatic:       "getstatic",
	Getfield:        "getfield",
	Invokevirtual:   "invokevirtual",
	Invokespecial:   "invokespecial",
	Invokestatic:    "invokestatic",
	Invokeinterface: "invokeinterface",
	Invokedynamic:   "invokedynamic",
	New:             "new",
	Anewarray:       "anewarray",
	Athrow:          "athrow",
	Checkcast:       "checkcast",
}

var byMnemonic = func() map[string]Opcode {
	m := make(map[string]Opcode, len(mnemonics))
	for op, name := range mnemonics {
		m[name] = op
	}
	return m
}()

// Lookup returns the opcode with the given mnemonic.
func Lookup(mnemonic string) (Opcode, bool) {
	op, ok := byMnemonic[mnemonic]
	return op, ok
}

func (op Opcode) String() string {
	if name, ok := mnemonics[op]; ok {
		return name
	}
	return fmt.Sprintf("op%#02x", uint8(op))
}

// IsInvoke reports whether op is one of the method invocation opcodes
// that name an owner, method and descriptor.
func (op Opcode) IsInvoke() bool {
	switch op {
	case Invokevirtual, Invokespecial, Invokestatic, Invokeinterface:
		return true
	}
	return false
}
