// Package descriptor parses JVM method descriptors, the encoded
// signatures such as "(Ljava/lang/String;[Ljava/lang/Object;)V" that
// identify the parameter and return types of a method in class files.
//
// Each parameter is returned as a Token that keeps its full encoded
// form, including the terminating ';' of reference types, so that a
// token compares equal only to the exact same type:
//
//	(Lorg/slf4j/Marker;Ljava/lang/String;)V
//
// yields the tokens "Lorg/slf4j/Marker;" and "Ljava/lang/String;" and
// the return token "V".
//
package descriptor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSignature is returned (wrapped) for any string that is not
// a well-formed method descriptor.
var ErrInvalidSignature = errors.New("invalid method signature")

// A Token is one encoded field type: a base type such as "I", a
// reference type such as "Ljava/lang/String;", or an array type such
// as "[Ljava/lang/Object;".
type Token string

// Well-known tokens.
const (
	String      Token = "Ljava/lang/String;"
	Object      Token = "Ljava/lang/Object;"
	ObjectArray Token = "[Ljava/lang/Object;"
	Throwable   Token = "Ljava/lang/Throwable;"
	Marker      Token = "Lorg/slf4j/Marker;"
	Void        Token = "V"
)

// IsArray reports whether t denotes an array type.
func (t Token) IsArray() bool {
	return strings.HasPrefix(string(t), "[")
}

// ClassName returns the internal class name of a class token, for
// example "java/lang/String" for "Ljava/lang/String;", or "" if t is
// not a class token.
func (t Token) ClassName() string {
	s := string(t)
	if len(s) < 3 || s[0] != 'L' || s[len(s)-1] != ';' {
		return ""
	}
	return s[1 : len(s)-1]
}

// A Method is a parsed method descriptor.
type Method struct {
	Params []Token // in declaration order
	Result Token
}

// NumParams returns the number of declared parameters.
func (m *Method) NumParams() int { return len(m.Params) }

// Param returns the i'th parameter, or "" if i is out of range.
func (m *Method) Param(i int) Token {
	if i < 0 || i >= len(m.Params) {
		return ""
	}
	return m.Params[i]
}

// Last returns the final parameter, or "" for a niladic method.
func (m *Method) Last() Token { return m.Param(len(m.Params) - 1) }

// IndexFromTop returns the operand stack index, counted from the top,
// of the first parameter equal to t, or -1 if there is none.
// Arguments are pushed in declaration order, so the last parameter is
// at index 0.
func (m *Method) IndexFromTop(t Token) int {
	for i, p := range m.Params {
		if p == t {
			return len(m.Params) - 1 - i
		}
	}
	return -1
}

func (m *Method) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, p := range m.Params {
		sb.WriteString(string(p))
	}
	sb.WriteByte(')')
	sb.WriteString(string(m.Result))
	return sb.String()
}

// Parse parses a method descriptor of the form "(<params>)<result>".
func Parse(desc string) (*Method, error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, fmt.Errorf("%w: %q: missing '('", ErrInvalidSignature, desc)
	}
	end := strings.IndexByte(desc, ')')
	if end < 0 {
		return nil, fmt.Errorf("%w: %q: missing ')'", ErrInvalidSignature, desc)
	}

	m := new(Method)
	params := desc[1:end]
	for len(params) > 0 {
		tok, rest, err := next(params)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSignature, desc, err)
		}
		m.Params = append(m.Params, tok)
		params = rest
	}

	result := desc[end+1:]
	if result == string(Void) {
		m.Result = Void
		return m, nil
	}
	tok, rest, err := next(result)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: result: %v", ErrInvalidSignature, desc, err)
	}
	if rest != "" {
		return nil, fmt.Errorf("%w: %q: trailing %q after result", ErrInvalidSignature, desc, rest)
	}
	m.Result = tok
	return m, nil
}

// next splits the leading field type off s:
//
//	field  = base | 'L' classname ';' | '[' field
//	base   = 'B' | 'C' | 'D' | 'F' | 'I' | 'J' | 'S' | 'Z'
func next(s string) (Token, string, error) {
	i := 0
	for i < len(s) && s[i] == '[' {
		i++
	}
	if i == len(s) {
		return "", "", fmt.Errorf("missing type")
	}
	switch s[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return Token(s[:i+1]), s[i+1:], nil
	case 'L':
		semi := strings.IndexByte(s[i:], ';')
		if semi < 0 {
			return "", "", fmt.Errorf("unterminated class type %q", s[i:])
		}
		if semi == 1 {
			return "", "", fmt.Errorf("empty class name")
		}
		return Token(s[:i+semi+1]), s[i+semi+1:], nil
	}
	return "", "", fmt.Errorf("unexpected %q", s[i])
}

// MustParse is like Parse but panics on error.
// It is intended for descriptors known at compile time.
func MustParse(desc string) *Method {
	m, err := Parse(desc)
	if err != nil {
		panic(err)
	}
	return m
}
