package slf4j

import "testing"

func TestCountPlaceholders(t *testing.T) {
	for _, test := range []struct {
		format string
		want   int
	}{
		{"", 0},
		{"no placeholder", 0},
		{"{}", 1},
		{"a {} b", 1},
		{"My {} is {}", 2},
		{"{}{}", 2},
		{"{}{}{}", 3},
		{`a \{} b`, 0},
		{`a \\{} b`, 1},
		{`a \\\{} b`, 0},
		{`a \\\\{} b`, 1},
		{`a \\\\\{} b`, 0},
		{`\{}{}`, 1},
		{`{}\{}`, 1},
		{"{ }", 0},
		{"{{}}", 1},
		{"日本{}語{}", 2},
		{"😀{}", 1},
		{"line\n{}", 1},
	} {
		if got := countPlaceholders(test.format); got != test.want {
			t.Errorf("countPlaceholders(%q) = %d, want %d", test.format, got, test.want)
		}
	}
}

func TestIsSignOnly(t *testing.T) {
	for format, want := range map[string]bool{
		"???":         true,
		"{}":          true,
		"{} - {}: {}": true,
		"":            true,
		"a":           false,
		"{} é":        false,
		"値 = {}":      false,
		"123 {}":      true,
	} {
		if got := isSignOnly(format); got != want {
			t.Errorf("isSignOnly(%q) = %t, want %t", format, got, want)
		}
	}
}
