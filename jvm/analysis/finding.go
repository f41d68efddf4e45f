package analysis

import (
	"fmt"
	"sort"
	"sync"

	"github.com/eller86/findbugs-slf4j/jvm/bytecode"
)

// Severity ranks findings. The zero value is not a valid severity.
type Severity int

const (
	Low Severity = iota + 1
	Normal
	High
)

var severityNames = map[Severity]string{
	Low:    "low",
	Normal: "normal",
	High:   "high",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	name, ok := severityNames[s]
	if !ok {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	for sev, name := range severityNames {
		if name == string(text) {
			*s = sev
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}

// A Finding is a message associated with a source location.
//
// An Analysis may return a variety of findings; the optional Category,
// which should be a constant, may be used to classify them.
// Payload carries category-specific data, such as the counts that
// disagree, and must be a plain value that encodes as JSON.
type Finding struct {
	Pos      bytecode.Pos
	Category string // optional
	Severity Severity
	Message  string
	Called   string      // the invoked method, if the finding is about a call
	Payload  interface{} // optional
}

func (f *Finding) String() string {
	if f.Category != "" {
		return fmt.Sprintf("%s: [%s] %s", f.Pos, f.Category, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Pos, f.Message)
}

// A Sink collects findings from concurrently running units.
// Appends may happen from any goroutine; the order in which findings
// from different units arrive is not significant.
type Sink struct {
	mu       sync.Mutex
	findings []*Finding
}

// Add appends findings to the sink.
func (s *Sink) Add(findings ...*Finding) {
	s.mu.Lock()
	s.findings = append(s.findings, findings...)
	s.mu.Unlock()
}

// Findings returns the collected findings in position order.
func (s *Sink) Findings() []*Finding {
	s.mu.Lock()
	out := make([]*Finding, len(s.findings))
	copy(out, s.findings)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// Less orders findings by class, method, pc and category.
func Less(x, y *Finding) bool {
	if x.Pos.Class != y.Pos.Class {
		return x.Pos.Class < y.Pos.Class
	}
	if x.Pos.Method != y.Pos.Method {
		return x.Pos.Method < y.Pos.Method
	}
	if x.Pos.PC != y.Pos.PC {
		return x.Pos.PC < y.Pos.PC
	}
	return x.Category < y.Category
}
