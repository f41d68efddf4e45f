package singlechecker_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eller86/findbugs-slf4j/jvm/analysis/internal/checker"
	"github.com/eller86/findbugs-slf4j/jvm/analysis/plugin/slf4j"
	"github.com/eller86/findbugs-slf4j/jvm/analysis/singlechecker"
)

const signOnly = `
classes:
- name: pkg/UsingSignOnly
  source: UsingSignOnly.java
  methods:
  - name: method
    desc: ()V
    code:
    - pc: 5
      line: 7
      op: invokeinterface
      owner: org/slf4j/Logger
      name: info
      desc: (Ljava/lang/String;Ljava/lang/Object;)V
      stack:
      - {sig: Lorg/slf4j/Logger;}
      - {sig: Ljava/lang/String;, const: "{}"}
      - {sig: Ljava/lang/Object;}
`

func TestCommandFlags(t *testing.T) {
	color.NoColor = true
	filename := filepath.Join(t.TempDir(), "signonly.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(signOnly), 0o644))

	var stdout bytes.Buffer
	checker.Stdout = &stdout
	defer func() { checker.Stdout = os.Stdout }()

	cmd := singlechecker.Command(slf4j.Analysis)
	for _, name := range []string{"json", "debug", "context", "cpuprofile", "memprofile", "trace", "signonly"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}

	cmd.SetArgs([]string{filename})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "[slf4j.SLF4J_SIGN_ONLY_FORMAT]")

	stdout.Reset()
	cmd = singlechecker.Command(slf4j.Analysis)
	cmd.SetArgs([]string{"--signonly=false", filename})
	require.NoError(t, cmd.Execute())
	assert.Empty(t, stdout.String())

	// Restore the default shared by the package-level flag.
	require.NoError(t, cmd.Flags().Set("signonly", "true"))
}

func TestCommandNeedsFiles(t *testing.T) {
	cmd := singlechecker.Command(slf4j.Analysis)
	cmd.SetArgs([]string{})
	cmd.SetOut(new(bytes.Buffer))
	assert.Error(t, cmd.Execute())
}
