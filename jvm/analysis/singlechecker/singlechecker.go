// Package singlechecker defines the main function for an analysis
// driver with only a single analysis. This package makes it easy for a
// provider of an analysis package to provide a convenient standalone
// tool that invokes just that analysis.
//
// For example, if example.org/findbadness is an analysis package,
// all that is needed to define a standalone tool is a file,
// example.org/findbadness/cmd/findbadness/main.go, containing:
//
//	// The findbadness command runs an analysis.
//	package main
//
//	import (
//		"example.org/findbadness"
//		"github.com/eller86/findbugs-slf4j/jvm/analysis/singlechecker"
//	)
//
//	func main() { singlechecker.Main(findbadness.Analysis) }
package singlechecker

import (
	"flag"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eller86/findbugs-slf4j/jvm/analysis"
	"github.com/eller86/findbugs-slf4j/jvm/analysis/internal/checker"
)

// Main is the main function for a checker command for a single analysis.
func Main(a *analysis.Analysis) {
	log.SetFlags(0)
	log.SetPrefix(a.Name + ": ")

	if err := Command(a).Execute(); err != nil {
		log.Fatal(err)
	}
}

// Command returns the command that Main executes, for embedding the
// analysis in a larger command tree.
func Command(a *analysis.Analysis) *cobra.Command {
	if err := analysis.Validate([]*analysis.Analysis{a}); err != nil {
		log.Fatal(err)
	}

	short := a.Doc
	if i := strings.IndexByte(short, '\n'); i >= 0 {
		short = short[:i]
	}
	cmd := &cobra.Command{
		Use:           a.Name + " [flags] trace.yaml...",
		Short:         short,
		Long:          a.Doc,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checker.Run(args, []*analysis.Analysis{a})
		},
	}

	fs := cmd.Flags()
	checker.RegisterFlags(fs)

	a.Flags.VisitAll(func(f *flag.Flag) {
		if fs.Lookup(f.Name) != nil {
			log.Printf("%s flag -%s would conflict with driver; skipping", a.Name, f.Name)
			return
		}
		fs.AddGoFlag(f)
	})
	return cmd
}
