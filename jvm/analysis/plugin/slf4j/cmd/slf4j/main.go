// The slf4j command applies the
// github.com/eller86/findbugs-slf4j/jvm/analysis/plugin/slf4j
// analysis to the classes described by the specified trace files.
package main

import (
	"github.com/eller86/findbugs-slf4j/jvm/analysis/plugin/slf4j"
	"github.com/eller86/findbugs-slf4j/jvm/analysis/singlechecker"
)

func main() { singlechecker.Main(slf4j.Analysis) }
