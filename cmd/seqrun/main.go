// Command seqrun is a demo harness for the sequence engine: it wires a
// small built-in graph and function registry through runner.Runner and
// reports the run outcome. It is glue for manual smoke-testing, not the
// real graph-loading CLI (spec §1 scopes that out).
package main

import (
	"os"

	"github.com/dshills/seqengine-go/cmd/seqrun/demo"
)

func main() {
	os.Exit(demo.Execute())
}
