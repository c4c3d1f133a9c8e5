// Command keystorm-core is a minimal host for the editing core: it opens
// an optional file argument through the File Binding and reports success
// or failure. It carries no rendering, input, or plugin surface — those
// are host responsibilities the editing core is specified to sit beneath.
package main

import (
	"fmt"
	"os"

	"github.com/keystorm-dev/keystorm-core/internal/binding"
	"github.com/keystorm-dev/keystorm-core/internal/engine"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "usage: keystorm-core [path]")
		return 1
	}

	if len(args) == 0 {
		e := engine.New()
		fmt.Printf("keystorm-core: new buffer (%d bytes)\n", e.Len())
		return 0
	}

	path := args[0]
	b, err := binding.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keystorm-core: %v\n", err)
		return 1
	}

	fmt.Printf("keystorm-core: opened %s (%d bytes, %d lines)\n",
		b.Path, b.Engine.Len(), b.Engine.LineCount())
	return 0
}
