// Command largest lists the largest files below a directory.
package main

import (
	"os"

	"github.com/idelchi/largest/internal/cli"
)

// version is set at build time via -ldflags.
var version = "unknown - unofficial & generated by unknown"

func main() {
	os.Exit(int(cli.New(version).Run(os.Args[1:])))
}
