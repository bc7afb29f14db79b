// Command dupfind reports files with identical contents.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/dupfind/internal/cli"
)

// Version is set at build time.
//
//nolint:gochecknoglobals // Set by the linker
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
