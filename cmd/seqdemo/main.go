// Command seqdemo replays the seqkit usage catalogue and computes column
// statistics over line-oriented files.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "seqdemo:", err)
		os.Exit(1)
	}
}
