// Command guardrails is a single-shot pre-execution security filter: it
// reads one tool call as JSON on stdin and writes one decision as JSON
// on stdout.
package main

import (
	"os"

	"github.com/gzhole/guardrails/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
