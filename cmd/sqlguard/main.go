// Command sqlguard is a demonstration host for the SQL safety validation
// core: it loads a policy file, validates SQL given on the command line
// or read from stdin, and prints the resulting violations. It is not an
// interception adapter — real hosts call pkg/sqlguard directly from their
// own connection or ORM layer.
package main

import (
	"fmt"
	"os"

	"github.com/wmenjoy/sql-tools/cmd/sqlguard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
