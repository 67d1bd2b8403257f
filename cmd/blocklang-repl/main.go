// Command blocklang-repl is the subcommand-structured developer tool:
// an interactive read-eval-print loop plus bytecode inspection flags,
// the natural extrapolation of the teacher's cmd_repl_compiled.go onto
// this language, and the home for the subcommands/readline dependencies
// the single-shot cmd/blocklang binary has no use for.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&replCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
