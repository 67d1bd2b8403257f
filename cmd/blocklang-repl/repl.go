package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"blocklang/builtins"
	"blocklang/compiler"
	"blocklang/parser"
	"blocklang/value"
	"blocklang/vm"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
)

// replCmd implements an interactive session: each complete block is
// compiled and run against a persistent global environment, so
// `{set:...}` bindings from one line are visible to the next — unlike
// cmd_repl_compiled.go, which recompiled and discarded state every line,
// this keeps `global` alive across Execute's whole loop, matching the
// language's actual model of a single running program.
type replCmd struct {
	disassemble  bool
	dumpBytecode bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive block-language session" }
func (*replCmd) Usage() string {
	return `repl [-disassemble] [-dumpBytecode]:
  Read blocks from standard input, one at a time, evaluating each
  against a persistent environment.
`
}

func (cmd *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.disassemble, "disassemble", false, "print each block's disassembled bytecode before running it")
	f.BoolVar(&cmd.dumpBytecode, "dumpBytecode", false, "write each block's encoded bytecode to bytecode.bin")
	f.BoolVar(&cmd.disassemble, "di", false, "shorthand for -disassemble")
	f.BoolVar(&cmd.dumpBytecode, "du", false, "shorthand for -dumpBytecode")
}

func (cmd *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to start readline: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	fmt.Fprintln(rl.Stdout(), "Welcome to blocklang!")

	global := value.NewEnvironment(nil)
	builtins.Register(global, f.Args())
	sink := vm.NewWriterSink(rl.Stdout())

	var buffer strings.Builder
	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}

		if buffer.Len() == 0 && strings.TrimSpace(line) == "exit" {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteByte('\n')
		}
		buffer.WriteString(line)

		if !bracesBalanced(buffer.String()) {
			continue
		}
		source := buffer.String()
		buffer.Reset()

		nodes, err := parser.Parse(source)
		if err != nil {
			fmt.Fprintln(rl.Stderr(), err)
			continue
		}
		bc, err := compiler.CompileProgram(nodes)
		if err != nil {
			fmt.Fprintln(rl.Stderr(), err)
			continue
		}

		if cmd.disassemble {
			fmt.Fprint(rl.Stdout(), compiler.DisassembleBytecode(bc))
		}
		if cmd.dumpBytecode {
			if err := compiler.DumpBytecode(bc, "bytecode.bin"); err != nil {
				fmt.Fprintf(rl.Stderr(), "💥 %v\n", err)
			}
		}

		if err := vm.New(bc).Run(global, sink); err != nil {
			if thrown, ok := err.(*value.ThrownError); ok {
				fmt.Fprintln(rl.Stderr(), value.ToDisplayString(thrown.Val))
			} else {
				fmt.Fprintln(rl.Stderr(), err)
			}
			continue
		}
		fmt.Fprintln(rl.Stdout())
	}
}

// bracesBalanced reports whether every `{` in src has a matching `}`,
// the REPL's signal to keep reading more lines for a multi-line block
// rather than attempting to parse a partial one — the extrapolation of
// cmd_repl_compiled.go's isInputReady brace count onto a grammar with no
// separate token stream.
func bracesBalanced(src string) bool {
	depth := 0
	for _, r := range src {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth <= 0
}
