// Command blocklang runs a program written in the block language: either
// inline source given with -c/--code, or a file to read as UTF-8. This is
// the direct, single-binary entry point spec.md §6 describes; the
// subcommand-structured developer tooling (REPL, bytecode dump) lives in
// cmd/blocklang-repl, generalizing the teacher's split between
// cmd_run_compiled.go and cmd_repl_compiled.go.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"blocklang/builtins"
	"blocklang/compiler"
	"blocklang/parser"
	"blocklang/value"
	"blocklang/vm"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("blocklang", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var code string
	flags.StringVar(&code, "c", "", "evaluate the given source instead of reading a file")
	flags.StringVar(&code, "code", "", "evaluate the given source instead of reading a file")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: blocklang [-c|--code CODE] [FILE] [args...]")
		flags.PrintDefaults()
	}
	if err := flags.Parse(argv); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	rest := flags.Args()
	var src string
	var userArgs []string

	if code != "" {
		src = code
		userArgs = rest
	} else {
		if len(rest) < 1 {
			flags.Usage()
			return 2
		}
		data, err := os.ReadFile(rest[0])
		if err != nil {
			fmt.Fprintf(stderr, "💥 Failed to read file: %v\n", err)
			return 1
		}
		src = string(data)
		userArgs = rest[1:]
	}

	nodes, err := parser.Parse(src)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	bc, err := compiler.CompileProgram(nodes)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	global := value.NewEnvironment(nil)
	builtins.Register(global, userArgs)

	sink := vm.NewWriterSink(stdout)
	if err := vm.New(bc).Run(global, sink); err != nil {
		if thrown, ok := err.(*value.ThrownError); ok {
			fmt.Fprintln(stderr, value.ToDisplayString(thrown.Val))
		} else {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}

	fmt.Fprintln(stdout)
	return 0
}
