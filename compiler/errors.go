package compiler

import "fmt"

// SemanticError is a user-facing compile error: bad arity, nonlocal
// outside a function, assigning through a call, and so on.
type SemanticError struct {
	Message string
}

func (e SemanticError) Error() string {
	return fmt.Sprintf("💥 SemanticError: %s", e.Message)
}

// DeveloperError indicates a bug in the compiler itself (e.g. an
// unknown opcode reaching AssembleInstruction) rather than bad user
// source.
type DeveloperError struct {
	Message string
}

func (e DeveloperError) Error() string {
	return fmt.Sprintf("🤖 DeveloperError: %s", e.Message)
}
