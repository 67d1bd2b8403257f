package parser

import "fmt"

// SyntaxError is the opaque parse-failure kind the parser surfaces: a
// position plus a message. Diagnostics are best-effort; the only
// contract is that a successful parse produces a well-formed AST.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func CreateSyntaxError(line, column int, message string) SyntaxError {
	return SyntaxError{Line: line, Column: column, Message: message}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("💥 Syntax error:\nline:%d, column:%d - %s", e.Line, e.Column, e.Message)
}
