package parser

import (
	"testing"

	"blocklang/ast"
)

func TestParse_PlainLiteral(t *testing.T) {
	nodes, err := Parse("hello world")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	s, ok := nodes[0].(ast.String)
	if !ok || s.Text != "hello world" {
		t.Fatalf("expected String(%q), got %#v", "hello world", nodes[0])
	}
}

func TestParse_SimpleBlockNoAccessors(t *testing.T) {
	nodes, err := Parse("{a}")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	v, ok := nodes[0].(ast.Variable)
	if !ok {
		t.Fatalf("expected Variable, got %#v", nodes[0])
	}
	name, ok := soleLiteralName(v.Access.Head)
	if !ok || name != "a" {
		t.Fatalf("expected head %q, got %#v", "a", v.Access.Head)
	}
	if len(v.Access.Accessors) != 0 {
		t.Fatalf("expected no accessors, got %d", len(v.Access.Accessors))
	}
}

func TestParse_CallWithArgs(t *testing.T) {
	nodes, err := Parse("{add:1:2:no;}")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	v := nodes[0].(ast.Variable)
	if name, _ := soleLiteralName(v.Access.Head); name != "add" {
		t.Fatalf("expected head add, got %q", name)
	}
	if len(v.Access.Accessors) != 1 || v.Access.Accessors[0].Kind != ast.AccessorCall {
		t.Fatalf("expected one call accessor, got %#v", v.Access.Accessors)
	}
	args := v.Access.Accessors[0].Args
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(args))
	}
	wantTexts := []string{"1", "2", "no"}
	for i, want := range wantTexts {
		got, ok := soleLiteralName(args[i])
		if !ok || got != want {
			t.Fatalf("arg %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestParse_ZeroArgCall(t *testing.T) {
	nodes, err := Parse("{list;}")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	v := nodes[0].(ast.Variable)
	if len(v.Access.Accessors) != 1 || len(v.Access.Accessors[0].Args) != 0 {
		t.Fatalf("expected zero-arg call, got %#v", v.Access.Accessors)
	}
}

func TestParse_SetDesugars(t *testing.T) {
	nodes, err := Parse("{set:a;b;}")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	sv, ok := nodes[0].(ast.SetVar)
	if !ok {
		t.Fatalf("expected SetVar, got %#v", nodes[0])
	}
	if name, _ := soleLiteralName(sv.Access.Head); name != "a" {
		t.Fatalf("expected target a, got %#v", sv.Access)
	}
	if name, _ := soleLiteralName(sv.Value); name != "b" {
		t.Fatalf("expected value b, got %#v", sv.Value)
	}
}

func TestParse_DelDesugars(t *testing.T) {
	nodes, err := Parse("{del:a;}")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	dv, ok := nodes[0].(ast.DelVar)
	if !ok {
		t.Fatalf("expected DelVar, got %#v", nodes[0])
	}
	if name, _ := soleLiteralName(dv.Access.Head); name != "a" {
		t.Fatalf("expected target a, got %#v", dv.Access)
	}
}

func TestParse_SetWithAccessorTarget(t *testing.T) {
	nodes, err := Parse("{set:a.b;v;}")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	sv := nodes[0].(ast.SetVar)
	if len(sv.Access.Accessors) != 1 || sv.Access.Accessors[0].Kind != ast.AccessorAttr {
		t.Fatalf("expected one attr accessor on target, got %#v", sv.Access.Accessors)
	}
}

func TestParse_FuncDesugarsToSetVarLambda(t *testing.T) {
	nodes, err := Parse("{func:{call3:f;}:{f:1;}{f:2;}{f:3;};}")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	sv, ok := nodes[0].(ast.SetVar)
	if !ok {
		t.Fatalf("expected SetVar, got %#v", nodes[0])
	}
	if name, _ := soleLiteralName(sv.Access.Head); name != "call3" {
		t.Fatalf("expected name call3, got %#v", sv.Access.Head)
	}
	if len(sv.Value) != 1 {
		t.Fatalf("expected single lambda value node, got %d", len(sv.Value))
	}
	lambda, ok := sv.Value[0].(ast.Variable)
	if !ok {
		t.Fatalf("expected Variable wrapping lambda call, got %#v", sv.Value[0])
	}
	if name, _ := soleLiteralName(lambda.Access.Head); name != "lambda" {
		t.Fatalf("expected lambda head, got %#v", lambda.Access.Head)
	}
	args := lambda.Access.Accessors[0].Args
	if len(args) != 2 {
		t.Fatalf("expected 1 param + 1 body arg, got %d", len(args))
	}
	if name, _ := soleLiteralName(args[0]); name != "f" {
		t.Fatalf("expected param f, got %#v", args[0])
	}
	if len(args[1]) != 3 {
		t.Fatalf("expected 3 body nodes, got %d", len(args[1]))
	}
}

func TestParse_EscapeBlockSplicesNested(t *testing.T) {
	nodes, err := Parse("{> literal {a} more }")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expected 3 spliced nodes, got %d: %#v", len(nodes), nodes)
	}
	if _, ok := nodes[1].(ast.Variable); !ok {
		t.Fatalf("expected middle node to be the nested Variable, got %#v", nodes[1])
	}
}

func TestParse_CommentsStripped(t *testing.T) {
	nodes, err := Parse("a{! this is {! nested !} comment !}b")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected merged single node, got %d: %#v", len(nodes), nodes)
	}
	if s, ok := nodes[0].(ast.String); !ok || s.Text != "ab" {
		t.Fatalf("expected \"ab\", got %#v", nodes[0])
	}
}

func TestParse_OneLineDirective(t *testing.T) {
	nodes, err := Parse("{!>oneline}\n a \n b \n")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	if s, ok := nodes[0].(ast.String); !ok || s.Text != "ab" {
		t.Fatalf("expected \"ab\", got %#v", nodes[0])
	}
}

func TestParse_EscapeSequences(t *testing.T) {
	nodes, err := Parse(`\{not a block\} \: \; \\ \n done`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	s := nodes[0].(ast.String)
	want := "{not a block} : ; \\ \n done"
	if s.Text != want {
		t.Fatalf("expected %q, got %q", want, s.Text)
	}
}

func TestParse_BreakOutsideLoopIsNotAParseError(t *testing.T) {
	// continue/break outside a loop is a *compile*-time error, not a
	// parse error: the parser has no notion of loop nesting.
	if _, err := Parse("{break;}"); err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
}

func TestParse_UnterminatedBlockIsSyntaxError(t *testing.T) {
	if _, err := Parse("{a"); err == nil {
		t.Fatal("expected a syntax error for unterminated block")
	}
}

func TestParse_UnterminatedCommentIsSyntaxError(t *testing.T) {
	if _, err := Parse("{! never closes"); err == nil {
		t.Fatal("expected a syntax error for unterminated comment")
	}
}

func TestParse_NumericStringGetsPreParsed(t *testing.T) {
	nodes, err := Parse("3.5")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	s := nodes[0].(ast.String)
	if s.Numeric == nil || *s.Numeric != 3.5 {
		t.Fatalf("expected pre-parsed numeric 3.5, got %#v", s.Numeric)
	}
}
