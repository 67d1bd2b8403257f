package vm

import (
	"strings"
	"testing"

	"blocklang/builtins"
	"blocklang/compiler"
	"blocklang/parser"
	"blocklang/value"
)

// run compiles src, executes it against a fresh global environment (with
// every built-in registered) and a WriterSink backed by a strings
// builder, and returns the captured output plus any error.
func run(t *testing.T, src string) (string, error) {
	t.Helper()
	nodes, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	bc, err := compiler.CompileProgram(nodes)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	var out strings.Builder
	global := value.NewEnvironment(nil)
	builtins.Register(global, nil)
	runErr := New(bc).Run(global, NewWriterSink(&out))
	return out.String(), runErr
}

func TestVM_LiteralTextStreamsVerbatim(t *testing.T) {
	out, err := run(t, "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hello world" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_VariableReadAndSet(t *testing.T) {
	out, err := run(t, "{set:x;5;}{x}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "5" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_UnknownVariableThrows(t *testing.T) {
	_, err := run(t, "{nope}")
	if err == nil {
		t.Fatal("expected an uncaught throw")
	}
	te, ok := err.(*value.ThrownError)
	if !ok {
		t.Fatalf("expected *value.ThrownError, got %T: %v", err, err)
	}
	if value.ToDisplayString(te.Val) != "<nope:unknown var>" {
		t.Fatalf("got %q", value.ToDisplayString(te.Val))
	}
}

func TestVM_IfBranchesOnTruthiness(t *testing.T) {
	out, err := run(t, "{if:1:yes:no;}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "yes" {
		t.Fatalf("got %q", out)
	}

	out, err = run(t, "{if:0:yes:no;}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "no" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_ArithmeticBuiltins(t *testing.T) {
	out, err := run(t, "{add:1:2:3;}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "6" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_WhileLoopAccumulatesOutput(t *testing.T) {
	out, err := run(t, "{set:i;0;}{while:{lt:{i}:3;}:{set:i;{add:{i}:1;};}{i};}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "123" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_ForLoopDefaultRange(t *testing.T) {
	out, err := run(t, "{for:i:3:{i};}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "012" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_ForeachOverList(t *testing.T) {
	out, err := run(t, "{set:xs;{list:a:b:c;};}{foreach:x:{xs}:{x};}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "abc" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_BreakStopsLoopEarly(t *testing.T) {
	out, err := run(t, "{set:i;0;}{while:1:{if:{ge:{i}:3;}:{break;};}{set:i;{add:{i}:1;};}{i};}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "123" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_CatchWrapsThrownValue(t *testing.T) {
	out, err := run(t, "{set:r;{catch:{throw:boom;};};}{r.status}:{r.value}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "0:boom" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_CatchWrapsSuccessfulValue(t *testing.T) {
	out, err := run(t, "{set:r;{catch:ok;};}{r.status}:{r.value}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "1:ok" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_LambdaCallDirectOutput(t *testing.T) {
	out, err := run(t, "{set:greet;{lambda:name:hello {name};};}{greet:world;}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hello world" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_LambdaCallAsValue(t *testing.T) {
	out, err := run(t, "{set:double;{lambda:n:{add:{n}:{n};};};}{set:r;{double:21;};}{r}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "42" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_FunctionCalledWithTooFewArgumentsThrows(t *testing.T) {
	_, err := run(t, "{set:f;{lambda:a:b:{a};};}{f:1;}")
	if err == nil {
		t.Fatal("expected an uncaught throw for a missing argument")
	}
}

func TestVM_ListIndexAndLength(t *testing.T) {
	out, err := run(t, "{set:xs;{list:a:b:c;};}{xs[1]}:{xs.length}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "b:3" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_ListPushMutatesInPlace(t *testing.T) {
	out, err := run(t, "{set:xs;{list:a;};}{xs.push:b;}{xs.length}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "2" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_MapGetAndSet(t *testing.T) {
	out, err := run(t, "{set:m;{map:k:v;};}{set:m[k2];v2;}{m[k]}:{m[k2]}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "v:v2" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_NegativeListIndexIsRelativeToLength(t *testing.T) {
	out, err := run(t, "{set:xs;{list:a:b:c;};}{xs[-1]}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "c" {
		t.Fatalf("got %q", out)
	}
}

func TestVM_OutOfRangeListIndexThrows(t *testing.T) {
	_, err := run(t, "{set:xs;{list:a;};}{xs[5]}")
	if err == nil {
		t.Fatal("expected an out-of-range throw")
	}
}

func TestVM_ForWithZeroStepThrows(t *testing.T) {
	_, err := run(t, "{for:i:0:10:0:{i};}")
	if err == nil {
		t.Fatal("expected a zero-step throw")
	}
}

func TestVM_EmptyProgramProducesNoOutput(t *testing.T) {
	out, err := run(t, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Fatalf("got %q", out)
	}
}
