package compiler

import (
	"strings"
	"testing"

	"blocklang/parser"
)

func mustCompile(t *testing.T, src string) Bytecode {
	t.Helper()
	nodes, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	b, err := CompileProgram(nodes)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return b
}

func TestCompile_LiteralStreamsDirectly(t *testing.T) {
	b := mustCompile(t, "hello")
	want := []byte{byte(OutputStr), 0, 0, byte(End)}
	if string(b.Instructions) != string(want) {
		t.Fatalf("got %v, want %v", []byte(b.Instructions), want)
	}
	if len(b.ConstantsPool) != 1 {
		t.Fatalf("expected 1 constant, got %d", len(b.ConstantsPool))
	}
}

func TestCompile_PlainVariableReadStreamsViaOutputVal(t *testing.T) {
	b := mustCompile(t, "{a}")
	dump := DisassembleBytecode(b)
	if !strings.Contains(dump, "GetVar") || !strings.Contains(dump, "OutputVal") {
		t.Fatalf("expected GetVar + OutputVal, got:\n%s", dump)
	}
}

func TestCompile_TrailingCallGetsDirectOutputOptimization(t *testing.T) {
	b := mustCompile(t, "{add:1:2;}")
	dump := DisassembleBytecode(b)
	if strings.Contains(dump, "OutputVal") {
		t.Fatalf("expected CallFunc's own directOutput flag to replace a trailing OutputVal, got:\n%s", dump)
	}
	callFuncLine := ""
	for _, line := range strings.Split(dump, "\n") {
		if strings.Contains(line, "CallFunc") {
			callFuncLine = line
		}
	}
	fields := strings.Fields(callFuncLine)
	if len(fields) < 4 || fields[len(fields)-2] != "2" || fields[len(fields)-1] != "1" {
		t.Fatalf("expected CallFunc argc=2 directOutput=1, got line %q in:\n%s", callFuncLine, dump)
	}
}

func TestCompile_NonTrailingAccessorsAlwaysPushValue(t *testing.T) {
	// {a.b.c} - plain accessor chain, no call at all, streamed via OutputVal.
	b := mustCompile(t, "{a.b.c}")
	dump := DisassembleBytecode(b)
	if strings.Count(dump, "GetAttr") != 2 {
		t.Fatalf("expected two GetAttr, got:\n%s", dump)
	}
	if !strings.Contains(dump, "OutputVal") {
		t.Fatalf("expected trailing OutputVal since last accessor isn't a call, got:\n%s", dump)
	}
}

func TestCompile_SetDesugarYieldsNilExpression(t *testing.T) {
	b := mustCompile(t, "{set:a;1;}")
	dump := DisassembleBytecode(b)
	if !strings.Contains(dump, "SetVar") || !strings.Contains(dump, "PushNil") {
		t.Fatalf("expected SetVar + PushNil (assignment yields Nil), got:\n%s", dump)
	}
}

func TestCompile_IfProducesSingleValueOnEveryPath(t *testing.T) {
	nodes, err := parser.Parse("{set:x;{if:1:a;};}")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = CompileProgram(nodes)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	c := newRootCompiler()
	c.compileNodes(nodes, false)
	if c.stackDepth != 1 {
		t.Fatalf("expected exactly one value on the simulated stack, got depth %d", c.stackDepth)
	}
}

func TestCompile_IfWithoutElsePushesNilInValueMode(t *testing.T) {
	b := mustCompile(t, "{set:x;{if:1:a;};}")
	dump := DisassembleBytecode(b)
	if !strings.Contains(dump, "IfFalse") {
		t.Fatalf("expected IfFalse, got:\n%s", dump)
	}
	if strings.Count(dump, "PushNil") < 2 {
		t.Fatalf("expected two PushNil (missing-else branch plus the set's own Nil result), got:\n%s", dump)
	}
}

func TestCompile_WhileLoopEmitsFrameOpcodes(t *testing.T) {
	b := mustCompile(t, "{while:1:a;}")
	dump := DisassembleBytecode(b)
	for _, want := range []string{"WhileStart", "LoopIncr", "LoopEnd"} {
		if !strings.Contains(dump, want) {
			t.Fatalf("expected %s in disassembly, got:\n%s", want, dump)
		}
	}
}

func TestCompile_ForLoopDefaultsStartAndStep(t *testing.T) {
	b := mustCompile(t, "{for:i:10:a;}")
	dump := DisassembleBytecode(b)
	for _, want := range []string{"ForStart", "ForTest", "ForIter", "LoopEnd"} {
		if !strings.Contains(dump, want) {
			t.Fatalf("expected %s, got:\n%s", want, dump)
		}
	}
	if strings.Count(dump, "PushNum") != 2 {
		t.Fatalf("expected 2 PushNum (defaulted start=0, defaulted step=1; the given end is a PushAstStr literal), got:\n%s", dump)
	}
}

func TestCompile_ForeachLoopEmitsFrameOpcodes(t *testing.T) {
	b := mustCompile(t, "{foreach:x:items:a;}")
	dump := DisassembleBytecode(b)
	for _, want := range []string{"ForeachStart", "ForeachIter", "LoopIncr", "LoopEnd"} {
		if !strings.Contains(dump, want) {
			t.Fatalf("expected %s, got:\n%s", want, dump)
		}
	}
}

func TestCompile_BreakOutsideLoopIsSemanticError(t *testing.T) {
	nodes, err := parser.Parse("{break;}")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = CompileProgram(nodes)
	if err == nil {
		t.Fatal("expected a semantic error for break outside a loop")
	}
	if _, ok := err.(SemanticError); !ok {
		t.Fatalf("expected SemanticError, got %T: %v", err, err)
	}
}

func TestCompile_ContinueInsideWhileDropsThenPushesNilPlaceholder(t *testing.T) {
	// the leading "a" leaves one temp on the stack when continue runs
	b := mustCompile(t, "{while:1:a{if:1:{continue;};};}")
	dump := DisassembleBytecode(b)
	if strings.Contains(dump, "UnwindCatch") {
		t.Fatalf("expected no UnwindCatch with no open catch, got:\n%s", dump)
	}
	if !strings.Contains(dump, "Goto") {
		t.Fatalf("expected a Goto for continue, got:\n%s", dump)
	}
	lines := strings.Split(dump, "\n")
	found := false
	for i := 0; i+2 < len(lines); i++ {
		if strings.Contains(lines[i], "Drop") && strings.Contains(lines[i+1], "PushNil") && strings.Contains(lines[i+2], "Goto") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Drop, PushNil, Goto for continue, got:\n%s", dump)
	}
}

func TestCompile_NonlocalOutsideFunctionIsSemanticError(t *testing.T) {
	nodes, err := parser.Parse("{nonlocal:a;}")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = CompileProgram(nodes)
	if err == nil {
		t.Fatal("expected a semantic error for nonlocal outside a function")
	}
}

func TestCompile_LambdaLinksBodyAfterMainProgram(t *testing.T) {
	b := mustCompile(t, "{set:f;{lambda:x:{x};};}")
	dump := DisassembleBytecode(b)
	if !strings.Contains(dump, "CreateFunc") {
		t.Fatalf("expected CreateFunc, got:\n%s", dump)
	}
	if len(b.FuncParams) != 1 || b.FuncParams[0][0] != "x" {
		t.Fatalf("expected one function with param x, got %#v", b.FuncParams)
	}
	// the function body must appear somewhere after the main program's own End.
	mainEnd := strings.Index(dump, "End")
	bodyOutputVal := strings.LastIndex(dump, "OutputVal")
	if bodyOutputVal < mainEnd {
		t.Fatalf("expected linked function body after main program's End:\n%s", dump)
	}
}

func TestCompile_CatchWrapsBodyValue(t *testing.T) {
	b := mustCompile(t, "{set:x;{catch:{throw:oops;};};}")
	dump := DisassembleBytecode(b)
	for _, want := range []string{"StartCatch", "EndCatch", "ThrowVal"} {
		if !strings.Contains(dump, want) {
			t.Fatalf("expected %s, got:\n%s", want, dump)
		}
	}
}

func TestCompile_ListAndMapArityChecks(t *testing.T) {
	if _, err := parser.Parse("{map:a;}"); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	nodes, _ := parser.Parse("{map:a;}")
	if _, err := CompileProgram(nodes); err == nil {
		t.Fatal("expected a semantic error for odd map argument count")
	}
}

func TestCompile_DynamicVariableNameIsRejected(t *testing.T) {
	nodes, err := parser.Parse("{{a}.b}")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := CompileProgram(nodes); err == nil {
		t.Fatal("expected a semantic error for a dynamic (computed) variable name")
	}
}
