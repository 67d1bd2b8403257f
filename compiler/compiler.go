// compiler.go implements the AST-to-bytecode compiler: a single visitor
// (mirroring the teacher's ASTCompiler) that walks the tree once,
// maintaining a compile-time simulation of the VM's value-stack depth
// (`stackDepth`) so that break/continue can emit exactly the Drop/
// UnwindCatch sequence needed to restore the stack to the shape the
// enclosing loop's tail expects — the same bookkeeping spec.md's
// ValStatus Temp/Returned vector describes, realized here as a single
// running counter snapshotted at each loop's entry (see DESIGN.md).
//
// Like the teacher's ASTCompiler, internal failures are signaled by
// panic(SemanticError{...}) / panic(DeveloperError{...}) and only
// recovered at the CompileProgram boundary.
package compiler

import (
	"encoding/binary"

	"blocklang/ast"
	"blocklang/value"
)

// pools holds the constant/name/function-parameter tables shared by
// every Compiler instance in a single compilation (the root program and
// every nested lambda), so that indices baked into operands are valid
// program-wide without any rewriting at link time.
type pools struct {
	constants  []value.Value
	names      []string
	funcParams [][]string
}

// patchRequest records a CreateFunc instruction (at bytePos within
// buffer bufID) whose offset/size operands must be filled in once
// targetBufID's final placement in the linked program is known.
type patchRequest struct {
	bufID       int
	bytePos     int
	targetBufID int
}

// linkCtx is shared by every Compiler participating in one compilation.
// Each function body (including the root program, at index 0) is
// compiled independently into its own 0-based buffer; linking
// concatenates them in discovery order and shifts each buffer's
// internal jump targets by its final placement offset.
type linkCtx struct {
	pools   *pools
	buffers [][]byte
	patches []patchRequest
}

func newLinkCtx() *linkCtx {
	return &linkCtx{pools: &pools{}, buffers: [][]byte{nil}}
}

// finish concatenates every buffer into one linked program image,
// shifting jump targets and applying CreateFunc patches.
func (lc *linkCtx) finish() Bytecode {
	offsets := make([]int, len(lc.buffers))
	var combined Instructions
	for i, buf := range lc.buffers {
		shiftJumpTargets(Instructions(buf), len(combined))
		offsets[i] = len(combined)
		combined = append(combined, buf...)
	}
	for _, pr := range lc.patches {
		pos := offsets[pr.bufID] + pr.bytePos
		target := offsets[pr.targetBufID]
		size := len(lc.buffers[pr.targetBufID])
		binary.BigEndian.PutUint16(combined[pos+3:], uint16(target))
		binary.BigEndian.PutUint16(combined[pos+5:], uint16(size))
	}
	return Bytecode{
		Instructions:  combined,
		ConstantsPool: lc.pools.constants,
		NameConstants: lc.pools.names,
		FuncParams:    lc.pools.funcParams,
	}
}

// jumpOperandOpcodes is the set of opcodes whose single 2-byte operand
// is an absolute instruction address needing to be shifted when its
// buffer is relocated during linking (as opposed to a count, like
// Concat/Drop/UnwindCatch, or an index, like GetVar).
var jumpOperandOpcodes = map[Opcode]bool{
	IfFalse: true, Goto: true, ForTest: true, ForeachIter: true, StartCatch: true,
}

func shiftJumpTargets(ins Instructions, delta int) {
	if delta == 0 {
		return
	}
	ip := 0
	for ip < len(ins) {
		op := Opcode(ins[ip])
		def, err := Get(op)
		if err != nil {
			return
		}
		if jumpOperandOpcodes[op] {
			target := int(binary.BigEndian.Uint16(ins[ip+1:]))
			binary.BigEndian.PutUint16(ins[ip+1:], uint16(target+delta))
		}
		n := 1
		for _, w := range def.OperandWidths {
			n += w
		}
		ip += n
	}
}

// loopScope is the compile-time bookkeeping record for one open loop:
// the stack/catch depth at loop-body entry (break/continue compute
// their Drop/UnwindCatch counts relative to this), and the positions of
// every break/continue jump compiled so far, patched once the loop's
// exit and continue points are known.
type loopScope struct {
	bodyBaseline  int
	catchBaseline int
	breakJumps    []int
	continueJumps []int
}

// Compiler walks an AST and emits bytecode into its own buffer. The
// root Compiler and one nested Compiler per lambda body share a
// *linkCtx; `id` is this Compiler's reserved slot in linkCtx.buffers.
type Compiler struct {
	link         *linkCtx
	id           int
	instructions Instructions
	loopStack    []*loopScope
	catchDepth   int
	inFunction   bool
	stackDepth   int
	directOutput bool
}

func newRootCompiler() *Compiler {
	return &Compiler{link: newLinkCtx(), id: 0}
}

func (c *Compiler) newChild(inFunction bool) *Compiler {
	id := len(c.link.buffers)
	c.link.buffers = append(c.link.buffers, nil)
	return &Compiler{link: c.link, id: id, inFunction: inFunction}
}

// CompileProgram compiles a full parsed source (top-level node
// sequence) into linked Bytecode. The top level streams directly to
// the live output sink, matching ordinary template execution.
func CompileProgram(nodes []ast.Node) (b Bytecode, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case SemanticError:
				err = v
			case DeveloperError:
				err = v
			default:
				panic(r)
			}
		}
	}()

	c := newRootCompiler()
	c.compileNodes(nodes, true)
	c.emit(End)
	c.link.buffers[0] = c.instructions
	return c.link.finish(), nil
}

// --- low-level emit helpers, mirroring the teacher's emit/addConstant/
// patchJump/emitPlaceholderJump shape from ast_compiler.go ---

func (c *Compiler) emit(op Opcode, operands ...int) int {
	pos := len(c.instructions)
	ins, err := AssembleInstruction(op, operands...)
	if err != nil {
		panic(DeveloperError{Message: err.Error()})
	}
	c.instructions = append(c.instructions, ins...)
	return pos
}

func (c *Compiler) emitPlaceholderJump(op Opcode) int {
	return c.emit(op, 0)
}

func (c *Compiler) patchJump(pos, target int) {
	binary.BigEndian.PutUint16(c.instructions[pos+1:], uint16(target))
}

func (c *Compiler) addConstant(v value.Value) int {
	c.link.pools.constants = append(c.link.pools.constants, v)
	return len(c.link.pools.constants) - 1
}

func (c *Compiler) addNameConstant(name string) int {
	for i, n := range c.link.pools.names {
		if n == name {
			return i
		}
	}
	c.link.pools.names = append(c.link.pools.names, name)
	return len(c.link.pools.names) - 1
}

func (c *Compiler) push(n int) { c.stackDepth += n }
func (c *Compiler) pop(n int)  { c.stackDepth -= n }

// finishValue is called once exactly one value is sitting on top of
// the (simulated) stack: in direct-output mode it streams and pops
// that value; in value mode it leaves it in place.
func (c *Compiler) finishValue() {
	if c.directOutput {
		c.emit(OutputVal)
		c.pop(1)
	}
}

// soleLiteralName reports whether nodes is exactly one literal string
// fragment, returning its text — used everywhere a keyword or accessor
// requires a compile-time-known name.
func soleLiteralName(nodes []ast.Node) (string, bool) {
	if len(nodes) != 1 {
		return "", false
	}
	s, ok := nodes[0].(ast.String)
	if !ok {
		return "", false
	}
	return s.Text, true
}

// compileOne compiles a single node under the given directOutput mode,
// restoring the ambient mode afterward. directOutput is ambient rather
// than threaded as a parameter through every Visit method, mirroring
// the teacher's use of plain mutable compiler-context fields
// (scopeDepth, etc.) — safe here because compilation is a single
// depth-first walk, never concurrent.
func (c *Compiler) compileOne(n ast.Node, directOutput bool) {
	saved := c.directOutput
	c.directOutput = directOutput
	n.Accept(c)
	c.directOutput = saved
}

// compileValueOf always compiles nodes in value mode, regardless of the
// ambient directOutput — used for sub-expressions (index/attr-name/
// call-arguments/range bounds) that must always yield a value.
func (c *Compiler) compileValueOf(nodes []ast.Node) {
	c.compileNodes(nodes, false)
}

// compileNodes compiles a sequence of nodes under directOutput. In
// direct mode each node streams individually and nothing is left on
// the stack; in value mode each node contributes exactly one value and
// the sequence reduces via PushNil (zero nodes) / identity (one) /
// Concat (more than one), per spec.md §4.2's sequence-concatenation
// rule.
func (c *Compiler) compileNodes(nodes []ast.Node, directOutput bool) {
	if directOutput {
		for _, n := range nodes {
			c.compileOne(n, true)
		}
		return
	}
	for _, n := range nodes {
		c.compileOne(n, false)
	}
	switch len(nodes) {
	case 0:
		c.emit(PushNil)
		c.push(1)
	case 1:
		// already exactly one value on the stack
	default:
		c.emit(Concat, len(nodes))
		c.pop(len(nodes))
		c.push(1)
	}
}

// --- ast.Visitor implementation ---

func (c *Compiler) VisitString(n ast.String) any {
	idx := c.addConstant(value.AstStr{Text: n.Text, Numeric: n.Numeric})
	if c.directOutput {
		c.emit(OutputStr, idx)
	} else {
		c.emit(PushAstStr, idx)
		c.push(1)
	}
	return nil
}

func (c *Compiler) VisitVariable(n ast.Variable) any {
	if name, ok := soleLiteralName(n.Access.Head); ok &&
		len(n.Access.Accessors) == 1 && n.Access.Accessors[0].Kind == ast.AccessorCall {
		if handler, isKeyword := c.keywordHandler(name); isKeyword {
			handler(n.Access.Accessors[0].Args)
			return nil
		}
	}
	c.compileGenericAccess(n.Access)
	return nil
}

// compileGenericAccess lowers an ordinary (non-keyword) variable
// access: a GetVar followed by its accessor chain. A trailing call
// accessor gets the directOutput = true optimization in place (per
// spec.md §4.2) instead of a separate OutputVal.
func (c *Compiler) compileGenericAccess(access ast.VarAccess) {
	name, ok := soleLiteralName(access.Head)
	if !ok {
		panic(SemanticError{Message: "dynamic variable names are not supported"})
	}
	directOutput := c.directOutput
	nameIdx := c.addNameConstant(name)
	c.emit(GetVar, nameIdx)
	c.push(1)

	for i, acc := range access.Accessors {
		isLast := i == len(access.Accessors)-1
		switch acc.Kind {
		case ast.AccessorIndex:
			c.compileValueOf(acc.Index)
			c.emit(GetIndex)
			c.pop(2)
			c.push(1)
		case ast.AccessorAttr:
			c.compileValueOf(acc.Attr)
			c.emit(GetAttr)
			c.pop(2)
			c.push(1)
		case ast.AccessorCall:
			for _, a := range acc.Args {
				c.compileValueOf(a)
			}
			direct := isLast && directOutput
			flag := 0
			if direct {
				flag = 1
			}
			c.emit(CallFunc, len(acc.Args), flag)
			c.pop(len(acc.Args) + 1)
			if !direct {
				c.push(1)
			} else {
				return // streamed directly; fully satisfied already
			}
		}
	}
	c.finishValue()
}

func (c *Compiler) VisitSetVar(n ast.SetVar) any {
	name, ok := soleLiteralName(n.Access.Head)
	if !ok {
		panic(SemanticError{Message: "dynamic set target not supported"})
	}

	if len(n.Access.Accessors) == 0 {
		c.compileValueOf(n.Value)
		nameIdx := c.addNameConstant(name)
		c.emit(SetVar, nameIdx)
		c.pop(1)
		c.emit(PushNil)
		c.push(1)
		c.finishValue()
		return nil
	}

	nameIdx := c.addNameConstant(name)
	c.emit(GetVar, nameIdx)
	c.push(1)
	last := len(n.Access.Accessors) - 1
	for i := 0; i < last; i++ {
		c.compileSetDelWalkStep(n.Access.Accessors[i])
	}
	switch lastAcc := n.Access.Accessors[last]; lastAcc.Kind {
	case ast.AccessorIndex:
		c.compileValueOf(lastAcc.Index)
		c.compileValueOf(n.Value)
		c.emit(SetIndex)
		c.pop(3)
		c.push(1)
	case ast.AccessorAttr:
		c.compileValueOf(lastAcc.Attr)
		c.compileValueOf(n.Value)
		c.emit(SetAttr)
		c.pop(3)
		c.push(1)
	case ast.AccessorCall:
		panic(SemanticError{Message: "cannot set through a call"})
	}
	c.finishValue()
	return nil
}

func (c *Compiler) VisitDelVar(n ast.DelVar) any {
	name, ok := soleLiteralName(n.Access.Head)
	if !ok {
		panic(SemanticError{Message: "dynamic del target not supported"})
	}

	if len(n.Access.Accessors) == 0 {
		nameIdx := c.addNameConstant(name)
		c.emit(DelVar, nameIdx)
		c.emit(PushNil)
		c.push(1)
		c.finishValue()
		return nil
	}

	nameIdx := c.addNameConstant(name)
	c.emit(GetVar, nameIdx)
	c.push(1)
	last := len(n.Access.Accessors) - 1
	for i := 0; i < last; i++ {
		c.compileSetDelWalkStep(n.Access.Accessors[i])
	}
	switch lastAcc := n.Access.Accessors[last]; lastAcc.Kind {
	case ast.AccessorIndex:
		c.compileValueOf(lastAcc.Index)
		c.emit(DelIndex)
		c.pop(2)
		c.push(1)
	case ast.AccessorAttr:
		c.compileValueOf(lastAcc.Attr)
		c.emit(DelAttr)
		c.pop(2)
		c.push(1)
	case ast.AccessorCall:
		panic(SemanticError{Message: "cannot del through a call"})
	}
	c.finishValue()
	return nil
}

// compileSetDelWalkStep compiles one non-final accessor in a set/del
// target's chain: it always reads (never writes) through it, since only
// the final accessor is the write/delete point.
func (c *Compiler) compileSetDelWalkStep(acc ast.Accessor) {
	switch acc.Kind {
	case ast.AccessorIndex:
		c.compileValueOf(acc.Index)
		c.emit(GetIndex)
		c.pop(2)
		c.push(1)
	case ast.AccessorAttr:
		c.compileValueOf(acc.Attr)
		c.emit(GetAttr)
		c.pop(2)
		c.push(1)
	case ast.AccessorCall:
		panic(SemanticError{Message: "cannot set/del through a call"})
	}
}

// --- keyword lowering ---

func (c *Compiler) keywordHandler(name string) (func([][]ast.Node), bool) {
	switch name {
	case "if":
		return c.compileIf, true
	case "lambda":
		return c.compileLambda, true
	case "list":
		return c.compileList, true
	case "map":
		return c.compileMap, true
	case "nonlocal":
		return c.compileNonlocal, true
	case "throw":
		return c.compileThrow, true
	case "catch":
		return c.compileCatch, true
	case "void":
		return c.compileVoid, true
	case "while":
		return c.compileWhile, true
	case "for":
		return c.compileFor, true
	case "foreach":
		return c.compileForeach, true
	case "continue":
		return func(a [][]ast.Node) { c.compileBreakOrContinue(false, a) }, true
	case "break":
		return func(a [][]ast.Node) { c.compileBreakOrContinue(true, a) }, true
	default:
		return nil, false
	}
}

func (c *Compiler) compileIf(args [][]ast.Node) {
	if len(args) < 2 {
		panic(SemanticError{Message: "if requires at least a test and a body"})
	}
	directOutput := c.directOutput
	var endJumps []int
	i := 0
	for i+1 < len(args) {
		c.compileValueOf(args[i])
		falsePos := c.emitPlaceholderJump(IfFalse)
		c.pop(1)
		c.compileNodes(args[i+1], directOutput)
		if !directOutput {
			// only one branch runs, so the next branch starts from the same depth
			c.pop(1)
		}
		gotoPos := c.emitPlaceholderJump(Goto)
		endJumps = append(endJumps, gotoPos)
		c.patchJump(falsePos, len(c.instructions))
		i += 2
	}
	if i < len(args) {
		c.compileNodes(args[i], directOutput)
	} else if !directOutput {
		c.emit(PushNil)
		c.push(1)
	}
	for _, pos := range endJumps {
		c.patchJump(pos, len(c.instructions))
	}
}

func (c *Compiler) compileLambda(args [][]ast.Node) {
	if len(args) < 1 {
		panic(SemanticError{Message: "lambda requires a body"})
	}
	paramArgs := args[:len(args)-1]
	bodyArgs := args[len(args)-1]
	params := make([]string, 0, len(paramArgs))
	for _, p := range paramArgs {
		name, ok := soleLiteralName(p)
		if !ok {
			panic(SemanticError{Message: "lambda parameter must be a literal name"})
		}
		params = append(params, name)
	}

	child := c.newChild(true)
	child.compileNodes(bodyArgs, true)
	child.emit(End)
	c.link.buffers[child.id] = child.instructions

	paramsIdx := len(c.link.pools.funcParams)
	c.link.pools.funcParams = append(c.link.pools.funcParams, params)
	patchPos := c.emit(CreateFunc, paramsIdx, 0, 0)
	c.push(1)
	c.link.patches = append(c.link.patches, patchRequest{bufID: c.id, bytePos: patchPos, targetBufID: child.id})
	c.finishValue()
}

func (c *Compiler) compileList(args [][]ast.Node) {
	for _, a := range args {
		c.compileValueOf(a)
	}
	c.emit(CreateList, len(args))
	c.pop(len(args))
	c.push(1)
	c.finishValue()
}

func (c *Compiler) compileMap(args [][]ast.Node) {
	if len(args)%2 != 0 {
		panic(SemanticError{Message: "map requires an even number of key/value arguments"})
	}
	for _, a := range args {
		c.compileValueOf(a)
	}
	c.emit(CreateMap, len(args)/2)
	c.pop(len(args))
	c.push(1)
	c.finishValue()
}

func (c *Compiler) compileNonlocal(args [][]ast.Node) {
	if !c.inFunction {
		panic(SemanticError{Message: "nonlocal outside a function"})
	}
	if len(args) != 1 {
		panic(SemanticError{Message: "nonlocal takes exactly one argument"})
	}
	name, ok := soleLiteralName(args[0])
	if !ok {
		panic(SemanticError{Message: "nonlocal requires a literal name"})
	}
	c.emit(SetNonlocal, c.addNameConstant(name))
	c.emit(PushNil)
	c.push(1)
	c.finishValue()
}

func (c *Compiler) compileThrow(args [][]ast.Node) {
	if len(args) != 1 {
		panic(SemanticError{Message: "throw takes exactly one argument"})
	}
	c.compileValueOf(args[0])
	c.emit(ThrowVal)
	c.pop(1)
	// dead code: throw never returns normally, but the node still
	// statically contributes one value to keep sibling accounting sound.
	c.emit(PushNil)
	c.push(1)
	c.finishValue()
}

func (c *Compiler) compileVoid(args [][]ast.Node) {
	if len(args) != 1 {
		panic(SemanticError{Message: "void takes exactly one argument"})
	}
	c.compileValueOf(args[0])
	c.emit(Drop, 1)
	c.pop(1)
	c.emit(PushNil)
	c.push(1)
	c.finishValue()
}

func (c *Compiler) compileCatch(args [][]ast.Node) {
	if len(args) != 1 {
		panic(SemanticError{Message: "catch takes exactly one argument"})
	}
	c.catchDepth++
	startPos := c.emitPlaceholderJump(StartCatch)
	c.compileValueOf(args[0])
	c.emit(EndCatch)
	c.patchJump(startPos, len(c.instructions))
	c.catchDepth--
	c.finishValue()
}

func (c *Compiler) compileWhile(args [][]ast.Node) {
	if len(args) != 2 {
		panic(SemanticError{Message: "while requires a test and a body"})
	}
	directOutput := c.directOutput
	c.emit(WhileStart)
	testPos := len(c.instructions)
	c.compileValueOf(args[0])
	falsePos := c.emitPlaceholderJump(IfFalse)
	c.pop(1)

	scope := &loopScope{bodyBaseline: c.stackDepth, catchBaseline: c.catchDepth}
	c.loopStack = append(c.loopStack, scope)
	c.compileNodes(args[1], false)
	c.loopStack = c.loopStack[:len(c.loopStack)-1]

	continuePos := len(c.instructions)
	c.emit(LoopIncr)
	c.emit(Goto, testPos)
	c.stackDepth = scope.bodyBaseline

	loopEndPos := len(c.instructions)
	c.patchJump(falsePos, loopEndPos)
	c.patchLoopJumps(scope, loopEndPos, continuePos)
	c.finishLoop(directOutput)
}

func (c *Compiler) compileFor(args [][]ast.Node) {
	n := len(args)
	if n < 3 || n > 5 {
		panic(SemanticError{Message: "for requires 1 to 3 range arguments plus a body"})
	}
	directOutput := c.directOutput
	identName, ok := soleLiteralName(args[0])
	if !ok {
		panic(SemanticError{Message: "for requires a literal loop variable name"})
	}
	body := args[n-1]
	rangeArgs := args[1 : n-1]
	switch len(rangeArgs) {
	case 1:
		c.pushNumConstant(0)
		c.compileValueOf(rangeArgs[0])
		c.pushNumConstant(1)
	case 2:
		c.compileValueOf(rangeArgs[0])
		c.compileValueOf(rangeArgs[1])
		c.pushNumConstant(1)
	case 3:
		c.compileValueOf(rangeArgs[0])
		c.compileValueOf(rangeArgs[1])
		c.compileValueOf(rangeArgs[2])
	}

	c.emit(ForStart, c.addNameConstant(identName))
	c.pop(3)
	testPos := len(c.instructions)
	forTestPos := c.emitPlaceholderJump(ForTest)

	scope := &loopScope{bodyBaseline: c.stackDepth, catchBaseline: c.catchDepth}
	c.loopStack = append(c.loopStack, scope)
	c.compileNodes(body, false)
	c.loopStack = c.loopStack[:len(c.loopStack)-1]

	continuePos := len(c.instructions)
	c.emit(LoopIncr)
	c.emit(ForIter)
	c.emit(Goto, testPos)
	c.stackDepth = scope.bodyBaseline

	loopEndPos := len(c.instructions)
	c.patchJump(forTestPos, loopEndPos)
	c.patchLoopJumps(scope, loopEndPos, continuePos)
	c.finishLoop(directOutput)
}

func (c *Compiler) compileForeach(args [][]ast.Node) {
	if len(args) != 3 {
		panic(SemanticError{Message: "foreach requires an identifier, an iterable, and a body"})
	}
	directOutput := c.directOutput
	identName, ok := soleLiteralName(args[0])
	if !ok {
		panic(SemanticError{Message: "foreach requires a literal loop variable name"})
	}
	c.compileValueOf(args[1])
	c.emit(ForeachStart, c.addNameConstant(identName))
	c.pop(1)
	testPos := len(c.instructions)
	iterPos := c.emitPlaceholderJump(ForeachIter)

	scope := &loopScope{bodyBaseline: c.stackDepth, catchBaseline: c.catchDepth}
	c.loopStack = append(c.loopStack, scope)
	c.compileNodes(args[2], false)
	c.loopStack = c.loopStack[:len(c.loopStack)-1]

	continuePos := len(c.instructions)
	c.emit(LoopIncr)
	c.emit(Goto, testPos)
	c.stackDepth = scope.bodyBaseline

	loopEndPos := len(c.instructions)
	c.patchJump(iterPos, loopEndPos)
	c.patchLoopJumps(scope, loopEndPos, continuePos)
	c.finishLoop(directOutput)
}

func (c *Compiler) patchLoopJumps(scope *loopScope, breakTarget, continueTarget int) {
	for _, p := range scope.breakJumps {
		c.patchJump(p, breakTarget)
	}
	for _, p := range scope.continueJumps {
		c.patchJump(p, continueTarget)
	}
}

// finishLoop emits LoopEnd; produceValue = !directOutput, since
// LoopEnd itself decides internally whether to push the accumulated
// value or stream it, so no separate finishValue call is needed here.
func (c *Compiler) finishLoop(directOutput bool) {
	produce := 0
	if !directOutput {
		produce = 1
	}
	c.emit(LoopEnd, produce)
	if !directOutput {
		c.push(1)
	}
}

func (c *Compiler) pushNumConstant(n float64) {
	c.emit(PushNum, c.addConstant(value.Num{N: n}))
	c.push(1)
}

func (c *Compiler) compileBreakOrContinue(isBreak bool, args [][]ast.Node) {
	kw := "continue"
	if isBreak {
		kw = "break"
	}
	if len(args) != 0 {
		panic(SemanticError{Message: kw + " takes no arguments"})
	}
	if len(c.loopStack) == 0 {
		panic(SemanticError{Message: kw + " outside a loop"})
	}
	scope := c.loopStack[len(c.loopStack)-1]

	temps := c.stackDepth - scope.bodyBaseline
	if temps > 0 {
		c.emit(Drop, temps)
		c.pop(temps)
	}
	catchDelta := c.catchDepth - scope.catchBaseline
	if catchDelta > 0 {
		c.emit(UnwindCatch, catchDelta)
	}

	if isBreak {
		pos := c.emitPlaceholderJump(Goto)
		scope.breakJumps = append(scope.breakJumps, pos)
		c.emit(PushNil)
		c.push(1)
	} else {
		c.emit(PushNil)
		c.push(1)
		pos := c.emitPlaceholderJump(Goto)
		scope.continueJumps = append(scope.continueJumps, pos)
	}
	c.finishValue()
}
