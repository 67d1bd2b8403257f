// Package vm implements the flat instruction-dispatch interpreter:
// value stack, loop-frame stack, catch-frame stack, and the output sink
// a compiled program is run against. Grounded on the teacher's vm.VM
// shape (`vm/vm.go`'s `Run(bytecode) error`, a linear `switch` over
// `Opcode(bytecode.Instructions[vm.ip])`, manual Big-Endian operand
// reads), generalized from the teacher's single `OP_CONSTANT` case to
// spec.md §4.3's full dispatch table.
package vm

import (
	"encoding/binary"
	"fmt"

	"blocklang/compiler"
	"blocklang/value"
)

// VM holds the linked program image a single Run call executes it
// against. The value stack, loop-frame stack, and catch-frame stack are
// NOT struct fields: each call into exec (the root program, or a nested
// function body reached through CallFunc) keeps its own, isolated by
// ordinary Go call-stack recursion rather than explicit save/restore —
// the same "recursively interprets body" phrasing spec.md §4.3 uses for
// function calls falls directly out of this shape.
type VM struct {
	prog compiler.Bytecode
}

// New builds a VM bound to a single linked program image.
func New(prog compiler.Bytecode) *VM {
	return &VM{prog: prog}
}

// Run executes the program from its entry point (instruction 0) against
// the given global environment and sink. It returns nil on a clean `End`,
// a *value.ThrownError if a throw escaped every catch, or a RuntimeError
// on an internal invariant violation.
func (vm *VM) Run(global *value.Environment, sink Sink) error {
	return vm.exec(0, global, sink)
}

func operand16(ins compiler.Instructions, pos int) int {
	return int(binary.BigEndian.Uint16(ins[pos:]))
}

func hostFnOf(v value.Value) (func([]value.Value) (value.Value, error), bool) {
	switch t := v.(type) {
	case value.HostFunc:
		return t.Fn, true
	case value.HostClosure:
		return t.Fn, true
	default:
		return nil, false
	}
}

// exec runs the instruction stream starting at start until it processes
// an `End`, returning the error that terminated it (nil for a clean End).
// Its value stack, loop-frame stack, and catch-frame stack are local to
// this invocation; a CallFunc reaching a user Func recurses into a fresh
// exec call rather than pushing onto shared VM state.
func (vm *VM) exec(start int, env *value.Environment, sink Sink) error {
	ins := vm.prog.Instructions
	ip := start
	var stack []value.Value
	var loopStack []*loopFrame
	var catchStack []*catchFrame

	pop := func() value.Value {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	// raise attempts to deliver thrown to the innermost open catch frame
	// in THIS invocation. On success it truncates the stacks, pushes a
	// failed CatchResult, and repositions ip at the catch's postCatch
	// target — the caller should simply let the dispatch loop continue.
	// On failure (no open catch here) the throw must escape this entire
	// exec call; the caller returns a *value.ThrownError upward, where an
	// enclosing CallFunc's own raise gets a chance at it in turn.
	raise := func(thrown value.Value) bool {
		if len(catchStack) == 0 {
			return false
		}
		frame := catchStack[len(catchStack)-1]
		catchStack = catchStack[:len(catchStack)-1]
		stack = stack[:frame.stackDepth]
		loopStack = loopStack[:frame.loopDepth]
		stack = append(stack, value.CatchResult{Success: false, Inner: thrown})
		ip = frame.endTarget
		return true
	}

	for {
		op := compiler.Opcode(ins[ip])
		switch op {

		case compiler.PushStr, compiler.PushAstStr, compiler.PushNum:
			idx := operand16(ins, ip+1)
			stack = append(stack, vm.prog.ConstantsPool[idx])
			ip += 3

		case compiler.PushNil:
			stack = append(stack, value.Nil{})
			ip++

		case compiler.OutputStr:
			idx := operand16(ins, ip+1)
			sink.OutputString(value.ToDisplayString(vm.prog.ConstantsPool[idx]))
			ip += 3

		case compiler.OutputVal:
			sink.OutputValue(pop())
			ip++

		case compiler.Concat:
			n := operand16(ins, ip+1)
			vals := append([]value.Value(nil), stack[len(stack)-n:]...)
			stack = stack[:len(stack)-n]
			stack = append(stack, concatValues(vals))
			ip += 3

		case compiler.Drop:
			n := operand16(ins, ip+1)
			stack = stack[:len(stack)-n]
			ip += 3

		case compiler.IfFalse:
			target := operand16(ins, ip+1)
			if !value.Truthy(pop()) {
				ip = target
			} else {
				ip += 3
			}

		case compiler.Goto:
			ip = operand16(ins, ip+1)

		case compiler.GetVar:
			name := vm.prog.NameConstants[operand16(ins, ip+1)]
			v, ok := env.GetVar(name)
			if !ok {
				thrown := value.Str{Text: fmt.Sprintf("<%s:unknown var>", name)}
				if !raise(thrown) {
					return &value.ThrownError{Val: thrown}
				}
				break
			}
			stack = append(stack, v)
			ip += 3

		case compiler.SetVar:
			name := vm.prog.NameConstants[operand16(ins, ip+1)]
			env.SetVar(name, pop())
			ip += 3

		case compiler.DelVar:
			name := vm.prog.NameConstants[operand16(ins, ip+1)]
			env.DelVar(name)
			ip += 3

		case compiler.SetNonlocal:
			name := vm.prog.NameConstants[operand16(ins, ip+1)]
			env.SetNonlocal(name)
			ip += 3

		case compiler.GetIndex:
			idx := pop()
			container := pop()
			result, err := getIndex(container, idx)
			if err != nil {
				if !deliverThrow(raise, err) {
					return err
				}
				break
			}
			stack = append(stack, result)
			ip++

		case compiler.GetAttr:
			name := value.ToDisplayString(pop())
			container := pop()
			result, err := getAttr(container, name)
			if err != nil {
				if !deliverThrow(raise, err) {
					return err
				}
				break
			}
			stack = append(stack, result)
			ip++

		case compiler.SetIndex:
			newVal := pop()
			idx := pop()
			container := pop()
			if err := setIndex(container, idx, newVal); err != nil {
				if !deliverThrow(raise, err) {
					return err
				}
				break
			}
			stack = append(stack, value.Nil{})
			ip++

		case compiler.SetAttr:
			newVal := pop()
			name := value.ToDisplayString(pop())
			container := pop()
			if err := setAttr(container, name, newVal); err != nil {
				if !deliverThrow(raise, err) {
					return err
				}
				break
			}
			stack = append(stack, value.Nil{})
			ip++

		case compiler.DelIndex:
			idx := pop()
			container := pop()
			if err := delIndex(container, idx); err != nil {
				if !deliverThrow(raise, err) {
					return err
				}
				break
			}
			stack = append(stack, value.Nil{})
			ip++

		case compiler.DelAttr:
			name := value.ToDisplayString(pop())
			container := pop()
			if err := delAttr(container, name); err != nil {
				if !deliverThrow(raise, err) {
					return err
				}
				break
			}
			stack = append(stack, value.Nil{})
			ip++

		case compiler.CreateList:
			n := operand16(ins, ip+1)
			items := append([]value.Value(nil), stack[len(stack)-n:]...)
			stack = stack[:len(stack)-n]
			stack = append(stack, value.NewList(items))
			ip += 3

		case compiler.CreateMap:
			pairs := operand16(ins, ip+1)
			n := pairs * 2
			vals := append([]value.Value(nil), stack[len(stack)-n:]...)
			stack = stack[:len(stack)-n]
			m := value.NewMap()
			for i := 0; i < pairs; i++ {
				m.Set(value.ToDisplayString(vals[2*i]), vals[2*i+1])
			}
			stack = append(stack, m)
			ip += 3

		case compiler.CreateFunc:
			paramsIdx := operand16(ins, ip+1)
			offset := operand16(ins, ip+3)
			size := operand16(ins, ip+5)
			fn := value.Func{
				Params:   vm.prog.FuncParams[paramsIdx],
				BodyAddr: offset,
				BodySize: size,
				Captured: env,
			}
			stack = append(stack, fn)
			ip += 7

		case compiler.CallFunc:
			argc := operand16(ins, ip+1)
			directFlag := int(ins[ip+3])
			args := append([]value.Value(nil), stack[len(stack)-argc:]...)
			stack = stack[:len(stack)-argc]
			callee := pop()

			switch fnVal := callee.(type) {
			case value.Func:
				if argc < len(fnVal.Params) {
					thrown := value.Str{Text: "<call:missing argument>"}
					if !raise(thrown) {
						return &value.ThrownError{Val: thrown}
					}
					break
				}
				newEnv := value.NewEnvironment(fnVal.Captured)
				hasArgsParam := false
				for i, p := range fnVal.Params {
					newEnv.Define(p, args[i])
					if p == "args" {
						hasArgsParam = true
					}
				}
				if !hasArgsParam {
					newEnv.Define("args", value.NewList(args))
				}
				var calleeSink Sink
				if directFlag == 1 {
					calleeSink = sink
				} else {
					calleeSink = NewCollector()
				}
				if callErr := vm.exec(fnVal.BodyAddr, newEnv, calleeSink); callErr != nil {
					if !deliverThrow(raise, callErr) {
						return callErr
					}
					break
				}
				if directFlag == 0 {
					stack = append(stack, calleeSink.(*Collector).Finish())
				}
				ip += 4

			default:
				if fn, ok := hostFnOf(fnVal); ok {
					result, err := fn(args)
					if err != nil {
						if !deliverThrow(raise, err) {
							return err
						}
						break
					}
					if directFlag == 1 {
						sink.OutputValue(result)
					} else {
						stack = append(stack, result)
					}
					ip += 4
				} else {
					thrown := value.Str{Text: "<call:uncallable object>"}
					if !raise(thrown) {
						return &value.ThrownError{Val: thrown}
					}
				}
			}

		case compiler.WhileStart:
			loopStack = append(loopStack, &loopFrame{})
			ip++

		case compiler.ForStart:
			identIdx := operand16(ins, ip+1)
			step, _ := value.ToNumber(pop())
			end, _ := value.ToNumber(pop())
			start, _ := value.ToNumber(pop())
			if step == 0 {
				thrown := value.Str{Text: "<for:zero step>"}
				if !raise(thrown) {
					return &value.ThrownError{Val: thrown}
				}
				break
			}
			name := vm.prog.NameConstants[identIdx]
			env.Define(name, value.Num{N: start})
			loopStack = append(loopStack, &loopFrame{forIdent: name, forCur: start, forEnd: end, forStep: step})
			ip += 3

		case compiler.ForTest:
			target := operand16(ins, ip+1)
			frame := loopStack[len(loopStack)-1]
			done := (frame.forStep > 0 && frame.forCur >= frame.forEnd) ||
				(frame.forStep < 0 && frame.forCur <= frame.forEnd)
			if done {
				ip = target
			} else {
				ip += 3
			}

		case compiler.ForIter:
			frame := loopStack[len(loopStack)-1]
			frame.forCur += frame.forStep
			env.Define(frame.forIdent, value.Num{N: frame.forCur})
			ip++

		case compiler.ForeachStart:
			identIdx := operand16(ins, ip+1)
			iterable := pop()
			list, ok := iterable.(*value.List)
			if !ok {
				thrown := value.Str{Text: "<foreach:not iterable>"}
				if !raise(thrown) {
					return &value.ThrownError{Val: thrown}
				}
				break
			}
			name := vm.prog.NameConstants[identIdx]
			loopStack = append(loopStack, &loopFrame{foreachIdent: name, foreachItems: list.Items})
			ip += 3

		case compiler.ForeachIter:
			target := operand16(ins, ip+1)
			frame := loopStack[len(loopStack)-1]
			if frame.foreachIdx >= len(frame.foreachItems) {
				ip = target
			} else {
				env.Define(frame.foreachIdent, frame.foreachItems[frame.foreachIdx])
				frame.foreachIdx++
				ip += 3
			}

		case compiler.LoopIncr:
			loopStack[len(loopStack)-1].stackVals++
			ip++

		case compiler.LoopEnd:
			produce := ins[ip+1]
			frame := loopStack[len(loopStack)-1]
			loopStack = loopStack[:len(loopStack)-1]
			n := frame.stackVals
			vals := append([]value.Value(nil), stack[len(stack)-n:]...)
			stack = stack[:len(stack)-n]
			result := concatValues(vals)
			if produce == 1 {
				stack = append(stack, result)
			} else {
				sink.OutputValue(result)
			}
			ip += 2

		case compiler.StartCatch:
			target := operand16(ins, ip+1)
			catchStack = append(catchStack, &catchFrame{
				stackDepth: len(stack),
				loopDepth:  len(loopStack),
				endTarget:  target,
			})
			ip += 3

		case compiler.EndCatch:
			if len(catchStack) == 0 {
				return RuntimeError{Message: "EndCatch outside a catch region"}
			}
			catchStack = catchStack[:len(catchStack)-1]
			v := pop()
			stack = append(stack, value.CatchResult{Success: true, Inner: v})
			ip++

		case compiler.UnwindCatch:
			depth := operand16(ins, ip+1)
			if depth > len(catchStack) {
				return RuntimeError{Message: "UnwindCatch depth exceeds open catches"}
			}
			catchStack = catchStack[:len(catchStack)-depth]
			ip += 3

		case compiler.ThrowVal:
			thrown := pop()
			if !raise(thrown) {
				return &value.ThrownError{Val: thrown}
			}

		case compiler.End:
			return nil

		default:
			return RuntimeError{Message: fmt.Sprintf("unknown opcode %d at ip %d", op, ip)}
		}
	}
}

// deliverThrow unwraps a *value.ThrownError (whether raised directly by
// this invocation or propagated up from a nested CallFunc's exec call)
// and offers it to raise; any other error (a RuntimeError surfacing from
// a nested call) is never catchable and must propagate as-is.
func deliverThrow(raise func(value.Value) bool, err error) bool {
	te, ok := err.(*value.ThrownError)
	if !ok {
		return false
	}
	return raise(te.Val)
}
