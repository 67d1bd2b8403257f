// code.go defines the bytecode instruction encoding: opcodes, their
// operand widths, and the assemble/disassemble helpers the compiler and
// VM share. This generalizes the teacher's single-opcode `code.go` (one
// `OP_CONSTANT` with a 2-byte operand) to the full instruction set
// spec.md §3 names.
package compiler

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"blocklang/value"
)

type Opcode byte

type Instructions []byte

const (
	PushStr Opcode = iota
	PushAstStr
	PushNil
	PushNum
	OutputStr
	OutputVal
	Concat
	Drop
	IfFalse
	Goto
	GetVar
	SetVar
	DelVar
	SetNonlocal
	GetIndex
	GetAttr
	SetIndex
	SetAttr
	DelIndex
	DelAttr
	CreateList
	CreateMap
	CreateFunc
	CallFunc
	WhileStart
	ForStart
	ForTest
	ForIter
	ForeachStart
	ForeachIter
	LoopIncr
	LoopEnd
	StartCatch
	EndCatch
	UnwindCatch
	ThrowVal
	End
)

// OpCodeDefinition names an opcode and the byte width of each of its
// operands, in order. A 2-byte operand is a uint16 index, address, or
// count; since jump targets are byte offsets, this bounds a single linked
// program image (main program plus every function body appended during
// linking) to 65535 bytes of jump targets — an explicit, named limit, the same shape as
// the teacher's own `OP_CONSTANT` constants-pool comment.
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*OpCodeDefinition{
	PushStr:     {"PushStr", []int{2}},
	PushAstStr:  {"PushAstStr", []int{2}},
	PushNil:     {"PushNil", []int{}},
	PushNum:     {"PushNum", []int{2}},
	OutputStr:   {"OutputStr", []int{2}},
	OutputVal:   {"OutputVal", []int{}},
	Concat:      {"Concat", []int{2}},
	Drop:        {"Drop", []int{2}},
	IfFalse:     {"IfFalse", []int{2}},
	Goto:        {"Goto", []int{2}},
	GetVar:      {"GetVar", []int{2}},
	SetVar:      {"SetVar", []int{2}},
	DelVar:      {"DelVar", []int{2}},
	SetNonlocal: {"SetNonlocal", []int{2}},
	GetIndex:    {"GetIndex", []int{}},
	GetAttr:     {"GetAttr", []int{}},
	SetIndex:    {"SetIndex", []int{}},
	SetAttr:     {"SetAttr", []int{}},
	DelIndex:    {"DelIndex", []int{}},
	DelAttr:     {"DelAttr", []int{}},
	CreateList:  {"CreateList", []int{2}},
	CreateMap:   {"CreateMap", []int{2}},
	CreateFunc:  {"CreateFunc", []int{2, 2, 2}}, // paramsIdx, offset, size
	CallFunc:    {"CallFunc", []int{2, 1}},       // argc, directOutput
	WhileStart:  {"WhileStart", []int{}},
	ForStart:    {"ForStart", []int{2}}, // identIdx
	ForTest:     {"ForTest", []int{2}},  // jump target
	ForIter:     {"ForIter", []int{}},
	ForeachStart: {"ForeachStart", []int{2}}, // identIdx
	ForeachIter: {"ForeachIter", []int{2}},    // jump target
	LoopIncr:    {"LoopIncr", []int{}},
	LoopEnd:     {"LoopEnd", []int{1}}, // produceValue
	StartCatch:  {"StartCatch", []int{2}},
	EndCatch:    {"EndCatch", []int{}},
	UnwindCatch: {"UnwindCatch", []int{2}},
	ThrowVal:    {"ThrowVal", []int{}},
	End:         {"End", []int{}},
}

func Get(op Opcode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("opcode %d undefined", op)
	}
	return def, nil
}

// AssembleInstruction builds an instruction's bytes: the opcode byte
// followed by each operand encoded Big-Endian at its defined width.
func AssembleInstruction(op Opcode, operands ...int) ([]byte, error) {
	def, err := Get(op)
	if err != nil {
		return nil, err
	}
	length := 1
	for _, w := range def.OperandWidths {
		length += w
	}
	instruction := make([]byte, length)
	instruction[0] = byte(op)

	offset := 1
	for i, o := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 1:
			instruction[offset] = byte(o)
		case 2:
			binary.BigEndian.PutUint16(instruction[offset:], uint16(o))
		}
		offset += width
	}
	return instruction, nil
}

// ReadOperands decodes the operand values at the start of ins (the bytes
// just after an opcode byte), given its definition, returning the decoded
// values and the number of bytes consumed (operands only, not the
// opcode byte itself).
func ReadOperands(def *OpCodeDefinition, ins Instructions) ([]int, int) {
	operands := make([]int, len(def.OperandWidths))
	offset := 0
	for i, width := range def.OperandWidths {
		switch width {
		case 1:
			operands[i] = int(ins[offset])
		case 2:
			operands[i] = int(binary.BigEndian.Uint16(ins[offset:]))
		}
		offset += width
	}
	return operands, offset
}

// Bytecode is the result of compilation: the flat linked instruction
// stream, the constants pools it indexes into, and the variable-name
// pool used by name-bearing instructions.
type Bytecode struct {
	Instructions  Instructions
	ConstantsPool []value.Value
	NameConstants []string
	// FuncParams holds each CreateFunc's parameter name list, indexed
	// by the instruction's paramsIdx operand.
	FuncParams [][]string
}

// DumpBytecode writes the encoded instruction stream as hexadecimal to
// filePath, the same developer-tooling role as the teacher's
// `DumpBytecode` on ASTCompiler/Compiler.
func DumpBytecode(b Bytecode, filePath string) error {
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("error creating bytecode dump file: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%x", []byte(b.Instructions))
	return err
}

// DisassembleBytecode renders the instruction stream in a human
// readable form, the same developer-tooling role as the teacher's
// `DiassembleBytecode` on ASTCompiler.
func DisassembleBytecode(b Bytecode) string {
	var out strings.Builder
	ip := 0
	for ip < len(b.Instructions) {
		op := Opcode(b.Instructions[ip])
		def, err := Get(op)
		if err != nil {
			fmt.Fprintf(&out, "%04d ERROR: %s\n", ip, err)
			ip++
			continue
		}
		operands, n := ReadOperands(def, b.Instructions[ip+1:])
		fmt.Fprintf(&out, "%04d %-14s", ip, def.Name)
		for _, o := range operands {
			fmt.Fprintf(&out, " %d", o)
		}
		out.WriteByte('\n')
		ip += 1 + n
	}
	return out.String()
}
