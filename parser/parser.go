// Package parser turns block-template source text into an AST. Unlike
// the teacher's lexer+token+parser split, this grammar is structural-
// character-driven rather than keyword/operator-token-driven, so
// scanning is folded directly into the recursive-descent parse: there
// is no separate token stream. The scanner style (rune slice, explicit
// line/column tracking, peek/advance helpers) still follows the
// teacher's lexer.
package parser

import (
	"strings"

	"blocklang/ast"
	"blocklang/value"
)

// Parse runs the full pipeline: comment stripping and optional one-line
// elision, then the recursive-descent parse, producing the top-level
// node sequence.
func Parse(src string) ([]ast.Node, error) {
	treated, err := pretreat(src)
	if err != nil {
		return nil, err
	}
	p := newParser(treated)
	nodes, err := p.parseSequence(nil, true)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errorHere("unexpected trailing input")
	}
	return nodes, nil
}

// Parser scans treated source text one rune at a time. It has no
// lookahead buffer beyond single-rune peeks, since the grammar never
// needs more.
type Parser struct {
	chars []rune
	pos   int
	line  int
	col   int
}

func newParser(src string) *Parser {
	return &Parser{chars: []rune(src), pos: 0, line: 1, col: 1}
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.chars) }

func (p *Parser) peek() rune {
	if p.atEnd() {
		return 0
	}
	return p.chars[p.pos]
}

func (p *Parser) peekAt(offset int) (rune, bool) {
	i := p.pos + offset
	if i < 0 || i >= len(p.chars) {
		return 0, false
	}
	return p.chars[i], true
}

func (p *Parser) advance() rune {
	c := p.chars[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return c
}

func (p *Parser) errorHere(message string) error {
	return CreateSyntaxError(p.line, p.col, message)
}

// headStop is the set of characters that end head/attr-name/target text
// scanning: they are structural inside a block and must be escaped to
// appear literally there.
var headStop = map[rune]bool{'.': true, '[': true, ':': true, ';': true, '}': true}

// callArgStop is the stop set for a call argument's own text: only the
// separators matter there, since an argument is a plain value
// expression rather than its own accessor chain.
var callArgStop = map[rune]bool{':': true, ';': true}

// parseSequence scans literal text, escape sequences, and nested `{`
// forms until it hits a rune in stop (not consumed) or, if allowEOF,
// the end of input. It is used for top-level text, escape-block
// bodies, head/attr-name text, and index contents — anywhere the
// grammar wants "text interspersed with nested blocks".
func (p *Parser) parseSequence(stop map[rune]bool, allowEOF bool) ([]ast.Node, error) {
	var nodes []ast.Node
	var buf strings.Builder

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		nodes = append(nodes, stringNode(buf.String()))
		buf.Reset()
	}

	for {
		if p.atEnd() {
			if !allowEOF {
				return nil, p.errorHere("unterminated block")
			}
			break
		}
		c := p.peek()
		if stop[c] {
			break
		}
		if c == '\\' {
			p.consumeEscape(&buf)
			continue
		}
		if c == '{' {
			flush()
			spliced, err := p.parseBraceForm()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, spliced...)
			continue
		}
		buf.WriteRune(c)
		p.advance()
	}
	flush()
	return mergeAdjacentStrings(nodes), nil
}

// consumeEscape handles a `\x` sequence at the current position,
// writing its resolved text into buf and advancing past both runes (or
// just the backslash, if it is the last rune in the source).
func (p *Parser) consumeEscape(buf *strings.Builder) {
	next, ok := p.peekAt(1)
	if !ok {
		p.advance()
		buf.WriteRune('\\')
		return
	}
	switch next {
	case '{', '}', ':', ';', '\\', '>':
		p.advance()
		p.advance()
		buf.WriteRune(next)
	case 'n':
		p.advance()
		p.advance()
		buf.WriteRune('\n')
	default:
		p.advance()
		p.advance()
		buf.WriteRune('\\')
		buf.WriteRune(next)
	}
}

// stringNode builds an ast.String, pre-parsing its numeric
// interpretation when the text is numeric-shaped.
func stringNode(text string) ast.String {
	if n, ok := value.ParseNumericLiteral(text); ok {
		return ast.String{Text: text, Numeric: &n}
	}
	return ast.String{Text: text}
}

// mergeAdjacentStrings folds consecutive ast.String nodes produced at
// the same sequence level into one, re-deriving the numeric slot for
// the combined text.
func mergeAdjacentStrings(nodes []ast.Node) []ast.Node {
	if len(nodes) < 2 {
		return nodes
	}
	merged := nodes[:0:0]
	for _, n := range nodes {
		if s, ok := n.(ast.String); ok && len(merged) > 0 {
			if prev, ok := merged[len(merged)-1].(ast.String); ok {
				merged[len(merged)-1] = stringNode(prev.Text + s.Text)
				continue
			}
		}
		merged = append(merged, n)
	}
	return merged
}

// parseBraceForm is called with the scanner positioned at an opening
// `{`. It dispatches to an escape block or an ordinary block and
// returns the resulting node(s) to splice into the caller's sequence.
func (p *Parser) parseBraceForm() ([]ast.Node, error) {
	p.advance() // consume '{'
	if p.peek() == '>' {
		p.advance() // consume '>'
		inner, err := p.parseSequence(map[rune]bool{'}': true}, false)
		if err != nil {
			return nil, err
		}
		if p.peek() != '}' {
			return nil, p.errorHere("unterminated escape block")
		}
		p.advance() // consume '}'
		return inner, nil
	}
	node, err := p.parseOrdinaryBlock()
	if err != nil {
		return nil, err
	}
	return []ast.Node{node}, nil
}

// parseOrdinaryBlock parses a `{ var-access }` form, recognizing the
// set/del/func special forms when the head names one exactly.
func (p *Parser) parseOrdinaryBlock() (ast.Node, error) {
	head, err := p.parseSequence(headStop, false)
	if err != nil {
		return nil, err
	}

	if name, ok := soleLiteralName(head); ok && (p.peek() == ':' || p.peek() == ';') {
		switch name {
		case "set":
			return p.parseSetForm()
		case "del":
			return p.parseDelForm()
		case "func":
			return p.parseFuncForm()
		}
	}

	accessors, err := p.parseAccessors()
	if err != nil {
		return nil, err
	}
	return ast.Variable{Access: ast.VarAccess{Head: head, Accessors: accessors}}, nil
}

// soleLiteralName reports whether nodes is exactly one literal string
// fragment, returning its text.
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

// parseAccessors consumes the accessor chain following a block's head
// (or desugared form) up to and including the closing `}`.
func (p *Parser) parseAccessors() ([]ast.Accessor, error) {
	var accessors []ast.Accessor
	for {
		if p.atEnd() {
			return nil, p.errorHere("unterminated block")
		}
		switch p.peek() {
		case '}':
			p.advance()
			return accessors, nil
		case '.':
			p.advance()
			attrNodes, err := p.parseSequence(headStop, false)
			if err != nil {
				return nil, err
			}
			accessors = append(accessors, ast.Accessor{Kind: ast.AccessorAttr, Attr: attrNodes})
		case '[':
			p.advance()
			idxNodes, err := p.parseSequence(map[rune]bool{']': true}, false)
			if err != nil {
				return nil, err
			}
			if p.peek() != ']' {
				return nil, p.errorHere("unterminated index accessor")
			}
			p.advance()
			accessors = append(accessors, ast.Accessor{Kind: ast.AccessorIndex, Index: idxNodes})
		case ':', ';':
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			accessors = append(accessors, ast.Accessor{Kind: ast.AccessorCall, Args: args})
		default:
			return nil, p.errorHere("unexpected character in block")
		}
	}
}

// parseCallArgs consumes a call accessor's argument list, the scanner
// positioned at the opening `:` or `;`. A lone `;` yields a zero-argument
// call. Otherwise the opening `:` begins the first argument, and `:`
// and `;` are interchangeable separators between arguments — the same
// rule parseSetForm/parseDelForm already apply — with the list ending
// as soon as a separator is immediately followed by the call's closing
// `}` (left unconsumed for parseAccessors).
func (p *Parser) parseCallArgs() ([][]ast.Node, error) {
	if p.peek() == ';' {
		p.advance()
		return [][]ast.Node{}, nil
	}
	p.advance() // consume opening ':'
	var args [][]ast.Node
	for {
		argNodes, err := p.parseSequence(callArgStop, false)
		if err != nil {
			return nil, err
		}
		args = append(args, argNodes)
		if p.peek() != ':' && p.peek() != ';' {
			return nil, p.errorHere("unterminated call")
		}
		p.advance()
		if p.atEnd() {
			return nil, p.errorHere("unterminated call")
		}
		if p.peek() == '}' {
			return args, nil
		}
	}
}

// parseAccessTarget parses a set/del target: a head followed by any
// number of `.attr`/`[index]` accessors (but not a call — a call
// accessor in target position is caught later, at compile time, as
// "cannot set/del through a call"). It stops without consuming at the
// `:` or `;` that follows.
func (p *Parser) parseAccessTarget() (ast.VarAccess, error) {
	head, err := p.parseSequence(headStop, false)
	if err != nil {
		return ast.VarAccess{}, err
	}
	var accessors []ast.Accessor
	for {
		if p.atEnd() {
			return ast.VarAccess{}, p.errorHere("unterminated block")
		}
		switch p.peek() {
		case '.':
			p.advance()
			attrNodes, err := p.parseSequence(headStop, false)
			if err != nil {
				return ast.VarAccess{}, err
			}
			accessors = append(accessors, ast.Accessor{Kind: ast.AccessorAttr, Attr: attrNodes})
		case '[':
			p.advance()
			idxNodes, err := p.parseSequence(map[rune]bool{']': true}, false)
			if err != nil {
				return ast.VarAccess{}, err
			}
			if p.peek() != ']' {
				return ast.VarAccess{}, p.errorHere("unterminated index accessor")
			}
			p.advance()
			accessors = append(accessors, ast.Accessor{Kind: ast.AccessorIndex, Index: idxNodes})
		default:
			return ast.VarAccess{Head: head, Accessors: accessors}, nil
		}
	}
}

// parseSetForm parses the remainder of `{set:target;value;}` (or
// `:`-separated), the scanner positioned at the opening separator.
func (p *Parser) parseSetForm() (ast.Node, error) {
	if p.peek() == ';' {
		return nil, p.errorHere("empty set")
	}
	p.advance() // consume ':'
	target, err := p.parseAccessTarget()
	if err != nil {
		return nil, err
	}
	if p.peek() != ':' && p.peek() != ';' {
		return nil, p.errorHere("set requires a target and a value")
	}
	p.advance()
	valueNodes, err := p.parseSequence(callArgStop, false)
	if err != nil {
		return nil, err
	}
	if p.peek() != ':' && p.peek() != ';' {
		return nil, p.errorHere("unterminated set")
	}
	p.advance()
	if p.peek() != '}' {
		return nil, p.errorHere("unterminated block")
	}
	p.advance()
	return ast.SetVar{Access: target, Value: valueNodes}, nil
}

// parseDelForm parses the remainder of `{del:target;}`.
func (p *Parser) parseDelForm() (ast.Node, error) {
	if p.peek() == ';' {
		return nil, p.errorHere("empty del")
	}
	p.advance() // consume ':'
	target, err := p.parseAccessTarget()
	if err != nil {
		return nil, err
	}
	if p.peek() != ':' && p.peek() != ';' {
		return nil, p.errorHere("unterminated del")
	}
	p.advance()
	if p.peek() != '}' {
		return nil, p.errorHere("unterminated block")
	}
	p.advance()
	return ast.DelVar{Access: target}, nil
}

// parseFuncForm parses `{func:{name:p1;p2;...;}:body;}`, desugaring it
// into SetVar(name, Variable(lambda(p1, p2, ..., body))). The
// `{name:p1;...;}` component is a genuine nested block whose shape is
// reinterpreted: its head is the function name and its call accessor's
// argument texts are the (literal) parameter names.
func (p *Parser) parseFuncForm() (ast.Node, error) {
	args, err := p.parseCallArgs()
	if err != nil {
		return nil, err
	}
	if p.peek() != '}' {
		return nil, p.errorHere("unterminated block")
	}
	p.advance()
	if len(args) != 2 {
		return nil, p.errorHere("func requires a name/parameter block and a body")
	}
	name, params, err := extractNameAndParams(args[0])
	if err != nil {
		return nil, err
	}

	lambdaArgs := append(append([][]ast.Node{}, params...), args[1])
	lambdaAccess := ast.VarAccess{
		Head:      []ast.Node{ast.String{Text: "lambda"}},
		Accessors: []ast.Accessor{{Kind: ast.AccessorCall, Args: lambdaArgs}},
	}
	return ast.SetVar{
		Access: ast.VarAccess{Head: []ast.Node{ast.String{Text: name}}},
		Value:  []ast.Node{ast.Variable{Access: lambdaAccess}},
	}, nil
}

// extractNameAndParams validates that a func form's first argument is
// exactly one nested block whose head is a literal name and whose sole
// accessor is a call, returning that name and the call's argument
// sequences as the parameter list.
func extractNameAndParams(nameBlock []ast.Node) (string, [][]ast.Node, error) {
	if len(nameBlock) != 1 {
		return "", nil, CreateSyntaxError(0, 0, "func requires a single name/parameter block")
	}
	v, ok := nameBlock[0].(ast.Variable)
	if !ok {
		return "", nil, CreateSyntaxError(0, 0, "func requires a name/parameter block")
	}
	name, ok := soleLiteralName(v.Access.Head)
	if !ok {
		return "", nil, CreateSyntaxError(0, 0, "func requires a literal name")
	}
	if len(v.Access.Accessors) != 1 || v.Access.Accessors[0].Kind != ast.AccessorCall {
		return "", nil, CreateSyntaxError(0, 0, "func requires a parameter list")
	}
	return name, v.Access.Accessors[0].Args, nil
}
