package parser

import "strings"

// pretreat applies the two source-wide passes that run before the
// recursive-descent parse proper: comment stripping and (optionally)
// one-line elision. Both operate on raw text because they must see the
// whole source up front rather than being interleaved with block
// parsing.
func pretreat(src string) (string, error) {
	// The directive itself starts with `{!`, so it is detected before
	// comment stripping would treat it as an unterminated comment.
	oneline, rest := detectOneLineDirective(src)
	src, err := stripComments(rest)
	if err != nil {
		return "", err
	}
	if oneline {
		src = elideLines(src)
	}
	return src, nil
}

// stripComments removes every `{! ... !}` span, allowing them to nest,
// before any other parsing happens. An unterminated comment is a parse
// error.
func stripComments(src string) (string, error) {
	runes := []rune(src)
	var out []rune
	line, col := 1, 1

	advance := func(r rune) {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	i := 0
	for i < len(runes) {
		if runes[i] == '{' && i+1 < len(runes) && runes[i+1] == '!' {
			startLine, startCol := line, col
			depth := 1
			advance(runes[i])
			advance(runes[i+1])
			i += 2
			for depth > 0 {
				if i >= len(runes) {
					return "", CreateSyntaxError(startLine, startCol, "unterminated comment")
				}
				if runes[i] == '{' && i+1 < len(runes) && runes[i+1] == '!' {
					depth++
					advance(runes[i])
					advance(runes[i+1])
					i += 2
					continue
				}
				if runes[i] == '!' && i+1 < len(runes) && runes[i+1] == '}' {
					depth--
					advance(runes[i])
					advance(runes[i+1])
					i += 2
					continue
				}
				advance(runes[i])
				i++
			}
			continue
		}
		out = append(out, runes[i])
		advance(runes[i])
		i++
	}
	return string(out), nil
}

const oneLineDirective = "{!>oneline}"

// detectOneLineDirective reports whether src begins (after leading
// whitespace) with the one-line directive, returning the remaining
// source past the directive.
func detectOneLineDirective(src string) (bool, string) {
	trimmed := strings.TrimLeft(src, " \t\r\n")
	if strings.HasPrefix(trimmed, oneLineDirective) {
		return true, trimmed[len(oneLineDirective):]
	}
	return false, src
}

// elideLines removes line breaks and the surrounding horizontal
// whitespace on each line, letting a program be written multi-line for
// readability while producing compact single-line output.
func elideLines(src string) string {
	lines := strings.Split(src, "\n")
	for i, l := range lines {
		lines[i] = strings.Trim(l, " \t\r")
	}
	return strings.Join(lines, "")
}
