package value

// ToDisplayString renders v the way OutputVal and string concatenation
// do: the text form a user would see printed.
func ToDisplayString(v Value) string {
	switch t := v.(type) {
	case Nil:
		return ""
	case Str:
		return t.Text
	case Num:
		return NumToString(t.N)
	case AstStr:
		return t.Text
	case Func, HostFunc, HostClosure:
		return "<function>"
	case CatchResult:
		return ToDisplayString(t.Inner)
	case *List:
		return "<list>"
	case *Map:
		return "<map>"
	default:
		return ""
	}
}

// Truthy applies the language's truthiness rule: Nil and the empty
// string are falsy, a zero Num is falsy, everything else is truthy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case Nil:
		return false
	case Str:
		return t.Text != ""
	case Num:
		return t.N != 0
	case AstStr:
		if t.Numeric != nil {
			return *t.Numeric != 0
		}
		return t.Text != ""
	default:
		return true
	}
}

// ToNumber coerces v to a float64 by pre-parsed slot (Num, or an AstStr
// whose Numeric slot is populated), else by re-parsing its string form,
// returning ok=false if no numeric interpretation exists.
func ToNumber(v Value) (float64, bool) {
	switch t := v.(type) {
	case Num:
		return t.N, true
	case AstStr:
		if t.Numeric != nil {
			return *t.Numeric, true
		}
		return ParseNumericLiteral(t.Text)
	case Str:
		return ParseNumericLiteral(t.Text)
	default:
		return 0, false
	}
}

// Equal implements the language's `eq` comparison: Nil compares equal to
// Nil and to the empty string; Str compares lexically; Num compares
// numerically; a Num and a Str compare via the canonical number-to-
// string form. AstStr participates as a Str first — a textual
// comparison against a Str wins even when AstStr carries a populated
// numeric slot, matching the arm order in the original's `eq_func`
// (`(AstStr(s1,_), Str(s2)) => s1==s2`, checked before either numeric
// arm) — and uses its numeric view when compared against a Num, or
// against another AstStr when both carry a numeric slot. Anything else is equal only to itself by
// reference-free structural identity of kind and content is undefined,
// so it compares not-equal.
func Equal(a, b Value) bool {
	if as, aIsAstStr := a.(AstStr); aIsAstStr {
		if bs, bIsStr := b.(Str); bIsStr {
			return as.Text == bs.Text
		}
	}
	if bs, bIsAstStr := b.(AstStr); bIsAstStr {
		if as, aIsStr := a.(Str); aIsStr {
			return as.Text == bs.Text
		}
	}

	as, aIsStr, aNum, aIsNum := stringAndNumView(a)
	bs, bIsStr, bNum, bIsNum := stringAndNumView(b)

	if aIsNum && bIsNum {
		return aNum == bNum
	}
	if aIsNum && bIsStr {
		return NumToString(aNum) == bs
	}
	if aIsStr && bIsNum {
		return as == NumToString(bNum)
	}
	if aIsStr && bIsStr {
		return as == bs
	}
	return false
}

// stringAndNumView extracts the Str-like and Num-like interpretations of
// a value for use by Equal. Nil is treated as the empty string. AstStr
// offers both views when it carries a Numeric slot.
func stringAndNumView(v Value) (str string, isStr bool, num float64, isNum bool) {
	switch t := v.(type) {
	case Nil:
		return "", true, 0, false
	case Str:
		return t.Text, true, 0, false
	case Num:
		return "", false, t.N, true
	case AstStr:
		if t.Numeric != nil {
			return t.Text, true, *t.Numeric, true
		}
		return t.Text, true, 0, false
	default:
		return "", false, 0, false
	}
}
