// Package builtins registers the host functions spec.md §4.4 calls for
// into the initial global environment: arithmetic, comparison, and
// logic, plus the `args` argv binding. Grounded on the teacher's
// `interpreter.VisitBinary`'s per-operator coercion style
// (`interpreter/interpreter.go`), adapted from a binary-operator AST
// node to a variadic host function taking `[]value.Value` (this
// language has no operator syntax — `add`/`sub`/... are ordinary calls).
package builtins

import (
	"math"

	"blocklang/value"
)

// Register installs every built-in host function plus the synthetic
// `args` binding (the program's argv) into global.
func Register(global *value.Environment, argv []string) {
	global.Define("add", value.HostFunc{Name: "add", Fn: add})
	global.Define("sub", value.HostFunc{Name: "sub", Fn: sub})
	global.Define("mul", value.HostFunc{Name: "mul", Fn: mul})
	global.Define("fdiv", value.HostFunc{Name: "fdiv", Fn: fdiv})
	global.Define("mod", value.HostFunc{Name: "mod", Fn: mod})

	global.Define("eq", value.HostFunc{Name: "eq", Fn: eq})
	global.Define("ne", value.HostFunc{Name: "ne", Fn: ne})
	global.Define("lt", value.HostFunc{Name: "lt", Fn: lt})
	global.Define("gt", value.HostFunc{Name: "gt", Fn: gt})
	global.Define("le", value.HostFunc{Name: "le", Fn: le})
	global.Define("ge", value.HostFunc{Name: "ge", Fn: ge})

	global.Define("not", value.HostFunc{Name: "not", Fn: not})
	global.Define("and", value.HostFunc{Name: "and", Fn: and})
	global.Define("or", value.HostFunc{Name: "or", Fn: or})

	args := make([]value.Value, len(argv))
	for i, a := range argv {
		args[i] = value.Str{Text: a}
	}
	global.Define("args", value.NewList(args))
}

// nums coerces every argument to a Num by pre-parsed slot or re-parsing
// its string form, per spec.md §4.4, throwing `<op:invalid num>` on the
// first operand that won't coerce.
func nums(op string, args []value.Value) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		n, ok := value.ToNumber(a)
		if !ok {
			return nil, value.Throwf(op, "invalid num")
		}
		out[i] = n
	}
	return out, nil
}

func requireArity(op string, args []value.Value, atLeast int, exact bool) error {
	if exact && len(args) != atLeast {
		return value.Throwf(op, "expects exactly %d argument(s)", atLeast)
	}
	if !exact && len(args) < atLeast {
		return value.Throwf(op, "expects at least %d argument(s)", atLeast)
	}
	return nil
}

func add(args []value.Value) (value.Value, error) {
	if err := requireArity("add", args, 2, false); err != nil {
		return nil, err
	}
	ns, err := nums("add", args)
	if err != nil {
		return nil, err
	}
	sum := 0.0
	for _, n := range ns {
		sum += n
	}
	return value.Num{N: sum}, nil
}

func sub(args []value.Value) (value.Value, error) {
	if err := requireArity("sub", args, 2, true); err != nil {
		return nil, err
	}
	ns, err := nums("sub", args)
	if err != nil {
		return nil, err
	}
	return value.Num{N: ns[0] - ns[1]}, nil
}

func mul(args []value.Value) (value.Value, error) {
	if err := requireArity("mul", args, 2, false); err != nil {
		return nil, err
	}
	ns, err := nums("mul", args)
	if err != nil {
		return nil, err
	}
	product := 1.0
	for _, n := range ns {
		product *= n
	}
	return value.Num{N: product}, nil
}

func fdiv(args []value.Value) (value.Value, error) {
	if err := requireArity("fdiv", args, 2, true); err != nil {
		return nil, err
	}
	ns, err := nums("fdiv", args)
	if err != nil {
		return nil, err
	}
	return value.Num{N: ns[0] / ns[1]}, nil
}

func mod(args []value.Value) (value.Value, error) {
	if err := requireArity("mod", args, 2, true); err != nil {
		return nil, err
	}
	ns, err := nums("mod", args)
	if err != nil {
		return nil, err
	}
	return value.Num{N: math.Mod(ns[0], ns[1])}, nil
}

func boolResult(b bool) value.Value {
	if b {
		return value.Num{N: 1}
	}
	return value.Num{N: 0}
}

func eq(args []value.Value) (value.Value, error) {
	if err := requireArity("eq", args, 2, true); err != nil {
		return nil, err
	}
	return boolResult(value.Equal(args[0], args[1])), nil
}

func ne(args []value.Value) (value.Value, error) {
	if err := requireArity("ne", args, 2, true); err != nil {
		return nil, err
	}
	return boolResult(!value.Equal(args[0], args[1])), nil
}

func lt(args []value.Value) (value.Value, error) {
	if err := requireArity("lt", args, 2, true); err != nil {
		return nil, err
	}
	ns, err := nums("lt", args)
	if err != nil {
		return nil, err
	}
	return boolResult(ns[0] < ns[1]), nil
}

func gt(args []value.Value) (value.Value, error) {
	if err := requireArity("gt", args, 2, true); err != nil {
		return nil, err
	}
	ns, err := nums("gt", args)
	if err != nil {
		return nil, err
	}
	return boolResult(ns[0] > ns[1]), nil
}

func le(args []value.Value) (value.Value, error) {
	if err := requireArity("le", args, 2, true); err != nil {
		return nil, err
	}
	ns, err := nums("le", args)
	if err != nil {
		return nil, err
	}
	return boolResult(ns[0] <= ns[1]), nil
}

func ge(args []value.Value) (value.Value, error) {
	if err := requireArity("ge", args, 2, true); err != nil {
		return nil, err
	}
	ns, err := nums("ge", args)
	if err != nil {
		return nil, err
	}
	return boolResult(ns[0] >= ns[1]), nil
}

func not(args []value.Value) (value.Value, error) {
	if err := requireArity("not", args, 1, true); err != nil {
		return nil, err
	}
	return boolResult(!value.Truthy(args[0])), nil
}

// and returns the first falsy operand, or the last operand if every
// operand is truthy — short-circuiting by value, per spec.md §4.4.
func and(args []value.Value) (value.Value, error) {
	if err := requireArity("and", args, 2, false); err != nil {
		return nil, err
	}
	for _, a := range args[:len(args)-1] {
		if !value.Truthy(a) {
			return a, nil
		}
	}
	return args[len(args)-1], nil
}

// or returns the first truthy operand, or the last operand if every
// operand is falsy.
func or(args []value.Value) (value.Value, error) {
	if err := requireArity("or", args, 2, false); err != nil {
		return nil, err
	}
	for _, a := range args[:len(args)-1] {
		if value.Truthy(a) {
			return a, nil
		}
	}
	return args[len(args)-1], nil
}
