package vm

import (
	"math"

	"blocklang/value"
)

// indexAsInt validates an index operand per spec.md §4.3: it must coerce
// to a Num and carry no fractional part.
func indexAsInt(v value.Value) (int, bool) {
	n, ok := value.ToNumber(v)
	if !ok || n != math.Trunc(n) {
		return 0, false
	}
	return int(n), true
}

// resolveListIndex turns a (possibly negative, relative-to-length) index
// into an absolute one, reporting whether it lands in range.
func resolveListIndex(i, length int) (int, bool) {
	if i < 0 {
		i += length
	}
	return i, i >= 0 && i < length
}

func getIndex(container, idx value.Value) (value.Value, error) {
	switch c := container.(type) {
	case *value.List:
		n, ok := indexAsInt(idx)
		if !ok {
			return nil, value.Throwf("index", "fractional or non-numeric index")
		}
		i, inRange := resolveListIndex(n, len(c.Items))
		if !inRange {
			return nil, value.Throwf("index", "out of range")
		}
		return c.Items[i], nil
	case *value.Map:
		v, ok := c.Get(value.ToDisplayString(idx))
		if !ok {
			return value.Nil{}, nil
		}
		return v, nil
	case value.Str, value.AstStr, value.Num:
		runes := []rune(value.ToDisplayString(c))
		n, ok := indexAsInt(idx)
		if !ok {
			return nil, value.Throwf("index", "fractional or non-numeric index")
		}
		i, inRange := resolveListIndex(n, len(runes))
		if !inRange {
			return nil, value.Throwf("index", "out of range")
		}
		return value.Str{Text: string(runes[i])}, nil
	default:
		return nil, value.Throwf("index", "unsupported target")
	}
}

func getAttr(container value.Value, name string) (value.Value, error) {
	switch c := container.(type) {
	case *value.List:
		switch name {
		case "length":
			return value.Num{N: float64(len(c.Items))}, nil
		case "push":
			return value.HostClosure{Name: "push", Fn: func(args []value.Value) (value.Value, error) {
				c.Items = append(c.Items, args...)
				return value.Nil{}, nil
			}}, nil
		case "index":
			return value.HostClosure{Name: "index", Fn: func(args []value.Value) (value.Value, error) {
				if len(args) != 1 {
					return nil, value.Throwf("index", "expects exactly one argument")
				}
				for i, item := range c.Items {
					if value.Equal(item, args[0]) {
						return value.Num{N: float64(i)}, nil
					}
				}
				return value.Num{N: -1}, nil
			}}, nil
		default:
			return nil, value.Throwf("attr", "unsupported attribute")
		}
	case *value.Map:
		switch name {
		case "length":
			return value.Num{N: float64(len(c.Keys))}, nil
		case "keys":
			items := make([]value.Value, len(c.Keys))
			for i, k := range c.Keys {
				items[i] = value.Str{Text: k}
			}
			return value.NewList(items), nil
		case "values":
			items := make([]value.Value, len(c.Keys))
			for i, k := range c.Keys {
				v, _ := c.Get(k)
				items[i] = v
			}
			return value.NewList(items), nil
		default:
			return nil, value.Throwf("attr", "unsupported attribute")
		}
	case value.Str, value.AstStr, value.Num:
		if name == "length" {
			return value.Num{N: float64(len([]rune(value.ToDisplayString(c))))}, nil
		}
		return nil, value.Throwf("attr", "unsupported attribute")
	case value.CatchResult:
		switch name {
		case "status":
			if c.Success {
				return value.Num{N: 1}, nil
			}
			return value.Num{N: 0}, nil
		case "value":
			return c.Inner, nil
		default:
			return nil, value.Throwf("attr", "unsupported attribute")
		}
	default:
		return nil, value.Throwf("attr", "unsupported target")
	}
}

// setIndex supports List (by position) and Map (by key). Str/AstStr/Num/
// CatchResult are immutable, so any index assignment into them throws.
func setIndex(container, idx, newVal value.Value) error {
	switch c := container.(type) {
	case *value.List:
		n, ok := indexAsInt(idx)
		if !ok {
			return value.Throwf("index", "fractional or non-numeric index")
		}
		i, inRange := resolveListIndex(n, len(c.Items))
		if !inRange {
			return value.Throwf("index", "out of range")
		}
		c.Items[i] = newVal
		return nil
	case *value.Map:
		c.Set(value.ToDisplayString(idx), newVal)
		return nil
	default:
		return value.Throwf("index", "unsupported assignment target")
	}
}

// setAttr only supports Map (an attribute name doubling as a key); List's
// named attributes are bound methods, not overwritable slots.
func setAttr(container value.Value, name string, newVal value.Value) error {
	m, ok := container.(*value.Map)
	if !ok {
		return value.Throwf("attr", "unsupported assignment target")
	}
	m.Set(name, newVal)
	return nil
}

func delIndex(container, idx value.Value) error {
	switch c := container.(type) {
	case *value.List:
		n, ok := indexAsInt(idx)
		if !ok {
			return value.Throwf("index", "fractional or non-numeric index")
		}
		i, inRange := resolveListIndex(n, len(c.Items))
		if !inRange {
			return value.Throwf("index", "out of range")
		}
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return nil
	case *value.Map:
		c.Delete(value.ToDisplayString(idx))
		return nil
	default:
		return value.Throwf("index", "unsupported deletion target")
	}
}

func delAttr(container value.Value, name string) error {
	m, ok := container.(*value.Map)
	if !ok {
		return value.Throwf("attr", "unsupported deletion target")
	}
	m.Delete(name)
	return nil
}
