package value

// Environment is a lexical scope frame: a mapping from name to VarRef
// plus an optional outer frame. It lives in this package (rather than a
// separate env package) because Func needs to hold a *Environment and
// Environment needs to hold Values — splitting them would be a cycle.
//
// Environments are themselves shared, GC-tracked objects: a Func closes
// over the *Environment pointer it was created under, and multiple
// closures may share and mutate the same frame through it.
type Environment struct {
	vars  map[string]*VarRef
	outer *Environment
}

// VarRef is a single binding slot. It is either a direct value holder or
// a NonLocal marker redirecting lookups/writes to the nearest outer
// frame that itself holds (or is redirected to) a value.
type VarRef struct {
	NonLocal bool
	Val      Value
}

// NewEnvironment creates a fresh, empty frame with the given outer
// frame (nil for the global frame).
func NewEnvironment(outer *Environment) *Environment {
	return &Environment{vars: make(map[string]*VarRef), outer: outer}
}

// GetVar walks outward from e until it finds a binding for name that is
// not itself a NonLocal marker, returning its value. It returns
// ok=false if no frame on the chain binds name to a value.
func (e *Environment) GetVar(name string) (Value, bool) {
	frame := e
	for frame != nil {
		if ref, exists := frame.vars[name]; exists {
			if !ref.NonLocal {
				return ref.Val, true
			}
		}
		frame = frame.outer
	}
	return nil, false
}

// SetVar walks outward through NonLocal markers until it either finds a
// frame with a direct (non-NonLocal) binding for name, in which case it
// overwrites that binding in place, or runs out of NonLocal redirects,
// in which case it inserts a fresh binding in the frame where the walk
// stopped (the first frame with no binding at all for name, or — for
// the starting frame itself — always has priority if it holds a direct
// binding already).
func (e *Environment) SetVar(name string, v Value) {
	frame := e
	for frame != nil {
		ref, exists := frame.vars[name]
		if !exists {
			frame.vars[name] = &VarRef{Val: v}
			return
		}
		if !ref.NonLocal {
			ref.Val = v
			return
		}
		frame = frame.outer
	}
	// No frame on the chain had any binding at all (a NonLocal marker
	// with no outer frame left to redirect to): bind it locally.
	e.vars[name] = &VarRef{Val: v}
}

// SetNonlocal marks name, in the current frame only, as a redirect to
// whatever binds it in an outer frame. Subsequent GetVar/SetVar calls
// starting from this frame follow the redirect instead of stopping here.
func (e *Environment) SetNonlocal(name string) {
	e.vars[name] = &VarRef{NonLocal: true}
}

// DelVar removes name from the current frame only, regardless of
// whether it held a direct value or a NonLocal marker.
func (e *Environment) DelVar(name string) {
	delete(e.vars, name)
}

// Define binds name directly in this frame, overwriting whatever was
// there (value or NonLocal marker). Used for parameter binding at call
// time, where each call gets a brand new frame.
func (e *Environment) Define(name string, v Value) {
	e.vars[name] = &VarRef{Val: v}
}
