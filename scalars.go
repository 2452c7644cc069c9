package air

// sparseCell is one binding of a scalar name at a particular fold-nesting
// depth. A name's cell list need not have an entry at every depth: lookup
// finds the deepest cell at or below the current depth (§3 "Scalars
// scope").
type sparseCell struct {
	depth int
	value ValueAggregate
}

// ScalarEnv is the scope stack for scalar variables: each name maps to a
// vector of sparse cells, and a depth counter tracks fold nesting. This
// mirrors the source's HashMap<Name, Vec<SparseCell>> representation
// exactly (§9 "Scope stacks"): popping a scope only touches the names
// bound since the matching push, via touched, not every name in the env.
type ScalarEnv struct {
	cells   map[string][]sparseCell
	depth   int
	touched []map[string]bool // touched[d] = names first bound at depth d
}

// NewScalarEnv returns an empty scalar environment at depth 0.
func NewScalarEnv() *ScalarEnv {
	return &ScalarEnv{
		cells:   make(map[string][]sparseCell),
		touched: []map[string]bool{make(map[string]bool)},
	}
}

// SetValue binds name to v at the current depth. At global scope (depth
// 0), rebinding an already-defined name is uncatchable MultipleVariables.
// Inside a fold, the deepest cell at the current depth is overwritten
// (shadowing). It returns whether a prior cell at this exact depth existed.
func (e *ScalarEnv) SetValue(name string, v ValueAggregate) (existed bool, err error) {
	cells := e.cells[name]

	for i, c := range cells {
		if c.depth == e.depth {
			if e.depth == 0 {
				return false, ErrMultipleVariablesAtGlobal(name)
			}
			cells[i].value = v
			return true, nil
		}
	}

	if e.depth == 0 && len(cells) > 0 {
		return false, ErrMultipleVariablesAtGlobal(name)
	}

	e.cells[name] = append(cells, sparseCell{depth: e.depth, value: v})
	e.touched[e.depth][name] = true
	return false, nil
}

// GetValue returns the deepest cell for name at or below the current
// depth. Missing is catchable VariableNotFound.
func (e *ScalarEnv) GetValue(name string) (ValueAggregate, error) {
	cells := e.cells[name]

	best := -1
	var bestVal ValueAggregate
	for _, c := range cells {
		if c.depth <= e.depth && c.depth > best {
			best = c.depth
			bestVal = c.value
		}
	}
	if best < 0 {
		return ValueAggregate{}, ErrVariableNotFound(name)
	}
	return bestVal, nil
}

// Has reports whether name resolves at the current depth, without raising
// an error.
func (e *ScalarEnv) Has(name string) bool {
	_, err := e.GetValue(name)
	return err == nil
}

// MeetScopeStart pushes a new depth, as happens entering a fold iteration.
func (e *ScalarEnv) MeetScopeStart() {
	e.depth++
	e.touched = append(e.touched, make(map[string]bool))
}

// MeetScopeEnd pops the current depth, removing every cell bound at it
// (shadowed bindings from outer depths become visible again), as happens
// leaving a fold iteration.
func (e *ScalarEnv) MeetScopeEnd() {
	names := e.touched[e.depth]
	for name := range names {
		cells := e.cells[name]
		out := cells[:0]
		for _, c := range cells {
			if c.depth != e.depth {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			delete(e.cells, name)
		} else {
			e.cells[name] = out
		}
	}
	e.touched = e.touched[:e.depth]
	e.depth--
}

// Depth reports the current fold-nesting depth.
func (e *ScalarEnv) Depth() int {
	return e.depth
}
