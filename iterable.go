package air

// IterableState is the cursor a fold binds its iterator name to: the
// flattened sequence of elements being walked (from an array, an object's
// entries, or a stream's generations) plus the current position.
type IterableState struct {
	Elements []ValueAggregate
	Pos      int
}

// Current returns the element the iterator is presently bound to.
func (s *IterableState) Current() ValueAggregate {
	return s.Elements[s.Pos]
}

// Len is the number of elements in the iterable.
func (s *IterableState) Len() int {
	return len(s.Elements)
}

// AtEnd reports whether the iterator has walked past its last element.
func (s *IterableState) AtEnd() bool {
	return s.Pos >= len(s.Elements)
}

// Advance moves the iterator to its next element; it is a no-op at the
// end, per §4.F "next: ... no-op at end."
func (s *IterableState) Advance() {
	if s.Pos < len(s.Elements)-1 {
		s.Pos++
	}
}

type iterableCell struct {
	depth int
	state *IterableState
}

// IterableEnv tracks fold iterator bindings, scoped the same way scalars
// are: a name is visible from where its fold introduces it down through
// that fold's body, and disappears when the fold's scope closes.
type IterableEnv struct {
	cells map[string][]iterableCell
}

func NewIterableEnv() *IterableEnv {
	return &IterableEnv{cells: make(map[string][]iterableCell)}
}

// SetIterableValue binds name to state at depth. Uncatchable if a binding
// for name already exists at this exact depth (§4.E).
func (e *IterableEnv) SetIterableValue(name string, depth int, state *IterableState) error {
	for _, c := range e.cells[name] {
		if c.depth == depth {
			return ErrMultipleVariablesAtGlobal(name)
		}
	}
	e.cells[name] = append(e.cells[name], iterableCell{depth: depth, state: state})
	return nil
}

// GetIterableValue returns the deepest binding for name at or below depth.
func (e *IterableEnv) GetIterableValue(name string, depth int) (*IterableState, bool) {
	best := -1
	var out *IterableState
	for _, c := range e.cells[name] {
		if c.depth <= depth && c.depth > best {
			best = c.depth
			out = c.state
		}
	}
	return out, best >= 0
}

// Has reports whether name resolves as an iterable at or below depth.
func (e *IterableEnv) Has(name string, depth int) bool {
	_, ok := e.GetIterableValue(name, depth)
	return ok
}

// MeetScopeEnd removes every binding made at exactly depth, mirroring
// ScalarEnv's scope-close semantics.
func (e *IterableEnv) MeetScopeEnd(depth int) {
	for name, cells := range e.cells {
		out := cells[:0]
		for _, c := range cells {
			if c.depth != depth {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			delete(e.cells, name)
		} else {
			e.cells[name] = out
		}
	}
}
