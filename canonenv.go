package air

// CanonStream is a frozen, ordered snapshot of a stream captured at a
// specific peer (§3 "Streams and canon streams"). It has the algebra of a
// scalar — a single immutable value addressed by its CID — but iterates
// like a list.
type CanonStream struct {
	CID      CID
	Elements []ValueAggregate
	Peer     string
}

// At returns the element at index i.
func (c *CanonStream) At(i int) (ValueAggregate, bool) {
	if i < 0 || i >= len(c.Elements) {
		return ValueAggregate{}, false
	}
	return c.Elements[i], true
}

// Len is the number of elements captured in the snapshot.
func (c *CanonStream) Len() int {
	return len(c.Elements)
}

// CanonEnv holds one CanonStream per name, scoped like scalars and
// streams (§4.E "canon streams: set_canon_value, get_canon_value by
// name").
type CanonEnv struct {
	cells map[string][]canonCell
}

type canonCell struct {
	depth int
	value *CanonStream
}

func NewCanonEnv() *CanonEnv {
	return &CanonEnv{cells: make(map[string][]canonCell)}
}

// SetCanonValue binds name to c at depth, shadowing any outer binding.
func (e *CanonEnv) SetCanonValue(name string, depth int, c *CanonStream) {
	cells := e.cells[name]
	for i, cell := range cells {
		if cell.depth == depth {
			cells[i].value = c
			return
		}
	}
	e.cells[name] = append(cells, canonCell{depth: depth, value: c})
}

// GetCanonValue returns the deepest binding for name at or below depth.
func (e *CanonEnv) GetCanonValue(name string, depth int) (*CanonStream, bool) {
	best := -1
	var out *CanonStream
	for _, c := range e.cells[name] {
		if c.depth <= depth && c.depth > best {
			best = c.depth
			out = c.value
		}
	}
	return out, best >= 0
}

// MeetScopeEnd removes every canon binding made at exactly depth.
func (e *CanonEnv) MeetScopeEnd(depth int) {
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
