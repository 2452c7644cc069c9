package air

// GenerationSelector picks which generation of a stream a value is
// appended to: either a specific index, or the stream's current last
// generation (creating one if the stream is empty).
type GenerationSelector struct {
	Nth     uint32
	IsLast  bool
	IsExact bool // true when Nth should be used rather than IsLast
}

func GenNth(k uint32) GenerationSelector { return GenerationSelector{Nth: k, IsExact: true} }
func GenLast() GenerationSelector        { return GenerationSelector{IsLast: true} }

// Stream is an append-only list of generations, each an ordered list of
// ValueAggregate (§3 "Streams and canon streams"). Generations let merges
// from different ancestors coexist until a merge point.
type Stream struct {
	generations [][]ValueAggregate
}

// NewStream returns an empty stream.
func NewStream() *Stream {
	return &Stream{}
}

// AddValue appends v to the generation selected by sel, creating that
// generation (and any gap generations before it) if necessary. It returns
// the index of the generation the value landed in.
func (s *Stream) AddValue(v ValueAggregate, sel GenerationSelector) uint32 {
	var idx uint32
	if sel.IsExact {
		idx = sel.Nth
	} else {
		if len(s.generations) == 0 {
			idx = 0
		} else {
			idx = uint32(len(s.generations) - 1)
		}
	}

	for uint32(len(s.generations)) <= idx {
		s.generations = append(s.generations, nil)
	}
	s.generations[idx] = append(s.generations[idx], v)
	return idx
}

// NewGeneration opens a fresh, empty generation and returns its index.
func (s *Stream) NewGeneration() uint32 {
	s.generations = append(s.generations, nil)
	return uint32(len(s.generations) - 1)
}

// GenerationCount is the number of generations opened so far.
func (s *Stream) GenerationCount() int {
	return len(s.generations)
}

// Nth returns the elements of generation k. Reading a nonexistent
// generation is uncatchable StreamDontHaveSuchGeneration.
func (s *Stream) Nth(k uint32) ([]ValueAggregate, error) {
	if int(k) >= len(s.generations) {
		return nil, ErrStreamDontHaveSuchGeneration("", k)
	}
	return s.generations[k], nil
}

// Last returns the elements of the most recent generation, or an empty
// slice if the stream has no generations yet.
func (s *Stream) Last() []ValueAggregate {
	if len(s.generations) == 0 {
		return nil
	}
	return s.generations[len(s.generations)-1]
}

// All concatenates every generation in order, the insertion-preserving
// iteration mode used by "fold over stream" (§4.F).
func (s *Stream) All() []ValueAggregate {
	var out []ValueAggregate
	for _, gen := range s.generations {
		out = append(out, gen...)
	}
	return out
}

// Len is the total number of values across every generation.
func (s *Stream) Len() int {
	n := 0
	for _, gen := range s.generations {
		n += len(gen)
	}
	return n
}

// StreamEnv holds one Stream per name, scoped exactly like scalars: a
// stream introduced inside a fold is visible only within that fold's
// body, per the same sparse-cell-by-depth discipline.
type StreamEnv struct {
	cells map[string][]streamCell
}

type streamCell struct {
	depth  int
	stream *Stream
}

func NewStreamEnv() *StreamEnv {
	return &StreamEnv{cells: make(map[string][]streamCell)}
}

// GetOrCreate returns the stream bound to name at or below depth,
// creating a fresh one at depth if none exists yet.
func (e *StreamEnv) GetOrCreate(name string, depth int) *Stream {
	if s, ok := e.Get(name, depth); ok {
		return s
	}
	s := NewStream()
	e.cells[name] = append(e.cells[name], streamCell{depth: depth, stream: s})
	return s
}

// Get returns the stream bound to name at or below depth, if any.
func (e *StreamEnv) Get(name string, depth int) (*Stream, bool) {
	best := -1
	var out *Stream
	for _, c := range e.cells[name] {
		if c.depth <= depth && c.depth > best {
			best = c.depth
			out = c.stream
		}
	}
	return out, best >= 0
}

// MeetScopeEnd removes every stream binding made at exactly depth.
func (e *StreamEnv) MeetScopeEnd(depth int) {
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
