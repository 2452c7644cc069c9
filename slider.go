package air

// Slider is a bounded cursor over a contiguous region of a Trace: a
// (buffer, offset, len) triple, never an iterator tied to an allocator, so
// the merger can do index arithmetic directly on it (§9 "Sliders").
//
// A slider exposes exactly its allotted window: seeking past it, or
// shrinking it past the remaining length, is an uncatchable trace error
// (§4.B); reading past it returns no state.
type Slider struct {
	buf    Trace
	offset int
	len    int
	pos    int // states consumed so far within the current window
}

// NewSlider returns a slider over the whole of buf.
func NewSlider(buf Trace) *Slider {
	return &Slider{buf: buf, offset: 0, len: len(buf)}
}

// NewSubSlider returns a slider restricted to buf[begin:begin+length].
func NewSubSlider(buf Trace, begin, length uint32) (*Slider, error) {
	end := int(begin) + int(length)
	if end > len(buf) {
		return nil, ErrSliderOverflow()
	}
	return &Slider{buf: buf, offset: int(begin), len: int(length)}, nil
}

// TracePos is the absolute index into buf the slider is currently at.
func (s *Slider) TracePos() int {
	return s.offset + s.pos
}

// IntervalLen is the number of states remaining in the current window.
func (s *Slider) IntervalLen() int {
	return s.len - s.pos
}

// SetSubtraceLen shrinks the slider's window to n states starting at its
// current position. n must not exceed the states remaining.
func (s *Slider) SetSubtraceLen(n uint32) error {
	if int(n) > s.IntervalLen() {
		return ErrSliderOverflow()
	}
	s.offset = s.TracePos()
	s.len = int(n)
	s.pos = 0
	return nil
}

// SetIntervalLen is an alias for SetSubtraceLen.
func (s *Slider) SetIntervalLen(n uint32) error {
	return s.SetSubtraceLen(n)
}

// NextState returns the next state in the window and advances, or false if
// the window is exhausted.
func (s *Slider) NextState() (ExecutedState, bool) {
	if s.pos >= s.len {
		return ExecutedState{}, false
	}
	st := s.buf[s.offset+s.pos]
	s.pos++
	return st, true
}

// Peek returns the next state without advancing.
func (s *Slider) Peek() (ExecutedState, bool) {
	if s.pos >= s.len {
		return ExecutedState{}, false
	}
	return s.buf[s.offset+s.pos], true
}

// Seek advances the slider by n states without inspecting them.
func (s *Slider) Seek(n uint32) error {
	if s.pos+int(n) > s.len {
		return ErrSliderOverflow()
	}
	s.pos += int(n)
	return nil
}

// StatesSeen is how many states have been consumed from the current
// window so far; the fold FSM uses it to account for unused interval
// length after a body runs short.
func (s *Slider) StatesSeen() int {
	return s.pos
}
