package air

import "context"

// TraceCtx holds the two input sliders (prev and current trace) the merger
// reads from, and the output trace this execution step is building. Every
// instruction executor appends exactly the states it produces (directly,
// or via the merger's recommendation) to Output.
type TraceCtx struct {
	Prev    *Slider
	Current *Slider
	Output  Trace

	// Ctx carries the ambient span for this Run() call into the
	// per-instruction recorder (recorder.go); it defaults to
	// context.Background() and is set by the Runner before the script
	// starts executing.
	Ctx context.Context

	lcid           uint32 // last issued call_id, carried from input data (§9 "Pending calls")
	instructionSeq int    // allocates instruction ids for the ambient recorder
}

// NewTraceCtx builds a trace context from the two prior traces supplied to
// a run, and the last call_id issued so far.
func NewTraceCtx(prev, current Trace, lcid uint32) *TraceCtx {
	return &TraceCtx{
		Prev:    NewSlider(prev),
		Current: NewSlider(current),
		Output:  make(Trace, 0, len(prev)+len(current)),
		Ctx:     context.Background(),
		lcid:    lcid,
	}
}

// NextInstructionID allocates the next monotonically increasing
// instruction id for this step's ambient recorder (SPEC_FULL §H).
func (t *TraceCtx) NextInstructionID() int {
	t.instructionSeq++
	return t.instructionSeq
}

// TracePos is the position the next appended state will occupy.
func (t *TraceCtx) TracePos() int {
	return len(t.Output)
}

// Append records a newly produced state and returns its trace position.
func (t *TraceCtx) Append(s ExecutedState) int {
	pos := len(t.Output)
	t.Output = append(t.Output, s)
	return pos
}

// NextCallID allocates the next monotonically increasing call_id.
func (t *TraceCtx) NextCallID() uint32 {
	t.lcid++
	return t.lcid
}

// LastCallID reports the most recently issued call_id, for serialization
// as the trace's "lcid" field (§6 "Trace data format").
func (t *TraceCtx) LastCallID() uint32 {
	return t.lcid
}
