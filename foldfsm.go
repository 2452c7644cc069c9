package air

// FoldFSM brackets the iterations of a single fold instruction. For each
// iteration it points both sliders at the sub-lore descriptors recorded
// for the current value_pos, lets the body run, then accounts for any
// interval length the body left unused (§4.D).
type FoldFSM struct {
	trace *TraceCtx
	lore  []FoldLoreEntry

	entries []FoldLoreEntry // newly produced lore, for the freshly-built FoldResult
}

// NewFoldFSM starts the FSM for a fold whose merger-reported lore is
// given (nil if this fold has no prior record).
func NewFoldFSM(trace *TraceCtx, lore []FoldLoreEntry) *FoldFSM {
	return &FoldFSM{trace: trace, lore: lore}
}

// EnterIteration points both sliders at the sub-interval recorded for
// valuePos, if one was merged from prior traces; otherwise both sliders
// are shrunk to an empty window and the body runs fresh against whatever
// each side actually has. It returns the budget (interval lengths) the
// body is allotted on each side.
func (f *FoldFSM) EnterIteration(valuePos uint32) (prevLen, curLen uint32, err error) {
	entry, ok := f.findLore(valuePos)
	if !ok {
		prevLen, curLen = 0, 0
	} else {
		prevLen = entry.SubTraces[0].Len
		curLen = entry.SubTraces[1].Len
	}

	if err := f.trace.Prev.SetSubtraceLen(prevLen); err != nil {
		return 0, 0, err
	}
	if err := f.trace.Current.SetSubtraceLen(curLen); err != nil {
		return 0, 0, err
	}
	return prevLen, curLen, nil
}

func (f *FoldFSM) findLore(valuePos uint32) (FoldLoreEntry, bool) {
	for _, e := range f.lore {
		if e.ValuePos == valuePos {
			return e, true
		}
	}
	return FoldLoreEntry{}, false
}

// ExitIteration accounts for unused interval length: the body may have
// consumed fewer states than it was allotted (e.g. a nested call deferred
// mid-body). The lore entry it records describes the region of *this
// step's output* the iteration produced: that output becomes next step's
// prev trace verbatim, so the prev-side descriptor of a later replay's
// EnterIteration is exactly this step's output span. The current-side
// descriptor is left at zero length, since a fresh step starts against an
// empty current trace and has no current-side history yet to describe.
func (f *FoldFSM) ExitIteration(valuePos uint32, outputBegin int, prevBudget, curBudget uint32) error {
	prevSeen := uint32(f.trace.Prev.StatesSeen())
	curSeen := uint32(f.trace.Current.StatesSeen())

	if prevSeen > prevBudget || curSeen > curBudget {
		return ErrTraceMergeError("fold iteration consumed more states than its allotted interval")
	}

	outputLen := uint32(f.trace.TracePos() - outputBegin)

	f.entries = append(f.entries, FoldLoreEntry{
		ValuePos: valuePos,
		SubTraces: [2]FoldSubTraceDesc{
			{Begin: uint32(outputBegin), Len: outputLen},
			{Begin: uint32(outputBegin), Len: 0},
		},
	})
	return nil
}

// Result assembles the FoldResult for the states produced across every
// iteration entered via EnterIteration/ExitIteration.
func (f *FoldFSM) Result() FoldResult {
	return FoldResult{Lore: f.entries}
}
