package air

// ParFSM brackets a single par instruction's execution, walking the three
// transitions described in §4.D: shrink sliders to the left branch's
// recorded size, run it, reset to the right branch's size, run it, then
// append a merged Par entry sized to what was actually produced.
//
// One ParFSM is created per par instruction invocation; it is not reused
// across instructions.
type ParFSM struct {
	trace *TraceCtx

	prevLeft, prevRight uint32
	curLeft, curRight   uint32

	// saved windows to restore once both branches have run
	savedPrevLen, savedCurLen int

	leftOutputStart int
}

// NewParFSM starts the FSM for a par whose merger-reported prev/current
// sizes are given (zero on either side if this par has no prior record).
func NewParFSM(trace *TraceCtx, prev, cur ParResult) *ParFSM {
	return &ParFSM{
		trace:     trace,
		prevLeft:  prev.LeftSize,
		prevRight: prev.RightSize,
		curLeft:   cur.LeftSize,
		curRight:  cur.RightSize,
	}
}

// LeftStarted shrinks both sliders to their left-branch windows (transition 1).
func (f *ParFSM) LeftStarted() error {
	if err := f.trace.Prev.SetSubtraceLen(f.prevLeft); err != nil {
		return err
	}
	if err := f.trace.Current.SetSubtraceLen(f.curLeft); err != nil {
		return err
	}
	f.leftOutputStart = f.trace.TracePos()
	return nil
}

// LeftCompleted records how many states the left branch produced and
// resets both sliders to their right-branch windows (transition 2).
func (f *ParFSM) LeftCompleted() (leftProduced uint32, err error) {
	leftProduced = uint32(f.trace.TracePos() - f.leftOutputStart)

	if err := f.trace.Prev.SetSubtraceLen(f.prevRight); err != nil {
		return 0, err
	}
	if err := f.trace.Current.SetSubtraceLen(f.curRight); err != nil {
		return 0, err
	}
	return leftProduced, nil
}

// RightCompleted appends the merged Par(leftProduced, rightProduced) entry
// at parPos, once both branches have finished (transition 3). The caller
// is responsible for restoring the parent slider windows afterward via
// RestoreParent.
func (f *ParFSM) RightCompleted(parPos int, leftProduced uint32, rightStart int) ExecutedState {
	rightProduced := uint32(f.trace.TracePos() - rightStart)
	return NewParState(leftProduced, rightProduced)
}
