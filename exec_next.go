package air

// Next marks the point in a fold body where the next element should be
// considered. The enclosing Fold drives iteration itself (§9 "Async/
// coroutines: none required"), so Next is a no-op here — its presence or
// absence in a body changes nothing about how many times the body runs,
// matching §4.F's "no-op at end" for the case where no further element
// exists.
type Next struct {
	Iterator string
}

func (n Next) Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	return traceInstrument(execCtx, traceCtx, KindNext, func() error {
		if !execCtx.Iterables.Has(n.Iterator, execCtx.Depth()) {
			return ErrFoldStateNotFound(n.Iterator)
		}
		execCtx.SubgraphComplete = true
		return nil
	})
}
