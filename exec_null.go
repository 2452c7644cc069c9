package air

// Null is a no-op instruction: it consumes no trace, produces no state,
// and always leaves its subgraph complete (§4.F "null").
type Null struct{}

func (n Null) Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	return traceInstrument(execCtx, traceCtx, KindNull, func() error {
		execCtx.SubgraphComplete = true
		return nil
	})
}
