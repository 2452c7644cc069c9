package air

// Seq runs Left, then Right only if Left's subgraph completed (§4.F
// "seq(a,b): sets subgraph_complete=true; runs a; if still complete, runs
// b. A not-ready call in a leaves subgraph_complete=false, skipping b.").
type Seq struct {
	Left  Instruction
	Right Instruction
}

func (s Seq) Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	return traceInstrument(execCtx, traceCtx, KindSeq, func() error {
		execCtx.SubgraphComplete = true

		if err := s.Left.Execute(execCtx, traceCtx); err != nil {
			return err
		}
		if !execCtx.SubgraphComplete {
			return nil
		}

		return s.Right.Execute(execCtx, traceCtx)
	})
}
