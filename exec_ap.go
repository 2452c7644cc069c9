package air

// Ap is the ap(src, dst) instruction: move a value from src to dst
// without a remote call, either binding a scalar or appending to a stream
// generation (§4.F "ap(src, dst)").
type Ap struct {
	Src ValueSource
	Dst OutputSpec
}

func (a Ap) Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	return traceInstrument(execCtx, traceCtx, KindAp, func() error {
		merger := NewMerger(traceCtx)
		merged, err := merger.MergeNextAp()
		if err != nil {
			return err
		}

		agg, err := a.Src.Resolve(execCtx)
		if err != nil {
			return err
		}
		agg.TracePos = traceCtx.TracePos()

		var gens []uint32

		switch a.Dst.Kind {
		case OutputStream:
			stream := execCtx.Streams.GetOrCreate(a.Dst.Name, execCtx.Depth())

			if merged.Found {
				if len(merged.Result.ResGenerations) != 1 {
					return ErrApResultNotCorrespondToInstr()
				}
				idx := merged.Result.ResGenerations[0]
				stream.AddValue(agg, GenNth(idx))
				gens = merged.Result.ResGenerations
			} else {
				idx := stream.AddValue(agg, GenLast())
				gens = []uint32{idx}
			}

		case OutputScalar:
			if merged.Found && len(merged.Result.ResGenerations) != 0 {
				return ErrApResultNotCorrespondToInstr()
			}
			if _, err := execCtx.Scalars.SetValue(a.Dst.Name, agg); err != nil {
				return err
			}

		case OutputNone:
			// value resolved for effect only (e.g. validating a path); nothing
			// further to write.
		}

		traceCtx.Append(NewApState(gens))
		execCtx.SubgraphComplete = true
		return nil
	})
}
