package air

// Xor runs Left; a catchable error from Left is absorbed, recorded as
// %last_error%, and Right runs in its place. Uncatchable errors bypass
// Right entirely (§4.F "xor(a,b)", §7 "Xor absorption").
type Xor struct {
	Left  Instruction
	Right Instruction
}

func (x Xor) Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	return traceInstrument(execCtx, traceCtx, KindXor, func() error {
		err := x.Left.Execute(execCtx, traceCtx)
		if err == nil {
			return nil
		}

		if IsUncatchable(err) {
			return err
		}

		ce := err.(*CatchableError)
		execCtx.SetLastError(ce)
		return x.Right.Execute(execCtx, traceCtx)
	})
}
