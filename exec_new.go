package air

// New introduces a fresh binding for Name, visible only for the lifetime
// of Body; whatever Name was bound to before (if anything) is restored
// once Body finishes, via the same scope push/pop the scalar, stream, and
// canon environments already use for fold nesting (§4.F "new name body",
// §8 property 4 "Scope discipline").
type New struct {
	Name string
	Body Instruction
}

func (n New) Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	return traceInstrument(execCtx, traceCtx, KindNew, func() error {
		execCtx.MeetScopeStart()
		err := n.Body.Execute(execCtx, traceCtx)
		execCtx.MeetScopeEnd()
		return err
	})
}
