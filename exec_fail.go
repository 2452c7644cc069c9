package air

// Fail raises a catchable LocalServiceError with a literal ret_code and
// message, as written directly in a script (§4.F "fail(ret_code, msg)").
type Fail struct {
	RetCode int32
	Message string
}

func (f Fail) Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	return traceInstrument(execCtx, traceCtx, KindFail, func() error {
		return ErrLocalServiceError(f.RetCode, f.Message)
	})
}

// FailLastError re-raises whatever error is currently bound to
// %last_error%, the "fail %last_error%" form.
type FailLastError struct{}

func (f FailLastError) Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	return traceInstrument(execCtx, traceCtx, KindFail, func() error {
		if execCtx.LastError == nil {
			return ErrVariableNotFound("%last_error%")
		}
		return execCtx.LastError
	})
}
