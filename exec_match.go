package air

import "bytes"

// Match runs Body when Lhs and Rhs resolve to equal values, otherwise
// raises catchable MatchWithoutXor — meant to be caught by an enclosing
// xor (§4.F "match(lhs,rhs,body)").
type Match struct {
	Lhs, Rhs ValueSource
	Body     Instruction
}

func (m Match) Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	return traceInstrument(execCtx, traceCtx, KindMatch, func() error {
		equal, err := valuesEqual(execCtx, m.Lhs, m.Rhs)
		if err != nil {
			return err
		}
		if !equal {
			return ErrMatchWithoutXor()
		}
		return m.Body.Execute(execCtx, traceCtx)
	})
}

// Mismatch runs Body when Lhs and Rhs resolve to unequal values, otherwise
// raises catchable MismatchWithoutXor.
type Mismatch struct {
	Lhs, Rhs ValueSource
	Body     Instruction
}

func (m Mismatch) Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	return traceInstrument(execCtx, traceCtx, KindMismatch, func() error {
		equal, err := valuesEqual(execCtx, m.Lhs, m.Rhs)
		if err != nil {
			return err
		}
		if equal {
			return ErrMismatchWithoutXor()
		}
		return m.Body.Execute(execCtx, traceCtx)
	})
}

func valuesEqual(execCtx *ExecutionCtx, lhs, rhs ValueSource) (bool, error) {
	l, err := lhs.Resolve(execCtx)
	if err != nil {
		return false, err
	}
	r, err := rhs.Resolve(execCtx)
	if err != nil {
		return false, err
	}

	lb, err := canonicalJSON(l.Result)
	if err != nil {
		return false, err
	}
	rb, err := canonicalJSON(r.Result)
	if err != nil {
		return false, err
	}
	return bytes.Equal(lb, rb), nil
}
