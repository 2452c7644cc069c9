package air

// Par runs Left then Right sequentially — there is no intra-step
// parallelism (§5) — but tracks their completion independently so that a
// joinable failure or not-ready state in one does not prevent the other
// from running (§4.F "par(a,b)", §7 "Par independence").
type Par struct {
	Left  Instruction
	Right Instruction
}

func (p Par) Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	return traceInstrument(execCtx, traceCtx, KindPar, func() error {
		merger := NewMerger(traceCtx)
		merged, err := merger.MergeNextPar()
		if err != nil {
			return err
		}

		parPos := traceCtx.Append(ExecutedState{Tag: StatePar})

		fsm := NewParFSM(traceCtx, merged.Prev, merged.Cur)
		if err := fsm.LeftStarted(); err != nil {
			return err
		}

		leftErr := p.Left.Execute(execCtx, traceCtx)
		leftComplete := execCtx.SubgraphComplete
		if leftErr != nil {
			leftComplete = false
			if IsUncatchable(leftErr) {
				return leftErr
			}
		}

		leftProduced, err := fsm.LeftCompleted()
		if err != nil {
			return err
		}

		rightStart := traceCtx.TracePos()
		rightErr := p.Right.Execute(execCtx, traceCtx)
		rightComplete := execCtx.SubgraphComplete
		if rightErr != nil {
			rightComplete = false
			if IsUncatchable(rightErr) {
				return rightErr
			}
		}

		traceCtx.Output[parPos] = fsm.RightCompleted(parPos, leftProduced, rightStart)

		execCtx.SubgraphComplete = leftComplete && rightComplete

		// A joinable failure in a branch marks it incomplete but does not fail
		// the par; a non-joinable catchable failure still propagates, so an
		// enclosing xor can see it, once both branches have had their turn.
		if leftErr != nil && !Joinable(leftErr) {
			return leftErr
		}
		if rightErr != nil && !Joinable(rightErr) {
			return rightErr
		}
		return nil
	})
}
