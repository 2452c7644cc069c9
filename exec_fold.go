package air

import "sort"

// FoldSourceKind distinguishes folding over a scalar (an array, or an
// object iterated as entries) from folding over a stream's generations
// (§4.F "fold over scalar" / "fold over stream").
type FoldSourceKind int

const (
	FoldOverScalar FoldSourceKind = iota
	FoldOverStream
)

// Fold is the fold(iterable, iterator, body) instruction. Iteration order
// is insertion-preserving in both modes (§5 "Ordering guarantees"); each
// iteration runs in its own scope so the iterator binding (and anything
// the body binds) is shadowed correctly and unwound on exit.
type Fold struct {
	SourceKind FoldSourceKind
	SourceName string
	Iterator   string
	Body       Instruction
}

func (f Fold) Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	return traceInstrument(execCtx, traceCtx, KindFold, func() error {
		elements, err := f.elements(execCtx)
		if err != nil {
			return err
		}

		merger := NewMerger(traceCtx)
		merged, err := merger.MergeNextFold()
		if err != nil {
			return err
		}

		foldPos := traceCtx.Append(ExecutedState{Tag: StateFold})
		fsm := NewFoldFSM(traceCtx, merged.Lore)

		execCtx.MeetScopeStart()
		depth := execCtx.Depth()

		state := &IterableState{Elements: elements}
		if err := execCtx.Iterables.SetIterableValue(f.Iterator, depth, state); err != nil {
			execCtx.MeetScopeEnd()
			return err
		}

		complete := true
		var bodyErr error

		for state.Pos = 0; state.Pos < len(elements); state.Pos++ {
			valuePos := uint32(state.Pos)

			prevBudget, curBudget, err := fsm.EnterIteration(valuePos)
			if err != nil {
				bodyErr = err
				break
			}

			outputBegin := traceCtx.TracePos()
			execCtx.SubgraphComplete = true
			execCtx.MeetScopeStart()
			err = f.Body.Execute(execCtx, traceCtx)
			execCtx.MeetScopeEnd()
			if err != nil {
				if IsUncatchable(err) {
					bodyErr = err
					break
				}
				complete = false
				if !Joinable(err) {
					bodyErr = err
					break
				}
			}
			iterationComplete := execCtx.SubgraphComplete
			if !iterationComplete {
				complete = false
			}

			if err := fsm.ExitIteration(valuePos, outputBegin, prevBudget, curBudget); err != nil {
				bodyErr = err
				break
			}

			// A not-ready iteration blocks the remaining elements this step,
			// the same way seq's not-ready call blocks its right sibling.
			if !iterationComplete {
				break
			}
		}

		traceCtx.Output[foldPos] = NewFoldState(fsm.Result())
		execCtx.MeetScopeEnd()

		if bodyErr != nil {
			return bodyErr
		}

		execCtx.SubgraphComplete = complete
		return nil
	})
}

func (f Fold) elements(execCtx *ExecutionCtx) ([]ValueAggregate, error) {
	switch f.SourceKind {
	case FoldOverStream:
		stream, ok := execCtx.Streams.Get(f.SourceName, execCtx.Depth())
		if !ok {
			return nil, nil
		}
		return stream.All(), nil

	default:
		agg, err := execCtx.Resolve(f.SourceName)
		if err != nil {
			return nil, err
		}
		return scalarToElements(agg)
	}
}

func scalarToElements(agg ValueAggregate) ([]ValueAggregate, error) {
	switch v := agg.Result.(type) {
	case []interface{}:
		out := make([]ValueAggregate, len(v))
		for i, el := range v {
			out[i] = ValueAggregate{Result: el, Tetraplet: agg.Tetraplet}
		}
		return out, nil

	case map[string]interface{}:
		// Object entries fold in sorted-key order: Go's own map iteration is
		// randomized per run, which would otherwise break the
		// insertion-preserving ordering guarantee (§5) and determinism (§8).
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make([]ValueAggregate, 0, len(v))
		for _, k := range keys {
			entry := map[string]interface{}{"key": k, "value": v[k]}
			out = append(out, ValueAggregate{Result: entry, Tetraplet: agg.Tetraplet})
		}
		return out, nil

	case nil:
		return nil, nil

	default:
		return nil, ErrLambdaApplicableOnlyToObjectsAndArrays(v)
	}
}
