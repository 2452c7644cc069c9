package air

import (
	"encoding/json"
	"fmt"
	"math"
)

// TripletSource names a call's target the way a script expresses it: each
// component may itself be a literal or resolved from a variable.
type TripletSource struct {
	PeerPK       ValueSource
	ServiceID    ValueSource
	FunctionName ValueSource
}

// Call is the call(triplet, args, output) instruction (§4.F "call").
type Call struct {
	Triplet TripletSource
	Args    []ValueSource
	Output  OutputSpec
}

func (c Call) Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	return traceInstrument(execCtx, traceCtx, KindCall, func() error {
		merger := NewMerger(traceCtx)
		merged, err := merger.MergeNextCall()
		if err != nil {
			return err
		}

		if merged.Found {
			return c.executeMerged(execCtx, traceCtx, merged.Result)
		}

		return c.executeFresh(execCtx, traceCtx)
	})
}

func (c Call) executeMerged(execCtx *ExecutionCtx, traceCtx *TraceCtx, prior CallResult) error {
	switch prior.Kind {
	case CallExecuted:
		v, err := execCtx.Values.Resolve(prior.ValueRef)
		if err != nil {
			return err
		}
		tet := c.resultTetraplet(execCtx)
		execCtx.Tetraplets.Set(prior.ValueRef, tet)
		agg := ValueAggregate{
			Result:     v,
			Tetraplet:  tet,
			TracePos:   traceCtx.TracePos(),
			Provenance: Provenance{Kind: ProvenanceServiceResult, CID: prior.ValueRef},
		}
		if err := c.Output.write(execCtx, agg, GenLast()); err != nil {
			return err
		}
		traceCtx.Append(NewCallState(prior))
		execCtx.SubgraphComplete = true
		return nil

	case CallRequestSentBy:
		if prior.SentBy == execCtx.CurrentPeerID {
			if res, ok := execCtx.CallResults[prior.CallID]; ok {
				return c.resolveServiceResult(execCtx, traceCtx, prior.CallID, res)
			}
		}
		traceCtx.Append(NewCallState(prior))
		execCtx.SubgraphComplete = false
		return nil

	case CallServiceFailed:
		traceCtx.Append(NewCallState(prior))
		return ErrLocalServiceError(prior.RetCode, prior.Message)

	default:
		return ErrTraceMergeError(fmt.Sprintf("unknown call result kind %v", prior.Kind))
	}
}

func (c Call) resolveServiceResult(execCtx *ExecutionCtx, traceCtx *TraceCtx, callID uint32, res CallServiceResult) error {
	if res.RetCode != 0 {
		traceCtx.Append(NewCallState(CallResultFailed(res.RetCode, res.Result)))
		return ErrLocalServiceError(res.RetCode, res.Result)
	}

	var parsed JValue
	if err := json.Unmarshal([]byte(res.Result), &parsed); err != nil {
		msg := fmt.Sprintf("failed to parse call_service result: %s", err)
		traceCtx.Append(NewCallState(CallResultFailed(math.MaxInt32, msg)))
		return ErrLocalServiceError(math.MaxInt32, msg)
	}

	cidRef, err := execCtx.Values.Put(parsed)
	if err != nil {
		return ErrTraceMergeError(err.Error())
	}
	tet := c.resultTetraplet(execCtx)
	execCtx.Tetraplets.Set(cidRef, tet)

	agg := ValueAggregate{
		Result:     parsed,
		Tetraplet:  tet,
		TracePos:   traceCtx.TracePos(),
		Provenance: Provenance{Kind: ProvenanceServiceResult, CID: cidRef},
	}
	if err := c.Output.write(execCtx, agg, GenLast()); err != nil {
		return err
	}

	traceCtx.Append(NewCallState(CallResultExecuted(cidRef)))
	execCtx.SubgraphComplete = true
	return nil
}

func (c Call) executeFresh(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	triplet, args, tetraplets, err := c.resolveTriplet(execCtx)
	if err != nil {
		return err
	}

	callID := traceCtx.NextCallID()

	if triplet.PeerPK == execCtx.CurrentPeerID {
		execCtx.IssueCallRequest(CallRequest{
			CallID:     callID,
			Triplet:    triplet,
			Args:       args,
			Tetraplets: tetraplets,
		})
	} else {
		execCtx.AddNextPeer(triplet.PeerPK)
	}

	traceCtx.Append(NewCallState(CallResultSentBy(execCtx.CurrentPeerID, callID)))
	execCtx.SubgraphComplete = false
	return nil
}

func (c Call) resolveTriplet(execCtx *ExecutionCtx) (Triplet, []JValue, [][]SecurityTetraplet, error) {
	peer, err := c.Triplet.PeerPK.Resolve(execCtx)
	if err != nil {
		return Triplet{}, nil, nil, err
	}
	service, err := c.Triplet.ServiceID.Resolve(execCtx)
	if err != nil {
		return Triplet{}, nil, nil, err
	}
	fn, err := c.Triplet.FunctionName.Resolve(execCtx)
	if err != nil {
		return Triplet{}, nil, nil, err
	}

	triplet := Triplet{
		PeerPK:       fmt.Sprint(peer.Result),
		ServiceID:    fmt.Sprint(service.Result),
		FunctionName: fmt.Sprint(fn.Result),
	}

	args := make([]JValue, len(c.Args))
	tetraplets := make([][]SecurityTetraplet, len(c.Args))
	for i, src := range c.Args {
		agg, err := src.Resolve(execCtx)
		if err != nil {
			return Triplet{}, nil, nil, err
		}
		args[i] = agg.Result
		tetraplets[i] = []SecurityTetraplet{agg.Tetraplet}
	}

	return triplet, args, tetraplets, nil
}

func (c Call) resultTetraplet(execCtx *ExecutionCtx) SecurityTetraplet {
	peer, _ := c.Triplet.PeerPK.Resolve(execCtx)
	service, _ := c.Triplet.ServiceID.Resolve(execCtx)
	fn, _ := c.Triplet.FunctionName.Resolve(execCtx)
	return SecurityTetraplet{
		PeerID:       fmt.Sprint(peer.Result),
		ServiceID:    fmt.Sprint(service.Result),
		FunctionName: fmt.Sprint(fn.Result),
	}
}
