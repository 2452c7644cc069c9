package air

import (
	"encoding/json"
	"testing"
)

// runToCompletion drives Run repeatedly, acting as the minimal host loop
// described in §4.H: it answers every call_request this peer issued for
// itself via callService and feeds the answer back in as the next
// step's call_results, until a step produces no new call requests.
func runToCompletion(t *testing.T, script Instruction, params RunParameters, callService CallServiceFn) Outcome {
	t.Helper()

	runner, err := NewRunner("", nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	callResults := map[uint32]CallServiceResult{}
	var prevTrace Trace
	var lcid uint32
	var outcome Outcome

	for step := 0; step < 10; step++ {
		outcome = runner.Run(script, prevTrace, Trace{}, DefaultMinSupportedVersion, lcid, params, callResults)
		lcid = outcome.LastCallID

		if len(outcome.CallRequests) == 0 {
			return outcome
		}
		for _, req := range outcome.CallRequests {
			callResults[req.CallID] = callService(req.Triplet, req.Args, req.Tetraplets, params)
		}
		prevTrace = outcome.NewTrace
	}

	t.Fatal("scenario did not converge within the step budget")
	return outcome
}

// S1 Seq-call local success.
func TestScenarioSeqCallLocalSuccess(t *testing.T) {
	script := Seq{
		Left: Call{
			Triplet: TripletSource{PeerPK: Literal("P"), ServiceID: Literal("s"), FunctionName: Literal("f")},
			Args:    []ValueSource{Literal("x")},
			Output:  ScalarOutput("v"),
		},
		Right: Call{
			Triplet: TripletSource{PeerPK: Literal("P"), ServiceID: Literal("s"), FunctionName: Literal("g")},
			Args:    []ValueSource{Scalar("v")},
			Output:  NoOutput(),
		},
	}

	params := RunParameters{CurrentPeerID: "P", InitPeerID: "P"}

	callService := func(triplet Triplet, args []JValue, tetraplets [][]SecurityTetraplet, _ RunParameters) CallServiceResult {
		switch triplet.FunctionName {
		case "f":
			return CallServiceResult{RetCode: 0, Result: `"y"`}
		case "g":
			return CallServiceResult{RetCode: 0, Result: `"z"`}
		default:
			t.Fatalf("unexpected function %q", triplet.FunctionName)
			return CallServiceResult{}
		}
	}

	outcome := runToCompletion(t, script, params, callService)

	if outcome.RetCode != 0 {
		t.Fatalf("expected ret_code 0, got %d: %s", outcome.RetCode, outcome.ErrorMessage)
	}
	if len(outcome.NextPeerPKs) != 0 {
		t.Fatalf("expected no next peers, got %v", outcome.NextPeerPKs)
	}
	if len(outcome.NewTrace) != 2 {
		t.Fatalf("expected a 2-state trace, got %d states", len(outcome.NewTrace))
	}
	if outcome.NewTrace[0].Tag != StateCall || outcome.NewTrace[0].Call.Kind != CallExecuted {
		t.Fatalf("expected first state to be Call(Executed), got %v", outcome.NewTrace[0])
	}
	if outcome.NewTrace[1].Tag != StateCall || outcome.NewTrace[1].Call.Kind != CallExecuted {
		t.Fatalf("expected second state to be Call(Executed), got %v", outcome.NewTrace[1])
	}
}

// S2 Remote defer.
func TestScenarioRemoteDefer(t *testing.T) {
	script := Call{
		Triplet: TripletSource{PeerPK: Literal("Q"), ServiceID: Literal("s"), FunctionName: Literal("f")},
		Args:    nil,
		Output:  ScalarOutput("v"),
	}

	params := RunParameters{CurrentPeerID: "P", InitPeerID: "P"}

	runner, err := NewRunner("", nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	outcome := runner.Run(script, nil, Trace{}, DefaultMinSupportedVersion, 0, params, nil)

	if len(outcome.NewTrace) != 1 {
		t.Fatalf("expected a 1-state trace, got %d", len(outcome.NewTrace))
	}
	st := outcome.NewTrace[0]
	if st.Tag != StateCall || st.Call.Kind != CallRequestSentBy {
		t.Fatalf("expected Call(RequestSentBy), got %v", st)
	}
	if st.Call.SentBy != "P" {
		t.Fatalf("expected the marker to record the locally-running peer P, got %q", st.Call.SentBy)
	}
	if len(outcome.NextPeerPKs) != 1 || outcome.NextPeerPKs[0] != "Q" {
		t.Fatalf("expected next_peer_pks=[Q], got %v", outcome.NextPeerPKs)
	}
	if len(outcome.CallRequests) != 0 {
		t.Fatalf("expected no call requests issued for a remote peer's call, got %v", outcome.CallRequests)
	}
}

// S3 Xor catches match failure.
func TestScenarioXorCatchesMatchFailure(t *testing.T) {
	script := Xor{
		Left: Match{
			Lhs:  Literal(1.0),
			Rhs:  Literal(2.0),
			Body: Null{},
		},
		Right: Call{
			Triplet: TripletSource{PeerPK: Literal("P"), ServiceID: Literal("s"), FunctionName: Literal("f")},
			Args:    []ValueSource{LastErrorLens(".$.message")},
			Output:  ScalarOutput("r"),
		},
	}

	params := RunParameters{CurrentPeerID: "P", InitPeerID: "P"}

	runner, err := NewRunner("", nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	outcome := runner.Run(script, nil, Trace{}, DefaultMinSupportedVersion, 0, params, nil)

	if outcome.RetCode != 0 {
		t.Fatalf("expected ret_code 0 (the xor absorbed the error), got %d: %s", outcome.RetCode, outcome.ErrorMessage)
	}
	if len(outcome.CallRequests) != 1 {
		t.Fatalf("expected exactly one call request, got %d", len(outcome.CallRequests))
	}

	req := outcome.CallRequests[0]
	if len(req.Args) != 1 {
		t.Fatalf("expected one arg, got %d", len(req.Args))
	}
	msg, ok := req.Args[0].(string)
	if !ok {
		t.Fatalf("expected the first arg to be a string, got %T", req.Args[0])
	}
	if msg != "match is used without corresponding xor" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

// S4 Par joinable: the left branch defers to a peer that never answers
// locally, while the right branch's local call completes — the left
// branch's permanent incompleteness must not block the right (§7 "Par
// independence").
func TestScenarioParJoinableIndependence(t *testing.T) {
	script := Par{
		Left: Call{
			Triplet: TripletSource{PeerPK: Literal("Q"), ServiceID: Literal(""), FunctionName: Literal("")},
			Args:    nil,
			Output:  NoOutput(),
		},
		Right: Call{
			Triplet: TripletSource{PeerPK: Literal("P"), ServiceID: Literal(""), FunctionName: Literal("")},
			Args:    nil,
			Output:  ScalarOutput("w"),
		},
	}

	params := RunParameters{CurrentPeerID: "P", InitPeerID: "P"}

	callService := func(triplet Triplet, args []JValue, tetraplets [][]SecurityTetraplet, _ RunParameters) CallServiceResult {
		if triplet.PeerPK != "P" {
			t.Fatalf("expected only the local peer's call to ever reach call_service, got %q", triplet.PeerPK)
		}
		return CallServiceResult{RetCode: 0, Result: `"result_w"`}
	}

	outcome := runToCompletion(t, script, params, callService)

	if outcome.RetCode != 0 {
		t.Fatalf("expected ret_code 0, got %d: %s", outcome.RetCode, outcome.ErrorMessage)
	}
	if len(outcome.NextPeerPKs) != 1 || outcome.NextPeerPKs[0] != "Q" {
		t.Fatalf("expected next_peer_pks=[Q], got %v", outcome.NextPeerPKs)
	}
	if len(outcome.NewTrace) != 3 {
		t.Fatalf("expected a 3-state trace, got %d states", len(outcome.NewTrace))
	}
	if outcome.NewTrace[0].Tag != StatePar {
		t.Fatalf("expected first state to be Par, got %v", outcome.NewTrace[0])
	}
	if outcome.NewTrace[1].Tag != StateCall || outcome.NewTrace[1].Call.Kind != CallRequestSentBy {
		t.Fatalf("expected the left branch to remain RequestSentBy, got %v", outcome.NewTrace[1])
	}
	if outcome.NewTrace[2].Tag != StateCall || outcome.NewTrace[2].Call.Kind != CallExecuted {
		t.Fatalf("expected the right branch to complete, got %v", outcome.NewTrace[2])
	}
}

// S5 Fold scalar over array.
func TestScenarioFoldScalarOverArray(t *testing.T) {
	var raw []interface{}
	if err := json.Unmarshal([]byte(`[1,2,3]`), &raw); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}

	script := Seq{
		Left: Ap{
			Src: Literal(func() JValue { return JValue(raw) }()),
			Dst: ScalarOutput("xs"),
		},
		Right: Fold{
			SourceKind: FoldOverScalar,
			SourceName: "xs",
			Iterator:   "i",
			Body: Seq{
				Left: Call{
					Triplet: TripletSource{PeerPK: Literal("P"), ServiceID: Literal(""), FunctionName: Literal("")},
					Args:    []ValueSource{Scalar("i")},
					Output:  NoOutput(),
				},
				Right: Next{Iterator: "i"},
			},
		},
	}

	params := RunParameters{CurrentPeerID: "P", InitPeerID: "P"}

	var seenArgs []JValue
	callService := func(triplet Triplet, args []JValue, tetraplets [][]SecurityTetraplet, _ RunParameters) CallServiceResult {
		seenArgs = append(seenArgs, args[0])
		encoded, _ := json.Marshal(args[0])
		return CallServiceResult{RetCode: 0, Result: string(encoded)}
	}

	outcome := runToCompletion(t, script, params, callService)

	if outcome.RetCode != 0 {
		t.Fatalf("expected ret_code 0, got %d: %s", outcome.RetCode, outcome.ErrorMessage)
	}
	if len(seenArgs) != 3 {
		t.Fatalf("expected 3 sequential calls, got %d", len(seenArgs))
	}
	for i, want := range []float64{1, 2, 3} {
		got, ok := seenArgs[i].(float64)
		if !ok || got != want {
			t.Fatalf("call %d: expected arg %v, got %v", i, want, seenArgs[i])
		}
	}

	var foldState *ExecutedState
	for i := range outcome.NewTrace {
		if outcome.NewTrace[i].Tag == StateFold {
			foldState = &outcome.NewTrace[i]
		}
	}
	if foldState == nil {
		t.Fatal("expected the trace to contain a Fold state")
	}
	if len(foldState.Fold.Lore) != 3 {
		t.Fatalf("expected 3 fold sub-intervals, got %d", len(foldState.Fold.Lore))
	}
}
