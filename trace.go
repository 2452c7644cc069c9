package air

import "fmt"

// StateTag identifies which variant of ExecutedState a trace entry holds.
type StateTag int

const (
	StateCall StateTag = iota
	StatePar
	StateAp
	StateCanon
	StateFold
)

func (t StateTag) String() string {
	switch t {
	case StateCall:
		return "call"
	case StatePar:
		return "par"
	case StateAp:
		return "ap"
	case StateCanon:
		return "canon"
	case StateFold:
		return "fold"
	default:
		return "unknown"
	}
}

// CallResultKind distinguishes the three shapes a call's recorded outcome
// can take (§3 "Execution trace").
type CallResultKind int

const (
	// CallRequestSentBy means this peer (or another) was asked to perform
	// the call and the result has not yet come back.
	CallRequestSentBy CallResultKind = iota
	// CallExecuted means the call produced a value, now in the CID store.
	CallExecuted
	// CallServiceFailed means call_service itself returned a nonzero
	// ret_code, recorded so replays don't re-invoke the host.
	CallServiceFailed
)

// CallResult is the payload of a Call executed state.
type CallResult struct {
	Kind CallResultKind

	// RequestSentBy fields.
	SentBy string
	CallID uint32

	// Executed fields.
	ValueRef CID

	// CallServiceFailed fields.
	RetCode int32
	Message string
}

func CallResultSentBy(peer string, callID uint32) CallResult {
	return CallResult{Kind: CallRequestSentBy, SentBy: peer, CallID: callID}
}

func CallResultExecuted(v CID) CallResult {
	return CallResult{Kind: CallExecuted, ValueRef: v}
}

func CallResultFailed(retCode int32, msg string) CallResult {
	return CallResult{Kind: CallServiceFailed, RetCode: retCode, Message: msg}
}

// ParResult records how many of the states immediately following a Par
// entry belong to its left and right branches.
type ParResult struct {
	LeftSize  uint32
	RightSize uint32
}

// ApResult records which stream generations (if any) absorbed an ap's
// written value. Empty means the destination was a scalar.
type ApResult struct {
	ResGenerations []uint32
}

// FoldSubTraceDesc is one of the two (begin, len) intervals attached to a
// fold lore entry: by convention index 0 is the "previous" subtrace and
// index 1 is the "current" subtrace, mirroring the merger's prev/current
// split.
type FoldSubTraceDesc struct {
	Begin uint32
	Len   uint32
}

// FoldLoreEntry describes one iteration of a fold: which trace position
// produced the iterated value, and the subtrace interval(s) its body
// occupies.
type FoldLoreEntry struct {
	ValuePos   uint32
	SubTraces  [2]FoldSubTraceDesc
}

// FoldResult is the recorded structure of a fold's iterations.
type FoldResult struct {
	Lore []FoldLoreEntry
}

// ExecutedState is a tagged union over the five kinds of trace entry a
// merged or freshly-produced trace can contain (§3 "Execution trace").
// Only the field matching Tag is meaningful.
type ExecutedState struct {
	Tag StateTag

	Call  CallResult
	Par   ParResult
	Ap    ApResult
	Canon CID
	Fold  FoldResult
}

func NewCallState(r CallResult) ExecutedState  { return ExecutedState{Tag: StateCall, Call: r} }
func NewParState(l, r uint32) ExecutedState    { return ExecutedState{Tag: StatePar, Par: ParResult{LeftSize: l, RightSize: r}} }
func NewApState(gens []uint32) ExecutedState   { return ExecutedState{Tag: StateAp, Ap: ApResult{ResGenerations: gens}} }
func NewCanonState(c CID) ExecutedState        { return ExecutedState{Tag: StateCanon, Canon: c} }
func NewFoldState(r FoldResult) ExecutedState  { return ExecutedState{Tag: StateFold, Fold: r} }

func (s ExecutedState) String() string {
	switch s.Tag {
	case StateCall:
		return fmt.Sprintf("Call(%v)", s.Call.Kind)
	case StatePar:
		return fmt.Sprintf("Par(%d,%d)", s.Par.LeftSize, s.Par.RightSize)
	case StateAp:
		return fmt.Sprintf("Ap(%v)", s.Ap.ResGenerations)
	case StateCanon:
		return fmt.Sprintf("Canon(%s)", s.Canon)
	case StateFold:
		return fmt.Sprintf("Fold(%d iterations)", len(s.Fold.Lore))
	default:
		return "Unknown"
	}
}

// Trace is a flat sequence of executed states, the unit that a slider
// windows over and that the runner ultimately emits.
type Trace []ExecutedState
