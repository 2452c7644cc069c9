package air

// Merger reconciles the prev and current trace sliders of a TraceCtx into
// a single recommendation per instruction, per the contracts in §4.C. It
// holds no state of its own beyond the trace context it was built from;
// every Merge* method advances both sliders by exactly one state (when
// present) and returns what the interpreter should do with it.
type Merger struct {
	trace *TraceCtx
}

func NewMerger(trace *TraceCtx) *Merger {
	return &Merger{trace: trace}
}

// nextBoth pulls the next state off each slider, if its window still has
// one. A nil return for either side means "no prior record at this
// position" (§4.C "Empty result ... is legal").
func (m *Merger) nextBoth() (prev, cur *ExecutedState) {
	if s, ok := m.trace.Prev.NextState(); ok {
		prev = &s
	}
	if s, ok := m.trace.Current.NextState(); ok {
		cur = &s
	}
	return prev, cur
}

func checkTag(prev, cur *ExecutedState, want StateTag) error {
	if prev != nil && prev.Tag != want {
		return ErrIncompatibleExecutedStates(prev.Tag.String(), want.String())
	}
	if cur != nil && cur.Tag != want {
		return ErrIncompatibleExecutedStates(want.String(), cur.Tag.String())
	}
	if prev != nil && cur != nil && prev.Tag != cur.Tag {
		return ErrIncompatibleExecutedStates(prev.Tag.String(), cur.Tag.String())
	}
	return nil
}

// MergedCallResult is the merger's recommendation for a call instruction:
// either no prior record (Found == false) or a reconciled CallResult.
type MergedCallResult struct {
	Found  bool
	Result CallResult
}

// MergeNextCall implements the Call contract of §4.C: if only one side
// resolved, adopt it; if both, they must agree.
func (m *Merger) MergeNextCall() (MergedCallResult, error) {
	prev, cur := m.nextBoth()
	if err := checkTag(prev, cur, StateCall); err != nil {
		return MergedCallResult{}, err
	}

	switch {
	case prev == nil && cur == nil:
		return MergedCallResult{}, nil
	case prev == nil:
		return MergedCallResult{Found: true, Result: cur.Call}, nil
	case cur == nil:
		return MergedCallResult{Found: true, Result: prev.Call}, nil
	}

	p, c := prev.Call, cur.Call
	if p.Kind != c.Kind {
		return MergedCallResult{}, ErrIncompatibleCallResults()
	}

	switch p.Kind {
	case CallExecuted:
		if p.ValueRef != c.ValueRef {
			return MergedCallResult{}, ErrIncompatibleCallResults()
		}
		return MergedCallResult{Found: true, Result: p}, nil
	case CallRequestSentBy:
		if p.SentBy != c.SentBy || p.CallID != c.CallID {
			return MergedCallResult{}, ErrIncompatibleCallResults()
		}
		return MergedCallResult{Found: true, Result: p}, nil
	case CallServiceFailed:
		if p.RetCode != c.RetCode || p.Message != c.Message {
			return MergedCallResult{}, ErrIncompatibleCallResults()
		}
		return MergedCallResult{Found: true, Result: p}, nil
	default:
		return MergedCallResult{Found: true, Result: p}, nil
	}
}

// MergedApResult is the merger's recommendation for an ap instruction.
type MergedApResult struct {
	Found  bool
	Result ApResult
}

// MergeNextAp implements the Ap contract: both sides must agree on
// res_generations; a missing side is tolerated.
func (m *Merger) MergeNextAp() (MergedApResult, error) {
	prev, cur := m.nextBoth()
	if err := checkTag(prev, cur, StateAp); err != nil {
		return MergedApResult{}, err
	}

	switch {
	case prev == nil && cur == nil:
		return MergedApResult{}, nil
	case prev == nil:
		return MergedApResult{Found: true, Result: cur.Ap}, nil
	case cur == nil:
		return MergedApResult{Found: true, Result: prev.Ap}, nil
	}

	if !equalGenerations(prev.Ap.ResGenerations, cur.Ap.ResGenerations) {
		return MergedApResult{}, ErrApResultNotCorrespondToInstr()
	}
	return MergedApResult{Found: true, Result: prev.Ap}, nil
}

func equalGenerations(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MergedParResult is the merger's recommendation for a par instruction:
// the (possibly differing) left/right sizes reported by each side, left
// for the par FSM to reconcile by shrinking sliders accordingly (§4.D).
type MergedParResult struct {
	Found bool
	Prev  ParResult
	Cur   ParResult
}

// MergeNextPar implements the Par contract: both sides must report Par,
// but sizes may differ.
func (m *Merger) MergeNextPar() (MergedParResult, error) {
	prev, cur := m.nextBoth()
	if err := checkTag(prev, cur, StatePar); err != nil {
		return MergedParResult{}, err
	}

	switch {
	case prev == nil && cur == nil:
		return MergedParResult{}, nil
	case prev == nil:
		return MergedParResult{Found: true, Cur: cur.Par}, nil
	case cur == nil:
		return MergedParResult{Found: true, Prev: prev.Par}, nil
	default:
		return MergedParResult{Found: true, Prev: prev.Par, Cur: cur.Par}, nil
	}
}

// MergedCanonResult is the merger's recommendation for a canon
// instruction.
type MergedCanonResult struct {
	Found bool
	CID   CID
}

// MergeNextCanon implements the Canon contract: both sides must resolve to
// the same canon CID.
func (m *Merger) MergeNextCanon() (MergedCanonResult, error) {
	prev, cur := m.nextBoth()
	if err := checkTag(prev, cur, StateCanon); err != nil {
		return MergedCanonResult{}, err
	}

	switch {
	case prev == nil && cur == nil:
		return MergedCanonResult{}, nil
	case prev == nil:
		return MergedCanonResult{Found: true, CID: cur.Canon}, nil
	case cur == nil:
		return MergedCanonResult{Found: true, CID: prev.Canon}, nil
	}

	if prev.Canon != cur.Canon {
		return MergedCanonResult{}, ErrTraceMergeError("canon cid mismatch between prev and current")
	}
	return MergedCanonResult{Found: true, CID: prev.Canon}, nil
}

// MergedFoldResult is the merger's recommendation for a fold instruction:
// lore entries interleaved by value_pos per §4.C.
type MergedFoldResult struct {
	Found bool
	Lore  []FoldLoreEntry
}

// MergeNextFold implements the Fold contract: lore lists are interleaved
// by value_pos, and identical value_pos entries must carry compatible
// subtrace intervals (an empty interval on one side adopts the other's).
// No total merged subtrace length is computed.
func (m *Merger) MergeNextFold() (MergedFoldResult, error) {
	prev, cur := m.nextBoth()
	if err := checkTag(prev, cur, StateFold); err != nil {
		return MergedFoldResult{}, err
	}

	switch {
	case prev == nil && cur == nil:
		return MergedFoldResult{}, nil
	case prev == nil:
		return MergedFoldResult{Found: true, Lore: cur.Fold.Lore}, nil
	case cur == nil:
		return MergedFoldResult{Found: true, Lore: prev.Fold.Lore}, nil
	}

	byPos := make(map[uint32]FoldLoreEntry, len(prev.Fold.Lore))
	order := make([]uint32, 0, len(prev.Fold.Lore)+len(cur.Fold.Lore))

	for _, e := range prev.Fold.Lore {
		byPos[e.ValuePos] = e
		order = append(order, e.ValuePos)
	}

	for _, ce := range cur.Fold.Lore {
		pe, ok := byPos[ce.ValuePos]
		if !ok {
			byPos[ce.ValuePos] = ce
			order = append(order, ce.ValuePos)
			continue
		}
		merged, err := mergeFoldSubTraces(pe, ce)
		if err != nil {
			return MergedFoldResult{}, err
		}
		byPos[ce.ValuePos] = merged
	}

	lore := make([]FoldLoreEntry, 0, len(order))
	seen := make(map[uint32]bool, len(order))
	for _, pos := range order {
		if seen[pos] {
			continue
		}
		seen[pos] = true
		lore = append(lore, byPos[pos])
	}

	return MergedFoldResult{Found: true, Lore: lore}, nil
}

func mergeFoldSubTraces(a, b FoldLoreEntry) (FoldLoreEntry, error) {
	if a.ValuePos != b.ValuePos {
		return FoldLoreEntry{}, ErrTraceMergeError("fold lore entries for different value_pos compared")
	}
	out := a
	for i := 0; i < 2; i++ {
		ad, bd := a.SubTraces[i], b.SubTraces[i]
		switch {
		case ad.Len == 0:
			out.SubTraces[i] = bd
		case bd.Len == 0:
			out.SubTraces[i] = ad
		case ad.Begin == bd.Begin && ad.Len == bd.Len:
			out.SubTraces[i] = ad
		default:
			return FoldLoreEntry{}, ErrTraceMergeError("incompatible fold subtrace intervals")
		}
	}
	return out, nil
}
