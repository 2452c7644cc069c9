package air

import "testing"

func TestMergeNextCallAdoptsSingleSide(t *testing.T) {
	prev := Trace{NewCallState(CallResultExecuted(UndefCID))}
	cur := Trace{}

	traceCtx := NewTraceCtx(prev, cur, 0)
	merger := NewMerger(traceCtx)

	merged, err := merger.MergeNextCall()
	if err != nil {
		t.Fatalf("MergeNextCall: %v", err)
	}
	if !merged.Found {
		t.Fatal("expected a merged result when only prev has a record")
	}
	if merged.Result.Kind != CallExecuted {
		t.Fatalf("expected CallExecuted, got %v", merged.Result.Kind)
	}
}

func TestMergeNextCallIncompatibleIsUncatchable(t *testing.T) {
	store := NewValueStore()
	c1, _ := store.Put("one")
	c2, _ := store.Put("two")

	prev := Trace{NewCallState(CallResultExecuted(c1))}
	cur := Trace{NewCallState(CallResultExecuted(c2))}

	traceCtx := NewTraceCtx(prev, cur, 0)
	merger := NewMerger(traceCtx)

	_, err := merger.MergeNextCall()
	if err == nil {
		t.Fatal("expected incompatible call results to fail")
	}
	if !IsUncatchable(err) {
		t.Fatalf("expected uncatchable IncompatibleCallResults, got %v", err)
	}
}

func TestMergeNextCallTagMismatchIsUncatchable(t *testing.T) {
	prev := Trace{NewCallState(CallResultExecuted(UndefCID))}
	cur := Trace{NewApState(nil)}

	traceCtx := NewTraceCtx(prev, cur, 0)
	merger := NewMerger(traceCtx)

	_, err := merger.MergeNextCall()
	if err == nil {
		t.Fatal("expected a tag mismatch between prev and current to fail")
	}
	if !IsUncatchable(err) {
		t.Fatalf("expected uncatchable IncompatibleExecutedStates, got %v", err)
	}
}

func TestMergeNextCallEmptyIsLegal(t *testing.T) {
	traceCtx := NewTraceCtx(Trace{}, Trace{}, 0)
	merger := NewMerger(traceCtx)

	merged, err := merger.MergeNextCall()
	if err != nil {
		t.Fatalf("MergeNextCall: %v", err)
	}
	if merged.Found {
		t.Fatal("expected no merged result when neither side has a record")
	}
}

func TestMergeNextFoldInterleavesByValuePos(t *testing.T) {
	prevLore := []FoldLoreEntry{
		{ValuePos: 0, SubTraces: [2]FoldSubTraceDesc{{Begin: 0, Len: 2}, {}}},
	}
	curLore := []FoldLoreEntry{
		{ValuePos: 1, SubTraces: [2]FoldSubTraceDesc{{}, {Begin: 2, Len: 3}}},
	}

	prev := Trace{NewFoldState(FoldResult{Lore: prevLore})}
	cur := Trace{NewFoldState(FoldResult{Lore: curLore})}

	traceCtx := NewTraceCtx(prev, cur, 0)
	merger := NewMerger(traceCtx)

	merged, err := merger.MergeNextFold()
	if err != nil {
		t.Fatalf("MergeNextFold: %v", err)
	}
	if len(merged.Lore) != 2 {
		t.Fatalf("expected both value_pos entries to survive interleaving, got %d", len(merged.Lore))
	}
}
