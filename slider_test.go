package air

import "testing"

func TestSliderWindowing(t *testing.T) {
	buf := Trace{
		NewCallState(CallResultExecuted(UndefCID)),
		NewApState(nil),
		NewCanonState(UndefCID),
	}

	s := NewSlider(buf)
	if s.IntervalLen() != 3 {
		t.Fatalf("expected interval len 3, got %d", s.IntervalLen())
	}

	if err := s.SetSubtraceLen(2); err != nil {
		t.Fatalf("SetSubtraceLen: %v", err)
	}

	st, ok := s.NextState()
	if !ok || st.Tag != StateCall {
		t.Fatalf("expected first state to be Call, got %v (ok=%v)", st, ok)
	}

	st, ok = s.NextState()
	if !ok || st.Tag != StateAp {
		t.Fatalf("expected second state to be Ap, got %v (ok=%v)", st, ok)
	}

	if _, ok := s.NextState(); ok {
		t.Fatal("expected the window to be exhausted after 2 states")
	}
}

func TestSliderSetSubtraceLenOverflow(t *testing.T) {
	buf := Trace{NewCallState(CallResultExecuted(UndefCID))}
	s := NewSlider(buf)

	if err := s.SetSubtraceLen(5); err == nil {
		t.Fatal("expected setting a length beyond the window to fail")
	} else if !IsUncatchable(err) {
		t.Fatalf("expected an uncatchable slider overflow, got %v", err)
	}
}

func TestNewSubSliderOutOfBounds(t *testing.T) {
	buf := Trace{NewCallState(CallResultExecuted(UndefCID))}

	if _, err := NewSubSlider(buf, 0, 5); err == nil {
		t.Fatal("expected a sub-slider wider than the buffer to fail")
	}
}
