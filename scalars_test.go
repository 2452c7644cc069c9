package air

import "testing"

func TestScalarEnvShadowingAndRestore(t *testing.T) {
	env := NewScalarEnv()

	if _, err := env.SetValue("x", ValueAggregate{Result: "outer"}); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	env.MeetScopeStart()

	existed, err := env.SetValue("x", ValueAggregate{Result: "inner"})
	if err != nil {
		t.Fatalf("SetValue at deeper scope: %v", err)
	}
	if existed {
		t.Fatal("expected no prior cell at the new depth")
	}

	v, err := env.GetValue("x")
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if v.Result != "inner" {
		t.Fatalf("expected shadowed value 'inner', got %v", v.Result)
	}

	env.MeetScopeEnd()

	v, err = env.GetValue("x")
	if err != nil {
		t.Fatalf("GetValue after scope end: %v", err)
	}
	if v.Result != "outer" {
		t.Fatalf("expected outer binding 'outer' restored, got %v", v.Result)
	}
}

func TestScalarEnvGlobalRedefinitionIsUncatchable(t *testing.T) {
	env := NewScalarEnv()

	if _, err := env.SetValue("x", ValueAggregate{Result: 1}); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	_, err := env.SetValue("x", ValueAggregate{Result: 2})
	if err == nil {
		t.Fatal("expected redefining a global scalar to fail")
	}
	if !IsUncatchable(err) {
		t.Fatalf("expected uncatchable MultipleVariablesAtGlobal, got %v", err)
	}
}

func TestScalarEnvMissingVariableIsCatchableAndJoinable(t *testing.T) {
	env := NewScalarEnv()

	_, err := env.GetValue("missing")
	if err == nil {
		t.Fatal("expected lookup of an unbound name to fail")
	}
	if !IsCatchable(err) {
		t.Fatalf("expected catchable VariableNotFound, got %v", err)
	}
	if !Joinable(err) {
		t.Fatal("expected VariableNotFound to be joinable per the error taxonomy")
	}
}

func TestScalarEnvNestedScopesOnlyUnwindOwnDepth(t *testing.T) {
	env := NewScalarEnv()
	_, _ = env.SetValue("a", ValueAggregate{Result: "a0"})

	env.MeetScopeStart()
	_, _ = env.SetValue("b", ValueAggregate{Result: "b1"})

	env.MeetScopeStart()
	_, _ = env.SetValue("c", ValueAggregate{Result: "c2"})

	env.MeetScopeEnd() // pop depth 2: c disappears, b and a remain visible

	if env.Has("c") {
		t.Fatal("expected 'c' to be gone after its scope closed")
	}
	if !env.Has("b") {
		t.Fatal("expected 'b' to remain visible")
	}
	if !env.Has("a") {
		t.Fatal("expected 'a' to remain visible")
	}

	env.MeetScopeEnd() // pop depth 1: b disappears
	if env.Has("b") {
		t.Fatal("expected 'b' to be gone after its scope closed")
	}
	if !env.Has("a") {
		t.Fatal("expected 'a' to still be visible at global scope")
	}
}
