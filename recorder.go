package air

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log/slog"

	"github.com/mitchellh/copystructure"

	"github.com/fluencelabs/air/telemetry"
)

// snapshotTrace deep-copies t via gob, the same round-trip the teacher
// uses to deep-copy payloads flowing through a pipeline. The runner uses
// this to hand callers an outcome trace that cannot be mutated through
// any reference the interpreter itself still holds.
func snapshotTrace(t Trace) (Trace, error) {
	buf := &bytes.Buffer{}
	enc, dec := gob.NewEncoder(buf), gob.NewDecoder(buf)

	wire, err := traceToWire(t)
	if err != nil {
		return nil, err
	}

	if err := enc.Encode(wire); err != nil {
		return nil, fmt.Errorf("air: cannot snapshot trace: %w", err)
	}

	var out []wireState
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("air: cannot decode trace snapshot: %w", err)
	}

	return wireToTrace(out), nil
}

// InstructionRecord is one entry of the ambient instruction-execution
// recorder: the id and kind of an executed instruction, plus a
// deep-copied snapshot of every scalar visible when it ran.
type InstructionRecord struct {
	InstructionID int
	Kind          InstructionKind
	Scalars       map[string]JValue
}

// snapshotScalars deep-copies (via copystructure, the same mechanism
// ValueStore uses) the value of every scalar currently visible in env, so
// a recorder entry can't be mutated by a later scope push/pop.
func snapshotScalars(env *ScalarEnv) (map[string]JValue, error) {
	raw := make(map[string]JValue)
	for name := range env.cells {
		if v, err := env.GetValue(name); err == nil {
			raw[name] = v.Result
		}
	}

	copied, err := copystructure.Copy(raw)
	if err != nil {
		return nil, fmt.Errorf("air: cannot snapshot scalars: %w", err)
	}
	return copied.(map[string]JValue), nil
}

// traceInstrument wraps a single instruction executor with the ambient
// start/end span pair and visible-scalars recording SPEC_FULL §H describes,
// mirroring the teacher's vertex.go span()/metrics()/record() wrapping of
// every unit of work. It is called once per Execute method, around that
// method's actual body.
func traceInstrument(execCtx *ExecutionCtx, traceCtx *TraceCtx, kind InstructionKind, run func() error) error {
	id := traceCtx.NextInstructionID()
	spanName := "air.instruction." + string(kind)

	spanCtx := telemetry.SpanStart(traceCtx.Ctx, spanName,
		slog.Int("instruction_id", id),
		slog.String("instruction_type", string(kind)))

	err := run()

	if scalars, snapErr := snapshotScalars(execCtx.Scalars); snapErr == nil {
		execCtx.Recorder = append(execCtx.Recorder, InstructionRecord{
			InstructionID: id,
			Kind:          kind,
			Scalars:       scalars,
		})
	}

	telemetry.SpanEvent(spanCtx, spanName+".end", slog.Bool("ok", err == nil))
	telemetry.SpanEnd(spanCtx, spanName)

	return err
}
