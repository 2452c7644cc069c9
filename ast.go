package air

// Instruction is the closed set of AST node kinds the interpreter knows
// how to execute. Per §9 "Dynamic dispatch over instructions" this is
// intentionally a small tagged set of concrete types rather than an open
// plugin interface — the grammar is fixed.
type Instruction interface {
	Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error
}

// InstructionKind names an executable node for the ambient per-instruction
// recorder (recorder.go), mirroring the teacher's vertex_type tag.
type InstructionKind string

const (
	KindNull     InstructionKind = "null"
	KindSeq      InstructionKind = "seq"
	KindPar      InstructionKind = "par"
	KindXor      InstructionKind = "xor"
	KindMatch    InstructionKind = "match"
	KindMismatch InstructionKind = "mismatch"
	KindFail     InstructionKind = "fail"
	KindCall     InstructionKind = "call"
	KindAp       InstructionKind = "ap"
	KindFold     InstructionKind = "fold"
	KindNext     InstructionKind = "next"
	KindNew      InstructionKind = "new"
	KindCanon    InstructionKind = "canon"
)

// ValueSourceKind distinguishes where an argument or ap's source value
// comes from.
type ValueSourceKind int

const (
	SourceLiteral ValueSourceKind = iota
	SourceScalar
	SourceStream
	SourceCanon
	SourceLastError
	SourceInitPeerID
	SourceCurrentPeerID
)

// ValueSource names where to pull a value from when an instruction needs
// one, optionally with a lambda path applied on top (§4.F "ap(src, dst):
// resolve src to a value").
type ValueSource struct {
	Kind    ValueSourceKind
	Literal JValue
	Name    string
	Lens    string
}

func Literal(v JValue) ValueSource          { return ValueSource{Kind: SourceLiteral, Literal: v} }
func Scalar(name string) ValueSource        { return ValueSource{Kind: SourceScalar, Name: name} }
func ScalarLens(name, lens string) ValueSource {
	return ValueSource{Kind: SourceScalar, Name: name, Lens: lens}
}
func StreamAll(name string) ValueSource { return ValueSource{Kind: SourceStream, Name: name} }
func CanonRef(name string) ValueSource  { return ValueSource{Kind: SourceCanon, Name: name} }
func LastErrorLens(lens string) ValueSource {
	return ValueSource{Kind: SourceLastError, Lens: lens}
}
func InitPeerID() ValueSource    { return ValueSource{Kind: SourceInitPeerID} }
func CurrentPeerID() ValueSource { return ValueSource{Kind: SourceCurrentPeerID} }

// Resolve evaluates a ValueSource against the current execution context.
func (s ValueSource) Resolve(execCtx *ExecutionCtx) (ValueAggregate, error) {
	switch s.Kind {
	case SourceLiteral:
		return ValueAggregate{Result: s.Literal, Provenance: Provenance{Kind: ProvenanceLiteral}}, nil

	case SourceScalar:
		agg, err := execCtx.Resolve(s.Name)
		if err != nil {
			return ValueAggregate{}, err
		}
		return applyLensToAggregate(agg, s.Lens)

	case SourceStream:
		stream, ok := execCtx.Streams.Get(s.Name, execCtx.Depth())
		if !ok {
			return ValueAggregate{}, ErrVariableNotFound(s.Name)
		}
		all := stream.All()
		if len(all) == 0 {
			return ValueAggregate{}, ErrEmptyStreamLambdaError(s.Lens)
		}
		arr := make([]JValue, len(all))
		for i, a := range all {
			arr[i] = a.Result
		}
		agg := ValueAggregate{Result: arr}
		return applyLensToAggregate(agg, s.Lens)

	case SourceCanon:
		canon, ok := execCtx.Canons.GetCanonValue(s.Name, execCtx.Depth())
		if !ok {
			return ValueAggregate{}, ErrVariableNotFound(s.Name)
		}
		arr := make([]JValue, len(canon.Elements))
		for i, a := range canon.Elements {
			arr[i] = a.Result
		}
		agg := ValueAggregate{
			Result:     arr,
			Provenance: Provenance{Kind: ProvenanceCanon, CID: canon.CID},
		}
		return applyLensToAggregate(agg, s.Lens)

	case SourceLastError:
		if execCtx.LastError == nil {
			return ValueAggregate{}, ErrVariableNotFound("%last_error%")
		}
		msg := map[string]interface{}{
			"error_code": int(execCtx.LastError.Code),
			"message":    execCtx.LastError.Message,
			"instruction": "",
		}
		agg := ValueAggregate{Result: msg}
		return applyLensToAggregate(agg, s.Lens)

	case SourceInitPeerID:
		return ValueAggregate{Result: execCtx.InitPeerID}, nil

	case SourceCurrentPeerID:
		return ValueAggregate{Result: execCtx.CurrentPeerID}, nil

	default:
		return ValueAggregate{}, ErrVariableNotFound(s.Name)
	}
}

func applyLensToAggregate(agg ValueAggregate, lens string) (ValueAggregate, error) {
	if lens == "" {
		return agg, nil
	}
	v, err := ApplyLens(agg.Result, lens)
	if err != nil {
		return ValueAggregate{}, err
	}
	return agg.WithLens(v, lens), nil
}

// OutputKind distinguishes whether an instruction's result is discarded,
// bound to a scalar, or appended to a stream.
type OutputKind int

const (
	OutputNone OutputKind = iota
	OutputScalar
	OutputStream
)

// OutputSpec names where an instruction's produced value should land.
type OutputSpec struct {
	Kind OutputKind
	Name string
}

func NoOutput() OutputSpec          { return OutputSpec{Kind: OutputNone} }
func ScalarOutput(n string) OutputSpec { return OutputSpec{Kind: OutputScalar, Name: n} }
func StreamOutput(n string) OutputSpec { return OutputSpec{Kind: OutputStream, Name: n} }

// write binds v to the output spec, appending to a stream's last
// generation or setting a scalar, per §4.F step 5.
func (o OutputSpec) write(execCtx *ExecutionCtx, v ValueAggregate, sel GenerationSelector) error {
	switch o.Kind {
	case OutputNone:
		return nil
	case OutputScalar:
		_, err := execCtx.Scalars.SetValue(o.Name, v)
		return err
	case OutputStream:
		stream := execCtx.Streams.GetOrCreate(o.Name, execCtx.Depth())
		stream.AddValue(v, sel)
		return nil
	default:
		return nil
	}
}
