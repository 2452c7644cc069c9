package air

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/fluencelabs/air/common"
	"github.com/fluencelabs/air/telemetry"
)

var (
	meter  = otel.Meter("github.com/fluencelabs/air")
	tracer = otel.Tracer("github.com/fluencelabs/air")
	logger = slog.New(telemetry.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: common.LevelTrace}),
		meter, tracer, false,
	))
)

// Outcome is a single execution step's result (§4.H, §6 "Runner entry"):
// the updated trace, who should run next, what this peer still needs
// answered, and a human-readable success/failure summary. A nonzero
// RetCode never invalidates NewTrace (§7 "User-visible").
type Outcome struct {
	NewTrace     Trace
	NextPeerPKs  []string
	CallRequests []CallRequest
	RetCode      int32
	ErrorMessage string
	CidInfo      CidInfo
	LastCallID   uint32
	Recorder     []InstructionRecord
}

// Runner holds the configuration that used to live in package-level
// statics: the minimum supported data version and the CID store bundle a
// sequence of Run calls shares. NewRunner replaces the source's
// thread-local minimum-version cell with explicit construction-time
// configuration (§9 "Thread-local statics").
type Runner struct {
	minSupported Version
	cids         *CidBundle
}

// NewRunner builds a Runner with the given minimum supported data version
// ("" falls back to DefaultMinSupportedVersion) and CID store bundle (nil
// creates a fresh, empty one).
func NewRunner(minVersion string, cids *CidBundle) (*Runner, error) {
	min := DefaultMinSupportedVersion
	if minVersion != "" {
		parsed, err := ParseVersion(minVersion)
		if err != nil {
			return nil, err
		}
		min = parsed
	}
	if cids == nil {
		cids = NewCidBundle()
	}
	return &Runner{minSupported: min, cids: cids}, nil
}

// Run executes script against the merge of prevTrace and currentTrace for
// one peer-local step (§6 "Runner entry"). It never returns a Go error:
// every failure, catchable or uncatchable, is folded into the returned
// Outcome exactly as an embedding host would need to serialize it onto
// the wire.
func (r *Runner) Run(
	script Instruction,
	prevTrace, currentTrace Trace,
	dataVersion Version,
	lcid uint32,
	params RunParameters,
	callResults map[uint32]CallServiceResult,
) Outcome {
	ctx := telemetry.SpanStart(context.Background(), "air.run",
		slog.String("current_peer_id", params.CurrentPeerID),
		slog.String("run_id", uuid.NewString()))
	defer telemetry.SpanEnd(ctx, "air.run")

	if err := CheckVersion(dataVersion, r.minSupported); err != nil {
		logger.ErrorContext(ctx, "version gate rejected trace data", "error", err)
		ue := err.(*UncatchableError)
		return Outcome{
			NewTrace:     Trace{},
			RetCode:      int32(ue.Code),
			ErrorMessage: ue.Message,
		}
	}

	execCtx := NewExecutionCtx(params.CurrentPeerID, params.InitPeerID, r.cids, callResults)
	traceCtx := NewTraceCtx(prevTrace, currentTrace, lcid)
	traceCtx.Ctx = ctx

	execErr := runScript(ctx, script, execCtx, traceCtx)

	trace, err := snapshotTrace(traceCtx.Output)
	if err != nil {
		logger.ErrorContext(ctx, "failed to snapshot output trace", "error", err)
		trace = traceCtx.Output
	}

	outcome := Outcome{
		NewTrace:     trace,
		NextPeerPKs:  execCtx.NextPeerPKs,
		CallRequests: execCtx.CallRequests,
		CidInfo:      r.cids.Snapshot(),
		LastCallID:   traceCtx.LastCallID(),
		Recorder:     execCtx.Recorder,
	}

	if execErr != nil {
		outcome.RetCode, outcome.ErrorMessage = classify(execErr)
		telemetry.SpanEvent(ctx, "air.run.error", slog.String("message", outcome.ErrorMessage))
	}

	return outcome
}

func runScript(ctx context.Context, script Instruction, execCtx *ExecutionCtx, traceCtx *TraceCtx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrInterpreterPanic(r)
		}
	}()
	return script.Execute(execCtx, traceCtx)
}

func classify(err error) (retCode int32, message string) {
	switch e := err.(type) {
	case *CatchableError:
		return int32(e.Code), e.Message
	case *UncatchableError:
		return int32(e.Code), e.Message
	default:
		return int32(CodeInterpreterPanic), err.Error()
	}
}
