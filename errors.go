package air

import "fmt"

// ErrorCode is a small stable integer identifying an error kind on the
// wire, per §6 "Error taxonomy on the wire".
type ErrorCode int

// Catchable error codes (§7.1).
const (
	CodeVariableNotFound ErrorCode = iota + 1
	CodeMultipleValuesInLambda
	CodeLocalServiceError
	CodeMatchWithoutXor
	CodeMismatchWithoutXor
	CodeFlatteningError
	CodeLambdaApplicableOnlyToObjectsAndArrays
	CodeStreamPathError
	CodeEmptyStreamLambdaError
)

// Uncatchable error codes (§7.3).
const (
	CodeTraceMergeError ErrorCode = iota + 100
	CodeCidStoreMiss
	CodeApResultNotCorrespondToInstr
	CodeStreamDontHaveSuchGeneration
	CodeMultipleVariablesAtGlobal
	CodeFoldStateNotFound
	CodeInterpreterPanic
)

// CatchableError is a local, recoverable failure. It is consumable by an
// enclosing xor, which records it as %last_error% and continues down its
// right-hand branch. A subset of catchable errors are joinable: they mean
// "waiting on data from another peer" rather than "this script is wrong",
// and inside a par branch a joinable error only marks that branch
// incomplete rather than failing it.
type CatchableError struct {
	Code     ErrorCode
	Message  string
	RetCode  int32 // populated for CodeLocalServiceError
	joinable bool
}

func (e *CatchableError) Error() string {
	return e.Message
}

// Joinable reports whether this error means "waiting on data from another
// peer" as opposed to a genuine script fault.
func (e *CatchableError) Joinable() bool {
	return e.joinable
}

// UncatchableError is a data-integrity violation: a trace merge mismatch,
// a structural invariant break, or a CID that does not resolve. It is not
// consumable by xor and terminates the execution step immediately, though
// the trace prefix produced so far is still returned.
type UncatchableError struct {
	Code    ErrorCode
	Message string
}

func (e *UncatchableError) Error() string {
	return e.Message
}

// Joinable reports whether an error is catchable and marked joinable,
// i.e. "waiting on data from another peer" (§4.G, §7.2).
func Joinable(err error) bool {
	ce, ok := err.(*CatchableError)
	return ok && ce.Joinable()
}

// IsCatchable reports whether err is a *CatchableError.
func IsCatchable(err error) bool {
	_, ok := err.(*CatchableError)
	return ok
}

// IsUncatchable reports whether err is an *UncatchableError.
func IsUncatchable(err error) bool {
	_, ok := err.(*UncatchableError)
	return ok
}

// --- catchable constructors -------------------------------------------------

func ErrVariableNotFound(name string) *CatchableError {
	return &CatchableError{
		Code:     CodeVariableNotFound,
		Message:  fmt.Sprintf("variable with name '%s' isn't present in data", name),
		joinable: true,
	}
}

func ErrMultipleValuesInLambda(lens string) *CatchableError {
	return &CatchableError{
		Code:    CodeMultipleValuesInLambda,
		Message: fmt.Sprintf("multiple variables found for this lambda path '%s'", lens),
	}
}

func ErrLocalServiceError(retCode int32, message string) *CatchableError {
	return &CatchableError{
		Code:    CodeLocalServiceError,
		Message: fmt.Sprintf("Local service error, ret_code is %d, error message is '%s'", retCode, message),
		RetCode: retCode,
	}
}

func ErrMatchWithoutXor() *CatchableError {
	return &CatchableError{
		Code:    CodeMatchWithoutXor,
		Message: "match is used without corresponding xor",
	}
}

func ErrMismatchWithoutXor() *CatchableError {
	return &CatchableError{
		Code:    CodeMismatchWithoutXor,
		Message: "mismatch is used without corresponding xor",
	}
}

func ErrFlatteningError(v JValue) *CatchableError {
	return &CatchableError{
		Code:    CodeFlatteningError,
		Message: fmt.Sprintf("jvalue '%v' can't be flattened, to be flattened a jvalue should have an array type and consist of zero or one values", v),
	}
}

func ErrLambdaApplicableOnlyToObjectsAndArrays(v JValue) *CatchableError {
	return &CatchableError{
		Code:    CodeLambdaApplicableOnlyToObjectsAndArrays,
		Message: fmt.Sprintf("lambda can't be applied to scalar '%v', it could be applied only to variables of array and object types", v),
	}
}

// ErrStreamPathError signals a lambda path applied to a stream failed to
// resolve. Per §7.2 it is joinable when the path prefix was nonempty (some
// elements existed but the full path didn't resolve - still waiting on
// more peers to fill the stream), and not joinable when the stream itself
// is fundamentally the wrong shape.
func ErrStreamPathError(lens string, nonemptyPrefix bool) *CatchableError {
	return &CatchableError{
		Code:     CodeStreamPathError,
		Message:  fmt.Sprintf("lambda path '%s' not found on stream", lens),
		joinable: nonemptyPrefix,
	}
}

func ErrEmptyStreamLambdaError(lens string) *CatchableError {
	return &CatchableError{
		Code:     CodeEmptyStreamLambdaError,
		Message:  fmt.Sprintf("lambda path '%s' is applied to an empty stream", lens),
		joinable: true,
	}
}

// --- uncatchable constructors ------------------------------------------------

func ErrTraceMergeError(kind string) *UncatchableError {
	return &UncatchableError{
		Code:    CodeTraceMergeError,
		Message: fmt.Sprintf("trace merge error: %s", kind),
	}
}

func ErrIncompatibleExecutedStates(prev, cur string) *UncatchableError {
	return ErrTraceMergeError(fmt.Sprintf("incompatible executed states: prev is %s, current is %s", prev, cur))
}

func ErrIncompatibleCallResults() *UncatchableError {
	return ErrTraceMergeError("incompatible call results")
}

func ErrSliderOverflow() *UncatchableError {
	return ErrTraceMergeError("slider advanced past its allotted window")
}

func ErrCidStoreMiss(c CID) *UncatchableError {
	return &UncatchableError{
		Code:    CodeCidStoreMiss,
		Message: fmt.Sprintf("CID %s does not resolve in the value store", c),
	}
}

func ErrApResultNotCorrespondToInstr() *UncatchableError {
	return &UncatchableError{
		Code:    CodeApResultNotCorrespondToInstr,
		Message: "ap result doesn't correspond to the instruction it annotates",
	}
}

func ErrStreamDontHaveSuchGeneration(name string, generation uint32) *UncatchableError {
	return &UncatchableError{
		Code:    CodeStreamDontHaveSuchGeneration,
		Message: fmt.Sprintf("stream '%s' doesn't have generation %d, the supplied trace may be corrupted", name, generation),
	}
}

func ErrMultipleVariablesAtGlobal(name string) *UncatchableError {
	return &UncatchableError{
		Code:    CodeMultipleVariablesAtGlobal,
		Message: fmt.Sprintf("multiple variables found for name '%s' in global scope", name),
	}
}

func ErrFoldStateNotFound(name string) *UncatchableError {
	return &UncatchableError{
		Code:    CodeFoldStateNotFound,
		Message: fmt.Sprintf("fold state not found for iterable '%s'", name),
	}
}

func ErrInterpreterPanic(recovered interface{}) *UncatchableError {
	return &UncatchableError{
		Code:    CodeInterpreterPanic,
		Message: fmt.Sprintf("interpreter panicked: %v", recovered),
	}
}
