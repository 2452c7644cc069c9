package air

import "fmt"

// SecurityTetraplet is the provenance of a value: which peer's which
// service-function produced it, and the lambda path applied to it since.
// Tetraplets are concatenatable: applying a lambda path to a value yields a
// tetraplet whose Lens is the old lens with the new path appended.
type SecurityTetraplet struct {
	PeerID       string
	ServiceID    string
	FunctionName string
	Lens         string
}

// WithLens returns a tetraplet whose provenance is the same call but with
// lens appended, as happens when a lambda path is applied on top of an
// already-resolved value.
func (t SecurityTetraplet) WithLens(lens string) SecurityTetraplet {
	t.Lens += lens
	return t
}

// String renders the tetraplet the way the interpreter's diagnostics do.
func (t SecurityTetraplet) String() string {
	return fmt.Sprintf("%s.%s.%s%s", t.PeerID, t.ServiceID, t.FunctionName, t.Lens)
}
