package air

// Triplet addresses a single remote call: which peer, which service on
// that peer, and which function of that service.
type Triplet struct {
	PeerPK       string
	ServiceID    string
	FunctionName string
}

// CallRequest is a call this step decided to (re-)issue, keyed by its
// call_id in the runner's output (§6 "Call request format").
type CallRequest struct {
	CallID     uint32
	Triplet    Triplet
	Args       []JValue
	Tetraplets [][]SecurityTetraplet
}

// CallServiceResult is the host's answer to a previously issued call_id
// (§6 "Call-service contract").
type CallServiceResult struct {
	RetCode int32
	Result  string // JSON-encoded
}

// ExecutionCtx is the full variable-and-bookkeeping environment threaded
// through one execution step: the scalar/stream/canon/iterable
// environments (§4.E), the host-provided results for calls this peer
// already issued, and the accumulating sets of next-peers and
// newly-issued call requests that make up half of the step's outcome.
type ExecutionCtx struct {
	Scalars   *ScalarEnv
	Streams   *StreamEnv
	Canons    *CanonEnv
	Iterables *IterableEnv

	*CidBundle

	CurrentPeerID string
	InitPeerID    string

	CallResults map[uint32]CallServiceResult

	NextPeerPKs  []string
	nextPeerSeen map[string]bool

	CallRequests []CallRequest

	LastError *CatchableError

	// SubgraphComplete is the per-instruction completion flag threaded
	// through seq/par/xor (§4.F): false means some call in the subtree is
	// still waiting on a host response or a remote peer.
	SubgraphComplete bool

	// Recorder is the ambient instruction-execution log (recorder.go):
	// one entry per executed instruction, in execution order.
	Recorder []InstructionRecord
}

// NewExecutionCtx builds a fresh execution context for one step. cids may
// be nil, in which case a fresh, empty bundle is created (matching
// NewRunner's behavior when no store is configured).
func NewExecutionCtx(currentPeerID, initPeerID string, cids *CidBundle, callResults map[uint32]CallServiceResult) *ExecutionCtx {
	if callResults == nil {
		callResults = make(map[uint32]CallServiceResult)
	}
	if cids == nil {
		cids = NewCidBundle()
	}
	return &ExecutionCtx{
		Scalars:       NewScalarEnv(),
		Streams:       NewStreamEnv(),
		Canons:        NewCanonEnv(),
		Iterables:     NewIterableEnv(),
		CidBundle:     cids,
		CurrentPeerID: currentPeerID,
		InitPeerID:    initPeerID,
		CallResults:   callResults,
		nextPeerSeen:  make(map[string]bool),
	}
}

// AddNextPeer records a peer that should run next, deduplicating.
func (c *ExecutionCtx) AddNextPeer(peerPK string) {
	if c.nextPeerSeen[peerPK] {
		return
	}
	c.nextPeerSeen[peerPK] = true
	c.NextPeerPKs = append(c.NextPeerPKs, peerPK)
}

// IssueCallRequest records a newly issued call request.
func (c *ExecutionCtx) IssueCallRequest(req CallRequest) {
	c.CallRequests = append(c.CallRequests, req)
}

// SetLastError records err as the value %last_error% will resolve to.
func (c *ExecutionCtx) SetLastError(err *CatchableError) {
	c.LastError = err
}

// MeetScopeStart pushes a new fold-nesting depth across every scoped
// environment at once.
func (c *ExecutionCtx) MeetScopeStart() {
	c.Scalars.MeetScopeStart()
}

// MeetScopeEnd pops the current fold-nesting depth across every scoped
// environment, restoring whatever bindings it shadowed.
func (c *ExecutionCtx) MeetScopeEnd() {
	depth := c.Scalars.Depth()
	c.Iterables.MeetScopeEnd(depth)
	c.Streams.MeetScopeEnd(depth)
	c.Canons.MeetScopeEnd(depth)
	c.Scalars.MeetScopeEnd()
}

// Depth is the current fold-nesting depth.
func (c *ExecutionCtx) Depth() int {
	return c.Scalars.Depth()
}

// Resolve returns whichever of scalar or iterable binds name, per §4.E
// "get(name): scalar XOR iterable; presence in both is a structural
// invariant violation."
func (c *ExecutionCtx) Resolve(name string) (ValueAggregate, error) {
	scalarOK := c.Scalars.Has(name)
	iterOK := c.Iterables.Has(name, c.Depth())

	if scalarOK && iterOK {
		return ValueAggregate{}, ErrMultipleVariablesAtGlobal(name)
	}
	if iterOK {
		state, _ := c.Iterables.GetIterableValue(name, c.Depth())
		return state.Current(), nil
	}
	return c.Scalars.GetValue(name)
}
