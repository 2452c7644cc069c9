package air

// CallServiceFn is the sandbox host's collaborator interface: given a
// triplet, resolved args, and their tetraplets, it performs the actual
// local service invocation and returns a result (§6 "Call-service
// contract"). Runner does not hold one, and the interpreter core never
// invokes it — every call this peer can answer locally is
// still deferred as a CallRequest in the outcome, and the host is
// expected to run CallServiceFn out-of-band and feed the answer back in
// as the next step's call_results (§4.H).
type CallServiceFn func(triplet Triplet, args []JValue, tetraplets [][]SecurityTetraplet, params RunParameters) CallServiceResult
