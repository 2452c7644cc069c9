package air

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Store is the generic content-addressed map behind every one of the wire
// format's four parallel CID stores (§6 "cid_info": value_store,
// tetraplet_store, canon_result_store, canon_element_store). Put keys an
// entry by the multihash of its own canonical JSON encoding, so writing an
// identical value twice is a no-op; Set keys an entry explicitly, for the
// tetraplet store, which is addressed by the CID of the value it describes
// rather than by its own content hash.
type Store[T any] struct {
	mu     sync.RWMutex
	values map[cid.Cid]T
}

// NewStore returns an empty store of T.
func NewStore[T any]() *Store[T] {
	return &Store[T]{values: make(map[cid.Cid]T)}
}

// Put computes v's CID and stores it if not already present.
func (s *Store[T]) Put(v T) (cid.Cid, error) {
	c, err := cidOf(v)
	if err != nil {
		return cid.Undef, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[c]; ok {
		return c, nil
	}
	s.values[c] = v
	return c, nil
}

// Set inserts v under an explicitly supplied key, bypassing content
// addressing.
func (s *Store[T]) Set(key cid.Cid, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
}

// Get returns the value for c, if present.
func (s *Store[T]) Get(c cid.Cid) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[c]
	return v, ok
}

// Resolve looks up c and returns an UncatchableError CidStoreMiss if it is
// not present, matching §4.A: "any CID referenced elsewhere in the outcome
// must resolve. Failure to resolve is uncatchable."
func (s *Store[T]) Resolve(c cid.Cid) (T, error) {
	v, ok := s.Get(c)
	if !ok {
		var zero T
		return zero, ErrCidStoreMiss(c)
	}
	return v, nil
}

// Verify reports whether value hashes to c.
func (s *Store[T]) Verify(c cid.Cid, value T) error {
	actual, err := cidOf(value)
	if err != nil {
		return err
	}
	if actual != c {
		return ErrCidStoreMiss(c)
	}
	return nil
}

// Len reports the number of distinct entries held by the store.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// All returns a snapshot of every (CID, value) pair in the store.
func (s *Store[T]) All() map[cid.Cid]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[cid.Cid]T, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// AllStrings is All keyed by each entry's CID string form, for assembling
// the wire document's cid_info (§6): cid.Cid itself cannot round-trip
// through gob or yaml.v3 (it carries unexported fields), so serialization
// call sites reach for this instead of All.
func (s *Store[T]) AllStrings() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]T, len(s.values))
	for k, v := range s.values {
		out[k.String()] = v
	}
	return out
}

func cidOf(v any) (cid.Cid, error) {
	canonical, err := canonicalJSON(v)
	if err != nil {
		return cid.Undef, fmt.Errorf("air: cannot canonicalize value for CID: %w", err)
	}
	return cidFromBytes(canonical)
}

func canonicalJSON(v any) ([]byte, error) {
	// encoding/json sorts map keys lexicographically, which is sufficient
	// for a stable canonical encoding of the map[string]interface{} trees
	// produced by json.Unmarshal.
	return json.Marshal(v)
}

func cidFromBytes(b []byte) (cid.Cid, error) {
	mh, err := multihash.Sum(b, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, fmt.Errorf("air: cannot compute multihash: %w", err)
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}
