package air

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/mitchellh/copystructure"
)

// JValue is any JSON value produced by a service call, a literal in a
// script, or a canon snapshot. Equality between two JValues is by content
// hash (CID), not by Go equality, since the same logical value may arrive
// through different paths with different underlying representations.
type JValue = interface{}

// CID is a content identifier: a multihash of the canonical JSON encoding
// of a value. Two values with the same CID are considered the same value
// for every purpose in this package.
type CID = cid.Cid

// UndefCID is the zero value of CID, used where no content is referenced.
var UndefCID = cid.Undef

// TetrapletStore is the tetraplet_store instantiation of Store (§6
// "cid_info"): it is addressed by the CID of the value a tetraplet
// describes, via Set, never by the tetraplet's own content hash.
type TetrapletStore = Store[SecurityTetraplet]

// CanonResultStore is the canon_result_store instantiation of Store: each
// entry is the content-addressed record of one canon snapshot.
type CanonResultStore = Store[CanonResultRecord]

// jvalueStore is the Put logic shared by the two stores whose content is
// arbitrary parsed JSON (value_store and canon_element_store): on top of
// Store's content addressing, it deep-copies via copystructure (mirroring
// the teacher's packet snapshotting) so the stored value can never be
// mutated through the caller's reference after Put returns.
type jvalueStore struct {
	*Store[JValue]
}

func newJValueStore() jvalueStore {
	return jvalueStore{NewStore[JValue]()}
}

func (s jvalueStore) Put(v JValue) (cid.Cid, error) {
	c, err := cidOf(v)
	if err != nil {
		return cid.Undef, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[c]; ok {
		return c, nil
	}

	copied, err := copystructure.Copy(v)
	if err != nil {
		return cid.Undef, fmt.Errorf("air: cannot copy value for CID store: %w", err)
	}
	s.values[c] = copied
	return c, nil
}

// ValueStore is the value_store instantiation of Store.
type ValueStore struct {
	jvalueStore
}

// NewValueStore returns an empty content-addressed store of JValues.
func NewValueStore() *ValueStore {
	return &ValueStore{newJValueStore()}
}

// CanonElementStore is the canon_element_store instantiation of Store: one
// entry per element a canon snapshot freezes, deduplicated the same way
// ValueStore dedupes service results.
type CanonElementStore struct {
	jvalueStore
}

// NewCanonElementStore returns an empty content-addressed store of canon
// elements.
func NewCanonElementStore() *CanonElementStore {
	return &CanonElementStore{newJValueStore()}
}

// CanonResultRecord is the content-addressed, wire-serializable form of a
// canon snapshot: the peer that took it, and the CIDs of its elements in
// order (§6 "cid_info" canon_result_store). CanonStream is its in-memory,
// resolved counterpart, carrying full ValueAggregates rather than bare
// CIDs.
type CanonResultRecord struct {
	Peer        string
	ElementCIDs []CID
}

// CidBundle is the four parallel CID stores named in the wire trace format
// (§6 "cid_info"), threaded through one Runner across every step so that
// content (and canon snapshot identity) stays stable across replays.
type CidBundle struct {
	Values        *ValueStore
	Tetraplets    *TetrapletStore
	CanonResults  *CanonResultStore
	CanonElements *CanonElementStore
}

// NewCidBundle returns four empty, independent stores.
func NewCidBundle() *CidBundle {
	return &CidBundle{
		Values:        NewValueStore(),
		Tetraplets:    NewStore[SecurityTetraplet](),
		CanonResults:  NewStore[CanonResultRecord](),
		CanonElements: NewCanonElementStore(),
	}
}

// CidInfo is a read-only snapshot of a CidBundle's four stores, keyed by
// CID string, in the shape the wire format serializes (§6 "cid_info").
type CidInfo struct {
	ValueStore        map[string]JValue
	TetrapletStore    map[string]SecurityTetraplet
	CanonResultStore  map[string]CanonResultRecord
	CanonElementStore map[string]JValue
}

// Snapshot captures the current contents of every store in the bundle.
func (b *CidBundle) Snapshot() CidInfo {
	return CidInfo{
		ValueStore:        b.Values.AllStrings(),
		TetrapletStore:    b.Tetraplets.AllStrings(),
		CanonResultStore:  b.CanonResults.AllStrings(),
		CanonElementStore: b.CanonElements.AllStrings(),
	}
}
