package air

// Canon is the canon(peer, stream, canon_name) instruction: it freezes a
// stream into an immutable, content-addressed snapshot, but only the peer
// named can actually take that snapshot — every other peer defers until
// it shows up in a merged trace (§4.F "canon").
type Canon struct {
	Peer       ValueSource
	StreamName string
	CanonName  string
}

func (c Canon) Execute(execCtx *ExecutionCtx, traceCtx *TraceCtx) error {
	return traceInstrument(execCtx, traceCtx, KindCanon, func() error {
		merger := NewMerger(traceCtx)
		merged, err := merger.MergeNextCanon()
		if err != nil {
			return err
		}

		if merged.Found {
			record, err := execCtx.CanonResults.Resolve(merged.CID)
			if err != nil {
				return err
			}
			canonStream, err := canonStreamFromRecord(execCtx, merged.CID, record)
			if err != nil {
				return err
			}
			execCtx.Canons.SetCanonValue(c.CanonName, execCtx.Depth(), canonStream)
			traceCtx.Append(NewCanonState(merged.CID))
			execCtx.SubgraphComplete = true
			return nil
		}

		peerAgg, err := c.Peer.Resolve(execCtx)
		if err != nil {
			return err
		}
		peer, _ := peerAgg.Result.(string)

		if peer != execCtx.CurrentPeerID {
			execCtx.AddNextPeer(peer)
			execCtx.SubgraphComplete = false
			return nil
		}

		stream, ok := execCtx.Streams.Get(c.StreamName, execCtx.Depth())
		var elements []ValueAggregate
		if ok {
			elements = stream.All()
		}

		elementCIDs := make([]CID, len(elements))
		for i, e := range elements {
			elementCID, err := execCtx.CanonElements.Put(e.Result)
			if err != nil {
				return ErrTraceMergeError(err.Error())
			}
			elementCIDs[i] = elementCID
		}

		record := CanonResultRecord{Peer: peer, ElementCIDs: elementCIDs}
		cidRef, err := execCtx.CanonResults.Put(record)
		if err != nil {
			return ErrTraceMergeError(err.Error())
		}

		canonStream := &CanonStream{CID: cidRef, Elements: elements, Peer: peer}
		execCtx.Canons.SetCanonValue(c.CanonName, execCtx.Depth(), canonStream)

		traceCtx.Append(NewCanonState(cidRef))
		execCtx.SubgraphComplete = true
		return nil
	})
}

// canonStreamFromRecord resolves a content-addressed CanonResultRecord
// back into the in-memory CanonStream the canon environment holds,
// re-resolving each element from the canon_element_store.
func canonStreamFromRecord(execCtx *ExecutionCtx, c CID, record CanonResultRecord) (*CanonStream, error) {
	elements := make([]ValueAggregate, len(record.ElementCIDs))
	for i, elemCID := range record.ElementCIDs {
		v, err := execCtx.CanonElements.Resolve(elemCID)
		if err != nil {
			return nil, err
		}
		elements[i] = ValueAggregate{Result: v, Provenance: Provenance{Kind: ProvenanceCanon, CID: elemCID}}
	}
	return &CanonStream{CID: c, Elements: elements, Peer: record.Peer}, nil
}
