package air

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"gopkg.in/yaml.v3"
)

// wireState is the serializable mirror of ExecutedState: cid.Cid carries
// unexported fields gob and yaml cannot see through, so every CID crosses
// the wire as its string form (§6 "Trace data format").
type wireState struct {
	Tag  string          `yaml:"tag"`
	Call *wireCallResult `yaml:"call,omitempty"`
	Par  *ParResult      `yaml:"par,omitempty"`
	Ap   *ApResult       `yaml:"ap,omitempty"`
	Canon string         `yaml:"canon,omitempty"`
	Fold *FoldResult     `yaml:"fold,omitempty"`
}

type wireCallResult struct {
	Kind     CallResultKind `yaml:"kind"`
	SentBy   string         `yaml:"sent_by,omitempty"`
	CallID   uint32         `yaml:"call_id,omitempty"`
	ValueRef string         `yaml:"value_ref,omitempty"`
	RetCode  int32          `yaml:"ret_code,omitempty"`
	Message  string         `yaml:"message,omitempty"`
}

func traceToWire(t Trace) ([]wireState, error) {
	out := make([]wireState, len(t))
	for i, s := range t {
		w, err := stateToWire(s)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

func stateToWire(s ExecutedState) (wireState, error) {
	w := wireState{Tag: s.Tag.String()}
	switch s.Tag {
	case StateCall:
		valueRef := ""
		if s.Call.Kind == CallExecuted {
			valueRef = s.Call.ValueRef.String()
		}
		w.Call = &wireCallResult{
			Kind:     s.Call.Kind,
			SentBy:   s.Call.SentBy,
			CallID:   s.Call.CallID,
			ValueRef: valueRef,
			RetCode:  s.Call.RetCode,
			Message:  s.Call.Message,
		}
	case StatePar:
		p := s.Par
		w.Par = &p
	case StateAp:
		a := s.Ap
		w.Ap = &a
	case StateCanon:
		w.Canon = s.Canon.String()
	case StateFold:
		f := s.Fold
		w.Fold = &f
	}
	return w, nil
}

func wireToTrace(in []wireState) Trace {
	out := make(Trace, len(in))
	for i, w := range in {
		out[i] = wireToState(w)
	}
	return out
}

func wireToState(w wireState) ExecutedState {
	switch w.Tag {
	case StateCall.String():
		var valueRef cid.Cid
		if w.Call.ValueRef != "" {
			valueRef, _ = cid.Decode(w.Call.ValueRef)
		}
		return ExecutedState{Tag: StateCall, Call: CallResult{
			Kind:     w.Call.Kind,
			SentBy:   w.Call.SentBy,
			CallID:   w.Call.CallID,
			ValueRef: valueRef,
			RetCode:  w.Call.RetCode,
			Message:  w.Call.Message,
		}}
	case StatePar.String():
		return ExecutedState{Tag: StatePar, Par: *w.Par}
	case StateAp.String():
		return ExecutedState{Tag: StateAp, Ap: *w.Ap}
	case StateCanon.String():
		c, _ := cid.Decode(w.Canon)
		return ExecutedState{Tag: StateCanon, Canon: c}
	case StateFold.String():
		return ExecutedState{Tag: StateFold, Fold: *w.Fold}
	default:
		return ExecutedState{}
	}
}

// EncodeTraceYAML renders a bare trace (no versions/lcid/cid_info) in the
// YAML wire format, used for on-disk trace fixtures that don't need the
// full outcome document below.
func EncodeTraceYAML(t Trace) ([]byte, error) {
	wire, err := traceToWire(t)
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("air: cannot encode trace: %w", err)
	}
	return out, nil
}

// DecodeTraceYAML parses a trace from the bare YAML wire format.
func DecodeTraceYAML(data []byte) (Trace, error) {
	var wire []wireState
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("air: cannot decode trace: %w", err)
	}
	return wireToTrace(wire), nil
}

// wireVersions mirrors §6's "versions" object.
type wireVersions struct {
	DataVersion        string `yaml:"data_version"`
	InterpreterVersion string `yaml:"interpreter_version"`
}

// wireCanonResultRecord mirrors CanonResultRecord with its CIDs rendered
// as strings, the same accommodation wireCallResult makes for ValueRef.
type wireCanonResultRecord struct {
	Peer        string   `yaml:"peer"`
	ElementCIDs []string `yaml:"element_cids"`
}

// wireCidInfo mirrors §6's "cid_info" object: the four parallel stores,
// each a map from CID string to content.
type wireCidInfo struct {
	ValueStore        map[string]JValue                `yaml:"value_store,omitempty"`
	TetrapletStore    map[string]SecurityTetraplet      `yaml:"tetraplet_store,omitempty"`
	CanonResultStore  map[string]wireCanonResultRecord  `yaml:"canon_result_store,omitempty"`
	CanonElementStore map[string]JValue                 `yaml:"canon_element_store,omitempty"`
}

// wireDocument is the full §6 "Trace data format" wire shape: versions,
// trace, lcid, cid_info, and peer signatures.
type wireDocument struct {
	Versions   wireVersions      `yaml:"versions"`
	Trace      []wireState       `yaml:"trace"`
	Lcid       uint32            `yaml:"lcid"`
	CidInfo    wireCidInfo       `yaml:"cid_info"`
	Signatures map[string]string `yaml:"signatures,omitempty"`
}

func canonResultsToWire(in map[string]CanonResultRecord) map[string]wireCanonResultRecord {
	out := make(map[string]wireCanonResultRecord, len(in))
	for k, rec := range in {
		cids := make([]string, len(rec.ElementCIDs))
		for i, c := range rec.ElementCIDs {
			cids[i] = c.String()
		}
		out[k] = wireCanonResultRecord{Peer: rec.Peer, ElementCIDs: cids}
	}
	return out
}

func canonResultsFromWire(in map[string]wireCanonResultRecord) (map[string]CanonResultRecord, error) {
	out := make(map[string]CanonResultRecord, len(in))
	for k, rec := range in {
		cids := make([]CID, len(rec.ElementCIDs))
		for i, s := range rec.ElementCIDs {
			c, err := cid.Decode(s)
			if err != nil {
				return nil, fmt.Errorf("air: invalid canon element cid %q: %w", s, err)
			}
			cids[i] = c
		}
		out[k] = CanonResultRecord{Peer: rec.Peer, ElementCIDs: cids}
	}
	return out, nil
}

// EncodeOutcomeDocument renders a full outcome in the wire format named by
// §6 "Trace data format": versions, trace, lcid, the four parallel CID
// stores, and peer signatures (supplied by the caller — signing itself is
// the sandbox host's concern, out of scope per §1).
func EncodeOutcomeDocument(o Outcome, dataVersion Version, signatures map[string]string) ([]byte, error) {
	wire, err := traceToWire(o.NewTrace)
	if err != nil {
		return nil, err
	}

	doc := wireDocument{
		Versions: wireVersions{
			DataVersion:        dataVersion.String(),
			InterpreterVersion: InterpreterVersion.String(),
		},
		Trace: wire,
		Lcid:  o.LastCallID,
		CidInfo: wireCidInfo{
			ValueStore:        o.CidInfo.ValueStore,
			TetrapletStore:    o.CidInfo.TetrapletStore,
			CanonResultStore:  canonResultsToWire(o.CidInfo.CanonResultStore),
			CanonElementStore: o.CidInfo.CanonElementStore,
		},
		Signatures: signatures,
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("air: cannot encode outcome document: %w", err)
	}
	return out, nil
}

// DecodeOutcomeDocument parses the full wire format back into a trace, its
// cid_info, the last call_id, and the data version it was produced
// against; signatures are returned separately since they are not part of
// the replay input.
func DecodeOutcomeDocument(data []byte) (trace Trace, info CidInfo, lcid uint32, dataVersion Version, signatures map[string]string, err error) {
	var doc wireDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, CidInfo{}, 0, Version{}, nil, fmt.Errorf("air: cannot decode outcome document: %w", err)
	}

	canonResults, err := canonResultsFromWire(doc.CidInfo.CanonResultStore)
	if err != nil {
		return nil, CidInfo{}, 0, Version{}, nil, err
	}

	dv, err := ParseVersion(doc.Versions.DataVersion)
	if err != nil {
		return nil, CidInfo{}, 0, Version{}, nil, err
	}

	return wireToTrace(doc.Trace), CidInfo{
		ValueStore:        doc.CidInfo.ValueStore,
		TetrapletStore:    doc.CidInfo.TetrapletStore,
		CanonResultStore:  canonResults,
		CanonElementStore: doc.CidInfo.CanonElementStore,
	}, doc.Lcid, dv, doc.Signatures, nil
}
