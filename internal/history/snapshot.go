package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var ErrMalformedSnapshot = errors.New("history snapshot is not a JSON object")

// Snapshot maps a source identifier to its last recorded state.
type Snapshot map[string]Record

// Lookup returns the record for source, or nil if none was stored.
func (s Snapshot) Lookup(source string) *Record {
	r, ok := s[source]
	if !ok {
		return nil
	}
	return &r
}

// Clone returns a shallow copy. Records are values and safe to share.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Sources returns the source identifiers in sorted order.
func (s Snapshot) Sources() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DecodeSnapshot parses a history document. Empty input yields an empty
// snapshot; every value is coerced with Decode.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Snapshot{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	// A top-level null unmarshals into a nil map without error
	if raw == nil {
		return Snapshot{}, nil
	}

	snap := make(Snapshot, len(raw))
	for source, value := range raw {
		snap[source] = Decode(value)
	}
	return snap, nil
}

// EncodeSnapshot renders the snapshot as indented JSON with sorted keys.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	if s == nil {
		s = Snapshot{}
	}
	data, err := json.MarshalIndent(map[string]Record(s), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
