package history

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind tells which shape a Record carries.
type Kind int

const (
	KindCount Kind = iota
	KindNamedSet
)

func (k Kind) String() string {
	if k == KindNamedSet {
		return "names"
	}
	return "count"
}

// Record is the prior state stored for one source: either a bare channel
// count or the set of channel names seen.
type Record struct {
	kind  Kind
	count int
	names []string
}

// Count creates a count-only record. Negative counts are stored as zero.
func Count(n int) Record {
	if n < 0 {
		n = 0
	}
	return Record{kind: KindCount, count: n}
}

// NamedSet creates a record from channel names. Duplicates are collapsed,
// keeping the first occurrence.
func NamedSet(names []string) Record {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}
	return Record{kind: KindNamedSet, count: len(unique), names: unique}
}

func (r Record) Kind() Kind       { return r.kind }
func (r Record) IsNamedSet() bool { return r.kind == KindNamedSet }

// Count returns the channel count. For a named set this is the set size.
func (r Record) Count() int { return r.count }

// Names returns a copy of the channel names, or nil for a count record.
func (r Record) Names() []string {
	if r.kind != KindNamedSet {
		return nil
	}
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

type namedSetDTO struct {
	Count    int      `json:"count"`
	Channels []string `json:"channels"`
}

// MarshalJSON encodes a Count as a JSON integer and a NamedSet as
// {"count": n, "channels": [...]}.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.kind == KindNamedSet {
		channels := r.names
		if channels == nil {
			channels = []string{}
		}
		return json.Marshal(namedSetDTO{Count: len(channels), Channels: channels})
	}
	return json.Marshal(r.count)
}

// UnmarshalJSON never fails on well-formed JSON: unrecognised shapes coerce
// to a zero count.
func (r *Record) UnmarshalJSON(data []byte) error {
	*r = Decode(data)
	return nil
}

// Decode coerces one raw JSON value into a Record.
func Decode(raw []byte) Record {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Count(0)
	}

	switch c := raw[0]; {
	case c == '{':
		return decodeObject(raw)
	case c == '[':
		return decodeArray(raw)
	case c == '-' || (c >= '0' && c <= '9'):
		n, ok := integral(string(raw))
		if !ok {
			return Count(0)
		}
		return Count(n)
	default:
		// strings, booleans and null
		return Count(0)
	}
}

func decodeObject(raw []byte) Record {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Count(0)
	}

	for _, key := range []string{"channels", "names"} {
		if v, ok := fields[key]; ok {
			if names, ok := stringList(v); ok {
				return NamedSet(names)
			}
		}
	}

	if v, ok := fields["count"]; ok {
		if n, ok := numeric(v); ok {
			return Count(n)
		}
	}
	return Count(0)
}

func decodeArray(raw []byte) Record {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return Count(0)
	}
	if n, ok := numeric(items[0]); ok {
		return Count(n)
	}
	return Count(0)
}

// numeric accepts a JSON number or a string holding one, as long as the value
// is integral.
func numeric(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		return integral(strings.TrimSpace(s))
	}
	return integral(string(raw))
}

func integral(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func stringList(raw json.RawMessage) ([]string, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		names = append(names, s)
	}
	return names, true
}
