package omsdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// RowData is an ordered column-name to string-value mapping for one report row.
// Column order follows the source CSV; values keep original fidelity with no
// type coercion. Numeric and date parsing happens at the point of use.
type RowData struct {
	cols []string
	vals map[string]string
}

// NewRowData returns an empty row mapping.
func NewRowData() RowData {
	return RowData{vals: make(map[string]string)}
}

// FromPairs builds a RowData from alternating column/value pairs, mostly for tests.
func FromPairs(pairs ...string) RowData {
	if len(pairs)%2 != 0 {
		panic("omsdata: FromPairs requires an even number of arguments")
	}
	row := NewRowData()
	for i := 0; i < len(pairs); i += 2 {
		row.Set(pairs[i], pairs[i+1])
	}
	return row
}

// Set adds or replaces a column value, preserving first-seen column order.
func (r *RowData) Set(col, val string) {
	if r.vals == nil {
		r.vals = make(map[string]string)
	}
	if _, ok := r.vals[col]; !ok {
		r.cols = append(r.cols, col)
	}
	r.vals[col] = val
}

// Get returns the value for col and whether the column exists.
func (r RowData) Get(col string) (string, bool) {
	v, ok := r.vals[col]
	return v, ok
}

// Value returns the value for col, or "" when absent.
func (r RowData) Value(col string) string {
	return r.vals[col]
}

// Columns returns the column names in source order.
func (r RowData) Columns() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

// Len reports the number of columns.
func (r RowData) Len() int {
	return len(r.cols)
}

// FirstNonEmpty returns the first non-empty trimmed value among the named
// columns, in order. The second return reports whether one was found.
func (r RowData) FirstNonEmpty(cols ...string) (string, bool) {
	for _, col := range cols {
		if v, ok := r.vals[col]; ok {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}

// FirstColumnContaining scans columns in source order for a name containing
// needle (case-insensitive) with a non-empty value. Last-resort fuzzy lookup
// for inconsistently named source columns.
func (r RowData) FirstColumnContaining(needle string) (string, bool) {
	needle = strings.ToLower(needle)
	for _, col := range r.cols {
		if !strings.Contains(strings.ToLower(col), needle) {
			continue
		}
		if trimmed := strings.TrimSpace(r.vals[col]); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

// CanonicalJSON serializes the mapping with keys sorted, for content
// comparison. Two rows are considered identical content when their canonical
// serializations are byte-equal.
func (r RowData) CanonicalJSON() []byte {
	keys := make([]string, len(r.cols))
	copy(keys, r.cols)
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(&buf, k)
		buf.WriteByte(':')
		writeJSONString(&buf, r.vals[k])
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// MarshalJSON emits columns in source order.
func (r RowData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(&buf, col)
		buf.WriteByte(':')
		writeJSONString(&buf, r.vals[col])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the mapping preserving the key order of the document.
func (r *RowData) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("omsdata: decode row: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("omsdata: decode row: expected object, got %v", tok)
	}
	*r = NewRowData()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("omsdata: decode row key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("omsdata: decode row key: non-string %v", keyTok)
		}
		var val string
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("omsdata: decode row value for %q: %w", key, err)
		}
		r.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("omsdata: decode row: %w", err)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	encoded, _ := json.Marshal(s)
	buf.Write(encoded)
}
