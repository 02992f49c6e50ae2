package contacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Row is a string-keyed record that remembers insertion order. The order is
// the CSV column order and is preserved through JSON encoding.
//
// The zero value is an empty row ready to use.
type Row struct {
	keys   []string
	values map[string]string
}

// NewRow builds a row from parallel key and value slices. Missing values are
// stored as empty strings; extra values are ignored.
func NewRow(keys, values []string) Row {
	r := Row{
		keys:   make([]string, 0, len(keys)),
		values: make(map[string]string, len(keys)),
	}
	for i, k := range keys {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		r.Set(k, v)
	}
	return r
}

// Get returns the value for key and whether it was present.
func (r Row) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value for key, or "" if absent.
func (r Row) Value(key string) string {
	return r.values[key]
}

// Set assigns key. New keys are appended to the end of the order.
func (r *Row) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Keys returns the keys in order. The slice is a copy.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Values returns the values in key order.
func (r Row) Values() []string {
	out := make([]string, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.values[k]
	}
	return out
}

func (r Row) Len() int { return len(r.keys) }

// Clone returns a deep copy.
func (r Row) Clone() Row {
	return NewRow(r.keys, r.Values())
}

// MarshalJSON encodes the row as a JSON object with keys in row order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object, keeping key order. Non-string
// scalars are stored in their JSON text form and null becomes "".
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("contacts: row must be a JSON object")
	}

	*r = Row{values: make(map[string]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("contacts: unexpected key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		value, err := scalarString(raw)
		if err != nil {
			return fmt.Errorf("contacts: field %q: %w", key, err)
		}
		r.Set(key, value)
	}

	_, err = dec.Token()
	return err
}

func scalarString(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case trimmed == "null":
		return "", nil
	case strings.HasPrefix(trimmed, `"`):
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case strings.HasPrefix(trimmed, "{"), strings.HasPrefix(trimmed, "["):
		return "", fmt.Errorf("nested values are not supported")
	default:
		return trimmed, nil
	}
}

// Contact is one parsed contact row. Its phone_number field always holds a
// canonical phone number when produced by Parse.
type Contact struct {
	Row

	// Line is the 1-based source line the row started on. Zero for contacts
	// that did not come from a file.
	Line int `json:"-"`
}

// PhoneNumber returns the canonical phone value.
func (c Contact) PhoneNumber() string {
	return c.Value(PhoneNumberKey)
}
