package dataset

import (
	"bytes"
	"encoding/json"
)

// Field is one name/value pair of a Record.
type Field struct {
	Name  string
	Value string
}

// Record is one CSV row, keyed by header name. Field order follows the
// header row.
type Record struct {
	fields []Field
}

// Dataset is the ordered list of records read from the resource.
type Dataset []Record

// NewRecord builds a Record from fields in order. A repeated name keeps its
// first position and takes the last value.
func NewRecord(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Set assigns value to name, appending the field if it is new.
func (r *Record) Set(name, value string) {
	for i := range r.fields {
		if r.fields[i].Name == name {
			r.fields[i].Value = value
			return
		}
	}
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Get returns the value stored under name.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Fields returns a copy of the record's fields in header order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// MarshalJSON encodes the record as a JSON object with keys in header order.
// Non-ASCII text is written as-is and '&', '<', '>' are left unescaped so
// entity text such as "&yen;" reaches the client verbatim.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeString(enc, &buf, f.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeString(enc, &buf, f.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeString writes s as a JSON string, dropping the newline that
// json.Encoder appends.
func encodeString(enc *json.Encoder, buf *bytes.Buffer, s string) error {
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}
