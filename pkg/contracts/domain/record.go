package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is a museum object as returned by the collection API: field names
// mapped to values, in the order the fields were first seen.
//
// Setting an existing field keeps its position. The zero Record is empty and
// ready to use.
type Record struct {
	fields *orderedmap.OrderedMap[string, Value]
}

// NewRecord creates an empty record
func NewRecord() *Record {
	return &Record{fields: orderedmap.New[string, Value]()}
}

// RecordOf builds a record from alternating key/value pairs, mostly for tests
// and fixtures.
func RecordOf(pairs ...interface{}) *Record {
	r := NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		r.Set(key, ValueOf(pairs[i+1]))
	}
	return r
}

func (r *Record) ensure() {
	if r.fields == nil {
		r.fields = orderedmap.New[string, Value]()
	}
}

// Len returns the number of fields
func (r *Record) Len() int {
	if r == nil || r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Get returns the value stored under key
func (r *Record) Get(key string) (Value, bool) {
	if r == nil || r.fields == nil {
		return Null(), false
	}
	return r.fields.Get(key)
}

// Has reports whether the record contains key
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Set stores value under key and returns the previous value, if any
func (r *Record) Set(key string, value Value) (Value, bool) {
	r.ensure()
	return r.fields.Set(key, value)
}

// Delete removes key and returns the removed value, if any
func (r *Record) Delete(key string) (Value, bool) {
	if r == nil || r.fields == nil {
		return Null(), false
	}
	return r.fields.Delete(key)
}

// Keys returns the field names in order
func (r *Record) Keys() []string {
	keys := make([]string, 0, r.Len())
	r.Each(func(key string, _ Value) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Each calls fn for every field in order until fn returns false
func (r *Record) Each(fn func(key string, value Value) bool) {
	if r == nil || r.fields == nil {
		return
	}
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	out := NewRecord()
	r.Each(func(key string, value Value) bool {
		out.Set(key, value.Clone())
		return true
	})
	return out
}

// Equal reports whether both records hold the same fields in the same order
func (r *Record) Equal(other *Record) bool {
	if r.Len() != other.Len() {
		return false
	}
	if r.Len() == 0 {
		return true
	}
	a, b := r.fields.Oldest(), other.fields.Oldest()
	for ; a != nil && b != nil; a, b = a.Next(), b.Next() {
		if a.Key != b.Key || !a.Value.Equal(b.Value) {
			return false
		}
	}
	return a == nil && b == nil
}

// MarshalJSON implements json.Marshaler, keeping field order
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	first := true
	r.Each(func(key string, value Value) bool {
		var k, v []byte
		if k, err = marshalUnescaped(key); err != nil {
			return false
		}
		if v, err = value.MarshalJSON(); err != nil {
			err = fmt.Errorf("field %q: %w", key, err)
			return false
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping field order
func (r *Record) UnmarshalJSON(data []byte) error {
	r.fields = orderedmap.New[string, Value]()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return r.fields.UnmarshalJSON(data)
}

// ValueOf converts plain Go values into a Value. Unknown types become their
// fmt representation as a string.
func ValueOf(x interface{}) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case *Record:
		return Map(t)
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	case json.Number:
		return Number(t)
	case []Value:
		return List(t...)
	case []*Record:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = Map(item)
		}
		return List(items...)
	case []interface{}:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = ValueOf(item)
		}
		return List(items...)
	default:
		return String(fmt.Sprint(t))
	}
}
