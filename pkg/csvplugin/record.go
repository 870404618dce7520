package csvplugin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Value is a single cell. It keeps the raw text form used for comparisons and,
// when the cell came from structured data, the typed value it was decoded from.
// The zero Value is an empty, non-null string.
type Value struct {
	raw   string
	typed interface{}
	null  bool
}

// StringValue returns a Value holding s.
func StringValue(s string) Value {
	return Value{raw: s}
}

// NullValue returns the null Value used for absent projected columns.
func NullValue() Value {
	return Value{null: true}
}

// ValueOf converts a decoded JSON, YAML or script value to a Value.
func ValueOf(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return NullValue()
	case Value:
		return t
	case string:
		return StringValue(t)
	case []byte:
		return StringValue(string(t))
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Value{raw: t.String(), typed: i}
		}
		if f, err := t.Float64(); err == nil {
			return Value{raw: t.String(), typed: f}
		}
		return StringValue(t.String())
	case float64:
		return Value{raw: strconv.FormatFloat(t, 'f', -1, 64), typed: t}
	case float32:
		return Value{raw: strconv.FormatFloat(float64(t), 'f', -1, 32), typed: float64(t)}
	case int:
		return Value{raw: strconv.Itoa(t), typed: int64(t)}
	case int64:
		return Value{raw: strconv.FormatInt(t, 10), typed: t}
	case int32:
		return Value{raw: strconv.FormatInt(int64(t), 10), typed: int64(t)}
	case uint64:
		return Value{raw: strconv.FormatUint(t, 10), typed: t}
	case bool:
		return Value{raw: strconv.FormatBool(t), typed: t}
	case time.Time:
		return Value{raw: t.Format(time.RFC3339Nano), typed: t}
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(t)
		if err != nil {
			return StringValue(fmt.Sprint(t))
		}
		return Value{raw: string(b), typed: t}
	default:
		return StringValue(fmt.Sprint(t))
	}
}

// String returns the raw text of the cell. Null renders as "".
func (v Value) String() string {
	return v.raw
}

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool {
	return v.null
}

// Interface returns nil for null, the typed value when present, else the raw string.
func (v Value) Interface() interface{} {
	if v.null {
		return nil
	}
	if v.typed != nil {
		return v.typed
	}
	return v.raw
}

// Field is a named cell.
type Field struct {
	Name  string
	Value Value
}

// Record is an ordered mapping from column name to Value.
// Names are unique; a record is never modified after construction.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord builds a record from fields in order. A repeated name replaces the
// earlier value and keeps the earlier position.
func NewRecord(fields ...Field) Record {
	r := Record{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if i, ok := r.index[f.Name]; ok {
			r.fields[i].Value = f.Value
			continue
		}
		r.index[f.Name] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r
}

// FromStrings pairs names with values. Missing values become "" and values
// beyond len(names) are dropped.
func FromStrings(names []string, values []string) Record {
	fields := make([]Field, len(names))
	for i, name := range names {
		var s string
		if i < len(values) {
			s = values[i]
		}
		fields[i] = Field{Name: name, Value: StringValue(s)}
	}
	return NewRecord(fields...)
}

// FromMap builds a record from m. Key order follows keys.
func FromMap(m map[string]interface{}, keys []string) Record {
	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Name: k, Value: ValueOf(m[k])})
	}
	return NewRecord(fields...)
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// Keys returns the column names in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Name
	}
	return keys
}

// Get looks up a column by exact name.
func (r Record) Get(name string) (Value, bool) {
	i, ok := r.index[name]
	if !ok {
		return Value{}, false
	}
	return r.fields[i].Value, true
}

// Fields returns a copy of the fields in order.
func (r Record) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

// Project returns a new record with exactly columns, in that order.
// Absent columns are null; repeated names keep their first position.
func (r Record) Project(columns []string) Record {
	fields := make([]Field, 0, len(columns))
	for _, c := range columns {
		v, ok := r.Get(c)
		if !ok {
			v = NullValue()
		}
		fields = append(fields, Field{Name: c, Value: v})
	}
	return NewRecord(fields...)
}

// Map returns the record as an unordered map of Interface values.
func (r Record) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.fields))
	for _, f := range r.fields {
		m[f.Name] = f.Value.Interface()
	}
	return m
}

// MarshalJSON writes the record as a JSON object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(f.Value.Interface())
		if err != nil {
			return nil, fmt.Errorf("encoding column %q: %w", f.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record must be a JSON object, got %v", tok)
	}

	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected record key %v", tok)
		}
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("decoding column %q: %w", key, err)
		}
		fields = append(fields, Field{Name: key, Value: ValueOf(v)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = NewRecord(fields...)
	return nil
}

// MarshalYAML writes the record as a YAML mapping with keys in column order.
func (r Record) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range r.fields {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name}
		val := &yaml.Node{}
		if err := val.Encode(f.Value.Interface()); err != nil {
			return nil, fmt.Errorf("encoding column %q: %w", f.Name, err)
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// UnmarshalYAML reads a YAML mapping, keeping key order.
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: record must be a mapping", node.Line)
	}
	fields := make([]Field, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v interface{}
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("line %d: %w", node.Content[i+1].Line, err)
		}
		fields = append(fields, Field{Name: node.Content[i].Value, Value: ValueOf(v)})
	}
	*r = NewRecord(fields...)
	return nil
}

// EncodeMsgpack writes the record as a msgpack map in column order.
func (r Record) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(r.fields)); err != nil {
		return err
	}
	for _, f := range r.fields {
		if err := enc.EncodeString(f.Name); err != nil {
			return err
		}
		if err := enc.Encode(f.Value.Interface()); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ json.Marshaler        = Record{}
	_ json.Unmarshaler      = (*Record)(nil)
	_ yaml.Marshaler        = Record{}
	_ yaml.Unmarshaler      = (*Record)(nil)
	_ msgpack.CustomEncoder = Record{}
)
