package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldValue is one decoded field. Value is nil, Amount, string, bool, int64,
// or json.Number after a JSON round trip.
type FieldValue struct {
	Name  string
	Value any
}

// Fields is an ordered field-name to value mapping. Order follows the layout
// so exported objects read left to right like the source line.
type Fields []FieldValue

// Get returns the value stored under name.
func (f Fields) Get(name string) (any, bool) {
	for _, fv := range f {
		if fv.Name == name {
			return fv.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under name, appending it if absent.
func (f *Fields) Set(name string, value any) {
	for i := range *f {
		if (*f)[i].Name == name {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, FieldValue{Name: name, Value: value})
}

// Names returns the field names in order.
func (f Fields) Names() []string {
	names := make([]string, len(f))
	for i, fv := range f {
		names[i] = fv.Name
	}
	return names
}

// Map copies the fields into an unordered map.
func (f Fields) Map() map[string]any {
	m := make(map[string]any, len(f))
	for _, fv := range f {
		m[fv.Name] = fv.Value
	}
	return m
}

// MarshalJSON writes the fields as a JSON object in order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fv := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fv.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(fv.Value)
		if err != nil {
			return nil, fmt.Errorf("marshaling field %s: %w", fv.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order. Numbers decode as
// json.Number since the semantic type is not carried in the JSON.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object for fields, got %v", tok)
	}

	out := Fields{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected field name, got %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decoding field %s: %w", key, err)
		}
		out = append(out, FieldValue{Name: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}
