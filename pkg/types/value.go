// Package types provides core data types for Intakegrid.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind discriminates the JSON shapes a loosely typed template field can take.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindSequence
	KindMapping
)

// Value is a tagged representation of a JSON value whose shape is not fixed
// by the template schema (validation, maps_to, examples, options, defaults).
// Mapping entries preserve their JSON declaration order, which is significant
// for formatter output.
type Value struct {
	Kind ValueKind
	Str  string
	// Num holds the raw JSON number literal (e.g. "5", "2.5") so formatted
	// output is byte-stable regardless of float round-tripping.
	Num  string
	Bool bool
	Seq  []Value
	Map  []MapEntry
}

// MapEntry is one key/value pair of a mapping-shaped Value.
type MapEntry struct {
	Key   string
	Value Value
}

// IsNull reports whether the value is absent or JSON null.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Scalar renders a scalar value as a display string. Null, sequences, and
// mappings render as the empty string.
func (v Value) Scalar() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// Lookup returns the entry for key in a mapping-shaped value.
func (v Value) Lookup(key string) (Value, bool) {
	if v.Kind != KindMapping {
		return Value{}, false
	}
	for _, e := range v.Map {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// UnmarshalJSON decodes any JSON value into its tagged form, preserving
// object key order and raw number literals.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// decodeValue consumes exactly one JSON value from the token stream.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var entries []MapEntry
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("types: unexpected object key token %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				entries = append(entries, MapEntry{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return Value{}, err
			}
			return Value{Kind: KindMapping, Map: entries}, nil

		case '[':
			var seq []Value
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				seq = append(seq, val)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return Value{}, err
			}
			return Value{Kind: KindSequence, Seq: seq}, nil
		}
		return Value{}, fmt.Errorf("types: unexpected delimiter %v", t)

	case string:
		return Value{Kind: KindString, Str: t}, nil
	case json.Number:
		return Value{Kind: KindNumber, Num: t.String()}, nil
	case bool:
		return Value{Kind: KindBool, Bool: t}, nil
	case nil:
		return Value{}, nil
	}

	return Value{}, fmt.Errorf("types: unexpected JSON token %v", tok)
}
