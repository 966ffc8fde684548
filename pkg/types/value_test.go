package types

import (
	"encoding/json"
	"testing"
)

func TestValue_UnmarshalJSON_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind ValueKind
	}{
		{name: "null", input: `null`, wantKind: KindNull},
		{name: "string", input: `"required field"`, wantKind: KindString},
		{name: "integer", input: `42`, wantKind: KindNumber},
		{name: "float", input: `2.5`, wantKind: KindNumber},
		{name: "bool", input: `true`, wantKind: KindBool},
		{name: "sequence", input: `["a", "b"]`, wantKind: KindSequence},
		{name: "mapping", input: `{"min": 1, "max": 10}`, wantKind: KindMapping},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			if err := json.Unmarshal([]byte(tt.input), &v); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if v.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", v.Kind, tt.wantKind)
			}
		})
	}
}

func TestValue_MappingPreservesDeclarationOrder(t *testing.T) {
	input := `{"zebra": 1, "alpha": 2, "mid": 3}`

	var v Value
	if err := json.Unmarshal([]byte(input), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	wantKeys := []string{"zebra", "alpha", "mid"}
	if len(v.Map) != len(wantKeys) {
		t.Fatalf("got %d entries, want %d", len(v.Map), len(wantKeys))
	}
	for i, key := range wantKeys {
		if v.Map[i].Key != key {
			t.Errorf("entry %d key = %q, want %q", i, v.Map[i].Key, key)
		}
	}
}

func TestValue_NumberLiteralIsByteStable(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: `5`, want: "5"},
		{input: `2.5`, want: "2.5"},
		{input: `100`, want: "100"},
		{input: `0.001`, want: "0.001"},
	}

	for _, tt := range tests {
		var v Value
		if err := json.Unmarshal([]byte(tt.input), &v); err != nil {
			t.Fatalf("unmarshal %q failed: %v", tt.input, err)
		}
		if v.Scalar() != tt.want {
			t.Errorf("Scalar(%s) = %q, want %q", tt.input, v.Scalar(), tt.want)
		}
	}
}

func TestValue_Scalar(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{name: "null", value: Value{}, want: ""},
		{name: "string", value: Value{Kind: KindString, Str: "hello"}, want: "hello"},
		{name: "number", value: Value{Kind: KindNumber, Num: "7"}, want: "7"},
		{name: "bool true", value: Value{Kind: KindBool, Bool: true}, want: "true"},
		{name: "bool false", value: Value{Kind: KindBool, Bool: false}, want: "false"},
		{name: "sequence renders empty", value: Value{Kind: KindSequence, Seq: []Value{{Kind: KindString, Str: "x"}}}, want: ""},
		{name: "mapping renders empty", value: Value{Kind: KindMapping, Map: []MapEntry{{Key: "k"}}}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Scalar(); got != tt.want {
				t.Errorf("Scalar() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValue_Lookup(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"value": "us", "label": "United States"}`), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	val, ok := v.Lookup("value")
	if !ok || val.Scalar() != "us" {
		t.Errorf("Lookup(value) = %q, %v; want us, true", val.Scalar(), ok)
	}

	if _, ok := v.Lookup("missing"); ok {
		t.Error("Lookup(missing) should report not found")
	}

	scalar := Value{Kind: KindString, Str: "x"}
	if _, ok := scalar.Lookup("value"); ok {
		t.Error("Lookup on a non-mapping should report not found")
	}
}
