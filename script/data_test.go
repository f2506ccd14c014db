package script

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	raw, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("decode hex %q: %v", s, err)
	}
	return raw
}

func TestMarshalData(t *testing.T) {
	beneficiary := bytes.Repeat([]byte{0x11}, 28)

	tests := []struct {
		name string
		data Data
		want string
	}{
		{
			name: "small int",
			data: IntData{Value: 42},
			want: "182a",
		},
		{
			name: "unit constructor",
			data: Unit(),
			want: "d87980",
		},
		{
			name: "constructor index 1",
			data: ConstrData{Index: 1},
			want: "d87a80",
		},
		{
			name: "constructor index 7 uses high tag range",
			data: ConstrData{Index: 7},
			want: "d9050080",
		},
		{
			name: "time lock fields",
			data: ConstrData{
				Index: 0,
				Fields: []Data{
					BytesData{Value: beneficiary},
					IntData{Value: 1756290000000},
				},
			},
			want: "d87982581c111111111111111111111111111111111111111111111111111111111b00000198eb0aa480",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalData(tt.data)
			if err != nil {
				t.Fatalf("MarshalData failed: %v", err)
			}
			if hex.EncodeToString(got) != tt.want {
				t.Errorf("expected %s, got %x", tt.want, got)
			}
		})
	}
}

func TestUnmarshalData_RoundTrip(t *testing.T) {
	original := ConstrData{
		Index: 0,
		Fields: []Data{
			BytesData{Value: bytes.Repeat([]byte{0xab}, 28)},
			IntData{Value: 1700000000000},
			ListData{Items: []Data{IntData{Value: 1}, IntData{Value: 2}}},
		},
	}

	raw, err := MarshalData(original)
	if err != nil {
		t.Fatalf("MarshalData failed: %v", err)
	}

	decoded, err := UnmarshalData(raw)
	if err != nil {
		t.Fatalf("UnmarshalData failed: %v", err)
	}

	if !Equal(original, decoded) {
		t.Errorf("round-trip mismatch: %+v", decoded)
	}
}

func TestUnmarshalData_IndefiniteArray(t *testing.T) {
	// 链上序列化常用不定长数组形式
	raw := mustHex(t, "d8799f581c111111111111111111111111111111111111111111111111111111111b00000198eb0aa480ff")

	decoded, err := UnmarshalData(raw)
	if err != nil {
		t.Fatalf("UnmarshalData failed: %v", err)
	}

	constr, ok := decoded.(ConstrData)
	if !ok {
		t.Fatalf("expected ConstrData, got %T", decoded)
	}
	if constr.Index != 0 || len(constr.Fields) != 2 {
		t.Fatalf("unexpected constructor: %+v", constr)
	}

	deadline, ok := constr.Fields[1].(IntData)
	if !ok || deadline.Value != 1756290000000 {
		t.Errorf("unexpected deadline field: %+v", constr.Fields[1])
	}
}

func TestUnmarshalData_HighTagRoundTrip(t *testing.T) {
	original := ConstrData{Index: 7, Fields: []Data{IntData{Value: 9}}}

	raw, err := MarshalData(original)
	if err != nil {
		t.Fatalf("MarshalData failed: %v", err)
	}

	decoded, err := UnmarshalData(raw)
	if err != nil {
		t.Fatalf("UnmarshalData failed: %v", err)
	}
	if !Equal(original, decoded) {
		t.Errorf("round-trip mismatch: %+v", decoded)
	}
}

func TestUnmarshalData_Invalid(t *testing.T) {
	for _, tt := range []struct {
		name string
		raw  string
	}{
		{name: "truncated", raw: "d879"},
		{name: "text string", raw: "6161"},
		{name: "unsupported tag", raw: "c249010000000000000000"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalData(mustHex(t, tt.raw)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestEqual(t *testing.T) {
	a := ConstrData{Index: 0, Fields: []Data{IntData{Value: 42}}}
	b := ConstrData{Index: 0, Fields: []Data{IntData{Value: 42}}}
	c := ConstrData{Index: 0, Fields: []Data{IntData{Value: 41}}}

	if !Equal(a, b) {
		t.Error("expected equal trees")
	}
	if Equal(a, c) {
		t.Error("expected unequal trees")
	}
	if Equal(IntData{Value: 1}, BytesData{Value: []byte{1}}) {
		t.Error("expected different node types to be unequal")
	}
}
