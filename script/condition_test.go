package script

import (
	"bytes"
	"testing"
	"time"
)

func TestFixedCondition_MarshalDatum(t *testing.T) {
	c := FixedCondition(42)

	datumHex, err := c.MarshalDatumHex()
	if err != nil {
		t.Fatalf("MarshalDatumHex failed: %v", err)
	}
	if datumHex != "182a" {
		t.Errorf("expected 182a, got %s", datumHex)
	}
}

func TestTimeLockedCondition_MarshalDatum(t *testing.T) {
	beneficiary := bytes.Repeat([]byte{0x11}, 28)
	deadline := time.UnixMilli(1756290000000)

	c := TimeLockedCondition(beneficiary, deadline)

	datumHex, err := c.MarshalDatumHex()
	if err != nil {
		t.Fatalf("MarshalDatumHex failed: %v", err)
	}

	want := "d87982581c111111111111111111111111111111111111111111111111111111111b00000198eb0aa480"
	if datumHex != want {
		t.Errorf("expected %s, got %s", want, datumHex)
	}
}

func TestCondition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cond    Condition
		wantErr bool
	}{
		{name: "fixed", cond: FixedCondition(42)},
		{name: "time locked", cond: TimeLockedCondition(make([]byte, 28), time.UnixMilli(1756290000000))},
		{name: "short beneficiary", cond: TimeLockedCondition(make([]byte, 20), time.UnixMilli(1756290000000)), wantErr: true},
		{name: "zero deadline", cond: Condition{Kind: ConditionTimeLocked, Beneficiary: make([]byte, 28)}, wantErr: true},
		{name: "unknown kind", cond: Condition{Kind: "escrow"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cond.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestTryDecodeCondition(t *testing.T) {
	beneficiary := bytes.Repeat([]byte{0x11}, 28)

	tests := []struct {
		name     string
		datumHex string
		want     Condition
		wantOK   bool
	}{
		{
			name:     "fixed value",
			datumHex: "182a",
			want:     FixedCondition(42),
			wantOK:   true,
		},
		{
			name:     "time lock definite form",
			datumHex: "d87982581c111111111111111111111111111111111111111111111111111111111b00000198eb0aa480",
			want:     TimeLockedCondition(beneficiary, time.UnixMilli(1756290000000)),
			wantOK:   true,
		},
		{
			name:     "time lock indefinite form",
			datumHex: "d8799f581c111111111111111111111111111111111111111111111111111111111b00000198eb0aa480ff",
			want:     TimeLockedCondition(beneficiary, time.UnixMilli(1756290000000)),
			wantOK:   true,
		},
		{
			name:     "wrong constructor index",
			datumHex: "d87a80",
		},
		{
			name:     "short beneficiary",
			datumHex: "d87982450102030405187b",
		},
		{
			name:     "not valid cbor",
			datumHex: "d879",
		},
		{
			name:     "empty datum",
			datumHex: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TryDecodeConditionHex(tt.datumHex)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestRedeemers(t *testing.T) {
	unit, err := UnitRedeemer()
	if err != nil {
		t.Fatalf("UnitRedeemer failed: %v", err)
	}
	if got := string(unit); got != string(mustHex(t, "d87980")) {
		t.Errorf("expected d87980, got %x", unit)
	}

	intRed, err := IntRedeemer(42)
	if err != nil {
		t.Fatalf("IntRedeemer failed: %v", err)
	}
	if got := string(intRed); got != string(mustHex(t, "182a")) {
		t.Errorf("expected 182a, got %x", intRed)
	}
}

func TestCondition_DeadlineConversion(t *testing.T) {
	deadline := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	c := TimeLockedCondition(make([]byte, 28), deadline)

	if !c.Deadline().Equal(deadline) {
		t.Errorf("deadline round-trip mismatch: %v", c.Deadline())
	}
}
