package utils

import (
	"testing"

	"github.com/plutusflow/client-sdk-go/client"
)

func TestFindOutputByAddress(t *testing.T) {
	tx := &client.TransactionInfo{
		TxHash: "aa11",
		Outputs: []client.TxOutputInfo{
			{Index: 0, Address: "addr_test1_change", Value: 1000000},
			{Index: 1, Address: "addr_test1_script", Value: 10000000, DatumHex: "182a"},
		},
	}

	out, found := FindOutputByAddress(tx, "addr_test1_script")
	if !found {
		t.Fatal("expected output to be found")
	}
	if out.Index != 1 || out.Value != 10000000 {
		t.Errorf("unexpected output: %+v", out)
	}

	if _, found := FindOutputByAddress(tx, "addr_test1_other"); found {
		t.Error("expected no output for unknown address")
	}
	if _, found := FindOutputByAddress(nil, "addr_test1_script"); found {
		t.Error("expected no output for nil transaction")
	}
}

func TestFindOutputWithDatum(t *testing.T) {
	tx := &client.TransactionInfo{
		TxHash: "aa11",
		Outputs: []client.TxOutputInfo{
			{Index: 0, Address: "addr_test1_script", Value: 2000000},
			{Index: 1, Address: "addr_test1_script", Value: 10000000, DatumHex: "182a"},
		},
	}

	out, found := FindOutputWithDatum(tx, "addr_test1_script")
	if !found {
		t.Fatal("expected output with datum to be found")
	}
	// 第 0 个输出没有 datum，应跳过
	if out.Index != 1 {
		t.Errorf("expected index 1, got %d", out.Index)
	}
}

func TestOutPointFormatParse(t *testing.T) {
	op := client.OutPoint{TxID: "aa11", Index: 3}

	s := FormatOutPoint(op)
	if s != "aa11:3" {
		t.Errorf("expected aa11:3, got %s", s)
	}

	parsed, err := ParseOutPoint(s)
	if err != nil {
		t.Fatalf("ParseOutPoint failed: %v", err)
	}
	if parsed != op {
		t.Errorf("round-trip mismatch: %+v", parsed)
	}

	for _, bad := range []string{"", "aa11", ":3", "aa11:x", "aa11:3:4"} {
		if _, err := ParseOutPoint(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
