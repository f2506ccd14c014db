package utils

import (
	"encoding/hex"
	"testing"
)

func TestScriptAddress_KnownVector(t *testing.T) {
	scriptHash, err := hex.DecodeString("1534828b3f28a816a421137fba569f855c2ffa3876649638e78a096c")
	if err != nil {
		t.Fatalf("decode script hash: %v", err)
	}

	addr, err := ScriptAddress(scriptHash, false)
	if err != nil {
		t.Fatalf("ScriptAddress failed: %v", err)
	}

	want := "addr_test1wq2nfq5t8u52s94yyyfhlwjkn7z4ctl68pmxf93cu79qjmq2hd8h8"
	if addr != want {
		t.Errorf("expected %s, got %s", want, addr)
	}
}

func TestKeyAddress_RoundTrip(t *testing.T) {
	keyHash, err := hex.DecodeString("1b1f0202487d094caa372c3c7cf00a84fb85b98e758e4ee8a4522be8")
	if err != nil {
		t.Fatalf("decode key hash: %v", err)
	}

	for _, mainnet := range []bool{false, true} {
		addr, err := KeyAddress(keyHash, mainnet)
		if err != nil {
			t.Fatalf("KeyAddress failed: %v", err)
		}

		decoded, err := DecodeAddress(addr)
		if err != nil {
			t.Fatalf("DecodeAddress failed for %s: %v", addr, err)
		}

		if decoded.IsScript {
			t.Error("expected key credential")
		}
		if decoded.Mainnet != mainnet {
			t.Errorf("expected mainnet=%v, got %v", mainnet, decoded.Mainnet)
		}
		if hex.EncodeToString(decoded.Hash) != hex.EncodeToString(keyHash) {
			t.Errorf("hash round-trip mismatch: %x", decoded.Hash)
		}
	}
}

func TestScriptAddress_RoundTrip(t *testing.T) {
	scriptHash := make([]byte, 28)
	for i := range scriptHash {
		scriptHash[i] = byte(i * 7)
	}

	addr, err := ScriptAddress(scriptHash, false)
	if err != nil {
		t.Fatalf("ScriptAddress failed: %v", err)
	}

	decoded, err := DecodeAddress(addr)
	if err != nil {
		t.Fatalf("DecodeAddress failed: %v", err)
	}

	if !decoded.IsScript {
		t.Error("expected script credential")
	}
	if hex.EncodeToString(decoded.Hash) != hex.EncodeToString(scriptHash) {
		t.Errorf("hash round-trip mismatch: %x", decoded.Hash)
	}
}

func TestAddress_InvalidInputs(t *testing.T) {
	if _, err := ScriptAddress(make([]byte, 20), false); err == nil {
		t.Error("expected error for short hash")
	}
	if _, err := KeyAddress(nil, true); err == nil {
		t.Error("expected error for nil hash")
	}
	if _, err := DecodeAddress("stake_test1uqabc"); err == nil {
		t.Error("expected error for unexpected prefix")
	}
	if _, err := DecodeAddress("not bech32 at all"); err == nil {
		t.Error("expected error for invalid bech32")
	}
}
