package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestLedgerClient(t *testing.T, handler http.HandlerFunc) (LedgerClient, func()) {
	t.Helper()

	server := httptest.NewServer(handler)

	cfg := &Config{
		Endpoint: server.URL,
		Protocol: ProtocolHTTP,
	}
	client, err := NewLedgerClient(cfg)
	if err != nil {
		server.Close()
		t.Fatalf("failed to create ledger client: %v", err)
	}

	return client, func() {
		client.Close()
		server.Close()
	}
}

func TestLedgerClient_ListUTXOs(t *testing.T) {
	client, cleanup := newTestLedgerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"jsonrpc": "2.0",
			"result": {
				"utxos": [
					{
						"tx_id": "aa11",
						"index": 0,
						"address": "addr_test1wq2nfq5t8u52s94yyyfhlwjkn7z4ctl68pmxf93cu79qjmq2hd8h8",
						"value": "10000000",
						"inline_datum": "182a"
					},
					{
						"tx_id": "aa11",
						"index": 1,
						"address": "addr_test1wq2nfq5t8u52s94yyyfhlwjkn7z4ctl68pmxf93cu79qjmq2hd8h8",
						"value": "not-a-number"
					},
					{
						"tx_id": "bb22",
						"index": 2,
						"address": "addr_test1wq2nfq5t8u52s94yyyfhlwjkn7z4ctl68pmxf93cu79qjmq2hd8h8",
						"value": 5000000,
						"reference_script": "0x590102abcd"
					}
				]
			},
			"id": 1
		}`))
	})
	defer cleanup()

	utxos, err := client.ListUTXOs(context.Background(), "addr_test1wq2nfq5t8u52s94yyyfhlwjkn7z4ctl68pmxf93cu79qjmq2hd8h8")
	if err != nil {
		t.Fatalf("ListUTXOs failed: %v", err)
	}

	// 第二条 value 非法，应被跳过
	if len(utxos) != 2 {
		t.Fatalf("expected 2 UTXOs, got %d", len(utxos))
	}

	first := utxos[0]
	if first.OutPoint.TxID != "aa11" || first.OutPoint.Index != 0 {
		t.Errorf("unexpected outpoint: %+v", first.OutPoint)
	}
	if first.Value != 10000000 {
		t.Errorf("expected value 10000000, got %d", first.Value)
	}
	if first.InlineDatum != "182a" {
		t.Errorf("expected inline datum 182a, got %s", first.InlineDatum)
	}
	if !first.HasInlineDatum() {
		t.Error("expected HasInlineDatum to be true")
	}

	second := utxos[1]
	if second.Value != 5000000 {
		t.Errorf("expected value 5000000, got %d", second.Value)
	}
	if second.ReferenceScript != "590102abcd" {
		t.Errorf("expected 0x prefix stripped, got %s", second.ReferenceScript)
	}
}

func TestLedgerClient_ListUTXOs_EmptyAddress(t *testing.T) {
	client := NewLedgerClientFromClient(nil)

	_, err := client.ListUTXOs(context.Background(), "")
	ledgerErr, ok := err.(*LedgerClientError)
	if !ok {
		t.Fatalf("expected LedgerClientError, got %v", err)
	}
	if ledgerErr.Code != LedgerErrCodeInvalidParams {
		t.Errorf("expected INVALID_PARAMS, got %s", ledgerErr.Code)
	}
}

func TestLedgerClient_LatestBlock(t *testing.T) {
	client, cleanup := newTestLedgerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"jsonrpc": "2.0",
			"result": {
				"hash": "cafe01",
				"height": 12345,
				"slot": 67890,
				"time": 1756290000
			},
			"id": 1
		}`))
	})
	defer cleanup()

	block, err := client.LatestBlock(context.Background())
	if err != nil {
		t.Fatalf("LatestBlock failed: %v", err)
	}

	if block.Hash != "cafe01" {
		t.Errorf("expected hash cafe01, got %s", block.Hash)
	}
	if block.Height != 12345 {
		t.Errorf("expected height 12345, got %d", block.Height)
	}
	if block.Slot != 67890 {
		t.Errorf("expected slot 67890, got %d", block.Slot)
	}
	if block.Timestamp().Unix() != 1756290000 {
		t.Errorf("unexpected timestamp: %v", block.Timestamp())
	}
}

func TestLedgerClient_BuildAndFinalize(t *testing.T) {
	client, cleanup := newTestLedgerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var req struct {
			Method string `json:"method"`
		}
		decodeJSONBody(t, r, &req)

		switch req.Method {
		case "ledger_buildTransaction":
			w.Write([]byte(`{"jsonrpc":"2.0","result":{"unsigned_tx":"84a300","body_hash":"deadbeef"},"id":1}`))
		case "ledger_finalizeTransaction":
			w.Write([]byte(`{"jsonrpc":"2.0","result":{"tx":"84a400ff"},"id":2}`))
		default:
			w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32601,"message":"method not found"},"id":0}`))
		}
	})
	defer cleanup()

	ctx := context.Background()

	build, err := client.BuildTransaction(ctx, map[string]interface{}{"change_address": "addr_test1..."})
	if err != nil {
		t.Fatalf("BuildTransaction failed: %v", err)
	}
	if build.UnsignedTx != "84a300" || build.BodyHash != "deadbeef" {
		t.Errorf("unexpected build result: %+v", build)
	}

	tx, err := client.FinalizeTransaction(ctx, build.UnsignedTx, []VKeyWitness{
		{VKey: "aabb", Signature: "ccdd"},
	})
	if err != nil {
		t.Fatalf("FinalizeTransaction failed: %v", err)
	}
	if tx != "84a400ff" {
		t.Errorf("expected tx 84a400ff, got %s", tx)
	}
}

func TestLedgerClient_FinalizeTransaction_RequiresWitness(t *testing.T) {
	client := NewLedgerClientFromClient(nil)

	_, err := client.FinalizeTransaction(context.Background(), "84a300", nil)
	ledgerErr, ok := err.(*LedgerClientError)
	if !ok {
		t.Fatalf("expected LedgerClientError, got %v", err)
	}
	if ledgerErr.Code != LedgerErrCodeInvalidParams {
		t.Errorf("expected INVALID_PARAMS, got %s", ledgerErr.Code)
	}
}

func TestLedgerClient_GetTransaction(t *testing.T) {
	tests := []struct {
		name       string
		result     string
		wantStatus TransactionStatus
		wantOutput bool
	}{
		{
			name:       "confirmed with outputs",
			result:     `{"tx_hash":"ff01","block_height":100,"slot":2000,"status":"confirmed","outputs":[{"index":0,"address":"addr_test1...","value":"10000000","inline_datum":"182a"}]}`,
			wantStatus: TransactionStatusConfirmed,
			wantOutput: true,
		},
		{
			name:       "pending without block",
			result:     `{"tx_hash":"ff02"}`,
			wantStatus: TransactionStatusPending,
		},
		{
			name:       "unknown when not found",
			result:     `null`,
			wantStatus: TransactionStatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, cleanup := newTestLedgerClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"jsonrpc":"2.0","result":` + tt.result + `,"id":1}`))
			})
			defer cleanup()

			tx, err := client.GetTransaction(context.Background(), "ff01")
			if err != nil {
				t.Fatalf("GetTransaction failed: %v", err)
			}

			if tx.Status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, tx.Status)
			}
			if tt.wantOutput {
				if len(tx.Outputs) != 1 {
					t.Fatalf("expected 1 output, got %d", len(tx.Outputs))
				}
				if tx.Outputs[0].Value != 10000000 || tx.Outputs[0].DatumHex != "182a" {
					t.Errorf("unexpected output: %+v", tx.Outputs[0])
				}
			}
		})
	}
}

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name    string
		raw     interface{}
		want    uint64
		wantErr bool
	}{
		{name: "decimal string", raw: "10000000", want: 10000000},
		{name: "number", raw: float64(5000000), want: 5000000},
		{name: "negative number", raw: float64(-1), wantErr: true},
		{name: "garbage string", raw: "abc", wantErr: true},
		{name: "missing", raw: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeValue(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func decodeJSONBody(t *testing.T, r *http.Request, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
}
