package transaction

import (
	"context"
	"sync"
	"testing"

	"github.com/plutusflow/client-sdk-go/client"
)

// stubLedger 只记录调用参数并返回预置结果
type stubLedger struct {
	client.LedgerClient

	mu         sync.Mutex
	lastTxHash string
	lastSigned string
	tx         *client.TransactionInfo
	submit     *client.SubmitTxResult
}

func (s *stubLedger) GetTransaction(ctx context.Context, txHash string) (*client.TransactionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTxHash = txHash
	if s.tx == nil {
		return nil, nil
	}
	tx := *s.tx
	tx.TxHash = txHash
	return &tx, nil
}

func (s *stubLedger) SubmitTransaction(ctx context.Context, signedTxHex string) (*client.SubmitTxResult, error) {
	s.lastSigned = signedTxHex
	return s.submit, nil
}

func TestGetStatus(t *testing.T) {
	tests := []struct {
		name string
		tx   *client.TransactionInfo
		want client.TransactionStatus
	}{
		{"confirmed", &client.TransactionInfo{Status: client.TransactionStatusConfirmed}, client.TransactionStatusConfirmed},
		{"pending", &client.TransactionInfo{Status: client.TransactionStatusPending}, client.TransactionStatusPending},
		{"not yet visible", nil, client.TransactionStatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubLedger{tx: tt.tx}
			svc := NewService(stub)

			status, err := svc.GetStatus(context.Background(), "0xabc123")
			if err != nil {
				t.Fatalf("GetStatus failed: %v", err)
			}
			if status != tt.want {
				t.Errorf("status = %s, want %s", status, tt.want)
			}
			if stub.lastTxHash != "abc123" {
				t.Errorf("expected normalized hash abc123, got %s", stub.lastTxHash)
			}
		})
	}
}

func TestGetTransaction_EmptyHash(t *testing.T) {
	svc := NewService(&stubLedger{})
	if _, err := svc.GetTransaction(context.Background(), ""); err == nil {
		t.Error("expected error for empty hash")
	}
}

func TestGetTransactions(t *testing.T) {
	stub := &stubLedger{tx: &client.TransactionInfo{Status: client.TransactionStatusConfirmed}}
	svc := NewService(stub)

	hashes := []string{"tx1", "tx2", "tx3"}
	txs, err := svc.GetTransactions(context.Background(), hashes)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(txs) != len(hashes) {
		t.Fatalf("got %d transactions, want %d", len(txs), len(hashes))
	}
	// 结果顺序与输入一致
	for i, tx := range txs {
		if tx.TxHash != hashes[i] {
			t.Errorf("txs[%d].TxHash = %s, want %s", i, tx.TxHash, hashes[i])
		}
	}

	empty, err := svc.GetTransactions(context.Background(), nil)
	if err != nil || empty != nil {
		t.Errorf("expected empty result for no hashes, got %v, %v", empty, err)
	}
}

func TestSubmit(t *testing.T) {
	stub := &stubLedger{submit: &client.SubmitTxResult{TxHash: "tx1", Accepted: true}}
	svc := NewService(stub)

	result, err := svc.Submit(context.Background(), " 0x84a400 ")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !result.Accepted {
		t.Errorf("unexpected result: %+v", result)
	}
	if stub.lastSigned != "84a400" {
		t.Errorf("expected trimmed hex 84a400, got %q", stub.lastSigned)
	}

	if _, err := svc.Submit(context.Background(), "  "); err == nil {
		t.Error("expected error for empty transaction")
	}
}
