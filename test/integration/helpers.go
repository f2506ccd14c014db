package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plutusflow/client-sdk-go/client"
)

// WaitForTransaction 轮询等待交易确认，返回交易信息
func WaitForTransaction(t *testing.T, lc client.LedgerClient, txHash string) *client.TransactionInfo {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout*2)
	defer cancel()

	for i := 0; i < TransactionConfirmAttempts; i++ {
		tx, err := lc.GetTransaction(ctx, txHash)
		require.NoError(t, err, "查询交易失败: %s", txHash)

		if tx != nil && tx.Status == client.TransactionStatusConfirmed {
			return tx
		}
		time.Sleep(TransactionConfirmInterval)
	}

	t.Fatalf("交易在预算内未确认: %s", txHash)
	return nil
}

// WaitUntilChainTime 等待链上时间严格越过给定时间点
//
// 链上时间以最新区块的时间戳为准，本地时钟只用于轮询间隔。
// 恰好等于 target 仍继续等待：时间锁条件要求严格越过到期点。
func WaitUntilChainTime(t *testing.T, lc client.LedgerClient, target time.Time) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout*4)
	defer cancel()

	for {
		block, err := lc.LatestBlock(ctx)
		require.NoError(t, err, "查询最新区块失败")

		if block.Timestamp().After(target) {
			return
		}

		select {
		case <-ctx.Done():
			t.Fatalf("链上时间未在预算内到达 %s", target.Format(time.RFC3339))
		case <-time.After(TransactionConfirmInterval):
		}
	}
}
