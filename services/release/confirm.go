package release

import (
	"context"
	"fmt"
	"time"

	"github.com/plutusflow/client-sdk-go/client"
)

// blockTimeMillis 区块时间换算为毫秒级 Unix 时间
//
// 节点的区块时间戳是秒级的，释放条件的时间点按毫秒记录。
func blockTimeMillis(block *client.BlockInfo) int64 {
	return block.Time * 1000
}

// waitForConfirmation 轮询等待交易上链
//
// 按配置的间隔与次数轮询交易状态：已确认返回 nil，轮询耗尽
// 返回 ErrConfirmationTimeout。交易暂不可查（状态 unknown）
// 不视为失败，继续轮询。
func (s *releaseService) waitForConfirmation(ctx context.Context, txHash string) error {
	if txHash == "" {
		return fmt.Errorf("transaction hash cannot be empty")
	}

	attempts := s.config.ConfirmAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		if i > 0 && s.config.ConfirmInterval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.config.ConfirmInterval):
			}
		}

		tx, err := s.client.GetTransaction(ctx, txHash)
		if err != nil {
			return fmt.Errorf("query transaction %s: %w", txHash, err)
		}
		if tx != nil && tx.Status == client.TransactionStatusConfirmed {
			return nil
		}
	}

	return fmt.Errorf("%w: transaction %s not confirmed after %d attempts",
		ErrConfirmationTimeout, txHash, attempts)
}
