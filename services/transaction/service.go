package transaction

import (
	"context"
	"fmt"
	"strings"

	"github.com/plutusflow/client-sdk-go/client"
	"github.com/plutusflow/client-sdk-go/utils"
)

// Service Transaction 业务服务接口
//
// 面向不经过条件释放流程、直接操作已签名交易的调用方：
// 查询交易、查询状态、提交已签名交易。
type Service interface {
	// GetTransaction 获取交易信息
	GetTransaction(ctx context.Context, txHash string) (*client.TransactionInfo, error)

	// GetTransactions 并发批量获取交易信息（结果顺序与输入一致）
	GetTransactions(ctx context.Context, txHashes []string) ([]*client.TransactionInfo, error)

	// GetStatus 获取交易状态（交易暂不可查时返回 unknown，不是错误）
	GetStatus(ctx context.Context, txHash string) (client.TransactionStatus, error)

	// Submit 提交已签名交易（hex，可带或不带 0x 前缀）
	Submit(ctx context.Context, signedTxHex string) (*client.SubmitTxResult, error)
}

// transactionService Transaction 服务实现
type transactionService struct {
	client client.LedgerClient
}

// NewService 创建 Transaction 服务
func NewService(lc client.LedgerClient) Service {
	return &transactionService{
		client: lc,
	}
}

// GetTransaction 获取交易信息
func (s *transactionService) GetTransaction(ctx context.Context, txHash string) (*client.TransactionInfo, error) {
	if txHash == "" {
		return nil, fmt.Errorf("transaction hash cannot be empty")
	}
	return s.client.GetTransaction(ctx, normalizeTxHash(txHash))
}

// 批量查询的默认并发数
const defaultQueryConcurrency = 5

// GetTransactions 并发批量获取交易信息
func (s *transactionService) GetTransactions(ctx context.Context, txHashes []string) ([]*client.TransactionInfo, error) {
	if len(txHashes) == 0 {
		return nil, nil
	}
	return utils.ParallelExecute(ctx, txHashes,
		func(ctx context.Context, txHash string) (*client.TransactionInfo, error) {
			return s.GetTransaction(ctx, txHash)
		}, defaultQueryConcurrency)
}

// GetStatus 获取交易状态
func (s *transactionService) GetStatus(ctx context.Context, txHash string) (client.TransactionStatus, error) {
	tx, err := s.GetTransaction(ctx, txHash)
	if err != nil {
		return "", err
	}
	if tx == nil {
		return client.TransactionStatusUnknown, nil
	}
	return tx.Status, nil
}

// Submit 提交已签名交易
func (s *transactionService) Submit(ctx context.Context, signedTxHex string) (*client.SubmitTxResult, error) {
	signedTxHex = strings.TrimSpace(signedTxHex)
	if signedTxHex == "" {
		return nil, fmt.Errorf("signed transaction cannot be empty")
	}
	return s.client.SubmitTransaction(ctx, strings.TrimPrefix(signedTxHex, "0x"))
}

// normalizeTxHash 交易哈希统一去掉 0x 前缀
func normalizeTxHash(txHash string) string {
	return strings.TrimPrefix(strings.TrimSpace(txHash), "0x")
}
