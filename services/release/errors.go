package release

import (
	"errors"
	"fmt"
)

// ErrInsufficientFunds 钱包可用余额不足以支付锁定金额与手续费
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrConditionNotYetMet 链上时间尚未到达释放条件的时间点
var ErrConditionNotYetMet = errors.New("release condition not yet satisfiable")

// ErrNotBeneficiary 签名钱包不是时间锁条件记录的受益人
var ErrNotBeneficiary = errors.New("wallet is not the beneficiary")

// ErrMissingCollateral 钱包没有可用作抵押的纯币输出
var ErrMissingCollateral = errors.New("no collateral output available")

// ErrConfirmationTimeout 确认轮询在预算内未观察到交易上链
var ErrConfirmationTimeout = errors.New("confirmation polling exhausted")

// SubmissionRejectedError 节点拒绝已签名交易
//
// Reason 携带节点侧的拒绝原因（脚本校验失败、价值不守恒等），
// 原样透传给调用方。
type SubmissionRejectedError struct {
	TxHash string
	Reason string
}

func (e *SubmissionRejectedError) Error() string {
	if e.TxHash != "" {
		return fmt.Sprintf("transaction %s rejected: %s", e.TxHash, e.Reason)
	}
	return fmt.Sprintf("transaction rejected: %s", e.Reason)
}
