package release

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/plutusflow/client-sdk-go/client"
	"github.com/plutusflow/client-sdk-go/utils"
	"github.com/plutusflow/client-sdk-go/wallet"
)

// lock 锁定金额到脚本地址
//
// **流程**:
// 1. 参数验证
// 2. 查询钱包地址 UTXO，选取资金输入
// 3. 构建锁定草稿并由节点补全费用与找零
// 4. 钱包签名交易体哈希，组装见证后定稿
// 5. 提交交易，定位新建的锁定输出
func (s *releaseService) lock(ctx context.Context, req *LockRequest, wallets ...wallet.Wallet) (*LockResult, error) {
	// 1. 参数验证
	w := s.getWallet(wallets...)
	if err := s.validateLockRequest(req, w); err != nil {
		return nil, err
	}

	datumHex, err := req.Condition.MarshalDatumHex()
	if err != nil {
		return nil, fmt.Errorf("encode condition datum: %w", err)
	}
	datum, _ := hex.DecodeString(datumHex)

	walletAddress, err := utils.KeyAddress(w.KeyHash(), s.mainnet())
	if err != nil {
		return nil, fmt.Errorf("derive wallet address: %w", err)
	}
	scriptAddress, err := s.script.Address(s.mainnet())
	if err != nil {
		return nil, fmt.Errorf("derive script address: %w", err)
	}

	// 2. 选取资金输入
	utxos, err := s.client.ListUTXOs(ctx, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("list wallet UTXOs: %w", err)
	}
	funding, err := selectFundingInputs(utxos, req.Amount)
	if err != nil {
		return nil, err
	}

	// 3. 构建草稿
	draft := buildLockDraft(walletAddress, scriptAddress, req.Amount, datum, funding)
	build, err := s.client.BuildTransaction(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("build lock transaction: %w", err)
	}

	// 4. 签名定稿
	signedTx, err := s.signAndFinalize(ctx, build, w)
	if err != nil {
		return nil, err
	}

	// 5. 提交并定位锁定输出
	submit, err := s.client.SubmitTransaction(ctx, signedTx)
	if err != nil {
		return nil, fmt.Errorf("submit lock transaction: %w", err)
	}
	if !submit.Accepted {
		return nil, &SubmissionRejectedError{TxHash: submit.TxHash, Reason: submit.Reason}
	}

	output := s.locateLockedOutput(ctx, submit.TxHash, scriptAddress, req, datumHex)

	return &LockResult{
		TxHash:  submit.TxHash,
		Output:  output,
		Success: true,
	}, nil
}

// validateLockRequest 校验锁定请求
func (s *releaseService) validateLockRequest(req *LockRequest, w wallet.Wallet) error {
	if req == nil {
		return fmt.Errorf("lock request cannot be nil")
	}
	if w == nil {
		return fmt.Errorf("%w: no wallet provided", wallet.ErrCredentialUnavailable)
	}
	if req.Amount == 0 {
		return fmt.Errorf("lock amount must be positive")
	}
	if err := req.Condition.Validate(); err != nil {
		return fmt.Errorf("invalid release condition: %w", err)
	}
	return nil
}

// signAndFinalize 钱包签名交易体哈希并定稿
func (s *releaseService) signAndFinalize(ctx context.Context, build *client.BuildResult, w wallet.Wallet) (string, error) {
	bodyHash, err := hex.DecodeString(build.BodyHash)
	if err != nil {
		return "", fmt.Errorf("decode transaction body hash: %w", err)
	}

	signature, err := w.Sign(bodyHash)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	witness := client.VKeyWitness{
		VKey:      hex.EncodeToString(w.PublicKey()),
		Signature: hex.EncodeToString(signature),
	}

	signedTx, err := s.client.FinalizeTransaction(ctx, build.UnsignedTx, []client.VKeyWitness{witness})
	if err != nil {
		return "", fmt.Errorf("finalize transaction: %w", err)
	}
	return signedTx, nil
}

// locateLockedOutput 在已提交交易中定位脚本地址上的锁定输出
//
// 交易尚未可查时退化为 {txHash, 0}：锁定草稿的脚本输出始终排在首位。
func (s *releaseService) locateLockedOutput(ctx context.Context, txHash, scriptAddress string, req *LockRequest, datumHex string) *LockedOutput {
	output := &LockedOutput{
		OutPoint:  client.OutPoint{TxID: txHash, Index: 0},
		Address:   scriptAddress,
		Value:     req.Amount,
		DatumHex:  datumHex,
		Condition: req.Condition,
	}

	tx, err := s.client.GetTransaction(ctx, txHash)
	if err != nil || tx == nil {
		return output
	}
	if found, ok := utils.FindOutputWithDatum(tx, scriptAddress); ok {
		output.OutPoint.Index = found.Index
		output.Value = found.Value
		if found.DatumHex != "" {
			output.DatumHex = found.DatumHex
		}
	}
	return output
}
