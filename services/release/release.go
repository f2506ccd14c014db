package release

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"

	"github.com/plutusflow/client-sdk-go/script"
	"github.com/plutusflow/client-sdk-go/utils"
	"github.com/plutusflow/client-sdk-go/wallet"
)

// release 消费锁定输出，将锁定金额释放到收款地址（默认钱包自己的地址）
//
// **流程**:
// 1. 参数验证
// 2. 读取链上时间快照，校验条件可满足性
// 3. 选取抵押输出，按条件类型构造 redeemer
// 4. 构建释放草稿并由节点补全费用
// 5. 签名定稿后提交
//
// 固定值条件：redeemer 携带请求中的见证整数，见证是否正确由
// 脚本在节点侧裁决，错误的见证表现为提交被拒绝。
// 时间锁条件：到期前直接返回 ErrConditionNotYetMet，不发交易；
// 到期后以空构造器为 redeemer，交易声明受益人为必需签名者，
// 有效期起点取当前槽位以便脚本读取链上时间。
func (s *releaseService) release(ctx context.Context, req *ReleaseRequest, wallets ...wallet.Wallet) (*ReleaseResult, error) {
	// 1. 参数验证
	w := s.getWallet(wallets...)
	if err := s.validateReleaseRequest(req, w); err != nil {
		return nil, err
	}
	output := req.Output

	walletAddress, err := utils.KeyAddress(w.KeyHash(), s.mainnet())
	if err != nil {
		return nil, fmt.Errorf("derive wallet address: %w", err)
	}

	// 2. 链上时间快照
	block, err := s.client.LatestBlock(ctx)
	if err != nil {
		return nil, fmt.Errorf("query latest block: %w", err)
	}

	var (
		redeemer          []byte
		requiredSigners   []string
		validityStartSlot uint64
		ttlSlot           uint64
	)
	switch output.Condition.Kind {
	case script.ConditionFixed:
		redeemer, err = script.IntRedeemer(req.Witness)
		if err != nil {
			return nil, fmt.Errorf("encode witness redeemer: %w", err)
		}

	case script.ConditionTimeLocked:
		// 链上时间必须严格越过到期点，相等仍视为未到期
		if blockTimeMillis(block) <= output.Condition.DeadlineMillis {
			return nil, fmt.Errorf("%w: chain time %d not past deadline %d",
				ErrConditionNotYetMet, blockTimeMillis(block), output.Condition.DeadlineMillis)
		}
		if !bytes.Equal(output.Condition.Beneficiary, w.KeyHash()) {
			return nil, fmt.Errorf("%w: condition beneficiary %x, wallet key hash %x",
				ErrNotBeneficiary, output.Condition.Beneficiary, w.KeyHash())
		}
		redeemer, err = script.UnitRedeemer()
		if err != nil {
			return nil, fmt.Errorf("encode redeemer: %w", err)
		}
		requiredSigners = []string{hex.EncodeToString(w.KeyHash())}
		validityStartSlot = block.Slot
		ttlSlot = block.Slot + ttlSlack

	default:
		return nil, fmt.Errorf("unknown condition kind: %s", output.Condition.Kind)
	}

	// 3. 抵押输出
	walletUTXOs, err := s.client.ListUTXOs(ctx, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("list wallet UTXOs: %w", err)
	}
	collateral, err := selectCollateral(walletUTXOs, s.config.MinCollateral)
	if err != nil {
		return nil, err
	}

	// 4. 构建草稿
	scriptCBOR, err := s.script.CBORHex()
	if err != nil {
		return nil, fmt.Errorf("encode script: %w", err)
	}
	datum, err := hex.DecodeString(output.DatumHex)
	if err != nil {
		return nil, fmt.Errorf("decode output datum: %w", err)
	}

	draft := buildReleaseDraft(walletAddress, output, redeemer, datum, scriptCBOR, req.ScriptRef, *collateral)
	draft.RequiredSigners = requiredSigners
	draft.ValidityStartSlot = validityStartSlot
	draft.TTLSlot = ttlSlot

	// 指定了第三方收款地址时，锁定金额完整转给 destination，
	// 手续费改由钱包的资金输入承担
	if req.Destination != "" && req.Destination != walletAddress {
		funding, err := selectFundingInputs(walletUTXOs, 0)
		if err != nil {
			return nil, err
		}
		draft.Inputs = funding
		draft.Outputs = []DraftOutput{
			{
				Address: req.Destination,
				Value:   formatValue(output.Value),
			},
		}
	}

	build, err := s.client.BuildTransaction(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("build release transaction: %w", err)
	}

	// 5. 签名定稿并提交
	signedTx, err := s.signAndFinalize(ctx, build, w)
	if err != nil {
		return nil, err
	}

	submit, err := s.client.SubmitTransaction(ctx, signedTx)
	if err != nil {
		return nil, fmt.Errorf("submit release transaction: %w", err)
	}
	if !submit.Accepted {
		return nil, &SubmissionRejectedError{TxHash: submit.TxHash, Reason: submit.Reason}
	}

	return &ReleaseResult{
		TxHash:  submit.TxHash,
		Amount:  output.Value,
		Success: true,
	}, nil
}

// validateReleaseRequest 校验释放请求
func (s *releaseService) validateReleaseRequest(req *ReleaseRequest, w wallet.Wallet) error {
	if req == nil || req.Output == nil {
		return fmt.Errorf("release request must carry a locked output")
	}
	if w == nil {
		return fmt.Errorf("%w: no wallet provided", wallet.ErrCredentialUnavailable)
	}
	if req.Output.OutPoint.TxID == "" {
		return fmt.Errorf("locked output has no outpoint")
	}
	return req.Output.Condition.Validate()
}
