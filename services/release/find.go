package release

import (
	"context"
	"fmt"

	"github.com/plutusflow/client-sdk-go/script"
)

// findReleasable 在脚本地址下查找可释放的锁定输出
//
// **流程**:
// 1. 查询脚本地址下的全部 UTXO
// 2. 逐个解码 datum，无法识别的输出计入 Skipped 后跳过
// 3. 应用条件谓词与最小金额过滤，返回第一个匹配项
//
// 没有匹配不是错误：返回 Found=false。扫描过程中顺带记录
// 携带本脚本的引用输出，供释放交易复用。
func (s *releaseService) findReleasable(ctx context.Context, req *FindRequest) (*FindResult, error) {
	if req == nil {
		req = &FindRequest{}
	}

	scriptAddress, err := s.script.Address(s.mainnet())
	if err != nil {
		return nil, fmt.Errorf("derive script address: %w", err)
	}

	// 1. 查询脚本地址 UTXO
	utxos, err := s.client.ListUTXOs(ctx, scriptAddress)
	if err != nil {
		return nil, fmt.Errorf("list script UTXOs: %w", err)
	}

	scriptCBOR, err := s.script.CBORHex()
	if err != nil {
		return nil, fmt.Errorf("encode script: %w", err)
	}

	result := &FindResult{}
	for _, u := range utxos {
		// 引用输出：携带本脚本的 UTXO 是已发布的脚本副本，不是锁定输出；
		// 携带其他脚本的输出与无法识别的 datum 同等对待，计入 Skipped
		if u.ReferenceScript != "" {
			if u.ReferenceScript == scriptCBOR {
				if result.ScriptRef == nil {
					ref := u.OutPoint
					result.ScriptRef = &ref
				}
				continue
			}
			result.Skipped++
			continue
		}

		// 2. 解码 datum
		if !u.HasInlineDatum() {
			result.Skipped++
			continue
		}
		condition, ok := script.TryDecodeConditionHex(u.InlineDatum)
		if !ok {
			result.Skipped++
			continue
		}

		// 3. 过滤
		if result.Found {
			continue
		}
		if req.MinValue > 0 && u.Value < req.MinValue {
			continue
		}
		if req.Matcher != nil && !req.Matcher(condition) {
			continue
		}

		result.Found = true
		result.Output = &LockedOutput{
			OutPoint:  u.OutPoint,
			Address:   u.Address,
			Value:     u.Value,
			DatumHex:  u.InlineDatum,
			Condition: condition,
		}
	}

	return result, nil
}
