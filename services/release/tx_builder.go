package release

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/plutusflow/client-sdk-go/client"
)

// 费用预留：选取资金输入时在锁定金额之上额外预留的额度，
// 实际费用由节点在 ledger_buildTransaction 中结算。
const feeReserve = 2000000

// 交易有效期窗口（槽位数）
const ttlSlack = 1000

// TransactionDraft 交易草稿
//
// 节点的 ledger_buildTransaction 接受草稿，补全费用与找零后
// 返回未签名交易。二进制字段统一使用 0x 前缀 hex。
type TransactionDraft struct {
	ChangeAddress     string             `json:"change_address"`
	Inputs            []DraftInput       `json:"inputs,omitempty"`
	ScriptInputs      []DraftScriptInput `json:"script_inputs,omitempty"`
	Outputs           []DraftOutput      `json:"outputs,omitempty"`
	RequiredSigners   []string           `json:"required_signers,omitempty"`
	ValidityStartSlot uint64             `json:"validity_start_slot,omitempty"`
	TTLSlot           uint64             `json:"ttl_slot,omitempty"`
	Collateral        []DraftInput       `json:"collateral,omitempty"`
}

// DraftInput 普通输入引用
type DraftInput struct {
	TxID  string `json:"tx_id"`
	Index uint32 `json:"index"`
}

// DraftScriptInput 脚本输入引用
//
// Script 与 ScriptRef 二选一：内联携带脚本，或引用链上已发布的脚本输出。
type DraftScriptInput struct {
	TxID      string      `json:"tx_id"`
	Index     uint32      `json:"index"`
	Redeemer  string      `json:"redeemer"`
	Datum     string      `json:"datum,omitempty"`
	Script    string      `json:"script,omitempty"`
	ScriptRef *DraftInput `json:"script_ref,omitempty"`
}

// DraftOutput 交易输出
type DraftOutput struct {
	Address string `json:"address"`
	Value   string `json:"value"`
	Datum   string `json:"datum,omitempty"`
}

// formatValue 金额序列化为十进制字符串（避免 JSON number 精度丢失）
func formatValue(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// selectFundingInputs 选取资金输入
//
// 只使用不携带 datum 与引用脚本的纯币输出，金额从大到小选取，
// 直到覆盖目标金额加费用预留。
func selectFundingInputs(utxos []*client.UTXO, target uint64) ([]DraftInput, error) {
	candidates := make([]*client.UTXO, 0, len(utxos))
	for _, u := range utxos {
		if u.InlineDatum == "" && u.ReferenceScript == "" {
			candidates = append(candidates, u)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Value > candidates[j].Value
	})

	need := target + feeReserve
	var total uint64
	inputs := make([]DraftInput, 0, len(candidates))
	for _, u := range candidates {
		inputs = append(inputs, DraftInput{TxID: u.OutPoint.TxID, Index: u.OutPoint.Index})
		total += u.Value
		if total >= need {
			return inputs, nil
		}
	}

	return nil, fmt.Errorf("%w: need %d, available %d", ErrInsufficientFunds, need, total)
}

// selectCollateral 选取抵押输出
//
// 抵押必须是纯币输出且金额不低于配置的下限。
func selectCollateral(utxos []*client.UTXO, minCollateral uint64) (*DraftInput, error) {
	for _, u := range utxos {
		if u.InlineDatum != "" || u.ReferenceScript != "" {
			continue
		}
		if u.Value >= minCollateral {
			return &DraftInput{TxID: u.OutPoint.TxID, Index: u.OutPoint.Index}, nil
		}
	}
	return nil, fmt.Errorf("%w: no pure output with at least %d", ErrMissingCollateral, minCollateral)
}

// buildLockDraft 构建锁定交易草稿
func buildLockDraft(changeAddress, scriptAddress string, amount uint64, datum []byte, funding []DraftInput) *TransactionDraft {
	return &TransactionDraft{
		ChangeAddress: changeAddress,
		Inputs:        funding,
		Outputs: []DraftOutput{
			{
				Address: scriptAddress,
				Value:   formatValue(amount),
				Datum:   hexutil.Encode(datum),
			},
		},
	}
}

// buildReleaseDraft 构建释放交易草稿
//
// 锁定金额扣除费用后作为找零回到 change_address，因此草稿不带显式输出。
func buildReleaseDraft(
	changeAddress string,
	output *LockedOutput,
	redeemer []byte,
	datum []byte,
	scriptCBOR string,
	scriptRef *client.OutPoint,
	collateral DraftInput,
) *TransactionDraft {
	scriptInput := DraftScriptInput{
		TxID:     output.OutPoint.TxID,
		Index:    output.OutPoint.Index,
		Redeemer: hexutil.Encode(redeemer),
	}
	if len(datum) > 0 {
		scriptInput.Datum = hexutil.Encode(datum)
	}
	if scriptRef != nil {
		scriptInput.ScriptRef = &DraftInput{TxID: scriptRef.TxID, Index: scriptRef.Index}
	} else {
		scriptInput.Script = "0x" + scriptCBOR
	}

	return &TransactionDraft{
		ChangeAddress: changeAddress,
		ScriptInputs:  []DraftScriptInput{scriptInput},
		Collateral:    []DraftInput{collateral},
	}
}
