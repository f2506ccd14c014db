package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LedgerClient 账本客户端接口
// 提供类型化的 RPC 封装，避免直接使用 Call(method, params)
type LedgerClient interface {
	// UTXO 操作（以地址为中心）
	// ListUTXOs 按地址查询该地址下的所有 UTXO 列表
	ListUTXOs(ctx context.Context, address string) ([]*UTXO, error)

	// 链上时间基准（最新区块的槽位与时间戳）
	LatestBlock(ctx context.Context) (*BlockInfo, error)

	// 交易构建与提交
	BuildTransaction(ctx context.Context, draft interface{}) (*BuildResult, error)
	FinalizeTransaction(ctx context.Context, unsignedTx string, witnesses []VKeyWitness) (string, error)
	SubmitTransaction(ctx context.Context, signedTxHex string) (*SubmitTxResult, error)

	// 交易查询
	GetTransaction(ctx context.Context, txHash string) (*TransactionInfo, error)

	// 底层通道（不推荐上层直接使用）
	Call(ctx context.Context, method string, params interface{}) (interface{}, error)

	// 连接管理
	Close() error
}

// ledgerClientImpl LedgerClient 实现类
type ledgerClientImpl struct {
	client Client
}

// NewLedgerClient 创建 LedgerClient 实例
func NewLedgerClient(config *Config) (LedgerClient, error) {
	client, err := NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &ledgerClientImpl{client: client}, nil
}

// NewLedgerClientFromClient 从现有 Client 创建 LedgerClient
func NewLedgerClientFromClient(client Client) LedgerClient {
	return &ledgerClientImpl{client: client}
}

// ListUTXOs 按地址查询该地址下的所有 UTXO 列表
// 这是节点 API ledger_getUTXOs 的原生用法，直接匹配节点 API 设计
func (c *ledgerClientImpl) ListUTXOs(ctx context.Context, address string) ([]*UTXO, error) {
	if address == "" {
		return nil, &LedgerClientError{
			Code:    LedgerErrCodeInvalidParams,
			Message: "address is required",
		}
	}

	raw, err := c.client.Call(ctx, "ledger_getUTXOs", []interface{}{address})
	if err != nil {
		return nil, wrapRPCError("ledger_getUTXOs", err)
	}

	utxoMap, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &LedgerClientError{
			Code:    LedgerErrCodeDecodeFailed,
			Message: "invalid UTXO response format: expected map",
		}
	}

	utxosArray, ok := utxoMap["utxos"].([]interface{})
	if !ok {
		return nil, &LedgerClientError{
			Code:    LedgerErrCodeDecodeFailed,
			Message: "invalid UTXOs format: expected array",
		}
	}

	utxos := make([]*UTXO, 0, len(utxosArray))
	for _, item := range utxosArray {
		utxo, err := decodeUTXO(item)
		if err != nil {
			// 跳过无法解码的 UTXO，继续处理其他条目
			continue
		}
		if utxo != nil {
			utxos = append(utxos, utxo)
		}
	}

	return utxos, nil
}

// LatestBlock 查询最新区块摘要
func (c *ledgerClientImpl) LatestBlock(ctx context.Context) (*BlockInfo, error) {
	raw, err := c.client.Call(ctx, "ledger_latestBlock", nil)
	if err != nil {
		return nil, wrapRPCError("ledger_latestBlock", err)
	}

	blockMap, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &LedgerClientError{
			Code:    LedgerErrCodeDecodeFailed,
			Message: "invalid block response format",
		}
	}

	return decodeBlockInfo(blockMap)
}

// BuildTransaction 提交交易草稿，由节点补全费用与平衡并返回未签名交易
func (c *ledgerClientImpl) BuildTransaction(ctx context.Context, draft interface{}) (*BuildResult, error) {
	if draft == nil {
		return nil, &LedgerClientError{
			Code:    LedgerErrCodeInvalidParams,
			Message: "transaction draft is required",
		}
	}

	raw, err := c.client.Call(ctx, "ledger_buildTransaction", []interface{}{draft})
	if err != nil {
		return nil, wrapRPCError("ledger_buildTransaction", err)
	}

	resultMap, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &LedgerClientError{
			Code:    LedgerErrCodeDecodeFailed,
			Message: "invalid build result format",
		}
	}

	unsignedTx, _ := resultMap["unsigned_tx"].(string)
	bodyHash, _ := resultMap["body_hash"].(string)
	if unsignedTx == "" || bodyHash == "" {
		return nil, &LedgerClientError{
			Code:    LedgerErrCodeDecodeFailed,
			Message: "build result missing unsigned_tx or body_hash",
		}
	}

	return &BuildResult{
		UnsignedTx: unsignedTx,
		BodyHash:   bodyHash,
	}, nil
}

// FinalizeTransaction 将见证附加到未签名交易，返回可提交的已签名交易（hex）
func (c *ledgerClientImpl) FinalizeTransaction(ctx context.Context, unsignedTx string, witnesses []VKeyWitness) (string, error) {
	if unsignedTx == "" {
		return "", &LedgerClientError{
			Code:    LedgerErrCodeInvalidParams,
			Message: "unsigned transaction is required",
		}
	}
	if len(witnesses) == 0 {
		return "", &LedgerClientError{
			Code:    LedgerErrCodeInvalidParams,
			Message: "at least one witness is required",
		}
	}

	params := []interface{}{
		map[string]interface{}{
			"unsigned_tx": unsignedTx,
			"witnesses":   witnesses,
		},
	}

	raw, err := c.client.Call(ctx, "ledger_finalizeTransaction", params)
	if err != nil {
		return "", wrapRPCError("ledger_finalizeTransaction", err)
	}

	resultMap, ok := raw.(map[string]interface{})
	if !ok {
		// 节点也可能直接返回交易 hex 字符串
		if txHex, ok := raw.(string); ok && txHex != "" {
			return txHex, nil
		}
		return "", &LedgerClientError{
			Code:    LedgerErrCodeDecodeFailed,
			Message: "invalid finalize result format",
		}
	}

	txHex, _ := resultMap["tx"].(string)
	if txHex == "" {
		return "", &LedgerClientError{
			Code:    LedgerErrCodeDecodeFailed,
			Message: "finalize result missing tx",
		}
	}

	return txHex, nil
}

// SubmitTransaction 提交已签名交易
func (c *ledgerClientImpl) SubmitTransaction(ctx context.Context, signedTxHex string) (*SubmitTxResult, error) {
	if signedTxHex == "" {
		return nil, &LedgerClientError{
			Code:    LedgerErrCodeInvalidParams,
			Message: "signed transaction hex is required",
		}
	}

	result, err := c.client.SubmitRawTransaction(ctx, signedTxHex)
	if err != nil {
		return nil, wrapRPCError("ledger_submitTransaction", err)
	}

	return &SubmitTxResult{
		TxHash:   result.TxHash,
		Accepted: result.Accepted,
		Reason:   result.Reason,
	}, nil
}

// GetTransaction 查询交易
//
// 交易尚未上链（或不存在）时返回 Status=unknown 而不是错误，
// 由调用方根据轮询策略决定是否继续等待。
func (c *ledgerClientImpl) GetTransaction(ctx context.Context, txHash string) (*TransactionInfo, error) {
	if txHash == "" {
		return nil, &LedgerClientError{
			Code:    LedgerErrCodeInvalidParams,
			Message: "transaction hash is required",
		}
	}

	raw, err := c.client.Call(ctx, "ledger_getTransaction", []interface{}{txHash})
	if err != nil {
		return nil, wrapRPCError("ledger_getTransaction", err)
	}

	if raw == nil {
		return &TransactionInfo{
			TxHash: txHash,
			Status: TransactionStatusUnknown,
		}, nil
	}

	txMap, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &LedgerClientError{
			Code:    LedgerErrCodeDecodeFailed,
			Message: "invalid transaction response format",
		}
	}

	tx, err := decodeTransactionInfo(txMap)
	if err != nil {
		return nil, &LedgerClientError{
			Code:    LedgerErrCodeDecodeFailed,
			Message: fmt.Sprintf("decode transaction info failed: %v", err),
			Cause:   err,
		}
	}

	return tx, nil
}

// Call 底层 RPC 调用
func (c *ledgerClientImpl) Call(ctx context.Context, method string, params interface{}) (interface{}, error) {
	return c.client.Call(ctx, method, params)
}

// Close 关闭连接
func (c *ledgerClientImpl) Close() error {
	return c.client.Close()
}

// ========== 解码函数 ==========

// decodeUTXO 解码 UTXO
func decodeUTXO(raw interface{}) (*UTXO, error) {
	if raw == nil {
		return nil, fmt.Errorf("raw UTXO is nil")
	}

	rawMap, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid UTXO format: expected map")
	}

	var outPoint OutPoint
	if txID, ok := rawMap["tx_id"].(string); ok {
		outPoint.TxID = txID
	} else if txID, ok := rawMap["txId"].(string); ok {
		outPoint.TxID = txID
	}
	if outPoint.TxID == "" {
		return nil, fmt.Errorf("UTXO missing tx_id")
	}

	if idx, ok := rawMap["index"].(float64); ok {
		outPoint.Index = uint32(idx)
	} else if idxStr, ok := rawMap["index"].(string); ok {
		parsed, err := strconv.ParseUint(idxStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid UTXO index: %w", err)
		}
		outPoint.Index = uint32(parsed)
	}

	address, _ := rawMap["address"].(string)
	if address == "" {
		return nil, fmt.Errorf("UTXO missing address")
	}

	value, err := decodeValue(rawMap["value"])
	if err != nil {
		return nil, fmt.Errorf("invalid UTXO value: %w", err)
	}

	inlineDatum, _ := rawMap["inline_datum"].(string)
	referenceScript, _ := rawMap["reference_script"].(string)

	return &UTXO{
		OutPoint:        outPoint,
		Address:         address,
		Value:           value,
		InlineDatum:     strings.TrimPrefix(inlineDatum, "0x"),
		ReferenceScript: strings.TrimPrefix(referenceScript, "0x"),
	}, nil
}

// decodeValue 解码货币数量
//
// 节点以十进制字符串返回，避免 JSON number 的精度丢失；
// 为兼容旧版本节点也接受 number 形式。
func decodeValue(raw interface{}) (uint64, error) {
	switch v := raw.(type) {
	case string:
		return strconv.ParseUint(v, 10, 64)
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("negative value: %v", v)
		}
		return uint64(v), nil
	case nil:
		return 0, fmt.Errorf("value is missing")
	default:
		return 0, fmt.Errorf("unsupported value type: %T", raw)
	}
}

// decodeBlockInfo 解码区块摘要
func decodeBlockInfo(blockMap map[string]interface{}) (*BlockInfo, error) {
	block := &BlockInfo{}

	if hash, ok := blockMap["hash"].(string); ok {
		block.Hash = hash
	}

	if h, ok := blockMap["height"].(float64); ok {
		block.Height = uint64(h)
	} else if hStr, ok := blockMap["height"].(string); ok {
		if parsed, err := strconv.ParseUint(hStr, 10, 64); err == nil {
			block.Height = parsed
		}
	}

	if s, ok := blockMap["slot"].(float64); ok {
		block.Slot = uint64(s)
	} else if sStr, ok := blockMap["slot"].(string); ok {
		if parsed, err := strconv.ParseUint(sStr, 10, 64); err == nil {
			block.Slot = parsed
		}
	}

	if t, ok := blockMap["time"].(float64); ok {
		block.Time = int64(t)
	} else if tStr, ok := blockMap["time"].(string); ok {
		if parsed, err := strconv.ParseInt(tStr, 10, 64); err == nil {
			block.Time = parsed
		}
	}

	if block.Hash == "" || block.Time == 0 {
		return nil, &LedgerClientError{
			Code:    LedgerErrCodeDecodeFailed,
			Message: "block response missing hash or time",
		}
	}

	return block, nil
}

// decodeTransactionInfo 解码交易信息
func decodeTransactionInfo(txMap map[string]interface{}) (*TransactionInfo, error) {
	tx := &TransactionInfo{}

	if hash, ok := txMap["tx_hash"].(string); ok {
		tx.TxHash = hash
	} else if hash, ok := txMap["hash"].(string); ok {
		tx.TxHash = hash
	}
	if tx.TxHash == "" {
		return nil, fmt.Errorf("transaction missing tx_hash")
	}

	if bh, ok := txMap["block_height"].(float64); ok {
		h := uint64(bh)
		tx.BlockHeight = &h
	}

	if slot, ok := txMap["slot"].(float64); ok {
		tx.Slot = uint64(slot)
	}

	// 状态优先取节点返回值，缺省时根据是否入块推断
	if statusStr, ok := txMap["status"].(string); ok {
		tx.Status = mapTransactionStatus(statusStr)
	} else if tx.BlockHeight != nil && *tx.BlockHeight > 0 {
		tx.Status = TransactionStatusConfirmed
	} else {
		tx.Status = TransactionStatusPending
	}

	if ts, ok := txMap["timestamp"].(float64); ok {
		tx.Timestamp = time.Unix(int64(ts), 0)
	}

	if outputsArray, ok := txMap["outputs"].([]interface{}); ok {
		for i, item := range outputsArray {
			outMap, ok := item.(map[string]interface{})
			if !ok {
				continue
			}

			out := TxOutputInfo{Index: uint32(i)}
			if idx, ok := outMap["index"].(float64); ok {
				out.Index = uint32(idx)
			}
			if addr, ok := outMap["address"].(string); ok {
				out.Address = addr
			}
			if value, err := decodeValue(outMap["value"]); err == nil {
				out.Value = value
			}
			if datum, ok := outMap["inline_datum"].(string); ok {
				out.DatumHex = strings.TrimPrefix(datum, "0x")
			}

			tx.Outputs = append(tx.Outputs, out)
		}
	}

	return tx, nil
}

// mapTransactionStatus 映射交易状态
func mapTransactionStatus(status string) TransactionStatus {
	switch strings.ToLower(status) {
	case "confirmed", "success", "in_ledger":
		return TransactionStatusConfirmed
	case "pending", "in_mempool":
		return TransactionStatusPending
	default:
		return TransactionStatusUnknown
	}
}
