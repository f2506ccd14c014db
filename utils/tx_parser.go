package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/plutusflow/client-sdk-go/client"
)

// FindOutputByAddress 在交易输出中查找指定地址的第一个输出
//
// **功能**：
// 交易提交后定位业务输出（例如新建的锁定输出），便于提取 outpoint。
func FindOutputByAddress(tx *client.TransactionInfo, address string) (*client.TxOutputInfo, bool) {
	if tx == nil || address == "" {
		return nil, false
	}

	for i := range tx.Outputs {
		if tx.Outputs[i].Address == address {
			return &tx.Outputs[i], true
		}
	}

	return nil, false
}

// FindOutputWithDatum 查找指定地址下携带内联数据的输出
func FindOutputWithDatum(tx *client.TransactionInfo, address string) (*client.TxOutputInfo, bool) {
	if tx == nil || address == "" {
		return nil, false
	}

	for i := range tx.Outputs {
		out := &tx.Outputs[i]
		if out.Address == address && out.DatumHex != "" {
			return out, true
		}
	}

	return nil, false
}

// FormatOutPoint 格式化 outpoint 为 "txHash:index"
func FormatOutPoint(op client.OutPoint) string {
	return fmt.Sprintf("%s:%d", op.TxID, op.Index)
}

// ParseOutPoint 解析 "txHash:index" 格式的 outpoint
func ParseOutPoint(s string) (client.OutPoint, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[0] == "" {
		return client.OutPoint{}, fmt.Errorf("invalid outpoint format: %q", s)
	}

	index, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return client.OutPoint{}, fmt.Errorf("invalid outpoint index: %w", err)
	}

	return client.OutPoint{
		TxID:  parts[0],
		Index: uint32(index),
	}, nil
}
