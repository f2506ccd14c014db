package utils

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// ReadHexFile 读取 hex 编码的文件（脚本工件、交易等）
//
// 文件内容允许带 0x 前缀与首尾空白。
func ReadHexFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file failed: %w", err)
	}

	hexStr := strings.TrimSpace(string(content))
	hexStr = strings.TrimPrefix(hexStr, "0x")

	data, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("decode hex content of %s: %w", path, err)
	}

	return data, nil
}

// WriteHexFile 将字节写为 hex 编码的文件
func WriteHexFile(path string, data []byte) error {
	if err := os.WriteFile(path, []byte(hex.EncodeToString(data)), 0644); err != nil {
		return fmt.Errorf("write file failed: %w", err)
	}
	return nil
}
