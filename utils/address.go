package utils

import (
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
)

// 地址头字节：高 4 位为凭证类型，低 4 位为网络位
//
// 凭证类型：0110 = 支付密钥哈希，0111 = 脚本哈希（均无质押部分）
// 网络位：0 = 测试网，1 = 主网
const (
	headerKeyTestnet    = 0x60
	headerKeyMainnet    = 0x61
	headerScriptTestnet = 0x70
	headerScriptMainnet = 0x71
)

const (
	hrpMainnet = "addr"
	hrpTestnet = "addr_test"
)

// KeyAddress 由 28 字节支付密钥哈希构造企业地址（bech32 编码）
func KeyAddress(keyHash []byte, mainnet bool) (string, error) {
	header := byte(headerKeyTestnet)
	if mainnet {
		header = headerKeyMainnet
	}
	return encodeAddress(header, keyHash, mainnet)
}

// ScriptAddress 由 28 字节脚本哈希构造脚本地址（bech32 编码）
func ScriptAddress(scriptHash []byte, mainnet bool) (string, error) {
	header := byte(headerScriptTestnet)
	if mainnet {
		header = headerScriptMainnet
	}
	return encodeAddress(header, scriptHash, mainnet)
}

func encodeAddress(header byte, hash []byte, mainnet bool) (string, error) {
	if len(hash) != 28 {
		return "", fmt.Errorf("invalid hash length: expected 28 bytes, got %d", len(hash))
	}

	payload := append([]byte{header}, hash...)

	// bech32 要求 5-bit 分组
	converted, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert bits: %w", err)
	}

	hrp := hrpTestnet
	if mainnet {
		hrp = hrpMainnet
	}

	addr, err := bech32.Encode(hrp, converted)
	if err != nil {
		return "", fmt.Errorf("bech32 encode: %w", err)
	}

	return addr, nil
}

// DecodedAddress 地址解码结果
type DecodedAddress struct {
	// Hash 28 字节凭证哈希
	Hash []byte
	// IsScript 凭证是否为脚本哈希
	IsScript bool
	// Mainnet 是否为主网地址
	Mainnet bool
}

// DecodeAddress 解码 bech32 企业地址
func DecodeAddress(addr string) (*DecodedAddress, error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("bech32 decode: %w", err)
	}

	if hrp != hrpMainnet && hrp != hrpTestnet {
		return nil, fmt.Errorf("unexpected address prefix: %s", hrp)
	}

	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("convert bits: %w", err)
	}

	if len(payload) != 29 {
		return nil, fmt.Errorf("invalid address payload length: expected 29 bytes, got %d", len(payload))
	}

	header := payload[0]
	mainnet := header&0x0f == 1
	if mainnet != (hrp == hrpMainnet) {
		return nil, fmt.Errorf("address prefix %s does not match network bit", hrp)
	}

	var isScript bool
	switch header & 0xf0 {
	case 0x60:
		isScript = false
	case 0x70:
		isScript = true
	default:
		return nil, fmt.Errorf("unsupported address type: 0x%02x", header)
	}

	return &DecodedAddress{
		Hash:     payload[1:],
		IsScript: isScript,
		Mainnet:  mainnet,
	}, nil
}
