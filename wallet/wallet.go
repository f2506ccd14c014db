package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// ErrCredentialUnavailable 签名密钥不可用（文件缺失、格式非法等）
var ErrCredentialUnavailable = errors.New("signing credential unavailable")

// Wallet 钱包接口
type Wallet interface {
	// KeyHash 获取支付密钥哈希（28 字节，blake2b-224(公钥)）
	KeyHash() []byte

	// PublicKey 获取验证公钥
	PublicKey() ed25519.PublicKey

	// Sign 对消息签名（交易体哈希等）
	Sign(msg []byte) ([]byte, error)

	// PrivateKey 获取私钥（谨慎使用）
	PrivateKey() ed25519.PrivateKey
}

// SimpleWallet 简单钱包实现（用于测试和开发）
type SimpleWallet struct {
	privateKey ed25519.PrivateKey
	keyHash    []byte
	createdAt  time.Time
}

// NewWallet 创建新钱包
func NewWallet() (Wallet, error) {
	// 生成 ed25519 密钥对（与链上使用的签名算法保持一致）
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}

	return newSimpleWallet(privateKey)
}

// NewWalletFromSeed 从 32 字节种子创建钱包
func NewWalletFromSeed(seed []byte) (Wallet, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid seed length: expected %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	return newSimpleWallet(ed25519.NewKeyFromSeed(seed))
}

// NewWalletFromSeedHex 从种子的 hex 表示创建钱包
func NewWalletFromSeedHex(seedHex string) (Wallet, error) {
	seedHex = strings.TrimPrefix(seedHex, "0x")

	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	return NewWalletFromSeed(seed)
}

func newSimpleWallet(privateKey ed25519.PrivateKey) (*SimpleWallet, error) {
	keyHash, err := deriveKeyHash(privateKey.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}

	return &SimpleWallet{
		privateKey: privateKey,
		keyHash:    keyHash,
		createdAt:  time.Now(),
	}, nil
}

// KeyHash 获取支付密钥哈希
func (w *SimpleWallet) KeyHash() []byte {
	return w.keyHash
}

// PublicKey 获取验证公钥
func (w *SimpleWallet) PublicKey() ed25519.PublicKey {
	return w.privateKey.Public().(ed25519.PublicKey)
}

// Sign 对消息签名
func (w *SimpleWallet) Sign(msg []byte) ([]byte, error) {
	if len(msg) == 0 {
		return nil, fmt.Errorf("message is empty")
	}
	return ed25519.Sign(w.privateKey, msg), nil
}

// PrivateKey 获取私钥
func (w *SimpleWallet) PrivateKey() ed25519.PrivateKey {
	return w.privateKey
}

// deriveKeyHash 从公钥派生密钥哈希
// 使用 blake2b-224(公钥) 作为 28 字节支付凭证哈希，与链上地址语义保持一致
func deriveKeyHash(publicKey ed25519.PublicKey) ([]byte, error) {
	h, err := blake2b.New(28, nil)
	if err != nil {
		return nil, fmt.Errorf("create blake2b hasher: %w", err)
	}
	h.Write(publicKey)
	return h.Sum(nil), nil
}

// textEnvelope 签名密钥文件格式
//
// cborHex 为 CBOR 字节串封装的 32 字节种子："5820" + seed。
type textEnvelope struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	CBORHex     string `json:"cborHex"`
}

const signingKeyEnvelopeType = "PaymentSigningKeyShelley_ed25519"

// LoadPaymentKey 从签名密钥文件加载钱包
func LoadPaymentKey(path string) (Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read key file %s: %v", ErrCredentialUnavailable, path, err)
	}

	var envelope textEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: parse key file %s: %v", ErrCredentialUnavailable, path, err)
	}

	if envelope.Type != signingKeyEnvelopeType {
		return nil, fmt.Errorf("%w: unexpected key type %q", ErrCredentialUnavailable, envelope.Type)
	}

	seed, err := decodeSeedCBORHex(envelope.CBORHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialUnavailable, err)
	}

	return NewWalletFromSeed(seed)
}

// SavePaymentKey 将钱包种子写入签名密钥文件
func SavePaymentKey(path string, w Wallet) error {
	simple, ok := w.(*SimpleWallet)
	if !ok {
		return fmt.Errorf("wallet does not expose a seed")
	}

	envelope := textEnvelope{
		Type:        signingKeyEnvelopeType,
		Description: "Payment Signing Key",
		CBORHex:     "5820" + hex.EncodeToString(simple.privateKey.Seed()),
	}

	data, err := json.MarshalIndent(&envelope, "", "    ")
	if err != nil {
		return fmt.Errorf("encode key envelope: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}

	return nil
}

// decodeSeedCBORHex 解出 CBOR 字节串封装的种子
func decodeSeedCBORHex(cborHex string) ([]byte, error) {
	raw, err := hex.DecodeString(cborHex)
	if err != nil {
		return nil, fmt.Errorf("decode cborHex: %v", err)
	}

	// 0x58 0x20 = 32 字节定长字节串头
	if len(raw) != 34 || raw[0] != 0x58 || raw[1] != 0x20 {
		return nil, fmt.Errorf("cborHex is not a 32-byte CBOR byte string")
	}

	return raw[2:], nil
}
