package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"
)

// Keystore 加密密钥文件结构
//
// 与签名密钥明文文件不同，keystore 用口令加密保存 ed25519 种子，
// Name 为调用方自定义的钱包名（同时作为文件名）。
type Keystore struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	KeyHash string `json:"keyHash"`
	Crypto  Crypto `json:"crypto"`
}

// Crypto 加密信息
type Crypto struct {
	Cipher       string                 `json:"cipher"`
	CipherText   string                 `json:"ciphertext"`
	CipherParams CipherParams           `json:"cipherparams"`
	KDF          string                 `json:"kdf"`
	KDFParams    map[string]interface{} `json:"kdfparams"`
	MAC          string                 `json:"mac"`
}

// CipherParams 加密参数
type CipherParams struct {
	IV string `json:"iv"`
}

const (
	kdfIterations = 262144
	kdfKeyLength  = 32
)

// KeystoreManager Keystore 管理器
type KeystoreManager struct {
	keystoreDir string
}

// NewKeystoreManager 创建 Keystore 管理器
func NewKeystoreManager(keystoreDir string) (*KeystoreManager, error) {
	if err := os.MkdirAll(keystoreDir, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}

	return &KeystoreManager{
		keystoreDir: keystoreDir,
	}, nil
}

// Save 加密保存钱包种子
func (km *KeystoreManager) Save(name string, w Wallet, password string) (string, error) {
	simple, ok := w.(*SimpleWallet)
	if !ok {
		return "", fmt.Errorf("wallet does not expose a seed")
	}
	seed := simple.privateKey.Seed()

	// 1. 生成随机 salt 和 IV
	salt := make([]byte, 32)
	iv := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	// 2. 派生密钥（PBKDF2）
	key := deriveKey(password, salt)

	// 3. 加密种子
	ciphertext, err := encryptAES(key, seed, iv)
	if err != nil {
		return "", fmt.Errorf("encrypt seed: %w", err)
	}

	// 4. 计算 MAC
	mac := computeMAC(key, ciphertext)

	// 5. 构建 Keystore 结构
	keystore := &Keystore{
		Version: 1,
		ID:      generateID(),
		Name:    name,
		KeyHash: hex.EncodeToString(w.KeyHash()),
		Crypto: Crypto{
			Cipher:     "aes-128-ctr",
			CipherText: hex.EncodeToString(ciphertext),
			CipherParams: CipherParams{
				IV: hex.EncodeToString(iv),
			},
			KDF: "pbkdf2",
			KDFParams: map[string]interface{}{
				"c":     kdfIterations,
				"dklen": kdfKeyLength,
				"prf":   "hmac-sha256",
				"salt":  hex.EncodeToString(salt),
			},
			MAC: hex.EncodeToString(mac),
		},
	}

	// 6. 保存到文件
	keystorePath := filepath.Join(km.keystoreDir, fmt.Sprintf("%s.json", name))
	file, err := os.Create(keystorePath)
	if err != nil {
		return "", fmt.Errorf("create keystore file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(keystore); err != nil {
		return "", fmt.Errorf("encode keystore: %w", err)
	}

	return keystorePath, nil
}

// Load 解密加载钱包
func (km *KeystoreManager) Load(name string, password string) (Wallet, error) {
	// 1. 读取 Keystore 文件
	keystorePath := filepath.Join(km.keystoreDir, fmt.Sprintf("%s.json", name))
	data, err := os.ReadFile(keystorePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read keystore file: %v", ErrCredentialUnavailable, err)
	}

	// 2. 解析 Keystore
	var keystore Keystore
	if err := json.Unmarshal(data, &keystore); err != nil {
		return nil, fmt.Errorf("%w: parse keystore: %v", ErrCredentialUnavailable, err)
	}

	// 3. 提取参数
	saltHex, ok := keystore.Crypto.KDFParams["salt"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid salt")
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}

	iv, err := hex.DecodeString(keystore.Crypto.CipherParams.IV)
	if err != nil {
		return nil, fmt.Errorf("decode iv: %w", err)
	}

	ciphertext, err := hex.DecodeString(keystore.Crypto.CipherText)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	// 4. 派生密钥
	key := deriveKey(password, salt)

	// 5. 验证 MAC
	expectedMAC := computeMAC(key, ciphertext)
	actualMAC, err := hex.DecodeString(keystore.Crypto.MAC)
	if err != nil {
		return nil, fmt.Errorf("decode mac: %w", err)
	}
	if subtle.ConstantTimeCompare(expectedMAC, actualMAC) != 1 {
		return nil, fmt.Errorf("invalid password")
	}

	// 6. 解密种子
	seed, err := decryptAES(key, ciphertext, iv)
	if err != nil {
		return nil, fmt.Errorf("decrypt seed: %w", err)
	}

	return NewWalletFromSeed(seed)
}

// deriveKey 派生密钥（PBKDF2）
func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, kdfIterations, kdfKeyLength, sha256.New)
}

// encryptAES AES 加密
func encryptAES(key, plaintext, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:16])
	if err != nil {
		return nil, err
	}

	stream := cipher.NewCTR(block, iv)
	ciphertext := make([]byte, len(plaintext))
	stream.XORKeyStream(ciphertext, plaintext)

	return ciphertext, nil
}

// decryptAES AES 解密
func decryptAES(key, ciphertext, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:16])
	if err != nil {
		return nil, err
	}

	stream := cipher.NewCTR(block, iv)
	plaintext := make([]byte, len(ciphertext))
	stream.XORKeyStream(plaintext, ciphertext)

	return plaintext, nil
}

// computeMAC 计算 MAC
func computeMAC(key, ciphertext []byte) []byte {
	hash := sha256.Sum256(append(key[16:], ciphertext...))
	return hash[:]
}

// generateID 生成 ID
func generateID() string {
	id := make([]byte, 16)
	rand.Read(id)
	return hex.EncodeToString(id)
}
