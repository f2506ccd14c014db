package script

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/plutusflow/client-sdk-go/utils"
)

// ErrScriptUnavailable 脚本工件不可用（文件缺失、内容非法等）
var ErrScriptUnavailable = errors.New("script artifact unavailable")

// 脚本哈希前缀（脚本语言版本标记）
const scriptHashPrefix = 0x02

// Script 已编译的链上脚本
type Script struct {
	program []byte
	hash    []byte
}

// scriptEnvelope cardano 风格的脚本文件 JSON 封装
type scriptEnvelope struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	CBORHex     string `json:"cborHex"`
}

// Load 从工件文件加载脚本
//
// 支持两种文件格式：
//   - 纯 hex 文本（.plutus 工件）
//   - JSON 封装 {"type":"PlutusScriptV2","cborHex":"..."}
//
// 两种格式的内容都是 CBOR 字节串封装的脚本程序。
func Load(path string) (*Script, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrScriptUnavailable, path, err)
	}

	trimmed := strings.TrimSpace(string(content))

	var hexStr string
	if strings.HasPrefix(trimmed, "{") {
		var envelope scriptEnvelope
		if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
			return nil, fmt.Errorf("%w: parse script envelope: %v", ErrScriptUnavailable, err)
		}
		if !strings.HasPrefix(envelope.Type, "PlutusScriptV2") {
			return nil, fmt.Errorf("%w: unexpected script type %q", ErrScriptUnavailable, envelope.Type)
		}
		hexStr = envelope.CBORHex
	} else {
		hexStr = strings.TrimPrefix(trimmed, "0x")
	}

	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("%w: decode script hex: %v", ErrScriptUnavailable, err)
	}

	return FromCBOR(raw)
}

// FromCBOR 从 CBOR 字节串封装构造脚本
func FromCBOR(raw []byte) (*Script, error) {
	var program []byte
	if err := cbor.Unmarshal(raw, &program); err != nil {
		return nil, fmt.Errorf("%w: script is not a CBOR byte string: %v", ErrScriptUnavailable, err)
	}
	return FromBytes(program)
}

// FromBytes 从脚本程序字节构造脚本
func FromBytes(program []byte) (*Script, error) {
	if len(program) == 0 {
		return nil, fmt.Errorf("%w: empty script program", ErrScriptUnavailable)
	}

	h, err := blake2b.New(28, nil)
	if err != nil {
		return nil, fmt.Errorf("create blake2b hasher: %w", err)
	}
	h.Write([]byte{scriptHashPrefix})
	h.Write(program)

	return &Script{
		program: program,
		hash:    h.Sum(nil),
	}, nil
}

// Bytes 返回脚本程序字节
func (s *Script) Bytes() []byte {
	return s.program
}

// Hash 返回 28 字节脚本哈希
func (s *Script) Hash() []byte {
	return s.hash
}

// HashHex 返回脚本哈希的 hex 表示
func (s *Script) HashHex() string {
	return hex.EncodeToString(s.hash)
}

// CBORHex 返回 CBOR 字节串封装的脚本程序（hex），用于交易草稿携带脚本
func (s *Script) CBORHex() (string, error) {
	wrapped, err := encMode.Marshal(s.program)
	if err != nil {
		return "", fmt.Errorf("wrap script program: %w", err)
	}
	return hex.EncodeToString(wrapped), nil
}

// Address 返回脚本地址
func (s *Script) Address(mainnet bool) (string, error) {
	return utils.ScriptAddress(s.hash, mainnet)
}
