package client

import "time"

// OutPoint UTXO 引用点
type OutPoint struct {
	TxID  string
	Index uint32
}

// UTXO 未花费交易输出
//
// Value 为最小货币单位（lovelace）。InlineDatum 与 ReferenceScript
// 为链上随输出携带的原始 CBOR（hex 编码），不存在时为空字符串。
type UTXO struct {
	OutPoint        OutPoint
	Address         string
	Value           uint64
	InlineDatum     string
	ReferenceScript string
}

// HasInlineDatum 判断输出是否携带内联数据
func (u *UTXO) HasInlineDatum() bool {
	return u != nil && u.InlineDatum != ""
}

// BlockInfo 区块摘要信息
//
// Time 为区块时间戳（秒级 Unix 时间），Slot 为账本槽位。
// 二者来自同一个区块快照，用于推导链上时间与交易有效期。
type BlockInfo struct {
	Hash   string
	Height uint64
	Slot   uint64
	Time   int64
}

// Timestamp 返回区块时间
func (b *BlockInfo) Timestamp() time.Time {
	return time.Unix(b.Time, 0)
}

// VKeyWitness 验证密钥见证（公钥 + 对交易体哈希的签名，均为 hex 编码）
type VKeyWitness struct {
	VKey      string `json:"vkey"`
	Signature string `json:"signature"`
}

// BuildResult 交易草稿构建结果
//
// UnsignedTx 为未签名交易（hex），BodyHash 为待签名的交易体哈希（hex）。
type BuildResult struct {
	UnsignedTx string
	BodyHash   string
}

// TransactionStatus 交易状态
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusUnknown   TransactionStatus = "unknown"
)

// TxOutputInfo 已上链交易的输出
type TxOutputInfo struct {
	Index    uint32
	Address  string
	Value    uint64
	DatumHex string
}

// TransactionInfo 交易信息
type TransactionInfo struct {
	TxHash      string
	Status      TransactionStatus
	BlockHeight *uint64
	Slot        uint64
	Outputs     []TxOutputInfo
	Timestamp   time.Time
}

// SubmitTxResult 交易提交结果
type SubmitTxResult struct {
	TxHash   string
	Accepted bool
	Reason   string
}
