package release

import (
	"bytes"
	"context"

	"github.com/plutusflow/client-sdk-go/client"
	"github.com/plutusflow/client-sdk-go/script"
	"github.com/plutusflow/client-sdk-go/services"
	"github.com/plutusflow/client-sdk-go/wallet"
)

// Service 条件释放业务服务接口
//
// 业务语义在 SDK 层实现：锁定、发现与释放都通过查询 UTXO、
// 构建交易草稿完成，不需要节点提供专用 API。
type Service interface {
	// Lock 将金额锁定到释放脚本地址，条件以 datum 随输出上链
	Lock(ctx context.Context, req *LockRequest, wallets ...wallet.Wallet) (*LockResult, error)

	// FindReleasable 在脚本地址下查找第一个可识别且匹配的锁定输出
	FindReleasable(ctx context.Context, req *FindRequest) (*FindResult, error)

	// Release 消费锁定输出，将锁定金额释放到钱包地址
	Release(ctx context.Context, req *ReleaseRequest, wallets ...wallet.Wallet) (*ReleaseResult, error)

	// WaitForConfirmation 轮询等待交易上链
	WaitForConfirmation(ctx context.Context, txHash string) error
}

// releaseService 条件释放服务实现
type releaseService struct {
	client client.LedgerClient
	script *script.Script
	config *services.Config
	wallet wallet.Wallet // 可选：默认 Wallet
}

// NewService 创建条件释放服务（默认配置，不带 Wallet）
func NewService(lc client.LedgerClient, scr *script.Script) Service {
	return &releaseService{
		client: lc,
		script: scr,
		config: services.DefaultConfig(),
	}
}

// NewServiceWithConfig 创建带配置与默认 Wallet 的条件释放服务
func NewServiceWithConfig(lc client.LedgerClient, scr *script.Script, cfg *services.Config, w wallet.Wallet) Service {
	if cfg == nil {
		cfg = services.DefaultConfig()
	}
	return &releaseService{
		client: lc,
		script: scr,
		config: cfg,
		wallet: w,
	}
}

// getWallet 获取 Wallet（优先使用参数，其次使用默认 Wallet）
func (s *releaseService) getWallet(wallets ...wallet.Wallet) wallet.Wallet {
	if len(wallets) > 0 && wallets[0] != nil {
		return wallets[0]
	}
	return s.wallet
}

// mainnet 当前配置是否指向主网
func (s *releaseService) mainnet() bool {
	return s.config.Network.IsMainnet()
}

// LockedOutput 脚本地址下的锁定输出
type LockedOutput struct {
	OutPoint  client.OutPoint
	Address   string
	Value     uint64
	DatumHex  string
	Condition script.Condition
}

// LockRequest 锁定请求
type LockRequest struct {
	// Amount 锁定金额（最小货币单位）
	Amount uint64
	// Condition 释放条件
	Condition script.Condition
}

// LockResult 锁定结果
type LockResult struct {
	TxHash  string
	Output  *LockedOutput // 新建的锁定输出
	Success bool
}

// Matcher 锁定输出条件谓词
type Matcher func(script.Condition) bool

// MatchFixed 匹配记录了指定整数的固定值条件
func MatchFixed(value int64) Matcher {
	return func(c script.Condition) bool {
		return c.Kind == script.ConditionFixed && c.FixedValue == value
	}
}

// MatchBeneficiary 匹配指定受益人的时间锁条件
func MatchBeneficiary(keyHash []byte) Matcher {
	return func(c script.Condition) bool {
		return c.Kind == script.ConditionTimeLocked && bytes.Equal(c.Beneficiary, keyHash)
	}
}

// FindRequest 查找请求
type FindRequest struct {
	// Matcher 条件谓词（nil 表示任意可识别条件）
	Matcher Matcher
	// MinValue 最小金额过滤（0 表示不过滤）
	MinValue uint64
}

// FindResult 查找结果
//
// 没有匹配的输出不是错误：Found=false，由调用方决定后续动作。
type FindResult struct {
	Found  bool
	Output *LockedOutput
	// ScriptRef 脚本地址下携带本脚本的引用输出（如果存在）
	ScriptRef *client.OutPoint
	// Skipped 因 datum 无法识别而跳过的输出数量
	Skipped int
}

// ReleaseRequest 释放请求
type ReleaseRequest struct {
	// Output 要消费的锁定输出（通常来自 FindReleasable）
	Output *LockedOutput
	// Witness 固定值条件的见证整数（时间锁条件忽略此字段）
	Witness int64
	// Destination 接收锁定金额的地址（为空时释放到钱包自己的地址）
	Destination string
	// ScriptRef 携带脚本的引用输出；为 nil 时在交易中内联脚本
	ScriptRef *client.OutPoint
}

// ReleaseResult 释放结果
type ReleaseResult struct {
	TxHash  string
	Amount  uint64
	Success bool
}

// Lock 锁定（实现在 lock.go）
func (s *releaseService) Lock(ctx context.Context, req *LockRequest, wallets ...wallet.Wallet) (*LockResult, error) {
	return s.lock(ctx, req, wallets...)
}

// FindReleasable 查找（实现在 find.go）
func (s *releaseService) FindReleasable(ctx context.Context, req *FindRequest) (*FindResult, error) {
	return s.findReleasable(ctx, req)
}

// Release 释放（实现在 release.go）
func (s *releaseService) Release(ctx context.Context, req *ReleaseRequest, wallets ...wallet.Wallet) (*ReleaseResult, error) {
	return s.release(ctx, req, wallets...)
}

// WaitForConfirmation 等待确认（实现在 confirm.go）
func (s *releaseService) WaitForConfirmation(ctx context.Context, txHash string) error {
	return s.waitForConfirmation(ctx, txHash)
}
