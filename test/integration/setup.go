package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plutusflow/client-sdk-go/client"
	"github.com/plutusflow/client-sdk-go/script"
	"github.com/plutusflow/client-sdk-go/utils"
	"github.com/plutusflow/client-sdk-go/wallet"
)

const (
	// EnvRPCEndpoint 节点 RPC 端点（未设置时跳过集成测试）
	EnvRPCEndpoint = "LEDGER_RPC_ENDPOINT"
	// EnvScriptPath 释放脚本工件路径
	EnvScriptPath = "RELEASE_SCRIPT_PATH"

	// DefaultTimeout 默认超时时间
	DefaultTimeout = 30 * time.Second
	// TransactionConfirmInterval 交易确认轮询间隔
	TransactionConfirmInterval = 2 * time.Second
	// TransactionConfirmAttempts 交易确认轮询次数
	TransactionConfirmAttempts = 30
)

// TestEnv 集成测试环境：客户端、脚本与已充值的测试钱包
type TestEnv struct {
	Ledger client.LedgerClient
	Script *script.Script
	Wallet wallet.Wallet
}

// SetupTestEnv 建立完整的集成测试环境
//
// 创建客户端与随机钱包，通过水龙头充值 200 ADA，并在测试
// 结束时关闭客户端。
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	lc := SetupTestClient(t)
	t.Cleanup(func() { TeardownTestClient(t, lc) })

	scr := LoadTestScript(t)
	w := CreateTestWallet(t)
	FundTestWallet(t, lc, w, 200000000)

	return &TestEnv{
		Ledger: lc,
		Script: scr,
		Wallet: w,
	}
}

// SetupTestClient 创建账本客户端并验证节点可达
//
// **说明**:
// - 端点从 LEDGER_RPC_ENDPOINT 读取，未设置时跳过测试
// - 通过 ledger_latestBlock 验证节点是否运行
func SetupTestClient(t *testing.T) client.LedgerClient {
	t.Helper()

	endpoint := os.Getenv(EnvRPCEndpoint)
	if endpoint == "" {
		t.Skipf("integration tests disabled: %s not set", EnvRPCEndpoint)
	}

	cfg := client.DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.Timeout = int(DefaultTimeout.Seconds())

	lc, err := client.NewLedgerClient(cfg)
	require.NoError(t, err, "创建客户端失败")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = lc.LatestBlock(ctx)
	require.NoError(t, err, "节点未运行: %s", endpoint)

	return lc
}

// TeardownTestClient 清理测试客户端
func TeardownTestClient(t *testing.T, lc client.LedgerClient) {
	t.Helper()
	if lc != nil {
		if err := lc.Close(); err != nil {
			t.Logf("关闭客户端时出现警告: %v", err)
		}
	}
}

// LoadTestScript 加载释放脚本工件
func LoadTestScript(t *testing.T) *script.Script {
	t.Helper()

	path := os.Getenv(EnvScriptPath)
	if path == "" {
		t.Skipf("integration tests disabled: %s not set", EnvScriptPath)
	}

	scr, err := script.Load(path)
	require.NoError(t, err, "加载脚本失败: %s", path)
	return scr
}

// CreateTestWallet 创建随机测试钱包
func CreateTestWallet(t *testing.T) wallet.Wallet {
	t.Helper()

	w, err := wallet.NewWallet()
	require.NoError(t, err, "创建测试钱包失败")
	return w
}

// FundTestWallet 通过 devnet 水龙头为测试钱包充值
//
// **流程**:
// 1. 调用 ledger_requestFunds 请求充值
// 2. 轮询钱包地址的 UTXO，直到余额可用
func FundTestWallet(t *testing.T, lc client.LedgerClient, w wallet.Wallet, amount uint64) {
	t.Helper()

	address := TestWalletAddress(t, w)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	_, err := lc.Call(ctx, "ledger_requestFunds", []interface{}{address, amount})
	require.NoError(t, err, "水龙头充值失败")

	// 等待充值 UTXO 上链
	deadline := time.Now().Add(DefaultTimeout)
	for time.Now().Before(deadline) {
		if GetWalletBalance(t, lc, w) >= amount {
			t.Logf("已为钱包充值: %s (%d lovelace)", address, amount)
			return
		}
		time.Sleep(TransactionConfirmInterval)
	}
	t.Fatalf("水龙头充值未到账: %s", address)
}

// TestWalletAddress 钱包在测试网络上的地址
func TestWalletAddress(t *testing.T, w wallet.Wallet) string {
	t.Helper()

	address, err := utils.KeyAddress(w.KeyHash(), false)
	require.NoError(t, err, "派生钱包地址失败")
	return address
}

// GetWalletBalance 查询钱包地址下纯币输出的总金额
func GetWalletBalance(t *testing.T, lc client.LedgerClient, w wallet.Wallet) uint64 {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	utxos, err := lc.ListUTXOs(ctx, TestWalletAddress(t, w))
	require.NoError(t, err, "查询余额失败")

	var total uint64
	for _, u := range utxos {
		if u.InlineDatum == "" && u.ReferenceScript == "" {
			total += u.Value
		}
	}
	return total
}
