package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/plutusflow/client-sdk-go/client"
)

// ErrConfigurationMissing 必需的运行配置缺失
var ErrConfigurationMissing = errors.New("required configuration missing")

// Config 统一的业务服务配置结构
//
// **设计目的**：
// - 避免在各个 service 内部硬编码脚本路径 / 网络参数
// - 业务配置由 SDK 使用方提供，协议层只关心输入输出
type Config struct {
	// ScriptPath 释放脚本工件路径（.plutus）
	ScriptPath string

	// Network 目标网络
	Network client.Network

	// ConfirmInterval 确认轮询间隔
	ConfirmInterval time.Duration

	// ConfirmAttempts 确认轮询最大次数
	ConfirmAttempts int

	// MinCollateral 脚本消费交易的最小抵押输出金额
	MinCollateral uint64
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Network:         client.NetworkPreprod,
		ConfirmInterval: 5 * time.Second,
		ConfirmAttempts: 24,
		MinCollateral:   5000000,
	}
}

// 环境变量名
const (
	EnvPaymentKeyPath = "PAYMENT_KEY_PATH"
	EnvProjectID      = "LEDGER_PROJECT_ID"
	EnvNetwork        = "LEDGER_NETWORK"
)

// EnvConfig 从环境读取的运行配置
type EnvConfig struct {
	// PaymentKeyPath 支付签名密钥文件路径
	PaymentKeyPath string

	// ProjectID 索引服务的项目凭证
	ProjectID string

	// Network 目标网络
	Network client.Network
}

// ConfigFromEnv 从环境变量加载运行配置
//
// 三个变量都是必填项，任一缺失即返回 ErrConfigurationMissing，
// 启动阶段失败好过运行到一半才发现配置不全。
func ConfigFromEnv() (*EnvConfig, error) {
	keyPath := os.Getenv(EnvPaymentKeyPath)
	if keyPath == "" {
		return nil, fmt.Errorf("%w: %s", ErrConfigurationMissing, EnvPaymentKeyPath)
	}

	projectID := os.Getenv(EnvProjectID)
	if projectID == "" {
		return nil, fmt.Errorf("%w: %s", ErrConfigurationMissing, EnvProjectID)
	}

	networkStr := os.Getenv(EnvNetwork)
	if networkStr == "" {
		return nil, fmt.Errorf("%w: %s", ErrConfigurationMissing, EnvNetwork)
	}

	network := client.Network(networkStr)
	if !network.Valid() {
		return nil, fmt.Errorf("%w: %s has invalid value %q", ErrConfigurationMissing, EnvNetwork, networkStr)
	}

	return &EnvConfig{
		PaymentKeyPath: keyPath,
		ProjectID:      projectID,
		Network:        network,
	}, nil
}
