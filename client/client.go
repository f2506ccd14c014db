package client

import (
	"context"
	"fmt"
)

// Client 账本客户端传输层接口
type Client interface {
	// Call 调用 JSON-RPC 方法
	Call(ctx context.Context, method string, params interface{}) (interface{}, error)

	// SubmitRawTransaction 提交已签名的原始交易
	SubmitRawTransaction(ctx context.Context, signedTxHex string) (*SubmitResult, error)

	// Subscribe 订阅事件
	Subscribe(ctx context.Context, filter *EventFilter) (<-chan *Event, error)

	// Close 关闭连接
	Close() error
}

// EventFilter 事件过滤器
type EventFilter struct {
	Topics    []string
	Addresses []string
}

// Event 事件
type Event struct {
	Topic string
	Data  []byte
}

// SubmitResult 交易提交结果
type SubmitResult struct {
	TxHash   string `json:"tx_hash"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"` // 拒绝原因
}

// NewClient 创建新的客户端
func NewClient(config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Protocol {
	case ProtocolHTTP:
		return NewHTTPClient(config)
	case ProtocolGRPC:
		return NewGRPCClient(config)
	case ProtocolWebSocket:
		return NewWebSocketClient(config)
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", config.Protocol)
	}
}

// NewHTTPClient 创建 HTTP 客户端（实现在 http.go 中）
// NewGRPCClient 创建 gRPC 客户端（实现在 grpc.go 中）
// NewWebSocketClient 创建 WebSocket 客户端（实现在 websocket.go 中）
