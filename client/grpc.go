package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// grpcClient gRPC 客户端实现
type grpcClient struct {
	conn     *grpc.ClientConn
	endpoint string
}

// NewGRPCClient 创建 gRPC 客户端
func NewGRPCClient(config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	endpoint := config.Endpoint
	// 如果 endpoint 包含 http:// 或 https://，移除协议前缀
	if len(endpoint) >= 7 && endpoint[:7] == "http://" {
		endpoint = endpoint[7:]
	} else if len(endpoint) >= 8 && endpoint[:8] == "https://" {
		endpoint = endpoint[8:]
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// 注意：当前使用 insecure 连接，生产环境应该使用 TLS
	conn, err := grpc.DialContext(ctx, endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial gRPC: %w", err)
	}

	client := &grpcClient{
		conn:     conn,
		endpoint: endpoint,
	}

	return client, nil
}

// Call 调用 JSON-RPC 方法（通过 gRPC）
//
// 注意：当前实现假设节点提供 gRPC 接口，如果节点只提供 JSON-RPC over HTTP，
// 则 gRPC 客户端需要通过 HTTP 适配器实现。
func (c *grpcClient) Call(ctx context.Context, method string, params interface{}) (interface{}, error) {
	// TODO: 对接节点的 gRPC 服务定义（节点侧 proto 尚未发布）
	return nil, fmt.Errorf("gRPC client not fully implemented yet. " +
		"Please use HTTP or WebSocket client, or implement gRPC service interface")
}

// SubmitRawTransaction 提交已签名的原始交易
//
// 传输层失败作为 error 返回，Accepted=false 仅表示节点侧拒绝。
func (c *grpcClient) SubmitRawTransaction(ctx context.Context, signedTxHex string) (*SubmitResult, error) {
	result, err := c.Call(ctx, "ledger_submitTransaction", []interface{}{signedTxHex})
	if err != nil {
		return nil, err
	}

	resultMap, ok := result.(map[string]interface{})
	if !ok {
		return &SubmitResult{
			Accepted: false,
			Reason:   "invalid response format",
		}, nil
	}

	txHash, _ := resultMap["tx_hash"].(string)
	accepted, _ := resultMap["accepted"].(bool)
	reason, _ := resultMap["reason"].(string)

	return &SubmitResult{
		TxHash:   txHash,
		Accepted: accepted,
		Reason:   reason,
	}, nil
}

// Subscribe 订阅事件
func (c *grpcClient) Subscribe(ctx context.Context, filter *EventFilter) (<-chan *Event, error) {
	params := map[string]interface{}{}
	if filter != nil {
		if len(filter.Topics) > 0 {
			params["topics"] = filter.Topics
		}
		if len(filter.Addresses) > 0 {
			params["addresses"] = filter.Addresses
		}
	}

	result, err := c.Call(ctx, "ledger_subscribe", []interface{}{params})
	if err != nil {
		return nil, fmt.Errorf("subscribe failed: %w", err)
	}

	resultMap, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid subscription response")
	}

	subscriptionID, _ := resultMap["subscription"].(string)
	if subscriptionID == "" {
		return nil, fmt.Errorf("missing subscription ID")
	}

	eventCh := make(chan *Event, 100)

	// TODO: 实现 gRPC 流式订阅
	go func() {
		<-ctx.Done()
		close(eventCh)
	}()

	return eventCh, nil
}

// Close 关闭连接
func (c *grpcClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
