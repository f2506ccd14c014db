package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/plutusflow/client-sdk-go/types"
)

// httpClient HTTP客户端实现
type httpClient struct {
	endpoint  string
	projectID string
	client    *http.Client
	logger    Logger
	debug     bool
	nextID    atomic.Uint64
	retry     *RetryConfig
}

// NewHTTPClient 创建HTTP客户端
func NewHTTPClient(config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	httpCli := &http.Client{
		Timeout: time.Duration(config.Timeout) * time.Second,
	}

	retryConfig := config.Retry
	if retryConfig == nil {
		retryConfig = DefaultRetryConfig()
		// 如果配置了重试，添加日志回调
		if config.Debug && config.Logger != nil {
			retryConfig.OnRetry = func(attempt int, err error) {
				config.Logger.Warn("Retrying request", "attempt", attempt, "error", err)
			}
		}
	}

	return &httpClient{
		endpoint:  config.Endpoint,
		projectID: config.ProjectID,
		client:    httpCli,
		logger:    config.Logger,
		debug:     config.Debug,
		nextID:    atomic.Uint64{},
		retry:     retryConfig,
	}, nil
}

// Call 调用JSON-RPC方法
func (c *httpClient) Call(ctx context.Context, method string, params interface{}) (interface{}, error) {
	// 使用原子计数器生成唯一ID
	req := &jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("JSON-RPC request", "method", method, "body", string(reqBody))
	}

	// 发送请求（带重试）
	var resp *http.Response
	respErr := withRetry(ctx, func() error {
		// 每次重试都创建新的请求（因为 Body 只能读取一次）
		httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
		if reqErr != nil {
			return fmt.Errorf("create request failed: %w", reqErr)
		}

		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/json")
		// 索引服务的项目凭证
		if c.projectID != "" {
			httpReq.Header.Set("project_id", c.projectID)
		}

		httpResp, reqErr := c.client.Do(httpReq)
		if reqErr != nil {
			return reqErr
		}

		// 可重试的 HTTP 状态码直接进入下一轮
		if isRetryableHTTPError(httpResp.StatusCode) {
			httpResp.Body.Close()
			return fmt.Errorf("HTTP error: %d", httpResp.StatusCode)
		}

		resp = httpResp
		return nil
	}, c.retry)
	if respErr != nil {
		return nil, fmt.Errorf("send request failed: %w", respErr)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			if c.logger != nil {
				c.logger.Warn("Failed to close response body", "error", err)
			}
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("JSON-RPC response", "status", resp.StatusCode, "body", string(respBody))
	}

	// 非 200 响应可能携带 Problem Details
	if resp.StatusCode != http.StatusOK {
		if ledgerErr := parseHTTPProblemDetails(resp.Header.Get("Content-Type"), respBody); ledgerErr != nil {
			return nil, ledgerErr
		}
		return nil, fmt.Errorf("HTTP error: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var jsonResp jsonRPCResponse
	if err := json.Unmarshal(respBody, &jsonResp); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	// JSON-RPC 错误优先映射为结构化的 LedgerError
	if jsonResp.Error != nil {
		errMap := map[string]interface{}{
			"code":    float64(jsonResp.Error.Code),
			"message": jsonResp.Error.Message,
			"data":    jsonResp.Error.Data,
		}
		if pd, perr := types.ParseProblemDetailsFromRPCError(errMap); perr == nil {
			return nil, types.NewLedgerErrorFromProblemDetails(pd)
		}
		return nil, fmt.Errorf("JSON-RPC error: code=%d, message=%s, data=%v",
			jsonResp.Error.Code, jsonResp.Error.Message, jsonResp.Error.Data)
	}

	return jsonResp.Result, nil
}

// parseHTTPProblemDetails 从 HTTP 错误响应体解析 Problem Details
func parseHTTPProblemDetails(contentType string, body []byte) *types.LedgerError {
	if contentType != "application/problem+json" && contentType != "application/json" {
		return nil
	}

	var pd types.ProblemDetails
	if err := json.Unmarshal(body, &pd); err != nil {
		return nil
	}
	if pd.Code == "" || pd.Layer == "" || pd.UserMessage == "" || pd.TraceID == "" {
		return nil
	}
	return types.NewLedgerErrorFromProblemDetails(&pd)
}

// SubmitRawTransaction 提交已签名的原始交易
//
// 传输层失败（网络错误、超时等）作为 error 返回；Accepted=false
// 只表示节点确实收到并拒绝了这笔交易。
func (c *httpClient) SubmitRawTransaction(ctx context.Context, signedTxHex string) (*SubmitResult, error) {
	result, err := c.Call(ctx, "ledger_submitTransaction", []interface{}{signedTxHex})
	if err != nil {
		return nil, err
	}

	resultMap, ok := result.(map[string]interface{})
	if !ok {
		// 如果结果是字符串，可能是交易哈希
		if txHash, ok := result.(string); ok {
			return &SubmitResult{
				TxHash:   txHash,
				Accepted: true,
			}, nil
		}
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

// Subscribe 订阅事件（HTTP不支持，需要使用WebSocket）
func (c *httpClient) Subscribe(ctx context.Context, filter *EventFilter) (<-chan *Event, error) {
	return nil, fmt.Errorf("HTTP client does not support event subscription, use WebSocket client instead")
}

// Close 关闭连接（HTTP客户端无需特殊处理）
func (c *httpClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// jsonRPCRequest JSON-RPC请求结构
type jsonRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      uint64      `json:"id"`
}

// jsonRPCResponse JSON-RPC响应结构
type jsonRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *jsonRPCError `json:"error,omitempty"`
	ID      uint64        `json:"id"`
}

// jsonRPCError JSON-RPC错误结构
type jsonRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
