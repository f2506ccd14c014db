package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProblemDetails 节点/索引服务的 Problem Details 结构（基于 RFC7807 + 扩展字段）
type ProblemDetails struct {
	// RFC7807 标准字段
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   *int   `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// 扩展字段（必填）
	Code        string                 `json:"code"`
	Layer       string                 `json:"layer"`
	UserMessage string                 `json:"userMessage"`
	Details     map[string]interface{} `json:"details,omitempty"`
	TraceID     string                 `json:"traceId"`
	Timestamp   string                 `json:"timestamp"`
}

// LedgerError 账本服务错误类型
//
// 所有从节点/索引服务返回的结构化错误统一映射为 LedgerError，
// SDK 内部错误使用各包的 sentinel error。
type LedgerError struct {
	Code        string
	Layer       string
	UserMessage string
	Detail      string
	Status      *int
	Details     map[string]interface{}
	TraceID     string
	Timestamp   string
}

func (e *LedgerError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.UserMessage, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.UserMessage)
}

// ToProblemDetails 转换为 Problem Details
func (e *LedgerError) ToProblemDetails() *ProblemDetails {
	return &ProblemDetails{
		Code:        e.Code,
		Layer:       e.Layer,
		UserMessage: e.UserMessage,
		Detail:      e.Detail,
		Status:      e.Status,
		Details:     e.Details,
		TraceID:     e.TraceID,
		Timestamp:   e.Timestamp,
	}
}

// NewLedgerErrorFromProblemDetails 从 Problem Details 创建 LedgerError
func NewLedgerErrorFromProblemDetails(pd *ProblemDetails) *LedgerError {
	return &LedgerError{
		Code:        pd.Code,
		Layer:       pd.Layer,
		UserMessage: pd.UserMessage,
		Detail:      pd.Detail,
		Status:      pd.Status,
		Details:     pd.Details,
		TraceID:     pd.TraceID,
		Timestamp:   pd.Timestamp,
	}
}

// IsLedgerError 检查错误是否为 LedgerError
func IsLedgerError(err error) (*LedgerError, bool) {
	if ledgerErr, ok := err.(*LedgerError); ok {
		return ledgerErr, true
	}
	return nil, false
}

// Layer 常量
const (
	LayerClientSDKGo    = "client-sdk-go"
	LayerLedgerNode     = "ledger-node"
	LayerIndexerService = "indexer-service"
)

// ErrorCode 错误码常量
const (
	// SDK 错误
	ErrorCodeSDKHTTPError                    = "SDK_HTTP_ERROR"
	ErrorCodeSDKGRPCError                    = "SDK_GRPC_ERROR"
	ErrorCodeSDKRequestSerializationError    = "SDK_REQUEST_SERIALIZATION_ERROR"
	ErrorCodeSDKResponseDeserializationError = "SDK_RESPONSE_DESERIALIZATION_ERROR"
	ErrorCodeSDKConnectionError              = "SDK_CONNECTION_ERROR"

	// 账本错误
	ErrorCodeLedgerTxNotFound       = "LEDGER_TX_NOT_FOUND"
	ErrorCodeLedgerTxRejected       = "LEDGER_TX_REJECTED"
	ErrorCodeLedgerScriptFailure    = "LEDGER_SCRIPT_FAILURE"
	ErrorCodeLedgerValueNotConserved = "LEDGER_VALUE_NOT_CONSERVED"

	// 通用错误
	ErrorCodeCommonValidationError    = "COMMON_VALIDATION_ERROR"
	ErrorCodeCommonInternalError      = "COMMON_INTERNAL_ERROR"
	ErrorCodeCommonTimeout            = "COMMON_TIMEOUT"
	ErrorCodeCommonServiceUnavailable = "COMMON_SERVICE_UNAVAILABLE"
)

// ParseProblemDetailsFromRPCError 从 JSON-RPC 错误响应解析 Problem Details
//
// 节点把结构化错误放在 JSON-RPC error 的 data 字段中；
// 缺少必填字段时返回错误，调用方应回退到普通错误处理。
func ParseProblemDetailsFromRPCError(rpcError interface{}) (*ProblemDetails, error) {
	rpcMap, ok := rpcError.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid RPC error format")
	}

	data, ok := rpcMap["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("no data field in RPC error")
	}

	// 检查是否包含 Problem Details 必填字段
	code, _ := data["code"].(string)
	layer, _ := data["layer"].(string)
	userMessage, _ := data["userMessage"].(string)
	traceID, _ := data["traceId"].(string)

	if code == "" || layer == "" || userMessage == "" || traceID == "" {
		return nil, fmt.Errorf("missing required fields in problem details")
	}

	// 提取可选字段
	detail, _ := data["detail"].(string)
	if detail == "" {
		if msg, ok := rpcMap["message"].(string); ok {
			detail = msg
		}
	}

	var status *int
	if statusVal, ok := data["status"].(float64); ok {
		s := int(statusVal)
		status = &s
	} else if statusVal, ok := rpcMap["code"].(float64); ok {
		s := int(statusVal)
		status = &s
	}

	details, _ := data["details"].(map[string]interface{})

	timestamp, _ := data["timestamp"].(string)
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	typeVal, _ := data["type"].(string)
	title, _ := data["title"].(string)
	instance, _ := data["instance"].(string)

	return &ProblemDetails{
		Code:        code,
		Layer:       layer,
		UserMessage: userMessage,
		Detail:      detail,
		Status:      status,
		Details:     details,
		TraceID:     traceID,
		Timestamp:   timestamp,
		Type:        typeVal,
		Title:       title,
		Instance:    instance,
	}, nil
}

// CreateDefaultLedgerError 创建默认的 LedgerError（用于 fallback）
func CreateDefaultLedgerError(
	code string,
	userMessage string,
	detail string,
	status int,
	details map[string]interface{},
) *LedgerError {
	if details == nil {
		details = make(map[string]interface{})
	}

	traceID := uuid.New().String()
	statusPtr := &status

	return &LedgerError{
		Code:        code,
		Layer:       LayerClientSDKGo,
		UserMessage: userMessage,
		Detail:      detail,
		Status:      statusPtr,
		Details:     details,
		TraceID:     traceID,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}
