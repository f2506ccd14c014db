package client

import (
	"fmt"
)

// LedgerClientErrorCode LedgerClient 错误码
type LedgerClientErrorCode string

const (
	LedgerErrCodeNetwork        LedgerClientErrorCode = "NETWORK_ERROR"
	LedgerErrCodeRPC            LedgerClientErrorCode = "RPC_ERROR"
	LedgerErrCodeInvalidParams  LedgerClientErrorCode = "INVALID_PARAMS"
	LedgerErrCodeNotImplemented LedgerClientErrorCode = "RPC_NOT_IMPLEMENTED"
	LedgerErrCodeNotFound       LedgerClientErrorCode = "NOT_FOUND"
	LedgerErrCodeDecodeFailed   LedgerClientErrorCode = "DECODE_FAILED"
)

// LedgerClientError LedgerClient 统一错误类型
type LedgerClientError struct {
	Code    LedgerClientErrorCode
	Message string
	Cause   error
}

func (e *LedgerClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause=%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LedgerClientError) Unwrap() error {
	return e.Cause
}

// wrapRPCError 包装 RPC 错误为 LedgerClientError
func wrapRPCError(method string, err error) error {
	if err == nil {
		return nil
	}

	// 网络错误
	if netErr, ok := err.(*Error); ok && netErr.Code == ErrCodeNetwork {
		return &LedgerClientError{
			Code:    LedgerErrCodeNetwork,
			Message: fmt.Sprintf("network error calling %s", method),
			Cause:   err,
		}
	}

	// JSON-RPC 错误
	if rpcErr, ok := err.(*Error); ok && rpcErr.Code == ErrCodeRPCError {
		return &LedgerClientError{
			Code:    LedgerErrCodeRPC,
			Message: fmt.Sprintf("RPC error calling %s: %s", method, rpcErr.Message),
			Cause:   err,
		}
	}

	// 避免重复包装
	if ledgerErr, ok := err.(*LedgerClientError); ok {
		return ledgerErr
	}

	// 结构化账本错误与其他错误保持原状，让上层能够通过 errors.As 识别
	return err
}
