// Package zkproof provides error definitions for proof context operations.
package zkproof

import (
	"errors"
	"fmt"
)

// ============================================================================
//                            证明上下文错误定义
// ============================================================================

var (
	// ErrUnsupportedProofType 不支持的证明类型错误
	ErrUnsupportedProofType = errors.New("unsupported proof type")

	// ErrInvalidPayloadLength 载荷长度不合法错误
	ErrInvalidPayloadLength = errors.New("invalid proof payload length")

	// ErrInvalidPointEncoding 曲线点编码不合法错误
	ErrInvalidPointEncoding = errors.New("invalid curve point encoding")

	// ErrProofVerificationFailed 证明验证失败错误
	ErrProofVerificationFailed = errors.New("proof verification failed")

	// ErrContextNotFound 证明上下文不存在错误
	ErrContextNotFound = errors.New("proof context not found")

	// ErrContextAuthorityMismatch 上下文权限不匹配错误
	ErrContextAuthorityMismatch = errors.New("proof context authority mismatch")

	// ErrRangeExceeded 见证值超出声明范围错误
	ErrRangeExceeded = errors.New("witness value exceeds claimed range")
)

// ============================================================================
//                               错误包装函数
// ============================================================================

// WrapUnsupportedProofTypeError 包装不支持的证明类型错误
func WrapUnsupportedProofTypeError(proofType string) error {
	return fmt.Errorf("%w: type=%s", ErrUnsupportedProofType, proofType)
}

// WrapInvalidPayloadLengthError 包装载荷长度不合法错误
func WrapInvalidPayloadLengthError(proofType string, expected, actual int) error {
	return fmt.Errorf("%w: type=%s, expected=%d, actual=%d", ErrInvalidPayloadLength, proofType, expected, actual)
}

// WrapInvalidPointEncodingError 包装曲线点编码不合法错误
func WrapInvalidPointEncodingError(field string, err error) error {
	return fmt.Errorf("%w: field=%s, cause=%v", ErrInvalidPointEncoding, field, err)
}

// WrapProofVerificationFailedError 包装证明验证失败错误
func WrapProofVerificationFailedError(proofType, reason string) error {
	return fmt.Errorf("%w: type=%s, reason=%s", ErrProofVerificationFailed, proofType, reason)
}

// WrapContextNotFoundError 包装证明上下文不存在错误
func WrapContextNotFoundError(address string) error {
	return fmt.Errorf("%w: address=%s", ErrContextNotFound, address)
}

// WrapContextAuthorityMismatchError 包装上下文权限不匹配错误
func WrapContextAuthorityMismatchError(address, expected, actual string) error {
	return fmt.Errorf("%w: address=%s, expected=%s, actual=%s", ErrContextAuthorityMismatch, address, expected, actual)
}
