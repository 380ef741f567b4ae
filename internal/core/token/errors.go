// Package token provides error definitions for the fungible ledger.
package token

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              代币账本错误定义
// ============================================================================

var (
	// ErrMintNotFound 资产不存在错误
	ErrMintNotFound = errors.New("mint not found")

	// ErrAccountNotFound 代币账户不存在错误
	ErrAccountNotFound = errors.New("token account not found")

	// ErrAccountAlreadyExists 账户地址已占用错误
	ErrAccountAlreadyExists = errors.New("token account already exists")

	// ErrInsufficientFunds 余额不足错误
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnauthorizedSigner 签名权限不符错误
	ErrUnauthorizedSigner = errors.New("unauthorized signer")

	// ErrMintMismatch 资产不匹配错误
	ErrMintMismatch = errors.New("mint mismatch")

	// ErrDecimalsMismatch 精度不匹配错误
	ErrDecimalsMismatch = errors.New("decimals mismatch")

	// ErrAmountOverflow 金额溢出错误
	ErrAmountOverflow = errors.New("amount overflow")
)

// ============================================================================
//                               错误包装函数
// ============================================================================

// WrapMintNotFoundError 包装资产不存在错误
func WrapMintNotFoundError(mint string) error {
	return fmt.Errorf("%w: mint=%s", ErrMintNotFound, mint)
}

// WrapAccountNotFoundError 包装代币账户不存在错误
func WrapAccountNotFoundError(account string) error {
	return fmt.Errorf("%w: account=%s", ErrAccountNotFound, account)
}

// WrapAccountAlreadyExistsError 包装账户地址已占用错误
func WrapAccountAlreadyExistsError(account string) error {
	return fmt.Errorf("%w: account=%s", ErrAccountAlreadyExists, account)
}

// WrapInsufficientFundsError 包装余额不足错误
func WrapInsufficientFundsError(account string, balance, amount uint64) error {
	return fmt.Errorf("%w: account=%s, balance=%d, amount=%d", ErrInsufficientFunds, account, balance, amount)
}

// WrapUnauthorizedSignerError 包装签名权限不符错误
func WrapUnauthorizedSignerError(expected, actual string) error {
	return fmt.Errorf("%w: expected=%s, actual=%s", ErrUnauthorizedSigner, expected, actual)
}

// WrapMintMismatchError 包装资产不匹配错误
func WrapMintMismatchError(account, expected, actual string) error {
	return fmt.Errorf("%w: account=%s, expected=%s, actual=%s", ErrMintMismatch, account, expected, actual)
}

// WrapDecimalsMismatchError 包装精度不匹配错误
func WrapDecimalsMismatchError(expected, actual uint8) error {
	return fmt.Errorf("%w: expected=%d, actual=%d", ErrDecimalsMismatch, expected, actual)
}
