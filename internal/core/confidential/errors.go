// Package confidential provides error definitions for the confidential ledger.
package confidential

import (
	"errors"
	"fmt"
)

// ============================================================================
//                             机密账本错误定义
// ============================================================================

var (
	// ErrAccountNotConfigured 账户未开启机密余额错误
	ErrAccountNotConfigured = errors.New("confidential balance not configured")

	// ErrAccountAlreadyConfigured 账户已开启机密余额错误
	ErrAccountAlreadyConfigured = errors.New("confidential balance already configured")

	// ErrUnauthorizedSigner 签名权限不符错误
	ErrUnauthorizedSigner = errors.New("unauthorized signer")

	// ErrPendingCreditCounterMismatch 待处理入账计数器不匹配错误
	// 期望计数与当前计数不符，说明读取与套用之间发生了外部存入
	ErrPendingCreditCounterMismatch = errors.New("pending balance credit counter mismatch")

	// ErrInvalidProofContext 证明上下文类型不符错误
	ErrInvalidProofContext = errors.New("invalid proof context")

	// ErrElgamalPubkeyMismatch 证明上下文公钥与账户公钥不符错误
	ErrElgamalPubkeyMismatch = errors.New("elgamal pubkey mismatch")

	// ErrCiphertextArithmeticFailed 密文同态运算失败错误
	ErrCiphertextArithmeticFailed = errors.New("ciphertext arithmetic failed")

	// ErrStatementMismatch 证明陈述与独立重算值不符错误
	ErrStatementMismatch = errors.New("proof statement mismatch")

	// ErrMintMismatch 资产不匹配错误
	ErrMintMismatch = errors.New("mint mismatch")

	// ErrDecimalsMismatch 精度不匹配错误
	ErrDecimalsMismatch = errors.New("decimals mismatch")

	// ErrUnknownInstructionOp 未知子操作类型错误
	ErrUnknownInstructionOp = errors.New("unknown instruction op")

	// ErrInvalidInstructionAccounts 子操作账户列表不合法错误
	ErrInvalidInstructionAccounts = errors.New("invalid instruction accounts")
)

// ============================================================================
//                               错误包装函数
// ============================================================================

// WrapAccountNotConfiguredError 包装账户未开启机密余额错误
func WrapAccountNotConfiguredError(account string) error {
	return fmt.Errorf("%w: account=%s", ErrAccountNotConfigured, account)
}

// WrapAccountAlreadyConfiguredError 包装账户已开启机密余额错误
func WrapAccountAlreadyConfiguredError(account string) error {
	return fmt.Errorf("%w: account=%s", ErrAccountAlreadyConfigured, account)
}

// WrapUnauthorizedSignerError 包装签名权限不符错误
func WrapUnauthorizedSignerError(expected, actual string) error {
	return fmt.Errorf("%w: expected=%s, actual=%s", ErrUnauthorizedSigner, expected, actual)
}

// WrapPendingCreditCounterMismatchError 包装待处理入账计数器不匹配错误
func WrapPendingCreditCounterMismatchError(expected, actual uint64) error {
	return fmt.Errorf("%w: expected=%d, actual=%d", ErrPendingCreditCounterMismatch, expected, actual)
}

// WrapInvalidProofContextError 包装证明上下文类型不符错误
func WrapInvalidProofContextError(expected, actual string) error {
	return fmt.Errorf("%w: expected=%s, actual=%s", ErrInvalidProofContext, expected, actual)
}

// WrapStatementMismatchError 包装证明陈述不符错误
func WrapStatementMismatchError(statement string) error {
	return fmt.Errorf("%w: statement=%s", ErrStatementMismatch, statement)
}

// WrapInvalidInstructionAccountsError 包装子操作账户列表不合法错误
func WrapInvalidInstructionAccountsError(op string, expected, actual int) error {
	return fmt.Errorf("%w: op=%s, expected=%d, actual=%d", ErrInvalidInstructionAccounts, op, expected, actual)
}
