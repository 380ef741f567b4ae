// Package gacha provides error definitions for blind pull protocol operations.
package gacha

import (
	"errors"
	"fmt"
)

// ============================================================================
//                            抽取协议错误定义
// ============================================================================

var (
	// ErrGameConfigNotInitialized 游戏配置尚未初始化错误
	ErrGameConfigNotInitialized = errors.New("game config not initialized")

	// ErrGameConfigAlreadyInitialized 游戏配置已初始化错误
	ErrGameConfigAlreadyInitialized = errors.New("game config already initialized")

	// ErrInvalidZeroPullPrice 售价为零错误
	ErrInvalidZeroPullPrice = errors.New("pull price must be greater than zero")

	// ErrInvalidRewardMint 奖励资产不支持机密余额错误
	ErrInvalidRewardMint = errors.New("reward mint does not support confidential transfers")

	// ErrInvalidGameVault 金库不是权限持有的购买资产账户错误
	ErrInvalidGameVault = errors.New("game vault must be a purchase mint account owned by the authority")

	// ErrInvalidPullId 抽取序号不等于last_pull_id+1错误
	ErrInvalidPullId = errors.New("invalid pull id")

	// ErrPullNotFound 抽取记录不存在错误
	ErrPullNotFound = errors.New("pull not found")

	// ErrConfigureTokenAccountFailed 托管账户机密配置失败错误
	ErrConfigureTokenAccountFailed = errors.New("configure token account failed")

	// ErrCloseContextStateFailed 证明上下文关闭失败错误
	// 托管配置已完成，仅上下文回收失败
	ErrCloseContextStateFailed = errors.New("close context state failed")

	// ErrDecryptableBalanceConversionFailed 可解密余额快照编码不合法错误
	ErrDecryptableBalanceConversionFailed = errors.New("decryptable balance conversion failed")

	// ErrCipherTextBalanceConversionFailed 密文余额编码不合法错误
	ErrCipherTextBalanceConversionFailed = errors.New("ciphertext balance conversion failed")

	// ErrInvalidProofType 证明上下文类型不符错误
	ErrInvalidProofType = errors.New("invalid proof type")

	// ErrInvalidElgamalPubkey 证明上下文公钥与托管公钥不符错误
	ErrInvalidElgamalPubkey = errors.New("invalid elgamal pubkey")

	// ErrInvalidContextAuthority 证明上下文权限与游戏权限不符错误
	ErrInvalidContextAuthority = errors.New("invalid context authority")

	// ErrCiphertextArithmeticFailed 密文同态运算失败错误
	ErrCiphertextArithmeticFailed = errors.New("ciphertext arithmetic failed")

	// ErrCiphertextZeroBalanceMismatch 余额差值与零陈述不符错误
	// 托管实际余额与承诺密文不相等
	ErrCiphertextZeroBalanceMismatch = errors.New("ciphertext zero balance mismatch")

	// ErrPullAlreadyPurchased 抽取已被购买错误
	ErrPullAlreadyPurchased = errors.New("pull already purchased")

	// ErrPullNotVerified 抽取尚未通过承诺校验错误
	ErrPullNotVerified = errors.New("pull not verified")

	// ErrPullAlreadyClaimed 抽取已被揭示错误
	ErrPullAlreadyClaimed = errors.New("pull already claimed")

	// ErrInvalidBuyer 买家身份与记录不符错误
	ErrInvalidBuyer = errors.New("invalid buyer")

	// ErrInvalidAccount 子操作命名了无法解析的账户身份错误
	ErrInvalidAccount = errors.New("invalid account")
)

// ============================================================================
//                               错误包装函数
// ============================================================================

// WrapInvalidPullIdError 包装抽取序号不合法错误
func WrapInvalidPullIdError(expected, actual uint64) error {
	return fmt.Errorf("%w: expected=%d, actual=%d", ErrInvalidPullId, expected, actual)
}

// WrapPullNotFoundError 包装抽取记录不存在错误
func WrapPullNotFoundError(id uint64) error {
	return fmt.Errorf("%w: id=%d", ErrPullNotFound, id)
}

// WrapConfigureTokenAccountFailedError 包装托管账户配置失败错误
func WrapConfigureTokenAccountFailedError(err error) error {
	return fmt.Errorf("%w: %v", ErrConfigureTokenAccountFailed, err)
}

// WrapCloseContextStateFailedError 包装证明上下文关闭失败错误
func WrapCloseContextStateFailedError(err error) error {
	return fmt.Errorf("%w: %v", ErrCloseContextStateFailed, err)
}

// WrapDecryptableBalanceConversionFailedError 包装可解密余额快照编码错误
func WrapDecryptableBalanceConversionFailedError(err error) error {
	return fmt.Errorf("%w: %v", ErrDecryptableBalanceConversionFailed, err)
}

// WrapCipherTextBalanceConversionFailedError 包装密文余额编码错误
func WrapCipherTextBalanceConversionFailedError(err error) error {
	return fmt.Errorf("%w: %v", ErrCipherTextBalanceConversionFailed, err)
}

// WrapInvalidAccountError 包装无法解析的账户身份错误
func WrapInvalidAccountError(account string) error {
	return fmt.Errorf("%w: account=%s", ErrInvalidAccount, account)
}

// WrapInvalidBuyerError 包装买家身份不符错误
func WrapInvalidBuyerError(expected, actual string) error {
	return fmt.Errorf("%w: expected=%s, actual=%s", ErrInvalidBuyer, expected, actual)
}
