// Package token 提供普通（非机密）代币账本服务的接口定义
//
// 对应规范中的Fungible Ledger Service：固定售价的购买转账走这里，
// 售价本身从不保密，因此不涉及任何证明。奖励资产的铸造与
// 明文部分的转账也由本服务承载。
package token

import (
	"context"

	storageInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
	"github.com/gachago/v1/pkg/types"
)

// MintExtension 铸造资产的扩展标记
type MintExtension string

const (
	// MintExtensionConfidentialTransfer 机密转账扩展
	// 奖励资产必须携带此扩展，InitializeGameConfig会检查
	MintExtensionConfidentialTransfer MintExtension = "confidential_transfer"
)

// Mint 资产铸造信息
type Mint struct {
	Address       types.Address   `json:"address"`
	MintAuthority types.Address   `json:"mint_authority"`
	Decimals      uint8           `json:"decimals"`
	Supply        uint64          `json:"supply"`
	Extensions    []MintExtension `json:"extensions"`
}

// HasExtension 检查资产是否携带指定扩展
func (m *Mint) HasExtension(ext MintExtension) bool {
	for _, e := range m.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Account 代币账户（明文余额部分）
type Account struct {
	Address types.Address `json:"address"`
	Mint    types.Address `json:"mint"`
	Owner   types.Address `json:"owner"` // 签名权限：人类身份或程序派生权能地址
	Amount  uint64        `json:"amount"`
}

// Service 普通代币账本服务接口
type Service interface {
	// CreateMint 创建资产
	CreateMint(ctx context.Context, authority types.Address, decimals uint8, extensions ...MintExtension) (*Mint, error)

	// GetMint 获取资产信息，不存在时返回错误
	GetMint(ctx context.Context, mint types.Address) (*Mint, error)

	// CreateAccount 创建代币账户（随机地址）
	CreateAccount(ctx context.Context, mint, owner types.Address) (*Account, error)

	// CreateAccountAt 在指定地址创建代币账户
	// 用于确定性派生的托管子账户；地址已占用时返回错误
	CreateAccountAt(ctx context.Context, address, mint, owner types.Address) (*Account, error)

	// GetAccount 获取代币账户，不存在时返回错误
	GetAccount(ctx context.Context, account types.Address) (*Account, error)

	// MintTo 铸造amount个代币到目标账户，须由铸造权限签名
	MintTo(ctx context.Context, mint, dest types.Address, amount uint64, authority types.SigningAuthority) error

	// Transfer 普通转账，须由源账户签名权限授权
	Transfer(ctx context.Context, from, to types.Address, amount uint64, authority types.SigningAuthority) error

	// Debit 从账户明文余额扣除amount，须由账户签名权限授权
	// 明文代币转入机密形态（存入待处理余额）时由机密账本调用
	Debit(ctx context.Context, account types.Address, amount uint64, authority types.SigningAuthority) error

	// Credit 向账户明文余额增加amount
	// 机密余额提取回明文形态时由机密账本调用
	Credit(ctx context.Context, account types.Address, amount uint64) error

	// TransferChecked 带资产与精度校验的转账
	// 源与目标账户的mint必须一致且等于指定mint，decimals必须匹配
	TransferChecked(ctx context.Context, from, to, mint types.Address, amount uint64, decimals uint8, authority types.SigningAuthority) error

	// 以下为事务内变体：多步请求（购买、揭示、存入）把跨服务的
	// 写入合并进单个存储事务，任何一步失败都使整个事务回滚。

	// GetAccountTxn 在调用方事务内读取代币账户
	GetAccountTxn(txn storageInterface.Transaction, account types.Address) (*Account, error)

	// GetMintTxn 在调用方事务内读取资产信息
	GetMintTxn(txn storageInterface.Transaction, mint types.Address) (*Mint, error)

	// TransferTxn 在调用方事务内执行普通转账
	TransferTxn(txn storageInterface.Transaction, from, to types.Address, amount uint64, authority types.SigningAuthority) error

	// TransferCheckedTxn 在调用方事务内执行带资产与精度校验的转账
	TransferCheckedTxn(txn storageInterface.Transaction, from, to, mint types.Address, amount uint64, decimals uint8, authority types.SigningAuthority) error

	// DebitTxn 在调用方事务内扣除明文余额
	DebitTxn(txn storageInterface.Transaction, account types.Address, amount uint64, authority types.SigningAuthority) error

	// CreditTxn 在调用方事务内增加明文余额
	CreditTxn(txn storageInterface.Transaction, account types.Address, amount uint64) error
}
