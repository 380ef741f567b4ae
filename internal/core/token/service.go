// Package token 提供普通代币账本实现
//
// 🎯 **核心职责**：资产铸造、代币账户与明文余额转账
//
// 💡 **设计理念**：
// - 每个余额变更校验"签名者地址 == 账户签名权限地址"
// - 转账在单个存储事务内完成借贷双方的读改写
// - 固定售价的购买转账不涉及任何证明，直接走本账本
package token

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"

	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
	tokenInterface "github.com/gachago/v1/pkg/interfaces/token"
	"github.com/gachago/v1/pkg/types"
)

// 存储键前缀
const (
	mintKeyPrefix    = "token/mint/"
	accountKeyPrefix = "token/account/"
)

// Service 普通代币账本服务实现
type Service struct {
	store  storageInterface.BadgerStore
	logger logInterface.Logger

	mu sync.Mutex // 串行化所有余额变更
}

// NewService 创建代币账本服务
func NewService(store storageInterface.BadgerStore, logger logInterface.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// CreateMint 创建资产
func (s *Service) CreateMint(ctx context.Context, authority types.Address, decimals uint8,
	extensions ...tokenInterface.MintExtension) (*tokenInterface.Mint, error) {

	mint := &tokenInterface.Mint{
		Address:       newRandomAddress(),
		MintAuthority: authority,
		Decimals:      decimals,
		Supply:        0,
		Extensions:    extensions,
	}

	if err := s.putMint(ctx, mint); err != nil {
		return nil, err
	}

	s.logger.Infof("资产已创建: mint=%s, decimals=%d, extensions=%v", mint.Address, decimals, extensions)
	return mint, nil
}

// GetMint 获取资产信息
func (s *Service) GetMint(ctx context.Context, mint types.Address) (*tokenInterface.Mint, error) {
	data, err := s.store.Get(ctx, mintKey(mint))
	if err != nil {
		return nil, fmt.Errorf("读取资产失败: %w", err)
	}
	if data == nil {
		return nil, WrapMintNotFoundError(mint.String())
	}

	var m tokenInterface.Mint
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("解码资产失败: %w", err)
	}
	return &m, nil
}

// CreateAccount 创建代币账户（随机地址）
func (s *Service) CreateAccount(ctx context.Context, mint, owner types.Address) (*tokenInterface.Account, error) {
	return s.CreateAccountAt(ctx, newRandomAddress(), mint, owner)
}

// CreateAccountAt 在指定地址创建代币账户
func (s *Service) CreateAccountAt(ctx context.Context, address, mint, owner types.Address) (*tokenInterface.Account, error) {
	if _, err := s.GetMint(ctx, mint); err != nil {
		return nil, err
	}

	account := &tokenInterface.Account{
		Address: address,
		Mint:    mint,
		Owner:   owner,
		Amount:  0,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.RunInTransaction(ctx, func(txn storageInterface.Transaction) error {
		existing, err := txn.Get(accountKey(address))
		if err != nil {
			return err
		}
		if existing != nil {
			return WrapAccountAlreadyExistsError(address.String())
		}
		return putAccountTxn(txn, account)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debugf("代币账户已创建: account=%s, mint=%s, owner=%s", address, mint, owner)
	return account, nil
}

// GetAccount 获取代币账户
func (s *Service) GetAccount(ctx context.Context, account types.Address) (*tokenInterface.Account, error) {
	data, err := s.store.Get(ctx, accountKey(account))
	if err != nil {
		return nil, fmt.Errorf("读取代币账户失败: %w", err)
	}
	if data == nil {
		return nil, WrapAccountNotFoundError(account.String())
	}

	var a tokenInterface.Account
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("解码代币账户失败: %w", err)
	}
	return &a, nil
}

// MintTo 铸造代币到目标账户
func (s *Service) MintTo(ctx context.Context, mint, dest types.Address, amount uint64,
	authority types.SigningAuthority) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.RunInTransaction(ctx, func(txn storageInterface.Transaction) error {
		m, err := getMintTxn(txn, mint)
		if err != nil {
			return err
		}

		if !m.MintAuthority.Equal(authority.Address()) {
			return WrapUnauthorizedSignerError(m.MintAuthority.String(), authority.Address().String())
		}

		account, err := getAccountTxn(txn, dest)
		if err != nil {
			return err
		}
		if !account.Mint.Equal(mint) {
			return WrapMintMismatchError(dest.String(), mint.String(), account.Mint.String())
		}

		if m.Supply > math.MaxUint64-amount || account.Amount > math.MaxUint64-amount {
			return ErrAmountOverflow
		}
		m.Supply += amount
		account.Amount += amount

		if err := putMintTxn(txn, m); err != nil {
			return err
		}
		return putAccountTxn(txn, account)
	})
}

// Transfer 普通转账
func (s *Service) Transfer(ctx context.Context, from, to types.Address, amount uint64,
	authority types.SigningAuthority) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.RunInTransaction(ctx, func(txn storageInterface.Transaction) error {
		return transferTxn(txn, from, to, amount, authority, nil)
	})
}

// Debit 从账户明文余额扣除amount
func (s *Service) Debit(ctx context.Context, account types.Address, amount uint64,
	authority types.SigningAuthority) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.RunInTransaction(ctx, func(txn storageInterface.Transaction) error {
		return debitTxn(txn, account, amount, authority)
	})
}

// Credit 向账户明文余额增加amount
func (s *Service) Credit(ctx context.Context, account types.Address, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.RunInTransaction(ctx, func(txn storageInterface.Transaction) error {
		return creditTxn(txn, account, amount)
	})
}

// TransferChecked 带资产与精度校验的转账
func (s *Service) TransferChecked(ctx context.Context, from, to, mint types.Address,
	amount uint64, decimals uint8, authority types.SigningAuthority) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.RunInTransaction(ctx, func(txn storageInterface.Transaction) error {
		m, err := getMintTxn(txn, mint)
		if err != nil {
			return err
		}
		if m.Decimals != decimals {
			return WrapDecimalsMismatchError(m.Decimals, decimals)
		}
		return transferTxn(txn, from, to, amount, authority, &mint)
	})
}

// ==================== 事务内变体 ====================
//
// 多步请求把跨服务的写入合并进调用方的单个存储事务；
// 任何一步失败都由调用方整体回滚。

// GetAccountTxn 在调用方事务内读取代币账户
func (s *Service) GetAccountTxn(txn storageInterface.Transaction, account types.Address) (*tokenInterface.Account, error) {
	return getAccountTxn(txn, account)
}

// GetMintTxn 在调用方事务内读取资产信息
func (s *Service) GetMintTxn(txn storageInterface.Transaction, mint types.Address) (*tokenInterface.Mint, error) {
	return getMintTxn(txn, mint)
}

// TransferTxn 在调用方事务内执行普通转账
func (s *Service) TransferTxn(txn storageInterface.Transaction, from, to types.Address, amount uint64,
	authority types.SigningAuthority) error {

	s.mu.Lock()
	defer s.mu.Unlock()
	return transferTxn(txn, from, to, amount, authority, nil)
}

// TransferCheckedTxn 在调用方事务内执行带资产与精度校验的转账
func (s *Service) TransferCheckedTxn(txn storageInterface.Transaction, from, to, mint types.Address,
	amount uint64, decimals uint8, authority types.SigningAuthority) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := getMintTxn(txn, mint)
	if err != nil {
		return err
	}
	if m.Decimals != decimals {
		return WrapDecimalsMismatchError(m.Decimals, decimals)
	}
	return transferTxn(txn, from, to, amount, authority, &mint)
}

// DebitTxn 在调用方事务内扣除明文余额
func (s *Service) DebitTxn(txn storageInterface.Transaction, account types.Address, amount uint64,
	authority types.SigningAuthority) error {

	s.mu.Lock()
	defer s.mu.Unlock()
	return debitTxn(txn, account, amount, authority)
}

// CreditTxn 在调用方事务内增加明文余额
func (s *Service) CreditTxn(txn storageInterface.Transaction, account types.Address, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return creditTxn(txn, account, amount)
}

// transferTxn 事务内转账：借贷双方的读改写
//
// expectedMint非nil时强制双方账户属于该资产；为nil时只要求
// 双方资产一致。
func transferTxn(txn storageInterface.Transaction, from, to types.Address, amount uint64,
	authority types.SigningAuthority, expectedMint *types.Address) error {

	src, err := getAccountTxn(txn, from)
	if err != nil {
		return err
	}

	if !src.Owner.Equal(authority.Address()) {
		return WrapUnauthorizedSignerError(src.Owner.String(), authority.Address().String())
	}
	if src.Amount < amount {
		return WrapInsufficientFundsError(from.String(), src.Amount, amount)
	}

	dst, err := getAccountTxn(txn, to)
	if err != nil {
		return err
	}

	if expectedMint != nil && !src.Mint.Equal(*expectedMint) {
		return WrapMintMismatchError(from.String(), expectedMint.String(), src.Mint.String())
	}
	if !dst.Mint.Equal(src.Mint) {
		return WrapMintMismatchError(to.String(), src.Mint.String(), dst.Mint.String())
	}
	if dst.Amount > math.MaxUint64-amount {
		return ErrAmountOverflow
	}

	src.Amount -= amount
	dst.Amount += amount

	if err := putAccountTxn(txn, src); err != nil {
		return err
	}
	return putAccountTxn(txn, dst)
}

// debitTxn 事务内扣账：签名权限与余额检查后的读改写
func debitTxn(txn storageInterface.Transaction, account types.Address, amount uint64,
	authority types.SigningAuthority) error {

	a, err := getAccountTxn(txn, account)
	if err != nil {
		return err
	}
	if !a.Owner.Equal(authority.Address()) {
		return WrapUnauthorizedSignerError(a.Owner.String(), authority.Address().String())
	}
	if a.Amount < amount {
		return WrapInsufficientFundsError(account.String(), a.Amount, amount)
	}
	a.Amount -= amount
	return putAccountTxn(txn, a)
}

// creditTxn 事务内入账
func creditTxn(txn storageInterface.Transaction, account types.Address, amount uint64) error {
	a, err := getAccountTxn(txn, account)
	if err != nil {
		return err
	}
	if a.Amount > math.MaxUint64-amount {
		return ErrAmountOverflow
	}
	a.Amount += amount
	return putAccountTxn(txn, a)
}

// ==================== 内部辅助 ====================

func (s *Service) putMint(ctx context.Context, m *tokenInterface.Mint) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("编码资产失败: %w", err)
	}
	return s.store.Set(ctx, mintKey(m.Address), data)
}

func getMintTxn(txn storageInterface.Transaction, mint types.Address) (*tokenInterface.Mint, error) {
	data, err := txn.Get(mintKey(mint))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, WrapMintNotFoundError(mint.String())
	}
	var m tokenInterface.Mint
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("解码资产失败: %w", err)
	}
	return &m, nil
}

func putMintTxn(txn storageInterface.Transaction, m *tokenInterface.Mint) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("编码资产失败: %w", err)
	}
	return txn.Set(mintKey(m.Address), data)
}

func getAccountTxn(txn storageInterface.Transaction, account types.Address) (*tokenInterface.Account, error) {
	data, err := txn.Get(accountKey(account))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, WrapAccountNotFoundError(account.String())
	}
	var a tokenInterface.Account
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("解码代币账户失败: %w", err)
	}
	return &a, nil
}

func putAccountTxn(txn storageInterface.Transaction, a *tokenInterface.Account) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("编码代币账户失败: %w", err)
	}
	return txn.Set(accountKey(a.Address), data)
}

func mintKey(mint types.Address) []byte {
	return []byte(mintKeyPrefix + mint.String())
}

func accountKey(account types.Address) []byte {
	return []byte(accountKeyPrefix + account.String())
}

// newRandomAddress 生成随机账户地址
func newRandomAddress() types.Address {
	id := uuid.New()
	return types.Address(sha256.Sum256(id[:]))
}
