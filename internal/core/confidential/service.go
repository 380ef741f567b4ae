// Package confidential 提供机密余额账本实现
//
// 🎯 **核心职责**：维护每账户在其专属ElGamal公钥下的加密余额
// （available、pending_lo、pending_hi），并执行证明门控的提取与转账
//
// 💡 **设计理念**：
// - 账本从不解密余额，只做同态运算与密文逐位比对
// - 每个揭示金额或变更余额的调用都需要证明上下文记录
// - Withdraw/Transfer先返回子操作序列，调用方解析账户身份后
//   逐条Invoke；Invoke在执行前独立重算期望陈述
package confidential

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/gachago/v1/internal/core/infrastructure/crypto/elgamal"
	confidentialInterface "github.com/gachago/v1/pkg/interfaces/confidential"
	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
	tokenInterface "github.com/gachago/v1/pkg/interfaces/token"
	zkproofInterface "github.com/gachago/v1/pkg/interfaces/zkproof"
	"github.com/gachago/v1/pkg/types"
)

// accountKeyPrefix 机密账户状态的存储键前缀
const accountKeyPrefix = "confidential/account/"

// pendingHiScale 待处理余额高位分量并入可用余额时的缩放因子
const pendingHiScale = 1 << 16

// withdrawRangeBits 提取后剩余余额范围证明要求的位长
const withdrawRangeBits = 64

// Service 机密余额账本服务实现
type Service struct {
	store  storageInterface.BadgerStore
	tokens tokenInterface.Service
	proofs zkproofInterface.Service
	logger logInterface.Logger

	mu sync.Mutex // 串行化所有机密余额变更
}

// NewService 创建机密余额账本服务
func NewService(store storageInterface.BadgerStore, tokens tokenInterface.Service,
	proofs zkproofInterface.Service, logger logInterface.Logger) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		proofs: proofs,
		logger: logger,
	}
}

// ConfigureAccount 为既有代币账户开启机密余额
func (s *Service) ConfigureAccount(ctx context.Context, account types.Address, pubkey types.ElGamalPubkey,
	decryptableZeroBalance types.AeCiphertext, pubkeyValidityProof types.Address,
	authority types.SigningAuthority) error {

	tokenAccount, err := s.tokens.GetAccount(ctx, account)
	if err != nil {
		return err
	}
	if !tokenAccount.Owner.Equal(authority.Address()) {
		return WrapUnauthorizedSignerError(tokenAccount.Owner.String(), authority.Address().String())
	}

	proofCtx, err := s.proofs.Get(ctx, pubkeyValidityProof)
	if err != nil {
		return err
	}
	if proofCtx.ProofType != zkproofInterface.ProofTypePubkeyValidity {
		return WrapInvalidProofContextError(string(zkproofInterface.ProofTypePubkeyValidity), string(proofCtx.ProofType))
	}
	if !proofCtx.Pubkey.Equal(pubkey) {
		return ErrElgamalPubkeyMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getState(ctx, account)
	if err != nil {
		return err
	}
	if existing != nil {
		return WrapAccountAlreadyConfiguredError(account.String())
	}

	zero := elgamal.Zero().Bytes()
	state := &confidentialInterface.AccountState{
		Address:                     account,
		Mint:                        tokenAccount.Mint,
		ElGamalPubkey:               pubkey,
		AvailableBalance:            zero,
		PendingBalanceLo:            zero,
		PendingBalanceHi:            zero,
		PendingBalanceCreditCounter: 0,
		DecryptableAvailableBalance: decryptableZeroBalance,
	}
	if err := s.putState(ctx, state); err != nil {
		return err
	}

	s.logger.Debugf("机密余额已开启: account=%s", account)
	return nil
}

// GetAccountState 读取机密账户状态
func (s *Service) GetAccountState(ctx context.Context, account types.Address) (*confidentialInterface.AccountState, error) {
	state, err := s.getState(ctx, account)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, WrapAccountNotConfiguredError(account.String())
	}
	return state, nil
}

// Deposit 从from的明文余额存入to的待处理余额
func (s *Service) Deposit(ctx context.Context, from, to types.Address, amount uint64,
	authority types.SigningAuthority) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	// 明文侧扣账与机密侧入账在单个存储事务内完成
	var counter uint64
	err := s.store.RunInTransaction(ctx, func(txn storageInterface.Transaction) error {
		state, err := getStateTxn(txn, to)
		if err != nil {
			return err
		}
		if state == nil {
			return WrapAccountNotConfiguredError(to.String())
		}

		// 金额按16/48位拆分，确定性(r=0)累加到两个待处理密文上
		lo := amount & 0xFFFF
		hi := amount >> 16

		pendingLo, err := decodeCiphertext(state.PendingBalanceLo)
		if err != nil {
			return err
		}
		pendingHi, err := decodeCiphertext(state.PendingBalanceHi)
		if err != nil {
			return err
		}

		state.PendingBalanceLo = elgamal.AddAmount(pendingLo, lo).Bytes()
		state.PendingBalanceHi = elgamal.AddAmount(pendingHi, hi).Bytes()
		state.PendingBalanceCreditCounter++
		counter = state.PendingBalanceCreditCounter

		if err := s.tokens.DebitTxn(txn, from, amount, authority); err != nil {
			return err
		}
		return putStateTxn(txn, state)
	})
	if err != nil {
		return err
	}

	s.logger.Debugf("机密存入完成: from=%s, to=%s, counter=%d", from, to, counter)
	return nil
}

// ApplyPendingBalance 将待处理余额并入可用余额
func (s *Service) ApplyPendingBalance(ctx context.Context, account types.Address, expectedCreditCounter uint64,
	newDecryptableBalance types.AeCiphertext, authority types.SigningAuthority) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.GetAccountState(ctx, account)
	if err != nil {
		return err
	}

	tokenAccount, err := s.tokens.GetAccount(ctx, account)
	if err != nil {
		return err
	}
	if !tokenAccount.Owner.Equal(authority.Address()) {
		return WrapUnauthorizedSignerError(tokenAccount.Owner.String(), authority.Address().String())
	}

	// 乐观并发防护：读取与套用之间发生外部存入则拒绝
	if state.PendingBalanceCreditCounter != expectedCreditCounter {
		return WrapPendingCreditCounterMismatchError(expectedCreditCounter, state.PendingBalanceCreditCounter)
	}

	available, err := decodeCiphertext(state.AvailableBalance)
	if err != nil {
		return err
	}
	pendingLo, err := decodeCiphertext(state.PendingBalanceLo)
	if err != nil {
		return err
	}
	pendingHi, err := decodeCiphertext(state.PendingBalanceHi)
	if err != nil {
		return err
	}

	// available += lo + 2^16 * hi
	merged := elgamal.Add(available, elgamal.Add(pendingLo, elgamal.ScalarMul(pendingHi, pendingHiScale)))

	zero := elgamal.Zero().Bytes()
	state.AvailableBalance = merged.Bytes()
	state.PendingBalanceLo = zero
	state.PendingBalanceHi = zero
	state.PendingBalanceCreditCounter = 0
	state.DecryptableAvailableBalance = newDecryptableBalance

	if err := s.putState(ctx, state); err != nil {
		return err
	}

	s.logger.Debugf("待处理余额已并入: account=%s", account)
	return nil
}

// WithdrawInstructions 构造"机密余额 → 明文余额"的子操作序列
func (s *Service) WithdrawInstructions(ctx context.Context, account, mint types.Address,
	amount uint64, decimals uint8, newDecryptableBalance types.AeCiphertext,
	equalityProof, rangeProof types.Address) ([]confidentialInterface.Instruction, error) {

	if _, err := s.GetAccountState(ctx, account); err != nil {
		return nil, err
	}

	return []confidentialInterface.Instruction{
		{
			Op:       confidentialInterface.OpVerifyEqualityProof,
			Accounts: []types.Address{account, equalityProof},
		},
		{
			Op:       confidentialInterface.OpVerifyRangeProof,
			Accounts: []types.Address{account, rangeProof},
		},
		{
			Op:                             confidentialInterface.OpWithdraw,
			Accounts:                       []types.Address{account, mint, equalityProof, rangeProof},
			Amount:                         amount,
			Decimals:                       decimals,
			NewDecryptableAvailableBalance: newDecryptableBalance,
		},
	}, nil
}

// TransferInstructions 构造机密-机密转账的子操作序列
func (s *Service) TransferInstructions(ctx context.Context, source, dest, mint types.Address,
	newDecryptableBalance types.AeCiphertext, equalityProof, validityProof, rangeProof types.Address,
	auditorLo, auditorHi types.ElGamalCiphertext) ([]confidentialInterface.Instruction, error) {

	if _, err := s.GetAccountState(ctx, source); err != nil {
		return nil, err
	}
	if _, err := s.GetAccountState(ctx, dest); err != nil {
		return nil, err
	}

	return []confidentialInterface.Instruction{
		{
			Op:       confidentialInterface.OpVerifyEqualityProof,
			Accounts: []types.Address{source, equalityProof},
		},
		{
			Op:       confidentialInterface.OpVerifyValidityProof,
			Accounts: []types.Address{source, dest, validityProof},
		},
		{
			Op:       confidentialInterface.OpVerifyRangeProof,
			Accounts: []types.Address{source, rangeProof},
		},
		{
			Op:                             confidentialInterface.OpTransfer,
			Accounts:                       []types.Address{source, dest, mint, equalityProof, validityProof, rangeProof},
			NewDecryptableAvailableBalance: newDecryptableBalance,
			AuditorCiphertextLo:            auditorLo,
			AuditorCiphertextHi:            auditorHi,
		},
	}, nil
}

// Invoke 以签名权能执行一条已解析的子操作
func (s *Service) Invoke(ctx context.Context, ix confidentialInterface.Instruction,
	signer types.SigningAuthority) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.RunInTransaction(ctx, func(txn storageInterface.Transaction) error {
		return s.invokeOp(ctx, txn, ix, signer)
	})
}

// InvokeTxn 在调用方事务内执行一条已解析的子操作
func (s *Service) InvokeTxn(ctx context.Context, txn storageInterface.Transaction,
	ix confidentialInterface.Instruction, signer types.SigningAuthority) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.invokeOp(ctx, txn, ix, signer)
}

// invokeOp 事务内的子操作分发
func (s *Service) invokeOp(ctx context.Context, txn storageInterface.Transaction,
	ix confidentialInterface.Instruction, signer types.SigningAuthority) error {

	switch ix.Op {
	case confidentialInterface.OpVerifyEqualityProof:
		return s.invokeVerifyEquality(ctx, txn, ix)
	case confidentialInterface.OpVerifyValidityProof:
		return s.invokeVerifyValidity(ctx, txn, ix)
	case confidentialInterface.OpVerifyRangeProof:
		return s.invokeVerifyRange(ctx, ix)
	case confidentialInterface.OpWithdraw:
		return s.invokeWithdraw(ctx, txn, ix, signer)
	case confidentialInterface.OpTransfer:
		return s.invokeTransfer(ctx, txn, ix, signer)
	default:
		return fmt.Errorf("%w: op=%s", ErrUnknownInstructionOp, ix.Op)
	}
}

// ==================== 子操作执行 ====================

// invokeVerifyEquality 校验等值证明上下文与账户的绑定
func (s *Service) invokeVerifyEquality(ctx context.Context, txn storageInterface.Transaction,
	ix confidentialInterface.Instruction) error {

	if len(ix.Accounts) != 2 {
		return WrapInvalidInstructionAccountsError(string(ix.Op), 2, len(ix.Accounts))
	}

	state, err := requireStateTxn(txn, ix.Accounts[0])
	if err != nil {
		return err
	}

	proofCtx, err := s.proofs.Get(ctx, ix.Accounts[1])
	if err != nil {
		return err
	}
	if proofCtx.ProofType != zkproofInterface.ProofTypeCiphertextCommitmentEquality {
		return WrapInvalidProofContextError(string(zkproofInterface.ProofTypeCiphertextCommitmentEquality), string(proofCtx.ProofType))
	}
	if !proofCtx.Pubkey.Equal(state.ElGamalPubkey) {
		return ErrElgamalPubkeyMismatch
	}
	return nil
}

// invokeVerifyValidity 校验分组密文有效性上下文与接收方的绑定
func (s *Service) invokeVerifyValidity(ctx context.Context, txn storageInterface.Transaction,
	ix confidentialInterface.Instruction) error {

	if len(ix.Accounts) != 3 {
		return WrapInvalidInstructionAccountsError(string(ix.Op), 3, len(ix.Accounts))
	}

	destState, err := requireStateTxn(txn, ix.Accounts[1])
	if err != nil {
		return err
	}

	proofCtx, err := s.proofs.Get(ctx, ix.Accounts[2])
	if err != nil {
		return err
	}
	if proofCtx.ProofType != zkproofInterface.ProofTypeGroupedCiphertextValidity {
		return WrapInvalidProofContextError(string(zkproofInterface.ProofTypeGroupedCiphertextValidity), string(proofCtx.ProofType))
	}
	if !proofCtx.Pubkey.Equal(destState.ElGamalPubkey) {
		return ErrElgamalPubkeyMismatch
	}
	if len(proofCtx.GroupedCiphertexts) != 4 {
		return WrapStatementMismatchError("grouped ciphertext count")
	}
	return nil
}

// invokeVerifyRange 校验范围证明上下文
func (s *Service) invokeVerifyRange(ctx context.Context, ix confidentialInterface.Instruction) error {
	if len(ix.Accounts) != 2 {
		return WrapInvalidInstructionAccountsError(string(ix.Op), 2, len(ix.Accounts))
	}

	proofCtx, err := s.proofs.Get(ctx, ix.Accounts[1])
	if err != nil {
		return err
	}
	if proofCtx.ProofType != zkproofInterface.ProofTypeBatchedRangeProof {
		return WrapInvalidProofContextError(string(zkproofInterface.ProofTypeBatchedRangeProof), string(proofCtx.ProofType))
	}
	if proofCtx.BitLength == 0 {
		return WrapStatementMismatchError("range bit length")
	}
	return nil
}

// invokeWithdraw 执行机密余额到明文余额的提取
//
// 账本独立重算"提取后剩余余额"密文（available − Enc(amount, r=0)），
// 等值陈述必须与之逐位一致，范围陈述必须经承诺链接到等值陈述。
func (s *Service) invokeWithdraw(ctx context.Context, txn storageInterface.Transaction,
	ix confidentialInterface.Instruction, signer types.SigningAuthority) error {

	if len(ix.Accounts) != 4 {
		return WrapInvalidInstructionAccountsError(string(ix.Op), 4, len(ix.Accounts))
	}
	account, mintAddr := ix.Accounts[0], ix.Accounts[1]
	equalityProof, rangeProof := ix.Accounts[2], ix.Accounts[3]

	state, err := requireStateTxn(txn, account)
	if err != nil {
		return err
	}
	tokenAccount, err := s.tokens.GetAccountTxn(txn, account)
	if err != nil {
		return err
	}
	if !tokenAccount.Owner.Equal(signer.Address()) {
		return WrapUnauthorizedSignerError(tokenAccount.Owner.String(), signer.Address().String())
	}
	if !state.Mint.Equal(mintAddr) {
		return fmt.Errorf("%w: account=%s", ErrMintMismatch, account)
	}

	mint, err := s.tokens.GetMintTxn(txn, mintAddr)
	if err != nil {
		return err
	}
	if mint.Decimals != ix.Decimals {
		return fmt.Errorf("%w: expected=%d, actual=%d", ErrDecimalsMismatch, mint.Decimals, ix.Decimals)
	}

	eqCtx, err := s.proofs.Get(ctx, equalityProof)
	if err != nil {
		return err
	}
	if eqCtx.ProofType != zkproofInterface.ProofTypeCiphertextCommitmentEquality {
		return WrapInvalidProofContextError(string(zkproofInterface.ProofTypeCiphertextCommitmentEquality), string(eqCtx.ProofType))
	}
	if !eqCtx.Pubkey.Equal(state.ElGamalPubkey) {
		return ErrElgamalPubkeyMismatch
	}

	// 独立重算提取后的剩余余额密文
	pk, err := elgamal.PublicKeyFromBytes(state.ElGamalPubkey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCiphertextArithmeticFailed, err)
	}
	available, err := decodeCiphertext(state.AvailableBalance)
	if err != nil {
		return err
	}
	var zeroR fr.Element
	remaining := elgamal.Sub(available, elgamal.EncryptWithRandomness(pk, ix.Amount, zeroR))

	if !eqCtx.Ciphertext.Equal(remaining.Bytes()) {
		return WrapStatementMismatchError("remaining balance ciphertext")
	}

	rangeCtx, err := s.proofs.Get(ctx, rangeProof)
	if err != nil {
		return err
	}
	if rangeCtx.ProofType != zkproofInterface.ProofTypeBatchedRangeProof {
		return WrapInvalidProofContextError(string(zkproofInterface.ProofTypeBatchedRangeProof), string(rangeCtx.ProofType))
	}
	if rangeCtx.Commitment != eqCtx.Commitment {
		return WrapStatementMismatchError("commitment link")
	}
	if rangeCtx.BitLength != withdrawRangeBits {
		return WrapStatementMismatchError("range bit length")
	}

	state.AvailableBalance = remaining.Bytes()
	state.DecryptableAvailableBalance = ix.NewDecryptableAvailableBalance

	if err := s.tokens.CreditTxn(txn, account, ix.Amount); err != nil {
		return err
	}
	if err := putStateTxn(txn, state); err != nil {
		return err
	}

	s.logger.Debugf("机密提取完成: account=%s, amount=%d", account, ix.Amount)
	return nil
}

// invokeTransfer 执行机密-机密转账
//
// 源账户的新可用余额采用等值陈述中的密文（经范围陈述链接保证
// 非负）；接收方低/高位密文取自有效性陈述，审计方密文与指令
// 携带值交叉检查。
func (s *Service) invokeTransfer(ctx context.Context, txn storageInterface.Transaction,
	ix confidentialInterface.Instruction, signer types.SigningAuthority) error {

	if len(ix.Accounts) != 6 {
		return WrapInvalidInstructionAccountsError(string(ix.Op), 6, len(ix.Accounts))
	}
	source, dest, mintAddr := ix.Accounts[0], ix.Accounts[1], ix.Accounts[2]
	equalityProof, validityProof, rangeProof := ix.Accounts[3], ix.Accounts[4], ix.Accounts[5]

	srcState, err := requireStateTxn(txn, source)
	if err != nil {
		return err
	}
	dstState, err := requireStateTxn(txn, dest)
	if err != nil {
		return err
	}
	if !srcState.Mint.Equal(mintAddr) || !dstState.Mint.Equal(mintAddr) {
		return fmt.Errorf("%w: source=%s, dest=%s", ErrMintMismatch, source, dest)
	}

	srcToken, err := s.tokens.GetAccountTxn(txn, source)
	if err != nil {
		return err
	}
	if !srcToken.Owner.Equal(signer.Address()) {
		return WrapUnauthorizedSignerError(srcToken.Owner.String(), signer.Address().String())
	}

	eqCtx, err := s.proofs.Get(ctx, equalityProof)
	if err != nil {
		return err
	}
	if eqCtx.ProofType != zkproofInterface.ProofTypeCiphertextCommitmentEquality {
		return WrapInvalidProofContextError(string(zkproofInterface.ProofTypeCiphertextCommitmentEquality), string(eqCtx.ProofType))
	}
	if !eqCtx.Pubkey.Equal(srcState.ElGamalPubkey) {
		return ErrElgamalPubkeyMismatch
	}

	valCtx, err := s.proofs.Get(ctx, validityProof)
	if err != nil {
		return err
	}
	if valCtx.ProofType != zkproofInterface.ProofTypeGroupedCiphertextValidity {
		return WrapInvalidProofContextError(string(zkproofInterface.ProofTypeGroupedCiphertextValidity), string(valCtx.ProofType))
	}
	if !valCtx.Pubkey.Equal(dstState.ElGamalPubkey) {
		return ErrElgamalPubkeyMismatch
	}
	if len(valCtx.GroupedCiphertexts) != 4 {
		return WrapStatementMismatchError("grouped ciphertext count")
	}

	// 审计方密文与指令携带值交叉检查
	if !valCtx.GroupedCiphertexts[2].Equal(ix.AuditorCiphertextLo) ||
		!valCtx.GroupedCiphertexts[3].Equal(ix.AuditorCiphertextHi) {
		return WrapStatementMismatchError("auditor ciphertext")
	}

	rangeCtx, err := s.proofs.Get(ctx, rangeProof)
	if err != nil {
		return err
	}
	if rangeCtx.ProofType != zkproofInterface.ProofTypeBatchedRangeProof {
		return WrapInvalidProofContextError(string(zkproofInterface.ProofTypeBatchedRangeProof), string(rangeCtx.ProofType))
	}
	if rangeCtx.Commitment != eqCtx.Commitment {
		return WrapStatementMismatchError("commitment link")
	}
	if rangeCtx.BitLength != withdrawRangeBits {
		return WrapStatementMismatchError("range bit length")
	}

	// 接收方待处理余额累加有效性陈述中的低/高位密文
	dstLo, err := decodeCiphertext(dstState.PendingBalanceLo)
	if err != nil {
		return err
	}
	dstHi, err := decodeCiphertext(dstState.PendingBalanceHi)
	if err != nil {
		return err
	}
	incLo, err := decodeCiphertext(valCtx.GroupedCiphertexts[0])
	if err != nil {
		return err
	}
	incHi, err := decodeCiphertext(valCtx.GroupedCiphertexts[1])
	if err != nil {
		return err
	}

	srcState.AvailableBalance = eqCtx.Ciphertext
	srcState.DecryptableAvailableBalance = ix.NewDecryptableAvailableBalance
	dstState.PendingBalanceLo = elgamal.Add(dstLo, incLo).Bytes()
	dstState.PendingBalanceHi = elgamal.Add(dstHi, incHi).Bytes()
	dstState.PendingBalanceCreditCounter++

	if err := putStateTxn(txn, srcState); err != nil {
		return err
	}
	if err := putStateTxn(txn, dstState); err != nil {
		return err
	}

	s.logger.Debugf("机密转账完成: source=%s, dest=%s", source, dest)
	return nil
}

// ==================== 内部辅助 ====================

func (s *Service) getState(ctx context.Context, account types.Address) (*confidentialInterface.AccountState, error) {
	data, err := s.store.Get(ctx, stateKey(account))
	if err != nil {
		return nil, fmt.Errorf("读取机密账户状态失败: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	var state confidentialInterface.AccountState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("解码机密账户状态失败: %w", err)
	}
	return &state, nil
}

func (s *Service) putState(ctx context.Context, state *confidentialInterface.AccountState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("编码机密账户状态失败: %w", err)
	}
	return s.store.Set(ctx, stateKey(state.Address), data)
}

// getStateTxn 事务内读取机密账户状态，未配置时返回nil
func getStateTxn(txn storageInterface.Transaction, account types.Address) (*confidentialInterface.AccountState, error) {
	data, err := txn.Get(stateKey(account))
	if err != nil {
		return nil, fmt.Errorf("读取机密账户状态失败: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	var state confidentialInterface.AccountState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("解码机密账户状态失败: %w", err)
	}
	return &state, nil
}

// requireStateTxn 事务内读取机密账户状态，未配置时返回错误
func requireStateTxn(txn storageInterface.Transaction, account types.Address) (*confidentialInterface.AccountState, error) {
	state, err := getStateTxn(txn, account)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, WrapAccountNotConfiguredError(account.String())
	}
	return state, nil
}

func putStateTxn(txn storageInterface.Transaction, state *confidentialInterface.AccountState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("编码机密账户状态失败: %w", err)
	}
	return txn.Set(stateKey(state.Address), data)
}

func stateKey(account types.Address) []byte {
	return []byte(accountKeyPrefix + account.String())
}

// decodeCiphertext 解码64字节密文，失败映射为同态运算错误
func decodeCiphertext(b types.ElGamalCiphertext) (elgamal.Ciphertext, error) {
	ct, err := elgamal.FromBytes(b)
	if err != nil {
		return elgamal.Ciphertext{}, fmt.Errorf("%w: %v", ErrCiphertextArithmeticFailed, err)
	}
	return ct, nil
}
