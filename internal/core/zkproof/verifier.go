// Package zkproof 提供证明校验与上下文记录管理
//
// 🎯 **核心职责**：校验链下证明方提交的证明载荷，生成绑定到
// （证明类型、权限、公开陈述）的一次性上下文记录
//
// 💡 **设计理念**：
// - sigma协议（Schnorr、Chaum-Pedersen DLEQ）直接在曲线上校验
// - 见证重算类证明在校验边界内重算公开陈述，校验后即丢弃见证
// - 上下文记录持久化到BadgerDB，支持显式关闭回收
package zkproof

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/gachago/v1/internal/core/infrastructure/crypto/elgamal"
	"github.com/gachago/v1/internal/core/infrastructure/metrics"
	"github.com/gachago/v1/pkg/constants"
	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
	zkproofInterface "github.com/gachago/v1/pkg/interfaces/zkproof"
	"github.com/gachago/v1/pkg/types"
)

// contextKeyPrefix 上下文记录的存储键前缀
const contextKeyPrefix = "zkproof/context/"

// pendingBalanceLoBits 待处理余额低位分量的位宽
const pendingBalanceLoBits = 16

// pendingBalanceHiBits 待处理余额高位分量的位宽
const pendingBalanceHiBits = 48

// Service 证明校验服务实现
type Service struct {
	store   storageInterface.BadgerStore
	logger  logInterface.Logger
	metrics *metrics.Metrics

	mu sync.Mutex // 串行化上下文记录的创建与关闭
}

// NewService 创建证明校验服务
func NewService(store storageInterface.BadgerStore, logger logInterface.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		logger:  logger,
		metrics: m,
	}
}

// VerifyAndCreate 校验证明载荷并生成上下文记录
func (s *Service) VerifyAndCreate(ctx context.Context, proofType zkproofInterface.ProofType,
	payload []byte, authority types.Address) (*zkproofInterface.ContextState, error) {

	var state *zkproofInterface.ContextState
	var err error

	switch proofType {
	case zkproofInterface.ProofTypePubkeyValidity:
		state, err = s.verifyPubkeyValidity(payload)
	case zkproofInterface.ProofTypeZeroCiphertext:
		state, err = s.verifyZeroCiphertext(payload)
	case zkproofInterface.ProofTypeCiphertextCommitmentEquality:
		state, err = s.verifyEquality(payload)
	case zkproofInterface.ProofTypeGroupedCiphertextValidity:
		state, err = s.verifyValidity(payload)
	case zkproofInterface.ProofTypeBatchedRangeProof:
		state, err = s.verifyRange(payload)
	default:
		err = WrapUnsupportedProofTypeError(string(proofType))
	}

	if err != nil {
		s.recordVerification(proofType, "failed")
		return nil, err
	}

	state.ProofType = proofType
	state.Authority = authority
	state.Address = deriveContextAddress(proofType, payload, authority)

	if err := s.persist(ctx, state); err != nil {
		return nil, err
	}

	s.recordVerification(proofType, "ok")
	s.logger.Debugf("证明上下文已创建: type=%s, address=%s", proofType, state.Address)
	return state, nil
}

// Get 读取上下文记录
func (s *Service) Get(ctx context.Context, address types.Address) (*zkproofInterface.ContextState, error) {
	data, err := s.store.Get(ctx, contextKey(address))
	if err != nil {
		return nil, fmt.Errorf("读取证明上下文失败: %w", err)
	}
	if data == nil {
		return nil, WrapContextNotFoundError(address.String())
	}

	var state zkproofInterface.ContextState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("解码证明上下文失败: %w", err)
	}
	return &state, nil
}

// CloseContextState 关闭上下文记录并回收存储
// 只有记录的Authority可以关闭
func (s *Service) CloseContextState(ctx context.Context, address types.Address, authority types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.Get(ctx, address)
	if err != nil {
		return err
	}

	if !state.Authority.Equal(authority) {
		return WrapContextAuthorityMismatchError(address.String(), state.Authority.String(), authority.String())
	}

	if err := s.store.Delete(ctx, contextKey(address)); err != nil {
		return fmt.Errorf("删除证明上下文失败: %w", err)
	}

	s.logger.Debugf("证明上下文已关闭: address=%s", address)
	return nil
}

// ==================== 各证明类型的校验实现 ====================

// verifyPubkeyValidity 校验公钥格式良好性证明（Schnorr PoK）
//
// 检查 z·G == A + c·P，其中 c = H(dst, pubkey, A)。
func (s *Service) verifyPubkeyValidity(payload []byte) (*zkproofInterface.ContextState, error) {
	p, err := decodePubkeyValidityPayload(payload)
	if err != nil {
		return nil, err
	}

	pk, err := elgamal.PublicKeyFromBytes(p.Pubkey)
	if err != nil {
		return nil, WrapInvalidPointEncodingError("pubkey", err)
	}

	var a bn254.G1Affine
	if _, err := a.SetBytes(p.A[:]); err != nil {
		return nil, WrapInvalidPointEncodingError("commitment_point", err)
	}

	c := computeChallenge(pubkeyValidityDST, p.Pubkey[:], p.A[:])

	g := elgamal.GeneratorG()
	var lhs, cp bn254.G1Affine
	lhs.ScalarMultiplication(&g, p.Z.BigInt(new(big.Int)))
	cp.ScalarMultiplication(&pk.P, c.BigInt(new(big.Int)))
	rhs := addAffine(a, cp)

	if !lhs.Equal(&rhs) {
		return nil, WrapProofVerificationFailedError("pubkey_validity", "schnorr equation mismatch")
	}

	return &zkproofInterface.ContextState{
		Pubkey: p.Pubkey,
	}, nil
}

// verifyZeroCiphertext 校验零密文证明（Chaum-Pedersen DLEQ）
//
// 同一响应z对两条等式成立：z·G == A1 + c·P 且 z·C1 == A2 + c·C2，
// 即证明者知道s使得 P = s·G 且 C2 = s·C1——密文解密为零。
func (s *Service) verifyZeroCiphertext(payload []byte) (*zkproofInterface.ContextState, error) {
	p, err := decodeZeroCiphertextPayload(payload)
	if err != nil {
		return nil, err
	}

	pk, err := elgamal.PublicKeyFromBytes(p.Pubkey)
	if err != nil {
		return nil, WrapInvalidPointEncodingError("pubkey", err)
	}

	ct, err := elgamal.FromBytes(p.Ciphertext)
	if err != nil {
		return nil, WrapInvalidPointEncodingError("ciphertext", err)
	}

	var a1, a2 bn254.G1Affine
	if _, err := a1.SetBytes(p.A1[:]); err != nil {
		return nil, WrapInvalidPointEncodingError("commitment_point_1", err)
	}
	if _, err := a2.SetBytes(p.A2[:]); err != nil {
		return nil, WrapInvalidPointEncodingError("commitment_point_2", err)
	}

	c := computeChallenge(zeroCiphertextDST, p.Pubkey[:], p.Ciphertext[:], p.A1[:], p.A2[:])
	zBig := p.Z.BigInt(new(big.Int))
	cBig := c.BigInt(new(big.Int))

	// z·G == A1 + c·P
	g := elgamal.GeneratorG()
	var lhs1, cp bn254.G1Affine
	lhs1.ScalarMultiplication(&g, zBig)
	cp.ScalarMultiplication(&pk.P, cBig)
	rhs1 := addAffine(a1, cp)
	if !lhs1.Equal(&rhs1) {
		return nil, WrapProofVerificationFailedError("zero_ciphertext", "dleq equation 1 mismatch")
	}

	// z·C1 == A2 + c·C2
	var lhs2, cc2 bn254.G1Affine
	lhs2.ScalarMultiplication(&ct.C1, zBig)
	cc2.ScalarMultiplication(&ct.C2, cBig)
	rhs2 := addAffine(a2, cc2)
	if !lhs2.Equal(&rhs2) {
		return nil, WrapProofVerificationFailedError("zero_ciphertext", "dleq equation 2 mismatch")
	}

	return &zkproofInterface.ContextState{
		Pubkey:     p.Pubkey,
		Ciphertext: p.Ciphertext,
	}, nil
}

// verifyEquality 校验密文-承诺相等性证明（见证重算）
//
// 以见证(amount, r, blinding)重算密文与承诺，两侧都与声明
// 一致才通过；见证在本函数返回后即不再被引用。
func (s *Service) verifyEquality(payload []byte) (*zkproofInterface.ContextState, error) {
	p, err := decodeEqualityPayload(payload)
	if err != nil {
		return nil, err
	}

	pk, err := elgamal.PublicKeyFromBytes(p.Pubkey)
	if err != nil {
		return nil, WrapInvalidPointEncodingError("pubkey", err)
	}

	recomputedCt := elgamal.EncryptWithRandomness(pk, p.Amount, p.EncRandomness)
	if !recomputedCt.Bytes().Equal(p.Ciphertext) {
		return nil, WrapProofVerificationFailedError("ciphertext_commitment_equality", "ciphertext recomputation mismatch")
	}

	if elgamal.Commit(p.Amount, p.Blinding) != elgamal.Commitment(p.Commitment) {
		return nil, WrapProofVerificationFailedError("ciphertext_commitment_equality", "commitment recomputation mismatch")
	}

	return &zkproofInterface.ContextState{
		Pubkey:     p.Pubkey,
		Ciphertext: p.Ciphertext,
		Commitment: p.Commitment,
	}, nil
}

// verifyValidity 校验分组密文有效性证明（见证重算）
//
// 接收方与审计方的低/高位密文必须在各自公钥下、以共享随机数
// 加密同一对金额分量，且分量位宽符合16/48位拆分。
func (s *Service) verifyValidity(payload []byte) (*zkproofInterface.ContextState, error) {
	p, err := decodeValidityPayload(payload)
	if err != nil {
		return nil, err
	}

	if p.AmountLo >= 1<<pendingBalanceLoBits {
		return nil, WrapProofVerificationFailedError("grouped_ciphertext_validity", "low component exceeds 16 bits")
	}
	if p.AmountHi >= 1<<pendingBalanceHiBits {
		return nil, WrapProofVerificationFailedError("grouped_ciphertext_validity", "high component exceeds 48 bits")
	}

	destPk, err := elgamal.PublicKeyFromBytes(p.DestPubkey)
	if err != nil {
		return nil, WrapInvalidPointEncodingError("dest_pubkey", err)
	}
	auditorPk, err := elgamal.PublicKeyFromBytes(p.AuditorPubkey)
	if err != nil {
		return nil, WrapInvalidPointEncodingError("auditor_pubkey", err)
	}

	checks := []struct {
		name string
		got  types.ElGamalCiphertext
		want types.ElGamalCiphertext
	}{
		{"dest_lo", elgamal.EncryptWithRandomness(destPk, p.AmountLo, p.RLo).Bytes(), p.CtDestLo},
		{"dest_hi", elgamal.EncryptWithRandomness(destPk, p.AmountHi, p.RHi).Bytes(), p.CtDestHi},
		{"auditor_lo", elgamal.EncryptWithRandomness(auditorPk, p.AmountLo, p.RLo).Bytes(), p.CtAuditorLo},
		{"auditor_hi", elgamal.EncryptWithRandomness(auditorPk, p.AmountHi, p.RHi).Bytes(), p.CtAuditorHi},
	}
	for _, check := range checks {
		if !check.got.Equal(check.want) {
			return nil, WrapProofVerificationFailedError("grouped_ciphertext_validity",
				fmt.Sprintf("%s ciphertext recomputation mismatch", check.name))
		}
	}

	return &zkproofInterface.ContextState{
		Pubkey: p.DestPubkey,
		GroupedCiphertexts: []types.ElGamalCiphertext{
			p.CtDestLo, p.CtDestHi, p.CtAuditorLo, p.CtAuditorHi,
		},
	}, nil
}

// verifyRange 校验批量范围证明（见证重算）
func (s *Service) verifyRange(payload []byte) (*zkproofInterface.ContextState, error) {
	p, err := decodeRangePayload(payload)
	if err != nil {
		return nil, err
	}

	if p.BitLength == 0 || p.BitLength > 64 {
		return nil, WrapProofVerificationFailedError("batched_range_proof", "unsupported bit length")
	}
	if p.BitLength < 64 && p.Amount >= 1<<p.BitLength {
		return nil, fmt.Errorf("%w: amount=%d, bits=%d", ErrRangeExceeded, p.Amount, p.BitLength)
	}

	if elgamal.Commit(p.Amount, p.Blinding) != elgamal.Commitment(p.Commitment) {
		return nil, WrapProofVerificationFailedError("batched_range_proof", "commitment recomputation mismatch")
	}

	return &zkproofInterface.ContextState{
		Commitment: p.Commitment,
		BitLength:  p.BitLength,
	}, nil
}

// ==================== 内部辅助 ====================

// persist 持久化上下文记录
func (s *Service) persist(ctx context.Context, state *zkproofInterface.ContextState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("编码证明上下文失败: %w", err)
	}
	if err := s.store.Set(ctx, contextKey(state.Address), data); err != nil {
		return fmt.Errorf("持久化证明上下文失败: %w", err)
	}
	return nil
}

// recordVerification 记录证明校验指标
func (s *Service) recordVerification(proofType zkproofInterface.ProofType, result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ProofVerifications.WithLabelValues(string(proofType), result).Inc()
}

// contextKey 上下文记录的存储键
func contextKey(address types.Address) []byte {
	return []byte(contextKeyPrefix + address.String())
}

// deriveContextAddress 派生上下文记录的确定性地址
//
// 同一(类型, 载荷, 权限)三元组总是派生出同一地址，
// 重复提交等价于覆盖同一条记录。
func deriveContextAddress(proofType zkproofInterface.ProofType, payload []byte, authority types.Address) types.Address {
	payloadHash := sha256.Sum256(payload)

	h := sha256.New()
	h.Write([]byte(constants.ProgramID))
	h.Write([]byte(constants.ProofContextSeed))
	h.Write([]byte(proofType))
	h.Write(payloadHash[:])
	h.Write(authority[:])

	var addr types.Address
	copy(addr[:], h.Sum(nil))
	return addr
}

// addAffine 仿射点加法
func addAffine(a, b bn254.G1Affine) bn254.G1Affine {
	var acc bn254.G1Jac
	acc.FromAffine(&a)
	acc.AddMixed(&b)
	var out bn254.G1Affine
	out.FromJacobian(&acc)
	return out
}
