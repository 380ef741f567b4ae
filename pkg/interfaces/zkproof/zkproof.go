// Package zkproof 提供零知识证明校验服务的接口定义
//
// 对应规范中的Proof Verifier Service：给定证明载荷，校验后生成
// 绑定到（证明类型、声明权限、公开陈述）的**证明上下文记录**。
// 上下文记录是一次性的校验产物，可显式关闭以回收存储。
//
// 核心协议从不评估证明本身——它只把上下文记录当作带类型的
// 不透明陈述，与独立重算的值做逐项比对。
package zkproof

import (
	"context"

	"github.com/gachago/v1/pkg/types"
)

// ProofType 证明类型
type ProofType string

const (
	// ProofTypePubkeyValidity ElGamal公钥格式良好性证明（Schnorr）
	ProofTypePubkeyValidity ProofType = "pubkey_validity"

	// ProofTypeZeroCiphertext 零密文证明（Chaum-Pedersen DLEQ）：
	// 声明某密文在指定公钥下解密为零
	ProofTypeZeroCiphertext ProofType = "zero_ciphertext"

	// ProofTypeCiphertextCommitmentEquality 密文-承诺相等性证明：
	// 声明某密文与某Pedersen承诺加密/承诺了同一明文
	ProofTypeCiphertextCommitmentEquality ProofType = "ciphertext_commitment_equality"

	// ProofTypeGroupedCiphertextValidity 分组密文有效性证明
	// （机密转账变体，声明发送方/接收方/审计方三组密文格式良好）
	ProofTypeGroupedCiphertextValidity ProofType = "grouped_ciphertext_validity"

	// ProofTypeBatchedRangeProof 批量范围证明：
	// 声明承诺值位于[0, 2^BitLength)
	ProofTypeBatchedRangeProof ProofType = "batched_range_proof"
)

// ContextState 证明上下文记录
//
// 单次使用的校验产物；公开陈述按证明类型填充对应字段，
// 其余字段保持零值。
type ContextState struct {
	Address   types.Address `json:"address"`
	ProofType ProofType     `json:"proof_type"`

	// Authority 上下文权限：有权关闭该记录的身份，
	// 也是核心协议交叉检查的"声明控制权限"
	Authority types.Address `json:"authority"`

	// Pubkey 陈述所绑定的ElGamal公钥
	// （pubkey_validity、zero_ciphertext、equality使用）
	Pubkey types.ElGamalPubkey `json:"pubkey"`

	// Ciphertext 陈述中的密文
	// （zero_ciphertext：声称解密为零的密文；
	// equality：声称与承诺同值的密文）
	Ciphertext types.ElGamalCiphertext `json:"ciphertext"`

	// Commitment 陈述中的Pedersen承诺（equality与range共享，用于链接）
	Commitment [32]byte `json:"commitment"`

	// BitLength 范围证明的位长上界
	BitLength uint8 `json:"bit_length"`

	// GroupedCiphertexts 分组密文（validity变体：发送方/接收方/审计方）
	GroupedCiphertexts []types.ElGamalCiphertext `json:"grouped_ciphertexts,omitempty"`
}

// Service 证明校验服务接口
type Service interface {
	// VerifyAndCreate 校验证明载荷并生成上下文记录
	//
	// payload为链下证明方生成的编码载荷，按proofType解码校验；
	// 校验失败不产生任何记录。authority为上下文权限。
	VerifyAndCreate(ctx context.Context, proofType ProofType, payload []byte, authority types.Address) (*ContextState, error)

	// Get 读取上下文记录，不存在时返回错误
	Get(ctx context.Context, address types.Address) (*ContextState, error)

	// CloseContextState 关闭上下文记录并回收存储
	// 只有记录的Authority可以关闭；记录不存在或权限不符时返回错误
	CloseContextState(ctx context.Context, address types.Address, authority types.Address) error
}
