// Package gacha 提供盲盒抽取协议核心的接口定义
//
// 🎯 **抽取生命周期状态机 (Pull Lifecycle State Machine)**
//
// 核心契约：Created → Verified → Bought → Claimed。
// 运营方把隐藏奖励金额承诺进可购买的槽位而不揭示；买家支付固定
// 售价；随后在唯一授权的揭示点把加密托管余额原子地转成给买家的
// 明文转账。每一步都依赖外部校验的零知识证明上下文作为唯一信任锚。
package gacha

import (
	"context"

	"github.com/gachago/v1/pkg/types"
)

// InitializeGameConfigParams 初始化游戏配置的参数
type InitializeGameConfigParams struct {
	Authority    types.Address `json:"authority"`
	PurchaseMint types.Address `json:"purchase_mint"`
	RewardMint   types.Address `json:"reward_mint"`
	GameVault    types.Address `json:"game_vault"`
	PullPrice    uint64        `json:"pull_price"`
}

// CreatePullParams 创建抽取槽位的参数
type CreatePullParams struct {
	// PullID 必须等于last_pull_id+1，否则以InvalidPullId失败
	PullID uint64 `json:"pull_id"`

	// EncryptedAmount 运营方承诺的加密奖励金额（不透明）
	EncryptedAmount types.ElGamalCiphertext `json:"encrypted_amount"`

	// ElGamalPubkey 托管子账户的机密余额公钥
	ElGamalPubkey types.ElGamalPubkey `json:"elgamal_pubkey"`

	// DecryptableZeroBalance 托管初始可解密状态的零余额承诺（Base64编码）
	DecryptableZeroBalance string `json:"decryptable_zero_balance"`

	// PubkeyValidityProof 公钥格式良好性证明上下文的地址
	PubkeyValidityProof types.Address `json:"pubkey_validity_proof"`
}

// ApplyPullPendingBalanceParams 套用待处理余额的参数
type ApplyPullPendingBalanceParams struct {
	PullID uint64 `json:"pull_id"`

	// NewDecryptableAvailableBalance 在托管自身密钥材料下
	// 重新加密的可解密余额快照（Base64编码）
	NewDecryptableAvailableBalance string `json:"new_decryptable_available_balance"`
}

// VerifyPullParams 承诺校验协议的参数
type VerifyPullParams struct {
	PullID uint64 `json:"pull_id"`

	// ZeroCiphertextProof 运营方链下生成的零密文证明上下文地址
	ZeroCiphertextProof types.Address `json:"zero_ciphertext_proof"`

	// 随同提交、供之后揭示使用的证明上下文引用
	EqualityProof types.Address `json:"equality_proof"`
	ValidityProof types.Address `json:"validity_proof"`
	RangeProof    types.Address `json:"range_proof"`
}

// BuyPullParams 购买抽取的参数
type BuyPullParams struct {
	PullID uint64 `json:"pull_id"`

	Buyer types.Address `json:"buyer"`

	// BuyerPurchaseAccount 买家的购买资产账户，售价从这里转入金库
	BuyerPurchaseAccount types.Address `json:"buyer_purchase_account"`
}

// OpenPullParams 揭示（withdraw-to-plain变体）的参数
type OpenPullParams struct {
	PullID uint64 `json:"pull_id"`

	Buyer types.Address `json:"buyer"`

	// BuyerRewardAccount 买家的奖励资产账户
	BuyerRewardAccount types.Address `json:"buyer_reward_account"`

	// Amount 揭示的明文金额与精度
	Amount   uint64 `json:"amount"`
	Decimals uint8  `json:"decimals"`

	// NewDecryptableAvailableBalance 提取后托管余额的新快照（Base64编码）
	NewDecryptableAvailableBalance string `json:"new_decryptable_available_balance"`

	// 揭示所需的证明上下文（等值 + 范围）
	EqualityProof types.Address `json:"equality_proof"`
	RangeProof    types.Address `json:"range_proof"`
}

// ClaimPullParams 揭示（机密-机密变体）的参数
type ClaimPullParams struct {
	PullID uint64 `json:"pull_id"`

	Buyer types.Address `json:"buyer"`

	// BuyerRewardAccount 买家的机密奖励账户
	BuyerRewardAccount types.Address `json:"buyer_reward_account"`

	Amount   uint64 `json:"amount"`
	Decimals uint8  `json:"decimals"`

	NewDecryptableAvailableBalance string `json:"new_decryptable_available_balance"`

	// 揭示所需的证明上下文三元组
	EqualityProof types.Address `json:"equality_proof"`
	ValidityProof types.Address `json:"validity_proof"`
	RangeProof    types.Address `json:"range_proof"`

	// 审计方密文低/高位（Base64编码，解析失败以
	// CipherTextBalanceConversionFailed拒绝）
	AuditorCiphertextLo string `json:"auditor_ciphertext_lo"`
	AuditorCiphertextHi string `json:"auditor_ciphertext_hi"`
}

// Service 抽取协议核心服务接口
//
// 执行模型：单线程，每个请求一次状态转换；每个请求要么完整成功
// 要么原子失败，不留下部分持久化状态。重试策略是调用方的事。
type Service interface {
	// InitializeGameConfig 创建游戏配置单例
	InitializeGameConfig(ctx context.Context, params InitializeGameConfigParams) (*types.GameConfig, error)

	// CreatePull 创建抽取槽位并承诺加密金额
	CreatePull(ctx context.Context, params CreatePullParams) (*types.Pull, error)

	// ApplyPullPendingBalance 将托管的待处理入账并入可用余额
	ApplyPullPendingBalance(ctx context.Context, params ApplyPullPendingBalanceParams) error

	// VerifyPull 承诺校验协议：在不揭示金额的前提下证明
	// 托管可用余额与承诺密文相等
	VerifyPull(ctx context.Context, params VerifyPullParams) error

	// BuyPull 购买：固定售价的普通转账
	BuyPull(ctx context.Context, params BuyPullParams) error

	// OpenPull 揭示（withdraw-to-plain变体）：托管余额提取为明文并转给买家
	OpenPull(ctx context.Context, params OpenPullParams) error

	// ClaimPull 揭示（机密-机密变体）：托管余额机密转入买家机密账户
	ClaimPull(ctx context.Context, params ClaimPullParams) error

	// GetGameConfig 读取游戏配置
	GetGameConfig(ctx context.Context) (*types.GameConfig, error)

	// GetPull 读取抽取记录
	GetPull(ctx context.Context, id uint64) (*types.Pull, error)
}
