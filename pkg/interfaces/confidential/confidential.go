// Package confidential 提供机密余额账本服务的接口定义
//
// 对应规范中的Confidential Ledger Service：维护每账户在其专属
// ElGamal公钥下的加密余额（available、pending_lo、pending_hi）。
// 每个揭示金额或变更余额的调用都需要一个或多个证明上下文记录。
//
// Withdraw与Transfer不直接执行：它们返回一串子操作（指令），
// 每条指令列出其期望作用的账户身份；调用方必须把每个身份解析到
// 自己已知的账户上，再用托管账户的程序派生签名权能逐条Invoke。
// 这是对恶意或有缺陷的子操作列表静默作用于错误账户的防御。
package confidential

import (
	"context"

	storageInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
	"github.com/gachago/v1/pkg/types"
)

// AccountState 机密账户状态
type AccountState struct {
	Address types.Address `json:"address"`
	Mint    types.Address `json:"mint"`

	// ElGamalPubkey 账户专属的机密余额公钥
	ElGamalPubkey types.ElGamalPubkey `json:"elgamal_pubkey"`

	// AvailableBalance 可用余额密文，只有apply_pending之后的存入才计入
	AvailableBalance types.ElGamalCiphertext `json:"available_balance"`

	// PendingBalanceLo/Hi 待处理余额密文（金额低16位/高48位分开累加）
	PendingBalanceLo types.ElGamalCiphertext `json:"pending_balance_lo"`
	PendingBalanceHi types.ElGamalCiphertext `json:"pending_balance_hi"`

	// PendingBalanceCreditCounter 待处理入账计数器
	// apply_pending必须携带与之相等的期望值，防止基于陈旧状态的套用
	PendingBalanceCreditCounter uint64 `json:"pending_balance_credit_counter"`

	// DecryptableAvailableBalance 可解密余额快照（账本不解密，仅保存）
	DecryptableAvailableBalance types.AeCiphertext `json:"decryptable_available_balance"`
}

// InstructionOp 子操作类型
type InstructionOp string

const (
	// OpVerifyEqualityProof 校验密文-承诺相等性证明上下文
	OpVerifyEqualityProof InstructionOp = "verify_ciphertext_commitment_equality"

	// OpVerifyValidityProof 校验分组密文有效性证明上下文
	OpVerifyValidityProof InstructionOp = "verify_grouped_ciphertext_validity"

	// OpVerifyRangeProof 校验批量范围证明上下文
	OpVerifyRangeProof InstructionOp = "verify_batched_range_proof"

	// OpWithdraw 将金额从机密可用余额移出到同账户的明文余额
	OpWithdraw InstructionOp = "withdraw"

	// OpTransfer 机密-机密转账（携带审计方密文）
	OpTransfer InstructionOp = "transfer"
)

// Instruction 账本返回的子操作
//
// Accounts列出该子操作期望作用的账户身份；调用方必须将每个身份
// 解析为自己已知的账户，任何无法识别的身份都应使整个揭示流程
// 以InvalidAccount失败——绝不放行未解析的身份。
type Instruction struct {
	Op       InstructionOp   `json:"op"`
	Accounts []types.Address `json:"accounts"`

	// 随指令携带的参数（按Op取用，其余保持零值）
	Amount                         uint64                  `json:"amount,omitempty"`
	Decimals                       uint8                   `json:"decimals,omitempty"`
	NewDecryptableAvailableBalance types.AeCiphertext      `json:"new_decryptable_available_balance,omitempty"`
	AuditorCiphertextLo            types.ElGamalCiphertext `json:"auditor_ciphertext_lo,omitempty"`
	AuditorCiphertextHi            types.ElGamalCiphertext `json:"auditor_ciphertext_hi,omitempty"`
}

// Service 机密余额账本服务接口
type Service interface {
	// ConfigureAccount 为既有代币账户开启机密余额
	//
	// 需提供账户ElGamal公钥、零余额的可解密快照承诺，
	// 以及公钥格式良好性的证明上下文记录；由账户签名权限授权。
	ConfigureAccount(ctx context.Context, account types.Address, pubkey types.ElGamalPubkey,
		decryptableZeroBalance types.AeCiphertext, pubkeyValidityProof types.Address,
		authority types.SigningAuthority) error

	// GetAccountState 读取机密账户状态，未配置时返回错误
	GetAccountState(ctx context.Context, account types.Address) (*AccountState, error)

	// Deposit 从from的明文余额存入to的待处理余额
	//
	// 由from的签名权限授权；每次存入递增to的待处理入账计数器。
	// 资助方的密钥与托管账户不同，这正是之后需要重加密快照的原因。
	Deposit(ctx context.Context, from, to types.Address, amount uint64,
		authority types.SigningAuthority) error

	// ApplyPendingBalance 将待处理余额并入可用余额
	//
	// expectedCreditCounter为调用方读取状态时的计数器值；
	// 若外部存入已使计数器前进，调用必须失败而非基于陈旧计数套用。
	ApplyPendingBalance(ctx context.Context, account types.Address, expectedCreditCounter uint64,
		newDecryptableBalance types.AeCiphertext, authority types.SigningAuthority) error

	// WithdrawInstructions 构造"机密余额 → 明文余额"的子操作序列
	//
	// 账本在Invoke时独立重推导期望陈述（托管账户、声明金额的密文界），
	// 只有自查通过才执行——调用方从不构造密码学声明，只负责路由
	// 已校验的证明上下文。
	WithdrawInstructions(ctx context.Context, account, mint types.Address, amount uint64, decimals uint8,
		newDecryptableBalance types.AeCiphertext, equalityProof, rangeProof types.Address) ([]Instruction, error)

	// TransferInstructions 构造机密-机密转账的子操作序列
	// （equality + validity + range三元组，外加审计方密文低/高位）
	TransferInstructions(ctx context.Context, source, dest, mint types.Address,
		newDecryptableBalance types.AeCiphertext, equalityProof, validityProof, rangeProof types.Address,
		auditorLo, auditorHi types.ElGamalCiphertext) ([]Instruction, error)

	// Invoke 以签名权能执行一条已解析的子操作
	Invoke(ctx context.Context, ix Instruction, signer types.SigningAuthority) error

	// InvokeTxn 在调用方事务内执行一条已解析的子操作
	//
	// 揭示流程把全部子操作与其后的记录落账合并进同一事务，
	// 任何一步失败都使整个事务回滚。
	InvokeTxn(ctx context.Context, txn storageInterface.Transaction, ix Instruction, signer types.SigningAuthority) error
}
