// Package constants 提供系统级常量定义
package constants

// 确定性地址派生种子
//
// 任何一方都能据此重新计算游戏配置、抽取记录和托管子账户的地址。
const (
	// GameConfigSeed 游戏配置单例的派生种子
	GameConfigSeed = "game_config"

	// PullSeed 抽取记录的派生种子（与小端序id字节共同派生）
	PullSeed = "pull"

	// RewardVaultSeed 抽取托管子账户的派生种子（与Pull地址共同派生）
	RewardVaultSeed = "reward_vault"

	// ProofContextSeed 证明上下文记录的派生种子
	ProofContextSeed = "proof_context"
)

// ProgramID 核心协议的程序标识，参与所有派生地址的计算
//
// 相同种子在不同程序下派生出不同地址，防止跨协议的地址碰撞。
const ProgramID = "gachago/confidential-gacha/v1"
