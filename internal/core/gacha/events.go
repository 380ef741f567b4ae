// events.go: 抽取生命周期事件载荷
//
// 每次成功的状态转换发布一个事件，载荷携带序号、托管地址与
// 相关参与方，供链下索引器消费。
package gacha

import (
	"github.com/gachago/v1/pkg/types"
)

// GameConfigInitializedEvent 游戏配置创建事件
type GameConfigInitializedEvent struct {
	Authority types.Address `json:"authority"`
	PullPrice uint64        `json:"pull_price"`
}

// PullCreatedEvent 抽取创建事件
type PullCreatedEvent struct {
	ID              uint64                  `json:"id"`
	RewardVault     types.Address           `json:"reward_vault"`
	EncryptedAmount types.ElGamalCiphertext `json:"encrypted_amount"`
}

// PendingBalanceAppliedEvent 待处理余额并入事件
type PendingBalanceAppliedEvent struct {
	ID          uint64        `json:"id"`
	RewardVault types.Address `json:"reward_vault"`
}

// PullVerifiedEvent 承诺校验通过事件
type PullVerifiedEvent struct {
	ID uint64 `json:"id"`
}

// PullBoughtEvent 购买完成事件
type PullBoughtEvent struct {
	ID    uint64        `json:"id"`
	Buyer types.Address `json:"buyer"`
}

// PullClaimedEvent 揭示完成事件
type PullClaimedEvent struct {
	ID          uint64        `json:"id"`
	RewardVault types.Address `json:"reward_vault"`
	Buyer       types.Address `json:"buyer"`
	Amount      uint64        `json:"amount"`
}
