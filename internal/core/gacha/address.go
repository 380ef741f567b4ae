// address.go: 确定性地址派生
//
// 抽取记录与其托管子账户的地址都由抽取序号派生，任何一方都能
// 独立重算；派生入口统一经过程序标识，避免与其他种子空间冲突。
package gacha

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/gachago/v1/pkg/constants"
	"github.com/gachago/v1/pkg/types"
)

// deriveAddress 以程序标识加种子序列派生确定性地址
func deriveAddress(seeds ...[]byte) types.Address {
	h := sha256.New()
	h.Write([]byte(constants.ProgramID))
	for _, seed := range seeds {
		h.Write(seed)
	}

	var addr types.Address
	copy(addr[:], h.Sum(nil))
	return addr
}

// GameConfigAddress 游戏配置单例的地址
func GameConfigAddress() types.Address {
	return deriveAddress([]byte(constants.GameConfigSeed))
}

// PullAddress 抽取记录的地址，同时充当托管子账户的签名权限地址
func PullAddress(id uint64) types.Address {
	return deriveAddress([]byte(constants.PullSeed), pullIDSeed(id))
}

// RewardVaultAddress 抽取专属机密托管子账户的地址
func RewardVaultAddress(id uint64) types.Address {
	return deriveAddress([]byte(constants.RewardVaultSeed), pullIDSeed(id))
}

func pullIDSeed(id uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], id)
	return b[:]
}
