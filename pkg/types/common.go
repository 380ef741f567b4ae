package types

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// AddressLen 地址字节长度
const AddressLen = 32

// Address 账户地址（32字节，Base58渲染）
//
// 游戏配置、抽取记录、托管子账户、证明上下文等所有持久化实体
// 都通过Address相互引用；零值表示"未设置"（如尚未购买的buyer）。
type Address [AddressLen]byte

// ZeroAddress 零地址，表示未设置
var ZeroAddress = Address{}

// String 返回Base58编码的地址字符串
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bytes 返回地址的字节切片副本
func (a Address) Bytes() []byte {
	b := make([]byte, AddressLen)
	copy(b, a[:])
	return b
}

// IsZero 判断是否为零地址（未设置）
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Equal 判断两个地址是否相等
func (a Address) Equal(other Address) bool {
	return a == other
}

// MarshalText 实现encoding.TextMarshaler，JSON中以Base58字符串表示
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText 实现encoding.TextUnmarshaler
func (a *Address) UnmarshalText(text []byte) error {
	decoded, err := base58.Decode(string(text))
	if err != nil {
		return fmt.Errorf("无效的Base58地址: %w", err)
	}
	if len(decoded) != AddressLen {
		return fmt.Errorf("无效的地址长度: %d（期望 %d 字节）", len(decoded), AddressLen)
	}
	copy(a[:], decoded)
	return nil
}

// AddressFromBase58 从Base58字符串解析地址
func AddressFromBase58(s string) (Address, error) {
	var a Address
	if err := a.UnmarshalText([]byte(s)); err != nil {
		return ZeroAddress, err
	}
	return a, nil
}

// AddressFromBytes 从字节切片构造地址
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return ZeroAddress, fmt.Errorf("无效的地址长度: %d（期望 %d 字节）", len(b), AddressLen)
	}
	copy(a[:], b)
	return a, nil
}
