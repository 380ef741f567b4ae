// signer.go: 程序派生的签名权能
//
// 托管子账户的对外转账由抽取记录本身授权，从不经手人类密钥。
// 权能对象只携带派生地址，不存在可泄露的原始签名材料。
package gacha

import (
	"github.com/gachago/v1/pkg/types"
)

// pullAuthority 抽取记录充当的托管签名权能
type pullAuthority struct {
	addr types.Address
}

// Address 返回权能所代表的签名权限地址
func (a pullAuthority) Address() types.Address {
	return a.addr
}

// PullAuthority 由抽取序号派生托管子账户的签名权能
func PullAuthority(id uint64) types.SigningAuthority {
	return pullAuthority{addr: PullAddress(id)}
}

// identityAuthority 已认证请求方的签名权能
//
// 请求进入核心前已由外层完成身份认证，核心据此把请求方地址
// 当作其账户操作的签名权限。
type identityAuthority struct {
	addr types.Address
}

// Address 返回权能所代表的签名权限地址
func (a identityAuthority) Address() types.Address {
	return a.addr
}

// IdentityAuthority 把已认证的请求方地址包装为签名权能
func IdentityAuthority(addr types.Address) types.SigningAuthority {
	return identityAuthority{addr: addr}
}
