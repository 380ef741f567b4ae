package types

// SigningAuthority 签名权能
//
// 账本服务对每个余额变更操作校验"签名者地址 == 账户签名权限地址"。
// 人类身份用密钥签名者表示；程序控制的托管子账户则由核心代码
// 通过确定性种子派生出权能对象（从不暴露原始签名材料），
// 对应链上程序的invoke_signed语义。
type SigningAuthority interface {
	// Address 返回该权能所代表的签名权限地址
	Address() Address
}
