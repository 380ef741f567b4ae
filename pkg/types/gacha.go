package types

// GameConfig 游戏全局配置（单例），持有抽取序号计数器
//
// 由authority创建一次；LastPullID在每次创建Pull时递增，
// 与Pull的持久化处于同一事务，保证下一个Pull的id恒等于LastPullID+1。
type GameConfig struct {
	Authority    Address `json:"authority"`     // 有权创建/验证/揭示抽取的身份
	PurchaseMint Address `json:"purchase_mint"` // 购买资产
	RewardMint   Address `json:"reward_mint"`   // 奖励资产（必须支持机密余额扩展）
	GameVault    Address `json:"game_vault"`    // 购买所得金库
	PullPrice    uint64  `json:"pull_price"`    // 固定公开售价（> 0）
	LastPullID   uint64  `json:"last_pull_id"`  // 单调递增的抽取序号计数器
}

// Pull 一个盲盒抽取槽位及其生命周期状态
//
// 状态机：Created → Verified → Bought → Claimed，Claimed为终态；
// 记录从不删除，作为永久审计凭证保留。
type Pull struct {
	ID          uint64  `json:"id"`           // 序号，创建时等于LastPullID+1
	RewardVault Address `json:"reward_vault"` // 专属机密托管子账户，地址由ID确定性派生

	// EncryptedAmount 创建时承诺的加密奖励金额（对协议不透明，
	// 其正确性由验证协议事后证明，而非创建时检查）
	EncryptedAmount ElGamalCiphertext `json:"encrypted_amount"`

	Buyer          Address `json:"buyer"`           // 买家，购买前为零地址，只设置一次
	Verified       bool    `json:"verified"`        // 承诺校验协议成功后置true
	Claimed        bool    `json:"claimed"`         // 揭示完成后置true（终态）
	RevealedAmount uint64  `json:"revealed_amount"` // 揭示后的明文金额，Claimed前恒为0

	// 揭示时消耗的证明上下文引用，保留用于审计
	EqualityProof Address `json:"equality_proof"`
	ValidityProof Address `json:"validity_proof"`
	RangeProof    Address `json:"range_proof"`

	// 机密转账变体的审计方密文（低/高位），以及揭示后的最终快照
	AuditorCiphertextLo             ElGamalCiphertext `json:"auditor_ciphertext_lo"`
	AuditorCiphertextHi             ElGamalCiphertext `json:"auditor_ciphertext_hi"`
	NewDecryptableAvailableBalance  AeCiphertext      `json:"new_decryptable_available_balance"`
}
