// Package gacha 提供盲盒抽取协议核心实现
//
// 🎯 **核心职责**：抽取生命周期状态机与机密余额对账协议
//
// 💡 **设计理念**：
// - Created → Verified → Bought → Claimed，每个请求一次状态转换
// - 托管可用余额与承诺密文的相等性由零密文证明上下文建立，
//   核心只把上下文当作带类型的陈述，与独立重算的值逐项比对
// - 揭示阶段返回的子操作列表必须全部解析到已知账户后才执行，
//   任何无法识别的身份都使整个揭示以InvalidAccount失败
package gacha

import (
	"context"
	"fmt"
	"sync"

	"github.com/gachago/v1/internal/core/infrastructure/crypto/elgamal"
	"github.com/gachago/v1/internal/core/infrastructure/metrics"
	confidentialInterface "github.com/gachago/v1/pkg/interfaces/confidential"
	gachaInterface "github.com/gachago/v1/pkg/interfaces/gacha"
	eventInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/event"
	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
	tokenInterface "github.com/gachago/v1/pkg/interfaces/token"
	zkproofInterface "github.com/gachago/v1/pkg/interfaces/zkproof"
	"github.com/gachago/v1/pkg/types"
)

// Service 抽取协议核心服务实现
type Service struct {
	repo    *Repository
	tokens  tokenInterface.Service
	ledger  confidentialInterface.Service
	proofs  zkproofInterface.Service
	events  eventInterface.EventBus
	metrics *metrics.Metrics
	logger  logInterface.Logger

	mu sync.Mutex // 每个请求一次状态转换，全部串行化
}

// NewService 创建抽取协议核心服务
func NewService(repo *Repository, tokens tokenInterface.Service, ledger confidentialInterface.Service,
	proofs zkproofInterface.Service, events eventInterface.EventBus, m *metrics.Metrics,
	logger logInterface.Logger) *Service {
	return &Service{
		repo:    repo,
		tokens:  tokens,
		ledger:  ledger,
		proofs:  proofs,
		events:  events,
		metrics: m,
		logger:  logger,
	}
}

// InitializeGameConfig 创建游戏配置单例
func (s *Service) InitializeGameConfig(ctx context.Context, params gachaInterface.InitializeGameConfigParams) (*types.GameConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if params.PullPrice == 0 {
		return nil, s.fail("init_game_config", ErrInvalidZeroPullPrice)
	}

	// 奖励资产必须携带机密转账扩展
	rewardMint, err := s.tokens.GetMint(ctx, params.RewardMint)
	if err != nil {
		return nil, s.fail("init_game_config", fmt.Errorf("%w: %v", ErrInvalidRewardMint, err))
	}
	if !rewardMint.HasExtension(tokenInterface.MintExtensionConfidentialTransfer) {
		return nil, s.fail("init_game_config", ErrInvalidRewardMint)
	}

	// 金库必须是权限持有的购买资产账户
	vault, err := s.tokens.GetAccount(ctx, params.GameVault)
	if err != nil {
		return nil, s.fail("init_game_config", fmt.Errorf("%w: %v", ErrInvalidGameVault, err))
	}
	if !vault.Mint.Equal(params.PurchaseMint) || !vault.Owner.Equal(params.Authority) {
		return nil, s.fail("init_game_config", ErrInvalidGameVault)
	}

	existing, err := s.repo.GetGameConfig(ctx)
	if err != nil {
		return nil, s.fail("init_game_config", err)
	}
	if existing != nil {
		return nil, s.fail("init_game_config", ErrGameConfigAlreadyInitialized)
	}

	config := &types.GameConfig{
		Authority:    params.Authority,
		PurchaseMint: params.PurchaseMint,
		RewardMint:   params.RewardMint,
		GameVault:    params.GameVault,
		PullPrice:    params.PullPrice,
		LastPullID:   0,
	}
	if err := s.repo.SaveGameConfig(ctx, config); err != nil {
		return nil, s.fail("init_game_config", err)
	}

	s.publish(eventInterface.EventTypeGameConfigInitialized, GameConfigInitializedEvent{
		Authority: params.Authority,
		PullPrice: params.PullPrice,
	})
	s.logger.Infof("游戏配置已初始化: authority=%s, price=%d", params.Authority, params.PullPrice)
	return config, nil
}

// CreatePull 创建抽取槽位并承诺加密金额
func (s *Service) CreatePull(ctx context.Context, params gachaInterface.CreatePullParams) (*types.Pull, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.requireGameConfig(ctx)
	if err != nil {
		return nil, s.fail("create_pull", err)
	}
	if params.PullID != config.LastPullID+1 {
		return nil, s.fail("create_pull", WrapInvalidPullIdError(config.LastPullID+1, params.PullID))
	}

	zeroBalance, err := types.AeCiphertextFromBase64(params.DecryptableZeroBalance)
	if err != nil {
		return nil, s.fail("create_pull", WrapDecryptableBalanceConversionFailedError(err))
	}

	// 托管子账户：地址由序号派生，签名权限是抽取记录本身
	vault := RewardVaultAddress(params.PullID)
	authority := PullAuthority(params.PullID)

	// 失败重试幂等：前次半完成请求留下的托管账户与本次请求一致
	// 则直接复用，不一致则拒绝
	if _, err := s.tokens.CreateAccountAt(ctx, vault, config.RewardMint, authority.Address()); err != nil {
		existing, getErr := s.tokens.GetAccount(ctx, vault)
		if getErr != nil || !existing.Mint.Equal(config.RewardMint) || !existing.Owner.Equal(authority.Address()) {
			return nil, s.fail("create_pull", WrapConfigureTokenAccountFailedError(err))
		}
	}
	if err := s.ledger.ConfigureAccount(ctx, vault, params.ElGamalPubkey, zeroBalance,
		params.PubkeyValidityProof, authority); err != nil {
		state, getErr := s.ledger.GetAccountState(ctx, vault)
		if getErr != nil || !state.ElGamalPubkey.Equal(params.ElGamalPubkey) {
			return nil, s.fail("create_pull", WrapConfigureTokenAccountFailedError(err))
		}
	}

	// 回收公钥证明上下文；托管配置已完成，失败单独署名上浮
	if err := s.proofs.CloseContextState(ctx, params.PubkeyValidityProof, config.Authority); err != nil {
		return nil, s.fail("create_pull", WrapCloseContextStateFailedError(err))
	}

	pull := &types.Pull{
		ID:              params.PullID,
		RewardVault:     vault,
		EncryptedAmount: params.EncryptedAmount,
	}
	if err := s.repo.CreatePullAtomic(ctx, pull); err != nil {
		return nil, s.fail("create_pull", err)
	}

	if s.metrics != nil {
		s.metrics.PullsCreated.Inc()
	}
	s.publish(eventInterface.EventTypePullCreated, PullCreatedEvent{
		ID:              pull.ID,
		RewardVault:     vault,
		EncryptedAmount: params.EncryptedAmount,
	})
	s.logger.Infof("抽取已创建: id=%d, vault=%s", pull.ID, vault)
	return pull, nil
}

// ApplyPullPendingBalance 将托管的待处理入账并入可用余额
func (s *Service) ApplyPullPendingBalance(ctx context.Context, params gachaInterface.ApplyPullPendingBalanceParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pull, err := s.requirePull(ctx, params.PullID)
	if err != nil {
		return s.fail("apply_pending", err)
	}

	snapshot, err := types.AeCiphertextFromBase64(params.NewDecryptableAvailableBalance)
	if err != nil {
		return s.fail("apply_pending", WrapDecryptableBalanceConversionFailedError(err))
	}

	// 读取当前计数器作为期望值传入，外部存入使其前进时套用必须失败
	state, err := s.ledger.GetAccountState(ctx, pull.RewardVault)
	if err != nil {
		return s.fail("apply_pending", err)
	}
	if err := s.ledger.ApplyPendingBalance(ctx, pull.RewardVault, state.PendingBalanceCreditCounter,
		snapshot, PullAuthority(pull.ID)); err != nil {
		return s.fail("apply_pending", err)
	}

	s.publish(eventInterface.EventTypePendingBalanceApplied, PendingBalanceAppliedEvent{
		ID:          pull.ID,
		RewardVault: pull.RewardVault,
	})
	s.logger.Infof("待处理余额已并入: id=%d", pull.ID)
	return nil
}

// VerifyPull 承诺校验协议
//
// 在不揭示金额的前提下证明托管可用余额与承诺密文相等：
// remainder = available − committed 必须与零密文陈述逐位一致。
func (s *Service) VerifyPull(ctx context.Context, params gachaInterface.VerifyPullParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.requireGameConfig(ctx)
	if err != nil {
		return s.fail("verify_pull", err)
	}
	pull, err := s.requirePull(ctx, params.PullID)
	if err != nil {
		return s.fail("verify_pull", err)
	}

	state, err := s.ledger.GetAccountState(ctx, pull.RewardVault)
	if err != nil {
		return s.fail("verify_pull", err)
	}

	proofCtx, err := s.proofs.Get(ctx, params.ZeroCiphertextProof)
	if err != nil {
		return s.fail("verify_pull", err)
	}

	// 陈述只与独立重算的值比对：类型、公钥、权限、差值，依次检查
	if proofCtx.ProofType != zkproofInterface.ProofTypeZeroCiphertext {
		return s.fail("verify_pull", ErrInvalidProofType)
	}
	if !proofCtx.Pubkey.Equal(state.ElGamalPubkey) {
		return s.fail("verify_pull", ErrInvalidElgamalPubkey)
	}
	if !proofCtx.Authority.Equal(config.Authority) {
		return s.fail("verify_pull", ErrInvalidContextAuthority)
	}

	remainder, err := elgamal.SubBytes(state.AvailableBalance, pull.EncryptedAmount)
	if err != nil {
		return s.fail("verify_pull", ErrCiphertextArithmeticFailed)
	}
	if !proofCtx.Ciphertext.Equal(remainder) {
		return s.fail("verify_pull", ErrCiphertextZeroBalanceMismatch)
	}

	pull.Verified = true
	pull.EqualityProof = params.EqualityProof
	pull.ValidityProof = params.ValidityProof
	pull.RangeProof = params.RangeProof
	if err := s.repo.SavePull(ctx, pull); err != nil {
		return s.fail("verify_pull", err)
	}

	if s.metrics != nil {
		s.metrics.PullsVerified.Inc()
	}
	s.publish(eventInterface.EventTypePullVerified, PullVerifiedEvent{ID: pull.ID})
	s.logger.Infof("承诺校验通过: id=%d", pull.ID)
	return nil
}

// BuyPull 购买：固定售价的普通转账
func (s *Service) BuyPull(ctx context.Context, params gachaInterface.BuyPullParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.requireGameConfig(ctx)
	if err != nil {
		return s.fail("buy_pull", err)
	}
	pull, err := s.requirePull(ctx, params.PullID)
	if err != nil {
		return s.fail("buy_pull", err)
	}

	if !pull.Buyer.IsZero() {
		return s.fail("buy_pull", ErrPullAlreadyPurchased)
	}
	if !pull.Verified {
		return s.fail("buy_pull", ErrPullNotVerified)
	}
	if pull.Claimed {
		return s.fail("buy_pull", ErrPullAlreadyClaimed)
	}

	// 售价从不保密，普通转账即可；转账与买家落账在单个事务内提交
	pull.Buyer = params.Buyer
	if err := s.repo.RunInTransaction(ctx, func(txn storageInterface.Transaction) error {
		if err := s.tokens.TransferTxn(txn, params.BuyerPurchaseAccount, config.GameVault,
			config.PullPrice, IdentityAuthority(params.Buyer)); err != nil {
			return err
		}
		return s.repo.SavePullTxn(txn, pull)
	}); err != nil {
		return s.fail("buy_pull", err)
	}

	if s.metrics != nil {
		s.metrics.PullsBought.Inc()
	}
	s.publish(eventInterface.EventTypePullBought, PullBoughtEvent{ID: pull.ID, Buyer: params.Buyer})
	s.logger.Infof("抽取已购买: id=%d, buyer=%s", pull.ID, params.Buyer)
	return nil
}

// OpenPull 揭示（withdraw-to-plain变体）
//
// 托管的机密余额先经证明门控提取为明文，再以抽取记录的派生
// 签名权能向买家做普通转账。
func (s *Service) OpenPull(ctx context.Context, params gachaInterface.OpenPullParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.requireGameConfig(ctx)
	if err != nil {
		return s.fail("open_pull", err)
	}
	pull, err := s.requirePull(ctx, params.PullID)
	if err != nil {
		return s.fail("open_pull", err)
	}

	// 未购买的抽取没有合法的揭示请求方
	if pull.Buyer.IsZero() {
		return s.fail("open_pull", ErrInvalidBuyer)
	}
	if !pull.Buyer.Equal(params.Buyer) {
		return s.fail("open_pull", WrapInvalidBuyerError(pull.Buyer.String(), params.Buyer.String()))
	}
	if pull.Claimed {
		return s.fail("open_pull", ErrPullAlreadyClaimed)
	}

	snapshot, err := types.AeCiphertextFromBase64(params.NewDecryptableAvailableBalance)
	if err != nil {
		return s.fail("open_pull", WrapDecryptableBalanceConversionFailedError(err))
	}

	instructions, err := s.ledger.WithdrawInstructions(ctx, pull.RewardVault, config.RewardMint,
		params.Amount, params.Decimals, snapshot, params.EqualityProof, params.RangeProof)
	if err != nil {
		return s.fail("open_pull", err)
	}

	// 每个子操作命名的账户身份必须解析到本次请求的已知账户
	known := knownAccountSet(
		pull.RewardVault,
		config.RewardMint,
		params.BuyerRewardAccount,
		params.EqualityProof,
		params.RangeProof,
		PullAddress(pull.ID),
	)
	if err := resolveInstructionAccounts(instructions, known); err != nil {
		return s.fail("open_pull", err)
	}

	authority := PullAuthority(pull.ID)
	pull.Claimed = true
	pull.RevealedAmount = params.Amount
	pull.EqualityProof = params.EqualityProof
	pull.RangeProof = params.RangeProof
	pull.NewDecryptableAvailableBalance = snapshot

	// 机密提取、明文转账与claimed落账在单个事务内提交：
	// 任何一步失败都整体回滚，同一组证明上下文可安全重试
	if err := s.repo.RunInTransaction(ctx, func(txn storageInterface.Transaction) error {
		for _, ix := range instructions {
			if err := s.ledger.InvokeTxn(ctx, txn, ix, authority); err != nil {
				return err
			}
		}
		if err := s.tokens.TransferCheckedTxn(txn, pull.RewardVault, params.BuyerRewardAccount,
			config.RewardMint, params.Amount, params.Decimals, authority); err != nil {
			return err
		}
		return s.repo.SavePullTxn(txn, pull)
	}); err != nil {
		return s.fail("open_pull", err)
	}

	if s.metrics != nil {
		s.metrics.PullsClaimed.Inc()
	}
	s.publish(eventInterface.EventTypePullClaimed, PullClaimedEvent{
		ID:          pull.ID,
		RewardVault: pull.RewardVault,
		Buyer:       pull.Buyer,
		Amount:      params.Amount,
	})
	s.logger.Infof("抽取已揭示: id=%d, buyer=%s, amount=%d", pull.ID, pull.Buyer, params.Amount)
	return nil
}

// ClaimPull 揭示（机密-机密变体）
func (s *Service) ClaimPull(ctx context.Context, params gachaInterface.ClaimPullParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.requireGameConfig(ctx)
	if err != nil {
		return s.fail("claim_pull", err)
	}
	pull, err := s.requirePull(ctx, params.PullID)
	if err != nil {
		return s.fail("claim_pull", err)
	}

	// 未购买的抽取没有合法的揭示请求方
	if pull.Buyer.IsZero() {
		return s.fail("claim_pull", ErrInvalidBuyer)
	}
	if !pull.Buyer.Equal(params.Buyer) {
		return s.fail("claim_pull", WrapInvalidBuyerError(pull.Buyer.String(), params.Buyer.String()))
	}
	if pull.Claimed {
		return s.fail("claim_pull", ErrPullAlreadyClaimed)
	}

	snapshot, err := types.AeCiphertextFromBase64(params.NewDecryptableAvailableBalance)
	if err != nil {
		return s.fail("claim_pull", WrapDecryptableBalanceConversionFailedError(err))
	}
	auditorLo, err := types.ElGamalCiphertextFromBase64(params.AuditorCiphertextLo)
	if err != nil {
		return s.fail("claim_pull", WrapCipherTextBalanceConversionFailedError(err))
	}
	auditorHi, err := types.ElGamalCiphertextFromBase64(params.AuditorCiphertextHi)
	if err != nil {
		return s.fail("claim_pull", WrapCipherTextBalanceConversionFailedError(err))
	}

	instructions, err := s.ledger.TransferInstructions(ctx, pull.RewardVault, params.BuyerRewardAccount,
		config.RewardMint, snapshot, params.EqualityProof, params.ValidityProof, params.RangeProof,
		auditorLo, auditorHi)
	if err != nil {
		return s.fail("claim_pull", err)
	}

	known := knownAccountSet(
		pull.RewardVault,
		config.RewardMint,
		params.BuyerRewardAccount,
		params.EqualityProof,
		params.ValidityProof,
		params.RangeProof,
		PullAddress(pull.ID),
	)
	if err := resolveInstructionAccounts(instructions, known); err != nil {
		return s.fail("claim_pull", err)
	}

	authority := PullAuthority(pull.ID)
	pull.Claimed = true
	pull.RevealedAmount = params.Amount
	pull.EqualityProof = params.EqualityProof
	pull.ValidityProof = params.ValidityProof
	pull.RangeProof = params.RangeProof
	pull.AuditorCiphertextLo = auditorLo
	pull.AuditorCiphertextHi = auditorHi
	pull.NewDecryptableAvailableBalance = snapshot

	// 机密转账与claimed落账在单个事务内提交
	if err := s.repo.RunInTransaction(ctx, func(txn storageInterface.Transaction) error {
		for _, ix := range instructions {
			if err := s.ledger.InvokeTxn(ctx, txn, ix, authority); err != nil {
				return err
			}
		}
		return s.repo.SavePullTxn(txn, pull)
	}); err != nil {
		return s.fail("claim_pull", err)
	}

	if s.metrics != nil {
		s.metrics.PullsClaimed.Inc()
	}
	s.publish(eventInterface.EventTypePullClaimed, PullClaimedEvent{
		ID:          pull.ID,
		RewardVault: pull.RewardVault,
		Buyer:       pull.Buyer,
		Amount:      params.Amount,
	})
	s.logger.Infof("抽取已揭示(机密): id=%d, buyer=%s", pull.ID, pull.Buyer)
	return nil
}

// GetGameConfig 读取游戏配置
func (s *Service) GetGameConfig(ctx context.Context) (*types.GameConfig, error) {
	return s.requireGameConfig(ctx)
}

// GetPull 读取抽取记录
func (s *Service) GetPull(ctx context.Context, id uint64) (*types.Pull, error) {
	return s.requirePull(ctx, id)
}

// ==================== 内部辅助 ====================

func (s *Service) requireGameConfig(ctx context.Context) (*types.GameConfig, error) {
	config, err := s.repo.GetGameConfig(ctx)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, ErrGameConfigNotInitialized
	}
	return config, nil
}

func (s *Service) requirePull(ctx context.Context, id uint64) (*types.Pull, error) {
	pull, err := s.repo.GetPull(ctx, id)
	if err != nil {
		return nil, err
	}
	if pull == nil {
		return nil, WrapPullNotFoundError(id)
	}
	return pull, nil
}

// fail 记录操作失败指标并原样返回错误
func (s *Service) fail(op string, err error) error {
	if s.metrics != nil {
		s.metrics.OperationErrors.WithLabelValues(op).Inc()
	}
	return err
}

func (s *Service) publish(eventType eventInterface.EventType, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(eventType, payload)
}

// knownAccountSet 构造本次请求的已知账户集合
func knownAccountSet(accounts ...types.Address) map[types.Address]struct{} {
	known := make(map[types.Address]struct{}, len(accounts))
	for _, a := range accounts {
		known[a] = struct{}{}
	}
	return known
}

// resolveInstructionAccounts 把子操作命名的每个身份解析到已知账户
//
// 失败关闭：任何无法识别的身份都使整个揭示失败，绝不放行。
func resolveInstructionAccounts(instructions []confidentialInterface.Instruction,
	known map[types.Address]struct{}) error {

	for _, ix := range instructions {
		for _, account := range ix.Accounts {
			if _, ok := known[account]; !ok {
				return WrapInvalidAccountError(account.String())
			}
		}
	}
	return nil
}
