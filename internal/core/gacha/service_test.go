package gacha

import (
	"context"
	"sync"
	"testing"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logconfig "github.com/gachago/v1/internal/config/log"
	badgerconfig "github.com/gachago/v1/internal/config/storage/badger"
	"github.com/gachago/v1/internal/core/confidential"
	"github.com/gachago/v1/internal/core/infrastructure/crypto/elgamal"
	logpkg "github.com/gachago/v1/internal/core/infrastructure/log"
	badgerstore "github.com/gachago/v1/internal/core/infrastructure/storage/badger"
	"github.com/gachago/v1/internal/core/token"
	"github.com/gachago/v1/internal/core/zkproof"
	gachaInterface "github.com/gachago/v1/pkg/interfaces/gacha"
	tokenInterface "github.com/gachago/v1/pkg/interfaces/token"
	zkproofInterface "github.com/gachago/v1/pkg/interfaces/zkproof"
	"github.com/gachago/v1/pkg/types"
)

const (
	testPullPrice    = uint64(100_000_000)
	testRewardAmount = uint64(200_000_000)
	testDecimals     = uint8(9)
)

// testSigner 测试用签名权能
type testSigner struct {
	addr types.Address
}

func (s testSigner) Address() types.Address {
	return s.addr
}

// fixture 抽取协议测试环境
type fixture struct {
	tokens *token.Service
	proofs *zkproof.Service
	conf   *confidential.Service
	svc    *Service

	authority    types.Address
	purchaseMint types.Address
	rewardMint   types.Address
	gameVault    types.Address
	mintSigner   testSigner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	level := "error"
	filePath := "stderr"
	logCfg := logconfig.New(&types.UserLogConfig{Level: &level, FilePath: &filePath})
	logger, err := logpkg.New(logCfg)
	require.NoError(t, err)

	inMemory := true
	cfg := badgerconfig.New(&types.UserStorageConfig{
		Badger: &types.UserBadgerConfig{InMemory: &inMemory},
	})
	store, err := badgerstore.New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tokens := token.NewService(store, logger)
	proofs := zkproof.NewService(store, logger, nil)
	conf := confidential.NewService(store, tokens, proofs, logger)
	svc := NewService(NewRepository(store), tokens, conf, proofs, nil, nil, logger)

	authority := types.Address{1}
	purchaseMint, err := tokens.CreateMint(ctx, authority, testDecimals)
	require.NoError(t, err)
	rewardMint, err := tokens.CreateMint(ctx, authority, testDecimals,
		tokenInterface.MintExtensionConfidentialTransfer)
	require.NoError(t, err)
	gameVault, err := tokens.CreateAccount(ctx, purchaseMint.Address, authority)
	require.NoError(t, err)

	return &fixture{
		tokens:       tokens,
		proofs:       proofs,
		conf:         conf,
		svc:          svc,
		authority:    authority,
		purchaseMint: purchaseMint.Address,
		rewardMint:   rewardMint.Address,
		gameVault:    gameVault.Address,
		mintSigner:   testSigner{authority},
	}
}

// initConfig 初始化游戏配置
func (f *fixture) initConfig(t *testing.T) *types.GameConfig {
	t.Helper()
	config, err := f.svc.InitializeGameConfig(context.Background(), gachaInterface.InitializeGameConfigParams{
		Authority:    f.authority,
		PurchaseMint: f.purchaseMint,
		RewardMint:   f.rewardMint,
		GameVault:    f.gameVault,
		PullPrice:    testPullPrice,
	})
	require.NoError(t, err)
	return config
}

// createPull 创建抽取槽位，返回托管密钥对与快照密钥
func (f *fixture) createPull(t *testing.T, id, committedAmount uint64) (*elgamal.Keypair, *elgamal.AeKey) {
	t.Helper()
	ctx := context.Background()

	kp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)
	aeKey, err := elgamal.GenerateAeKey()
	require.NoError(t, err)

	committed, _, err := elgamal.Encrypt(&kp.Public, committedAmount)
	require.NoError(t, err)

	payload, err := zkproof.BuildPubkeyValidityPayload(kp)
	require.NoError(t, err)
	proofCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity,
		payload, f.authority)
	require.NoError(t, err)

	zeroSnapshot, err := aeKey.Encrypt(0)
	require.NoError(t, err)

	_, err = f.svc.CreatePull(ctx, gachaInterface.CreatePullParams{
		PullID:                 id,
		EncryptedAmount:        committed.Bytes(),
		ElGamalPubkey:          kp.Public.Bytes(),
		DecryptableZeroBalance: zeroSnapshot.String(),
		PubkeyValidityProof:    proofCtx.Address,
	})
	require.NoError(t, err)
	return kp, &aeKey
}

// fundAndApply 向托管账户注资并套用待处理余额
func (f *fixture) fundAndApply(t *testing.T, id, amount uint64, aeKey *elgamal.AeKey) {
	t.Helper()
	ctx := context.Background()

	funder := types.Address{20}
	funderAccount, err := f.tokens.CreateAccount(ctx, f.rewardMint, funder)
	require.NoError(t, err)
	require.NoError(t, f.tokens.MintTo(ctx, f.rewardMint, funderAccount.Address, amount, f.mintSigner))
	require.NoError(t, f.conf.Deposit(ctx, funderAccount.Address, RewardVaultAddress(id), amount, testSigner{funder}))

	snapshot, err := aeKey.Encrypt(amount)
	require.NoError(t, err)
	require.NoError(t, f.svc.ApplyPullPendingBalance(ctx, gachaInterface.ApplyPullPendingBalanceParams{
		PullID:                         id,
		NewDecryptableAvailableBalance: snapshot.String(),
	}))
}

// verifyPull 构造零密文证明并执行承诺校验
func (f *fixture) verifyPull(t *testing.T, id uint64, kp *elgamal.Keypair) error {
	t.Helper()
	ctx := context.Background()

	state, err := f.conf.GetAccountState(ctx, RewardVaultAddress(id))
	require.NoError(t, err)
	pull, err := f.svc.GetPull(ctx, id)
	require.NoError(t, err)

	remainderBytes, err := elgamal.SubBytes(state.AvailableBalance, pull.EncryptedAmount)
	require.NoError(t, err)
	remainder, err := elgamal.FromBytes(remainderBytes)
	require.NoError(t, err)

	payload, err := zkproof.BuildZeroCiphertextPayload(kp, remainder)
	require.NoError(t, err)
	proofCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeZeroCiphertext,
		payload, f.authority)
	if err != nil {
		// 注资与承诺不一致时，诚实生成的零密文证明无法通过校验
		return err
	}

	return f.svc.VerifyPull(ctx, gachaInterface.VerifyPullParams{
		PullID:              id,
		ZeroCiphertextProof: proofCtx.Address,
	})
}

// buyPull 以指定买家完成购买
func (f *fixture) buyPull(t *testing.T, id uint64, buyer types.Address) error {
	t.Helper()
	ctx := context.Background()

	buyerAccount, err := f.tokens.CreateAccount(ctx, f.purchaseMint, buyer)
	require.NoError(t, err)
	require.NoError(t, f.tokens.MintTo(ctx, f.purchaseMint, buyerAccount.Address, testPullPrice, f.mintSigner))

	return f.svc.BuyPull(ctx, gachaInterface.BuyPullParams{
		PullID:               id,
		Buyer:                buyer,
		BuyerPurchaseAccount: buyerAccount.Address,
	})
}

// openPullParams 构造withdraw变体的揭示参数（提取全部余额，剩余为零）
func (f *fixture) openPullParams(t *testing.T, id, amount uint64, buyer types.Address,
	kp *elgamal.Keypair, aeKey *elgamal.AeKey) gachaInterface.OpenPullParams {
	t.Helper()
	ctx := context.Background()

	buyerReward, err := f.tokens.CreateAccount(ctx, f.rewardMint, buyer)
	require.NoError(t, err)

	// 存入走确定性加密，提取全部后剩余密文为Enc(0, 0)
	var zeroR fr.Element
	blinding, err := elgamal.RandomBlinding()
	require.NoError(t, err)
	eqCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeCiphertextCommitmentEquality,
		zkproof.BuildEqualityPayload(&kp.Public, 0, zeroR, blinding), f.authority)
	require.NoError(t, err)
	rangeCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeBatchedRangeProof,
		zkproof.BuildRangePayload(0, 64, blinding), f.authority)
	require.NoError(t, err)

	finalSnapshot, err := aeKey.Encrypt(0)
	require.NoError(t, err)

	return gachaInterface.OpenPullParams{
		PullID:                         id,
		Buyer:                          buyer,
		BuyerRewardAccount:             buyerReward.Address,
		Amount:                         amount,
		Decimals:                       testDecimals,
		NewDecryptableAvailableBalance: finalSnapshot.String(),
		EqualityProof:                  eqCtx.Address,
		RangeProof:                     rangeCtx.Address,
	}
}

func TestInitializeGameConfig(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 售价为零被拒绝
	_, err := f.svc.InitializeGameConfig(ctx, gachaInterface.InitializeGameConfigParams{
		Authority:    f.authority,
		PurchaseMint: f.purchaseMint,
		RewardMint:   f.rewardMint,
		GameVault:    f.gameVault,
		PullPrice:    0,
	})
	assert.ErrorIs(t, err, ErrInvalidZeroPullPrice)

	// 奖励资产缺少机密转账扩展被拒绝
	_, err = f.svc.InitializeGameConfig(ctx, gachaInterface.InitializeGameConfigParams{
		Authority:    f.authority,
		PurchaseMint: f.purchaseMint,
		RewardMint:   f.purchaseMint,
		GameVault:    f.gameVault,
		PullPrice:    testPullPrice,
	})
	assert.ErrorIs(t, err, ErrInvalidRewardMint)

	// 金库必须是权限持有的购买资产账户
	rewardVault, err := f.tokens.CreateAccount(ctx, f.rewardMint, f.authority)
	require.NoError(t, err)
	_, err = f.svc.InitializeGameConfig(ctx, gachaInterface.InitializeGameConfigParams{
		Authority:    f.authority,
		PurchaseMint: f.purchaseMint,
		RewardMint:   f.rewardMint,
		GameVault:    rewardVault.Address,
		PullPrice:    testPullPrice,
	})
	assert.ErrorIs(t, err, ErrInvalidGameVault)

	config := f.initConfig(t)
	assert.Equal(t, uint64(0), config.LastPullID)
	assert.Equal(t, testPullPrice, config.PullPrice)

	// 单例不可重复初始化
	_, err = f.svc.InitializeGameConfig(ctx, gachaInterface.InitializeGameConfigParams{
		Authority:    f.authority,
		PurchaseMint: f.purchaseMint,
		RewardMint:   f.rewardMint,
		GameVault:    f.gameVault,
		PullPrice:    testPullPrice,
	})
	assert.ErrorIs(t, err, ErrGameConfigAlreadyInitialized)
}

func TestCreatePullSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)

	// N次创建后计数器等于N
	for id := uint64(1); id <= 3; id++ {
		f.createPull(t, id, testRewardAmount)
	}
	config, err := f.svc.GetGameConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), config.LastPullID)

	// 跳号创建失败且计数器不变
	kp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)
	committed, _, err := elgamal.Encrypt(&kp.Public, testRewardAmount)
	require.NoError(t, err)
	payload, err := zkproof.BuildPubkeyValidityPayload(kp)
	require.NoError(t, err)
	proofCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity, payload, f.authority)
	require.NoError(t, err)
	aeKey, err := elgamal.GenerateAeKey()
	require.NoError(t, err)
	zeroSnapshot, err := aeKey.Encrypt(0)
	require.NoError(t, err)

	_, err = f.svc.CreatePull(ctx, gachaInterface.CreatePullParams{
		PullID:                 5,
		EncryptedAmount:        committed.Bytes(),
		ElGamalPubkey:          kp.Public.Bytes(),
		DecryptableZeroBalance: zeroSnapshot.String(),
		PubkeyValidityProof:    proofCtx.Address,
	})
	assert.ErrorIs(t, err, ErrInvalidPullId)

	config, err = f.svc.GetGameConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), config.LastPullID)
}

func TestCreatePullRejectsBadSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)

	kp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)
	committed, _, err := elgamal.Encrypt(&kp.Public, testRewardAmount)
	require.NoError(t, err)

	_, err = f.svc.CreatePull(ctx, gachaInterface.CreatePullParams{
		PullID:                 1,
		EncryptedAmount:        committed.Bytes(),
		ElGamalPubkey:          kp.Public.Bytes(),
		DecryptableZeroBalance: "not-base64!!!",
		PubkeyValidityProof:    types.Address{9},
	})
	assert.ErrorIs(t, err, ErrDecryptableBalanceConversionFailed)
}

func TestCreatePullRetryAfterPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)

	kp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)
	aeKey, err := elgamal.GenerateAeKey()
	require.NoError(t, err)
	committed, _, err := elgamal.Encrypt(&kp.Public, testRewardAmount)
	require.NoError(t, err)
	zeroSnapshot, err := aeKey.Encrypt(0)
	require.NoError(t, err)
	payload, err := zkproof.BuildPubkeyValidityPayload(kp)
	require.NoError(t, err)

	// 上下文由其他权限创建：托管账户已建好并配置，回收失败
	wrongAuthCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity,
		payload, types.Address{99})
	require.NoError(t, err)
	params := gachaInterface.CreatePullParams{
		PullID:                 1,
		EncryptedAmount:        committed.Bytes(),
		ElGamalPubkey:          kp.Public.Bytes(),
		DecryptableZeroBalance: zeroSnapshot.String(),
		PubkeyValidityProof:    wrongAuthCtx.Address,
	}
	_, err = f.svc.CreatePull(ctx, params)
	assert.ErrorIs(t, err, ErrCloseContextStateFailed)

	config, err := f.svc.GetGameConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), config.LastPullID)

	// 半完成的托管状态不接受携带不同公钥的重试
	otherKp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)
	otherPayload, err := zkproof.BuildPubkeyValidityPayload(otherKp)
	require.NoError(t, err)
	otherCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity,
		otherPayload, f.authority)
	require.NoError(t, err)
	otherParams := params
	otherParams.ElGamalPubkey = otherKp.Public.Bytes()
	otherParams.PubkeyValidityProof = otherCtx.Address
	_, err = f.svc.CreatePull(ctx, otherParams)
	assert.ErrorIs(t, err, ErrConfigureTokenAccountFailed)

	// 换用正确权限的上下文重试同一序号必须成功
	goodCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity,
		payload, f.authority)
	require.NoError(t, err)
	params.PubkeyValidityProof = goodCtx.Address
	pull, err := f.svc.CreatePull(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pull.ID)

	config, err = f.svc.GetGameConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), config.LastPullID)
}

func TestHappyPathScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)

	kp, aeKey := f.createPull(t, 1, testRewardAmount)
	f.fundAndApply(t, 1, testRewardAmount, aeKey)

	// 注资金额与承诺一致，校验通过
	require.NoError(t, f.verifyPull(t, 1, kp))
	pull, err := f.svc.GetPull(ctx, 1)
	require.NoError(t, err)
	assert.True(t, pull.Verified)

	// 购买：买家入账，金库增加售价
	buyer := types.Address{30}
	require.NoError(t, f.buyPull(t, 1, buyer))
	pull, err = f.svc.GetPull(ctx, 1)
	require.NoError(t, err)
	assert.True(t, pull.Buyer.Equal(buyer))

	vault, err := f.tokens.GetAccount(ctx, f.gameVault)
	require.NoError(t, err)
	assert.Equal(t, testPullPrice, vault.Amount)

	// 揭示：买家奖励余额增加揭示金额
	params := f.openPullParams(t, 1, testRewardAmount, buyer, kp, aeKey)
	require.NoError(t, f.svc.OpenPull(ctx, params))

	pull, err = f.svc.GetPull(ctx, 1)
	require.NoError(t, err)
	assert.True(t, pull.Claimed)
	assert.Equal(t, testRewardAmount, pull.RevealedAmount)

	buyerReward, err := f.tokens.GetAccount(ctx, params.BuyerRewardAccount)
	require.NoError(t, err)
	assert.Equal(t, testRewardAmount, buyerReward.Amount)
}

func TestVerifyShortFunded(t *testing.T) {
	f := newFixture(t)
	f.initConfig(t)

	kp, aeKey := f.createPull(t, 1, testRewardAmount)

	// 注资短少一个最小单位，差值不再解密为零
	f.fundAndApply(t, 1, testRewardAmount-1, aeKey)
	err := f.verifyPull(t, 1, kp)
	assert.ErrorIs(t, err, zkproof.ErrProofVerificationFailed)

	// 即使直接提交错误陈述的上下文，逐位比对也会拒绝
	// （此处用诚实生成但针对其他密文的陈述模拟替换攻击）
	ctx := context.Background()
	otherCt, _, err := elgamal.Encrypt(&kp.Public, 0)
	require.NoError(t, err)
	payload, err := zkproof.BuildZeroCiphertextPayload(kp, otherCt)
	require.NoError(t, err)
	proofCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeZeroCiphertext, payload, f.authority)
	require.NoError(t, err)

	err = f.svc.VerifyPull(ctx, gachaInterface.VerifyPullParams{
		PullID:              1,
		ZeroCiphertextProof: proofCtx.Address,
	})
	assert.ErrorIs(t, err, ErrCiphertextZeroBalanceMismatch)

	// 未通过校验的抽取不可购买
	err = f.buyPull(t, 1, types.Address{30})
	assert.ErrorIs(t, err, ErrPullNotVerified)
}

func TestVerifyRejectsSubstitution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)

	kp, aeKey := f.createPull(t, 1, testRewardAmount)
	f.fundAndApply(t, 1, testRewardAmount, aeKey)

	// 类型不符：提交等值证明上下文
	var zeroR fr.Element
	blinding, err := elgamal.RandomBlinding()
	require.NoError(t, err)
	eqCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeCiphertextCommitmentEquality,
		zkproof.BuildEqualityPayload(&kp.Public, 0, zeroR, blinding), f.authority)
	require.NoError(t, err)
	err = f.svc.VerifyPull(ctx, gachaInterface.VerifyPullParams{PullID: 1, ZeroCiphertextProof: eqCtx.Address})
	assert.ErrorIs(t, err, ErrInvalidProofType)

	// 公钥不符：陈述绑定了其他密钥
	otherKp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)
	otherCt, _, err := elgamal.Encrypt(&otherKp.Public, 0)
	require.NoError(t, err)
	payload, err := zkproof.BuildZeroCiphertextPayload(otherKp, otherCt)
	require.NoError(t, err)
	wrongKeyCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeZeroCiphertext, payload, f.authority)
	require.NoError(t, err)
	err = f.svc.VerifyPull(ctx, gachaInterface.VerifyPullParams{PullID: 1, ZeroCiphertextProof: wrongKeyCtx.Address})
	assert.ErrorIs(t, err, ErrInvalidElgamalPubkey)

	// 权限不符：上下文由其他权限创建
	state, err := f.conf.GetAccountState(ctx, RewardVaultAddress(1))
	require.NoError(t, err)
	pull, err := f.svc.GetPull(ctx, 1)
	require.NoError(t, err)
	remainderBytes, err := elgamal.SubBytes(state.AvailableBalance, pull.EncryptedAmount)
	require.NoError(t, err)
	remainder, err := elgamal.FromBytes(remainderBytes)
	require.NoError(t, err)
	payload, err = zkproof.BuildZeroCiphertextPayload(kp, remainder)
	require.NoError(t, err)
	wrongAuthCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeZeroCiphertext,
		payload, types.Address{99})
	require.NoError(t, err)
	err = f.svc.VerifyPull(ctx, gachaInterface.VerifyPullParams{PullID: 1, ZeroCiphertextProof: wrongAuthCtx.Address})
	assert.ErrorIs(t, err, ErrInvalidContextAuthority)
}

func TestDoubleBuyAndDoubleReveal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)

	kp, aeKey := f.createPull(t, 1, testRewardAmount)
	f.fundAndApply(t, 1, testRewardAmount, aeKey)
	require.NoError(t, f.verifyPull(t, 1, kp))

	buyer := types.Address{30}
	require.NoError(t, f.buyPull(t, 1, buyer))

	// 重复购买被拒绝
	err := f.buyPull(t, 1, types.Address{31})
	assert.ErrorIs(t, err, ErrPullAlreadyPurchased)

	params := f.openPullParams(t, 1, testRewardAmount, buyer, kp, aeKey)
	require.NoError(t, f.svc.OpenPull(ctx, params))

	// 重复揭示被拒绝且揭示金额不变
	err = f.svc.OpenPull(ctx, params)
	assert.ErrorIs(t, err, ErrPullAlreadyClaimed)

	pull, err := f.svc.GetPull(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, testRewardAmount, pull.RevealedAmount)
}

func TestOpenPullInvalidBuyer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)

	kp, aeKey := f.createPull(t, 1, testRewardAmount)
	f.fundAndApply(t, 1, testRewardAmount, aeKey)
	require.NoError(t, f.verifyPull(t, 1, kp))

	buyer := types.Address{30}
	require.NoError(t, f.buyPull(t, 1, buyer))

	params := f.openPullParams(t, 1, testRewardAmount, types.Address{31}, kp, aeKey)
	err := f.svc.OpenPull(ctx, params)
	assert.ErrorIs(t, err, ErrInvalidBuyer)
}

func TestBuyPullInsufficientFundsThenRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)

	kp, aeKey := f.createPull(t, 1, testRewardAmount)
	f.fundAndApply(t, 1, testRewardAmount, aeKey)
	require.NoError(t, f.verifyPull(t, 1, kp))

	buyer := types.Address{30}
	account, err := f.tokens.CreateAccount(ctx, f.purchaseMint, buyer)
	require.NoError(t, err)
	require.NoError(t, f.tokens.MintTo(ctx, f.purchaseMint, account.Address, testPullPrice-1, f.mintSigner))

	// 余额不足：转账与买家落账同在一个事务，记录保持未购买
	err = f.svc.BuyPull(ctx, gachaInterface.BuyPullParams{
		PullID:               1,
		Buyer:                buyer,
		BuyerPurchaseAccount: account.Address,
	})
	assert.ErrorIs(t, err, token.ErrInsufficientFunds)

	pull, err := f.svc.GetPull(ctx, 1)
	require.NoError(t, err)
	assert.True(t, pull.Buyer.IsZero())

	// 补足余额后重试成功
	require.NoError(t, f.tokens.MintTo(ctx, f.purchaseMint, account.Address, 1, f.mintSigner))
	require.NoError(t, f.svc.BuyPull(ctx, gachaInterface.BuyPullParams{
		PullID:               1,
		Buyer:                buyer,
		BuyerPurchaseAccount: account.Address,
	}))

	vault, err := f.tokens.GetAccount(ctx, f.gameVault)
	require.NoError(t, err)
	assert.Equal(t, testPullPrice, vault.Amount)
}

func TestOpenPullRollsBackOnTransferFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)

	kp, aeKey := f.createPull(t, 1, testRewardAmount)
	f.fundAndApply(t, 1, testRewardAmount, aeKey)
	require.NoError(t, f.verifyPull(t, 1, kp))

	buyer := types.Address{30}
	require.NoError(t, f.buyPull(t, 1, buyer))

	params := f.openPullParams(t, 1, testRewardAmount, buyer, kp, aeKey)
	before, err := f.conf.GetAccountState(ctx, RewardVaultAddress(1))
	require.NoError(t, err)

	// 明文转账因目标账户不存在而失败，机密提取必须一并回滚
	goodAccount := params.BuyerRewardAccount
	params.BuyerRewardAccount = types.Address{77}
	err = f.svc.OpenPull(ctx, params)
	assert.ErrorIs(t, err, token.ErrAccountNotFound)

	pull, err := f.svc.GetPull(ctx, 1)
	require.NoError(t, err)
	assert.False(t, pull.Claimed)

	after, err := f.conf.GetAccountState(ctx, RewardVaultAddress(1))
	require.NoError(t, err)
	assert.True(t, after.AvailableBalance.Equal(before.AvailableBalance))

	// 同一组证明上下文重试成功
	params.BuyerRewardAccount = goodAccount
	require.NoError(t, f.svc.OpenPull(ctx, params))

	buyerReward, err := f.tokens.GetAccount(ctx, goodAccount)
	require.NoError(t, err)
	assert.Equal(t, testRewardAmount, buyerReward.Amount)
}

func TestOpenPullUnpurchased(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)

	kp, aeKey := f.createPull(t, 1, testRewardAmount)
	f.fundAndApply(t, 1, testRewardAmount, aeKey)
	require.NoError(t, f.verifyPull(t, 1, kp))

	// 未购买的记录买家字段为零值，零地址请求方不得通过买家检查
	params := f.openPullParams(t, 1, testRewardAmount, types.Address{}, kp, aeKey)
	err := f.svc.OpenPull(ctx, params)
	assert.ErrorIs(t, err, ErrInvalidBuyer)

	pull, err := f.svc.GetPull(ctx, 1)
	require.NoError(t, err)
	assert.False(t, pull.Claimed)
}

func TestConcurrentBuySingleSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)

	kp, aeKey := f.createPull(t, 1, testRewardAmount)
	f.fundAndApply(t, 1, testRewardAmount, aeKey)
	require.NoError(t, f.verifyPull(t, 1, kp))

	// 两个买家并发抢购，恰好一人成功
	buyers := []types.Address{{30}, {31}}
	accounts := make([]types.Address, len(buyers))
	for i, buyer := range buyers {
		account, err := f.tokens.CreateAccount(ctx, f.purchaseMint, buyer)
		require.NoError(t, err)
		require.NoError(t, f.tokens.MintTo(ctx, f.purchaseMint, account.Address, testPullPrice, f.mintSigner))
		accounts[i] = account.Address
	}

	errs := make([]error, len(buyers))
	var wg sync.WaitGroup
	for i := range buyers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.svc.BuyPull(ctx, gachaInterface.BuyPullParams{
				PullID:               1,
				Buyer:                buyers[i],
				BuyerPurchaseAccount: accounts[i],
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrPullAlreadyPurchased)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestClaimPullConfidential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)

	kp, aeKey := f.createPull(t, 1, testRewardAmount)
	f.fundAndApply(t, 1, testRewardAmount, aeKey)
	require.NoError(t, f.verifyPull(t, 1, kp))

	buyer := types.Address{30}
	require.NoError(t, f.buyPull(t, 1, buyer))

	// 买家的机密奖励账户
	buyerAccount, err := f.tokens.CreateAccount(ctx, f.rewardMint, buyer)
	require.NoError(t, err)
	buyerKp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)
	buyerAeKey, err := elgamal.GenerateAeKey()
	require.NoError(t, err)
	pubkeyPayload, err := zkproof.BuildPubkeyValidityPayload(buyerKp)
	require.NoError(t, err)
	pubkeyCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity, pubkeyPayload, buyer)
	require.NoError(t, err)
	buyerZero, err := buyerAeKey.Encrypt(0)
	require.NoError(t, err)
	require.NoError(t, f.conf.ConfigureAccount(ctx, buyerAccount.Address, buyerKp.Public.Bytes(),
		buyerZero, pubkeyCtx.Address, testSigner{buyer}))

	auditorKp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)

	// 全额机密转账：源剩余为零
	var zeroR fr.Element
	blinding, err := elgamal.RandomBlinding()
	require.NoError(t, err)
	eqCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeCiphertextCommitmentEquality,
		zkproof.BuildEqualityPayload(&kp.Public, 0, zeroR, blinding), f.authority)
	require.NoError(t, err)
	validityPayload, _, _, err := zkproof.BuildValidityPayload(&buyerKp.Public, &auditorKp.Public, testRewardAmount)
	require.NoError(t, err)
	valCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeGroupedCiphertextValidity,
		validityPayload, f.authority)
	require.NoError(t, err)
	rangeCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeBatchedRangeProof,
		zkproof.BuildRangePayload(0, 64, blinding), f.authority)
	require.NoError(t, err)

	finalSnapshot, err := aeKey.Encrypt(0)
	require.NoError(t, err)

	err = f.svc.ClaimPull(ctx, gachaInterface.ClaimPullParams{
		PullID:                         1,
		Buyer:                          buyer,
		BuyerRewardAccount:             buyerAccount.Address,
		Amount:                         testRewardAmount,
		Decimals:                       testDecimals,
		NewDecryptableAvailableBalance: finalSnapshot.String(),
		EqualityProof:                  eqCtx.Address,
		ValidityProof:                  valCtx.Address,
		RangeProof:                     rangeCtx.Address,
		AuditorCiphertextLo:            valCtx.GroupedCiphertexts[2].String(),
		AuditorCiphertextHi:            valCtx.GroupedCiphertexts[3].String(),
	})
	require.NoError(t, err)

	pull, err := f.svc.GetPull(ctx, 1)
	require.NoError(t, err)
	assert.True(t, pull.Claimed)
	assert.Equal(t, testRewardAmount, pull.RevealedAmount)

	// 买家套用待处理余额后可解密出奖励金额
	dstSnapshot, err := buyerAeKey.Encrypt(testRewardAmount)
	require.NoError(t, err)
	require.NoError(t, f.conf.ApplyPendingBalance(ctx, buyerAccount.Address, 1, dstSnapshot, testSigner{buyer}))

	dstState, err := f.conf.GetAccountState(ctx, buyerAccount.Address)
	require.NoError(t, err)
	dstCt, err := elgamal.FromBytes(dstState.AvailableBalance)
	require.NoError(t, err)
	got, err := elgamal.Decrypt(&buyerKp.Secret, dstCt, testRewardAmount)
	require.NoError(t, err)
	assert.Equal(t, testRewardAmount, got)
}
