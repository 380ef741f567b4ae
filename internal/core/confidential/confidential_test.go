package confidential

import (
	"context"
	"testing"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logconfig "github.com/gachago/v1/internal/config/log"
	badgerconfig "github.com/gachago/v1/internal/config/storage/badger"
	"github.com/gachago/v1/internal/core/infrastructure/crypto/elgamal"
	logpkg "github.com/gachago/v1/internal/core/infrastructure/log"
	badgerstore "github.com/gachago/v1/internal/core/infrastructure/storage/badger"
	"github.com/gachago/v1/internal/core/token"
	"github.com/gachago/v1/internal/core/zkproof"
	confidentialInterface "github.com/gachago/v1/pkg/interfaces/confidential"
	zkproofInterface "github.com/gachago/v1/pkg/interfaces/zkproof"
	"github.com/gachago/v1/pkg/types"
)

// testSigner 测试用签名权能
type testSigner struct {
	addr types.Address
}

func (s testSigner) Address() types.Address {
	return s.addr
}

// fixture 机密账本测试环境
type fixture struct {
	tokens *token.Service
	proofs *zkproof.Service
	conf   *Service

	mint      types.Address
	authority types.Address
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
	conf := NewService(store, tokens, proofs, logger)

	authority := types.Address{1}
	mint, err := tokens.CreateMint(ctx, authority, 9)
	require.NoError(t, err)

	return &fixture{
		tokens:    tokens,
		proofs:    proofs,
		conf:      conf,
		mint:      mint.Address,
		authority: authority,
	}
}

// configureAccount 创建代币账户并开启机密余额
func (f *fixture) configureAccount(t *testing.T, owner types.Address) (types.Address, *elgamal.Keypair) {
	t.Helper()
	ctx := context.Background()

	account, err := f.tokens.CreateAccount(ctx, f.mint, owner)
	require.NoError(t, err)

	kp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)

	payload, err := zkproof.BuildPubkeyValidityPayload(kp)
	require.NoError(t, err)
	proofCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity, payload, owner)
	require.NoError(t, err)

	aeKey, err := elgamal.GenerateAeKey()
	require.NoError(t, err)
	zeroSnapshot, err := aeKey.Encrypt(0)
	require.NoError(t, err)

	err = f.conf.ConfigureAccount(ctx, account.Address, kp.Public.Bytes(), zeroSnapshot,
		proofCtx.Address, testSigner{owner})
	require.NoError(t, err)

	return account.Address, kp
}

// decryptAvailable 用账户私钥解密可用余额
func decryptAvailable(t *testing.T, state *confidentialInterface.AccountState,
	kp *elgamal.Keypair, max uint64) uint64 {
	t.Helper()

	ct, err := elgamal.FromBytes(state.AvailableBalance)
	require.NoError(t, err)
	amount, err := elgamal.Decrypt(&kp.Secret, ct, max)
	require.NoError(t, err)
	return amount
}

func TestConfigureAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := types.Address{2}
	account, kp := f.configureAccount(t, owner)

	state, err := f.conf.GetAccountState(ctx, account)
	require.NoError(t, err)
	assert.True(t, state.ElGamalPubkey.Equal(kp.Public.Bytes()))
	assert.Equal(t, uint64(0), state.PendingBalanceCreditCounter)
	assert.Equal(t, uint64(0), decryptAvailable(t, state, kp, 10))

	// 重复开启被拒绝
	payload, err := zkproof.BuildPubkeyValidityPayload(kp)
	require.NoError(t, err)
	proofCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity, payload, owner)
	require.NoError(t, err)
	err = f.conf.ConfigureAccount(ctx, account, kp.Public.Bytes(), types.AeCiphertext{},
		proofCtx.Address, testSigner{owner})
	assert.ErrorIs(t, err, ErrAccountAlreadyConfigured)
}

func TestConfigureAccountRejectsWrongProof(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := types.Address{2}
	account, err := f.tokens.CreateAccount(ctx, f.mint, owner)
	require.NoError(t, err)

	kp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)

	// 证明类型不符：提交范围证明上下文
	blinding, err := elgamal.RandomBlinding()
	require.NoError(t, err)
	rangeCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeBatchedRangeProof,
		zkproof.BuildRangePayload(1, 16, blinding), owner)
	require.NoError(t, err)

	err = f.conf.ConfigureAccount(ctx, account.Address, kp.Public.Bytes(), types.AeCiphertext{},
		rangeCtx.Address, testSigner{owner})
	assert.ErrorIs(t, err, ErrInvalidProofContext)

	// 上下文绑定的公钥与提交的公钥不符
	otherKp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)
	payload, err := zkproof.BuildPubkeyValidityPayload(otherKp)
	require.NoError(t, err)
	proofCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity, payload, owner)
	require.NoError(t, err)

	err = f.conf.ConfigureAccount(ctx, account.Address, kp.Public.Bytes(), types.AeCiphertext{},
		proofCtx.Address, testSigner{owner})
	assert.ErrorIs(t, err, ErrElgamalPubkeyMismatch)
}

func TestDepositAndApplyPendingBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	funder := types.Address{2}
	funderAccount, err := f.tokens.CreateAccount(ctx, f.mint, funder)
	require.NoError(t, err)
	require.NoError(t, f.tokens.MintTo(ctx, f.mint, funderAccount.Address, 300_000_000, testSigner{f.authority}))

	escrowOwner := types.Address{3}
	escrow, kp := f.configureAccount(t, escrowOwner)

	// 存入递增计数器并扣减明文余额
	amount := uint64(200_000_000)
	require.NoError(t, f.conf.Deposit(ctx, funderAccount.Address, escrow, amount, testSigner{funder}))

	state, err := f.conf.GetAccountState(ctx, escrow)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.PendingBalanceCreditCounter)

	gotFunder, err := f.tokens.GetAccount(ctx, funderAccount.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000), gotFunder.Amount)

	// 陈旧计数器被拒绝
	aeKey, err := elgamal.GenerateAeKey()
	require.NoError(t, err)
	snapshot, err := aeKey.Encrypt(amount)
	require.NoError(t, err)
	err = f.conf.ApplyPendingBalance(ctx, escrow, 0, snapshot, testSigner{escrowOwner})
	assert.ErrorIs(t, err, ErrPendingCreditCounterMismatch)

	// 正确计数器：待处理余额并入可用余额
	require.NoError(t, f.conf.ApplyPendingBalance(ctx, escrow, 1, snapshot, testSigner{escrowOwner}))

	state, err = f.conf.GetAccountState(ctx, escrow)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), state.PendingBalanceCreditCounter)
	assert.Equal(t, amount, decryptAvailable(t, state, kp, 300_000_000))
}

func TestWithdrawFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	funder := types.Address{2}
	funderAccount, err := f.tokens.CreateAccount(ctx, f.mint, funder)
	require.NoError(t, err)
	require.NoError(t, f.tokens.MintTo(ctx, f.mint, funderAccount.Address, 200, testSigner{f.authority}))

	escrowOwner := types.Address{3}
	escrow, kp := f.configureAccount(t, escrowOwner)

	require.NoError(t, f.conf.Deposit(ctx, funderAccount.Address, escrow, 200, testSigner{funder}))

	aeKey, err := elgamal.GenerateAeKey()
	require.NoError(t, err)
	snapshot, err := aeKey.Encrypt(200)
	require.NoError(t, err)
	require.NoError(t, f.conf.ApplyPendingBalance(ctx, escrow, 1, snapshot, testSigner{escrowOwner}))

	// 提取150：剩余余额50（存入走r=0路径，剩余密文亦为确定性编码）
	withdrawAmount, remaining := uint64(150), uint64(50)
	var zeroR fr.Element
	blinding, err := elgamal.RandomBlinding()
	require.NoError(t, err)

	eqCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeCiphertextCommitmentEquality,
		zkproof.BuildEqualityPayload(&kp.Public, remaining, zeroR, blinding), escrowOwner)
	require.NoError(t, err)
	rangeCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeBatchedRangeProof,
		zkproof.BuildRangePayload(remaining, 64, blinding), escrowOwner)
	require.NoError(t, err)

	newSnapshot, err := aeKey.Encrypt(remaining)
	require.NoError(t, err)
	instructions, err := f.conf.WithdrawInstructions(ctx, escrow, f.mint, withdrawAmount, 9,
		newSnapshot, eqCtx.Address, rangeCtx.Address)
	require.NoError(t, err)
	require.Len(t, instructions, 3)

	for _, ix := range instructions {
		require.NoError(t, f.conf.Invoke(ctx, ix, testSigner{escrowOwner}))
	}

	// 明文余额入账，机密余额剩余50
	gotEscrow, err := f.tokens.GetAccount(ctx, escrow)
	require.NoError(t, err)
	assert.Equal(t, withdrawAmount, gotEscrow.Amount)

	state, err := f.conf.GetAccountState(ctx, escrow)
	require.NoError(t, err)
	assert.Equal(t, remaining, decryptAvailable(t, state, kp, 200))
}

func TestWithdrawRejectsMismatchedStatement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	funder := types.Address{2}
	funderAccount, err := f.tokens.CreateAccount(ctx, f.mint, funder)
	require.NoError(t, err)
	require.NoError(t, f.tokens.MintTo(ctx, f.mint, funderAccount.Address, 200, testSigner{f.authority}))

	escrowOwner := types.Address{3}
	escrow, kp := f.configureAccount(t, escrowOwner)
	require.NoError(t, f.conf.Deposit(ctx, funderAccount.Address, escrow, 200, testSigner{funder}))

	aeKey, err := elgamal.GenerateAeKey()
	require.NoError(t, err)
	snapshot, err := aeKey.Encrypt(200)
	require.NoError(t, err)
	require.NoError(t, f.conf.ApplyPendingBalance(ctx, escrow, 1, snapshot, testSigner{escrowOwner}))

	// 等值陈述声明了错误的剩余余额（49而非50）
	var zeroR fr.Element
	blinding, err := elgamal.RandomBlinding()
	require.NoError(t, err)
	eqCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeCiphertextCommitmentEquality,
		zkproof.BuildEqualityPayload(&kp.Public, 49, zeroR, blinding), escrowOwner)
	require.NoError(t, err)
	rangeCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeBatchedRangeProof,
		zkproof.BuildRangePayload(49, 64, blinding), escrowOwner)
	require.NoError(t, err)

	instructions, err := f.conf.WithdrawInstructions(ctx, escrow, f.mint, 150, 9,
		snapshot, eqCtx.Address, rangeCtx.Address)
	require.NoError(t, err)

	err = f.conf.Invoke(ctx, instructions[2], testSigner{escrowOwner})
	assert.ErrorIs(t, err, ErrStatementMismatch)
}

func TestTransferFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	funder := types.Address{2}
	funderAccount, err := f.tokens.CreateAccount(ctx, f.mint, funder)
	require.NoError(t, err)
	require.NoError(t, f.tokens.MintTo(ctx, f.mint, funderAccount.Address, 100_000, testSigner{f.authority}))

	srcOwner, dstOwner := types.Address{3}, types.Address{4}
	source, srcKp := f.configureAccount(t, srcOwner)
	dest, dstKp := f.configureAccount(t, dstOwner)

	auditorKp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)

	require.NoError(t, f.conf.Deposit(ctx, funderAccount.Address, source, 100_000, testSigner{funder}))

	aeKey, err := elgamal.GenerateAeKey()
	require.NoError(t, err)
	snapshot, err := aeKey.Encrypt(100_000)
	require.NoError(t, err)
	require.NoError(t, f.conf.ApplyPendingBalance(ctx, source, 1, snapshot, testSigner{srcOwner}))

	// 转账70_000：源剩余30_000
	transferAmount, remaining := uint64(70_000), uint64(30_000)
	var zeroR fr.Element
	blinding, err := elgamal.RandomBlinding()
	require.NoError(t, err)

	eqCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeCiphertextCommitmentEquality,
		zkproof.BuildEqualityPayload(&srcKp.Public, remaining, zeroR, blinding), srcOwner)
	require.NoError(t, err)

	validityPayload, ctDestLo, ctDestHi, err := zkproof.BuildValidityPayload(&dstKp.Public, &auditorKp.Public, transferAmount)
	require.NoError(t, err)
	valCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeGroupedCiphertextValidity,
		validityPayload, srcOwner)
	require.NoError(t, err)
	require.Len(t, valCtx.GroupedCiphertexts, 4)
	assert.True(t, valCtx.GroupedCiphertexts[0].Equal(ctDestLo))
	assert.True(t, valCtx.GroupedCiphertexts[1].Equal(ctDestHi))

	rangeCtx, err := f.proofs.VerifyAndCreate(ctx, zkproofInterface.ProofTypeBatchedRangeProof,
		zkproof.BuildRangePayload(remaining, 64, blinding), srcOwner)
	require.NoError(t, err)

	newSnapshot, err := aeKey.Encrypt(remaining)
	require.NoError(t, err)
	instructions, err := f.conf.TransferInstructions(ctx, source, dest, f.mint, newSnapshot,
		eqCtx.Address, valCtx.Address, rangeCtx.Address,
		valCtx.GroupedCiphertexts[2], valCtx.GroupedCiphertexts[3])
	require.NoError(t, err)
	require.Len(t, instructions, 4)

	for _, ix := range instructions {
		require.NoError(t, f.conf.Invoke(ctx, ix, testSigner{srcOwner}))
	}

	// 源可用余额剩余30_000
	srcState, err := f.conf.GetAccountState(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, remaining, decryptAvailable(t, srcState, srcKp, 100_000))

	// 接收方套用待处理余额后可用余额为70_000
	dstSnapshot, err := aeKey.Encrypt(transferAmount)
	require.NoError(t, err)
	require.NoError(t, f.conf.ApplyPendingBalance(ctx, dest, 1, dstSnapshot, testSigner{dstOwner}))

	dstState, err := f.conf.GetAccountState(ctx, dest)
	require.NoError(t, err)
	assert.Equal(t, transferAmount, decryptAvailable(t, dstState, dstKp, 100_000))
}
