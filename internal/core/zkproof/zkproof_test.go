package zkproof

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logconfig "github.com/gachago/v1/internal/config/log"
	badgerconfig "github.com/gachago/v1/internal/config/storage/badger"
	"github.com/gachago/v1/internal/core/infrastructure/crypto/elgamal"
	logpkg "github.com/gachago/v1/internal/core/infrastructure/log"
	badgerstore "github.com/gachago/v1/internal/core/infrastructure/storage/badger"
	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
	zkproofInterface "github.com/gachago/v1/pkg/interfaces/zkproof"
	"github.com/gachago/v1/pkg/types"
)

func newTestLogger(t *testing.T) logInterface.Logger {
	t.Helper()
	level := "error"
	filePath := "stderr"
	cfg := logconfig.New(&types.UserLogConfig{Level: &level, FilePath: &filePath})
	logger, err := logpkg.New(cfg)
	require.NoError(t, err)
	return logger
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	inMemory := true
	cfg := badgerconfig.New(&types.UserStorageConfig{
		Badger: &types.UserBadgerConfig{InMemory: &inMemory},
	})
	store, err := badgerstore.New(cfg, newTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewService(store, newTestLogger(t), nil)
}

func TestPubkeyValidityProof(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	kp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)

	payload, err := BuildPubkeyValidityPayload(kp)
	require.NoError(t, err)

	authority := types.Address{1}
	state, err := svc.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity, payload, authority)
	require.NoError(t, err)
	assert.Equal(t, zkproofInterface.ProofTypePubkeyValidity, state.ProofType)
	assert.True(t, state.Authority.Equal(authority))
	assert.True(t, state.Pubkey.Equal(kp.Public.Bytes()))

	// 创建后可按地址读回
	got, err := svc.Get(ctx, state.Address)
	require.NoError(t, err)
	assert.Equal(t, state.Pubkey, got.Pubkey)
	assert.Equal(t, state.Authority, got.Authority)
}

func TestPubkeyValidityProofTampered(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	kp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)

	payload, err := BuildPubkeyValidityPayload(kp)
	require.NoError(t, err)

	// 篡改响应标量应导致验证失败
	payload[len(payload)-1] ^= 0x01
	_, err = svc.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity, payload, types.Address{1})
	assert.ErrorIs(t, err, ErrProofVerificationFailed)
}

func TestZeroCiphertextProof(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	kp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)

	// 加密零的密文可通过验证
	ct, _, err := elgamal.Encrypt(&kp.Public, 0)
	require.NoError(t, err)

	payload, err := BuildZeroCiphertextPayload(kp, ct)
	require.NoError(t, err)

	state, err := svc.VerifyAndCreate(ctx, zkproofInterface.ProofTypeZeroCiphertext, payload, types.Address{2})
	require.NoError(t, err)
	assert.True(t, state.Ciphertext.Equal(ct.Bytes()))

	// 非零金额的密文即使诚实构造载荷也无法通过
	ctNonZero, _, err := elgamal.Encrypt(&kp.Public, 5)
	require.NoError(t, err)

	payload, err = BuildZeroCiphertextPayload(kp, ctNonZero)
	require.NoError(t, err)

	_, err = svc.VerifyAndCreate(ctx, zkproofInterface.ProofTypeZeroCiphertext, payload, types.Address{2})
	assert.ErrorIs(t, err, ErrProofVerificationFailed)
}

func TestEqualityProof(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	kp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)

	_, r, err := elgamal.Encrypt(&kp.Public, 100_000_000)
	require.NoError(t, err)
	blinding, err := elgamal.RandomBlinding()
	require.NoError(t, err)

	payload := BuildEqualityPayload(&kp.Public, 100_000_000, r, blinding)
	state, err := svc.VerifyAndCreate(ctx, zkproofInterface.ProofTypeCiphertextCommitmentEquality, payload, types.Address{3})
	require.NoError(t, err)

	// 陈述中的承诺与(amount, blinding)重算一致
	assert.Equal(t, [32]byte(elgamal.Commit(100_000_000, blinding)), state.Commitment)

	// 篡改见证金额应导致重算不匹配
	payload[128] ^= 0x01
	_, err = svc.VerifyAndCreate(ctx, zkproofInterface.ProofTypeCiphertextCommitmentEquality, payload, types.Address{3})
	assert.ErrorIs(t, err, ErrProofVerificationFailed)
}

func TestValidityProof(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	destKp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)
	auditorKp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)

	amount := uint64(100_000_000)
	payload, ctDestLo, ctDestHi, err := BuildValidityPayload(&destKp.Public, &auditorKp.Public, amount)
	require.NoError(t, err)

	state, err := svc.VerifyAndCreate(ctx, zkproofInterface.ProofTypeGroupedCiphertextValidity, payload, types.Address{4})
	require.NoError(t, err)
	require.Len(t, state.GroupedCiphertexts, 4)
	assert.True(t, state.GroupedCiphertexts[0].Equal(ctDestLo))
	assert.True(t, state.GroupedCiphertexts[1].Equal(ctDestHi))

	// 接收方可解密各分量并重组金额
	lo, hi := SplitPendingAmount(amount)
	decLo, err := elgamal.FromBytes(ctDestLo)
	require.NoError(t, err)
	gotLo, err := elgamal.Decrypt(&destKp.Secret, decLo, 1<<16)
	require.NoError(t, err)
	assert.Equal(t, lo, gotLo)

	decHi, err := elgamal.FromBytes(ctDestHi)
	require.NoError(t, err)
	gotHi, err := elgamal.Decrypt(&destKp.Secret, decHi, amount>>16+1)
	require.NoError(t, err)
	assert.Equal(t, hi, gotHi)
	assert.Equal(t, amount, gotLo+(gotHi<<16))
}

func TestRangeProof(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	blinding, err := elgamal.RandomBlinding()
	require.NoError(t, err)

	// 范围内的金额通过
	payload := BuildRangePayload(40_000, 16, blinding)
	state, err := svc.VerifyAndCreate(ctx, zkproofInterface.ProofTypeBatchedRangeProof, payload, types.Address{5})
	require.NoError(t, err)
	assert.Equal(t, uint8(16), state.BitLength)

	// 超出声明位长的金额被拒绝
	payload = BuildRangePayload(70_000, 16, blinding)
	_, err = svc.VerifyAndCreate(ctx, zkproofInterface.ProofTypeBatchedRangeProof, payload, types.Address{5})
	assert.ErrorIs(t, err, ErrRangeExceeded)

	// 64位声明接受任意uint64金额
	payload = BuildRangePayload(1<<63, 64, blinding)
	_, err = svc.VerifyAndCreate(ctx, zkproofInterface.ProofTypeBatchedRangeProof, payload, types.Address{5})
	assert.NoError(t, err)
}

func TestUnsupportedProofType(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.VerifyAndCreate(context.Background(), "bogus", nil, types.Address{6})
	assert.ErrorIs(t, err, ErrUnsupportedProofType)
}

func TestInvalidPayloadLength(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.VerifyAndCreate(context.Background(),
		zkproofInterface.ProofTypePubkeyValidity, make([]byte, 10), types.Address{6})
	assert.ErrorIs(t, err, ErrInvalidPayloadLength)
}

func TestCloseContextState(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	kp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)
	payload, err := BuildPubkeyValidityPayload(kp)
	require.NoError(t, err)

	authority := types.Address{7}
	state, err := svc.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity, payload, authority)
	require.NoError(t, err)

	// 非权限方无法关闭
	err = svc.CloseContextState(ctx, state.Address, types.Address{8})
	assert.ErrorIs(t, err, ErrContextAuthorityMismatch)

	// 权限方关闭后记录不可再读
	err = svc.CloseContextState(ctx, state.Address, authority)
	require.NoError(t, err)

	_, err = svc.Get(ctx, state.Address)
	assert.ErrorIs(t, err, ErrContextNotFound)

	// 重复关闭返回不存在错误
	err = svc.CloseContextState(ctx, state.Address, authority)
	assert.ErrorIs(t, err, ErrContextNotFound)
}

func TestDeterministicContextAddress(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	kp, err := elgamal.GenerateKeypair()
	require.NoError(t, err)
	payload, err := BuildPubkeyValidityPayload(kp)
	require.NoError(t, err)

	authority := types.Address{9}
	stateA, err := svc.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity, payload, authority)
	require.NoError(t, err)
	stateB, err := svc.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity, payload, authority)
	require.NoError(t, err)

	// 同一(类型, 载荷, 权限)派生同一地址
	assert.True(t, stateA.Address.Equal(stateB.Address))

	// 不同权限派生不同地址
	stateC, err := svc.VerifyAndCreate(ctx, zkproofInterface.ProofTypePubkeyValidity, payload, types.Address{10})
	require.NoError(t, err)
	assert.False(t, stateA.Address.Equal(stateC.Address))
}
