package token

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logconfig "github.com/gachago/v1/internal/config/log"
	badgerconfig "github.com/gachago/v1/internal/config/storage/badger"
	logpkg "github.com/gachago/v1/internal/core/infrastructure/log"
	badgerstore "github.com/gachago/v1/internal/core/infrastructure/storage/badger"
	tokenInterface "github.com/gachago/v1/pkg/interfaces/token"
	"github.com/gachago/v1/pkg/types"
)

// testSigner 测试用签名权能
type testSigner struct {
	addr types.Address
}

func (s testSigner) Address() types.Address {
	return s.addr
}

func newTestService(t *testing.T) *Service {
	t.Helper()

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

	return NewService(store, logger)
}

func TestCreateAndGetMint(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	authority := types.Address{1}
	mint, err := svc.CreateMint(ctx, authority, 9, tokenInterface.MintExtensionConfidentialTransfer)
	require.NoError(t, err)
	assert.True(t, mint.HasExtension(tokenInterface.MintExtensionConfidentialTransfer))
	assert.Equal(t, uint64(0), mint.Supply)

	got, err := svc.GetMint(ctx, mint.Address)
	require.NoError(t, err)
	assert.Equal(t, mint.Address, got.Address)
	assert.Equal(t, uint8(9), got.Decimals)

	// 不存在的资产
	_, err = svc.GetMint(ctx, types.Address{99})
	assert.ErrorIs(t, err, ErrMintNotFound)
}

func TestCreateAccountAt(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mint, err := svc.CreateMint(ctx, types.Address{1}, 9)
	require.NoError(t, err)

	addr := types.Address{2}
	account, err := svc.CreateAccountAt(ctx, addr, mint.Address, types.Address{3})
	require.NoError(t, err)
	assert.Equal(t, addr, account.Address)
	assert.Equal(t, uint64(0), account.Amount)

	// 地址已占用
	_, err = svc.CreateAccountAt(ctx, addr, mint.Address, types.Address{3})
	assert.ErrorIs(t, err, ErrAccountAlreadyExists)

	// 资产不存在时无法创建账户
	_, err = svc.CreateAccount(ctx, types.Address{99}, types.Address{3})
	assert.ErrorIs(t, err, ErrMintNotFound)
}

func TestMintTo(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	authority := types.Address{1}
	mint, err := svc.CreateMint(ctx, authority, 9)
	require.NoError(t, err)

	account, err := svc.CreateAccount(ctx, mint.Address, types.Address{2})
	require.NoError(t, err)

	// 非铸造权限无法铸造
	err = svc.MintTo(ctx, mint.Address, account.Address, 1000, testSigner{types.Address{9}})
	assert.ErrorIs(t, err, ErrUnauthorizedSigner)

	err = svc.MintTo(ctx, mint.Address, account.Address, 1000, testSigner{authority})
	require.NoError(t, err)

	got, err := svc.GetAccount(ctx, account.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), got.Amount)

	// 供应量同步累加
	m, err := svc.GetMint(ctx, mint.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), m.Supply)
}

func TestTransfer(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	authority := types.Address{1}
	mint, err := svc.CreateMint(ctx, authority, 9)
	require.NoError(t, err)

	alice := types.Address{2}
	src, err := svc.CreateAccount(ctx, mint.Address, alice)
	require.NoError(t, err)
	dst, err := svc.CreateAccount(ctx, mint.Address, types.Address{3})
	require.NoError(t, err)

	require.NoError(t, svc.MintTo(ctx, mint.Address, src.Address, 500, testSigner{authority}))

	// 非所有者无法转账
	err = svc.Transfer(ctx, src.Address, dst.Address, 100, testSigner{types.Address{9}})
	assert.ErrorIs(t, err, ErrUnauthorizedSigner)

	// 余额不足
	err = svc.Transfer(ctx, src.Address, dst.Address, 501, testSigner{alice})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	require.NoError(t, svc.Transfer(ctx, src.Address, dst.Address, 100, testSigner{alice}))

	gotSrc, err := svc.GetAccount(ctx, src.Address)
	require.NoError(t, err)
	gotDst, err := svc.GetAccount(ctx, dst.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), gotSrc.Amount)
	assert.Equal(t, uint64(100), gotDst.Amount)
}

func TestTransferMintMismatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	authority := types.Address{1}
	mintA, err := svc.CreateMint(ctx, authority, 9)
	require.NoError(t, err)
	mintB, err := svc.CreateMint(ctx, authority, 9)
	require.NoError(t, err)

	alice := types.Address{2}
	src, err := svc.CreateAccount(ctx, mintA.Address, alice)
	require.NoError(t, err)
	dst, err := svc.CreateAccount(ctx, mintB.Address, types.Address{3})
	require.NoError(t, err)

	require.NoError(t, svc.MintTo(ctx, mintA.Address, src.Address, 100, testSigner{authority}))

	// 跨资产转账被拒绝
	err = svc.Transfer(ctx, src.Address, dst.Address, 50, testSigner{alice})
	assert.ErrorIs(t, err, ErrMintMismatch)
}

func TestTransferChecked(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	authority := types.Address{1}
	mint, err := svc.CreateMint(ctx, authority, 9)
	require.NoError(t, err)

	alice := types.Address{2}
	src, err := svc.CreateAccount(ctx, mint.Address, alice)
	require.NoError(t, err)
	dst, err := svc.CreateAccount(ctx, mint.Address, types.Address{3})
	require.NoError(t, err)

	require.NoError(t, svc.MintTo(ctx, mint.Address, src.Address, 200, testSigner{authority}))

	// 精度不匹配
	err = svc.TransferChecked(ctx, src.Address, dst.Address, mint.Address, 50, 6, testSigner{alice})
	assert.ErrorIs(t, err, ErrDecimalsMismatch)

	require.NoError(t, svc.TransferChecked(ctx, src.Address, dst.Address, mint.Address, 50, 9, testSigner{alice}))

	gotDst, err := svc.GetAccount(ctx, dst.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), gotDst.Amount)
}
