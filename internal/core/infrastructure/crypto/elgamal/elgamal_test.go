package elgamal

import (
	"testing"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	// 加密后解密应恢复原始金额
	amounts := []uint64{0, 1, 65535, 65536, 200_000_000}
	for _, amount := range amounts {
		ct, _, err := Encrypt(&kp.Public, amount)
		require.NoError(t, err)

		got, err := Decrypt(&kp.Secret, ct, 300_000_000)
		require.NoError(t, err)
		assert.Equal(t, amount, got)
	}
}

func TestHomomorphicAddSub(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	ctA, _, err := Encrypt(&kp.Public, 100)
	require.NoError(t, err)
	ctB, _, err := Encrypt(&kp.Public, 250)
	require.NoError(t, err)

	// Enc(100) + Enc(250) = Enc(350)
	sum := Add(ctA, ctB)
	got, err := Decrypt(&kp.Secret, sum, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(350), got)

	// Enc(250) - Enc(100) = Enc(150)
	diff := Sub(ctB, ctA)
	got, err = Decrypt(&kp.Secret, diff, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), got)
}

func TestEqualPlaintextDifferenceDecryptsToZero(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	// 同一金额、不同随机数的两份密文之差解密为零
	ctA, _, err := Encrypt(&kp.Public, 777)
	require.NoError(t, err)
	ctB, _, err := Encrypt(&kp.Public, 777)
	require.NoError(t, err)

	diff := Sub(ctA, ctB)
	assert.True(t, DecryptsToZero(&kp.Secret, diff))

	// 金额不同时差值不为零
	ctC, _, err := Encrypt(&kp.Public, 778)
	require.NoError(t, err)
	diff = Sub(ctA, ctC)
	assert.False(t, DecryptsToZero(&kp.Secret, diff))
}

func TestAddAmountAndScalarMul(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	ct, _, err := Encrypt(&kp.Public, 10)
	require.NoError(t, err)

	// 明文累加不改变随机数
	ct2 := AddAmount(ct, 32)
	got, err := Decrypt(&kp.Secret, ct2, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)
	assert.True(t, ct.C1.Equal(&ct2.C1))

	// 标量乘法：2^16缩放对应待处理余额高位并入
	scaled := ScalarMul(ct, 1<<16)
	got, err = Decrypt(&kp.Secret, scaled, 1<<21)
	require.NoError(t, err)
	assert.Equal(t, uint64(10<<16), got)
}

func TestWireFormatRoundTrip(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	ct, _, err := Encrypt(&kp.Public, 123456)
	require.NoError(t, err)

	// 64字节编码往返
	encoded := ct.Bytes()
	decoded, err := FromBytes(encoded)
	require.NoError(t, err)
	assert.True(t, ct.C1.Equal(&decoded.C1))
	assert.True(t, ct.C2.Equal(&decoded.C2))

	// 公钥编码往返
	pkBytes := kp.Public.Bytes()
	pk, err := PublicKeyFromBytes(pkBytes)
	require.NoError(t, err)
	assert.True(t, kp.Public.P.Equal(&pk.P))
}

func TestZeroRandomnessEncryption(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	// r=0时C1为无穷远点，密文可被任何知道明文的一方重构
	var zero fr.Element
	ct := EncryptWithRandomness(&kp.Public, 5000, zero)
	assert.True(t, ct.C1.IsInfinity())

	got, err := Decrypt(&kp.Secret, ct, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), got)
}

func TestAeSnapshotRoundTrip(t *testing.T) {
	key, err := GenerateAeKey()
	require.NoError(t, err)

	ct, err := key.Encrypt(100_000_000)
	require.NoError(t, err)

	got, err := key.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000), got)

	// 篡改密文应导致认证失败
	ct[20] ^= 0xFF
	_, err = key.Decrypt(ct)
	assert.Error(t, err)
}

func TestPedersenCommitment(t *testing.T) {
	r, err := RandomBlinding()
	require.NoError(t, err)

	c := Commit(42, r)
	assert.True(t, VerifyOpening(c, 42, r))
	assert.False(t, VerifyOpening(c, 43, r))

	// 不同致盲因子产生不同承诺
	r2, err := RandomBlinding()
	require.NoError(t, err)
	c2 := Commit(42, r2)
	assert.NotEqual(t, c, c2)
}
