// prover.go: 证明载荷构造
//
// 协议部署中载荷由链下证明方生成，本文件提供同一编码的
// Go侧构造器，供客户端工具与测试使用。sigma协议构造器
// 需要私钥见证；见证重算类构造器只做编码。
package zkproof

import (
	"fmt"
	"math/big"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/gachago/v1/internal/core/infrastructure/crypto/elgamal"
	"github.com/gachago/v1/pkg/types"
)

// BuildPubkeyValidityPayload 构造公钥格式良好性证明载荷
//
// Schnorr PoK：A = k·G，c = H(dst, P, A)，z = k + c·s。
func BuildPubkeyValidityPayload(kp *elgamal.Keypair) ([]byte, error) {
	var k fr.Element
	if _, err := k.SetRandom(); err != nil {
		return nil, fmt.Errorf("生成证明随机数失败: %w", err)
	}

	g := elgamal.GeneratorG()
	var a bn254.G1Affine
	a.ScalarMultiplication(&g, k.BigInt(new(big.Int)))

	pubkey := kp.Public.Bytes()
	aBytes := a.Bytes()

	c := computeChallenge(pubkeyValidityDST, pubkey[:], aBytes[:])

	s := kp.Secret.Scalar()
	var z fr.Element
	z.Mul(&c, &s)
	z.Add(&z, &k)

	p := pubkeyValidityPayload{
		Pubkey: pubkey,
		A:      aBytes,
		Z:      z,
	}
	return p.encode(), nil
}

// BuildZeroCiphertextPayload 构造零密文证明载荷
//
// Chaum-Pedersen DLEQ：A1 = k·G，A2 = k·C1，
// c = H(dst, P, ct, A1, A2)，z = k + c·s。密文必须确实在
// kp下解密为零，否则生成的载荷无法通过校验。
func BuildZeroCiphertextPayload(kp *elgamal.Keypair, ct elgamal.Ciphertext) ([]byte, error) {
	var k fr.Element
	if _, err := k.SetRandom(); err != nil {
		return nil, fmt.Errorf("生成证明随机数失败: %w", err)
	}
	kBig := k.BigInt(new(big.Int))

	g := elgamal.GeneratorG()
	var a1, a2 bn254.G1Affine
	a1.ScalarMultiplication(&g, kBig)
	a2.ScalarMultiplication(&ct.C1, kBig)

	pubkey := kp.Public.Bytes()
	ctBytes := ct.Bytes()
	a1Bytes := a1.Bytes()
	a2Bytes := a2.Bytes()

	c := computeChallenge(zeroCiphertextDST, pubkey[:], ctBytes[:], a1Bytes[:], a2Bytes[:])

	s := kp.Secret.Scalar()
	var z fr.Element
	z.Mul(&c, &s)
	z.Add(&z, &k)

	p := zeroCiphertextPayload{
		Pubkey:     pubkey,
		Ciphertext: ctBytes,
		A1:         a1Bytes,
		A2:         a2Bytes,
		Z:          z,
	}
	return p.encode(), nil
}

// BuildEqualityPayload 构造密文-承诺相等性证明载荷
//
// 承诺由(amount, blinding)重算，调用方保留blinding用于
// 之后的范围证明以链接同一承诺。
func BuildEqualityPayload(pk *elgamal.PublicKey, amount uint64,
	encRandomness, blinding fr.Element) []byte {

	ct := elgamal.EncryptWithRandomness(pk, amount, encRandomness)
	commitment := elgamal.Commit(amount, blinding)

	p := equalityPayload{
		Pubkey:        pk.Bytes(),
		Ciphertext:    ct.Bytes(),
		Commitment:    [32]byte(commitment),
		Amount:        amount,
		EncRandomness: encRandomness,
		Blinding:      blinding,
	}
	return p.encode()
}

// BuildValidityPayload 构造分组密文有效性证明载荷
//
// 金额按16/48位拆分为(lo, hi)，在接收方与审计方公钥下以
// 共享随机数各加密一份。返回载荷与接收方的两份密文，
// 后者用于构造转账指令的待处理余额累加。
func BuildValidityPayload(destPk, auditorPk *elgamal.PublicKey, amount uint64) (
	payload []byte, ctDestLo, ctDestHi types.ElGamalCiphertext, err error) {

	var rLo, rHi fr.Element
	if _, err = rLo.SetRandom(); err != nil {
		err = fmt.Errorf("生成加密随机数失败: %w", err)
		return
	}
	if _, err = rHi.SetRandom(); err != nil {
		err = fmt.Errorf("生成加密随机数失败: %w", err)
		return
	}

	amountLo, amountHi := SplitPendingAmount(amount)

	destLo := elgamal.EncryptWithRandomness(destPk, amountLo, rLo)
	destHi := elgamal.EncryptWithRandomness(destPk, amountHi, rHi)
	auditorLo := elgamal.EncryptWithRandomness(auditorPk, amountLo, rLo)
	auditorHi := elgamal.EncryptWithRandomness(auditorPk, amountHi, rHi)

	p := validityPayload{
		DestPubkey:    destPk.Bytes(),
		AuditorPubkey: auditorPk.Bytes(),
		CtDestLo:      destLo.Bytes(),
		CtDestHi:      destHi.Bytes(),
		CtAuditorLo:   auditorLo.Bytes(),
		CtAuditorHi:   auditorHi.Bytes(),
		AmountLo:      amountLo,
		AmountHi:      amountHi,
		RLo:           rLo,
		RHi:           rHi,
	}
	return p.encode(), destLo.Bytes(), destHi.Bytes(), nil
}

// BuildRangePayload 构造批量范围证明载荷
//
// blinding必须与等值证明中使用的一致，两份陈述才会
// 携带同一承诺。
func BuildRangePayload(amount uint64, bitLength uint8, blinding fr.Element) []byte {
	commitment := elgamal.Commit(amount, blinding)

	p := rangePayload{
		Commitment: [32]byte(commitment),
		BitLength:  bitLength,
		Amount:     amount,
		Blinding:   blinding,
	}
	return p.encode()
}

// SplitPendingAmount 将转账金额拆分为16位低位与48位高位分量
func SplitPendingAmount(amount uint64) (lo, hi uint64) {
	return amount & 0xFFFF, amount >> 16
}
