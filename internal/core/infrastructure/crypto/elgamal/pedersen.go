// pedersen.go: Pedersen承诺
//
// 等值证明与范围证明通过同一承诺相互链接：等值证明声明某密文
// 与承诺同值，范围证明声明承诺值位于区间内。
package elgamal

import (
	"fmt"
	"math/big"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Commitment Pedersen承诺的32字节压缩编码
type Commitment [32]byte

// Commit 计算承诺 C = v·G + r·H
func Commit(value uint64, blinding fr.Element) Commitment {
	var v fr.Element
	v.SetUint64(value)

	var vg, rh bn254.G1Affine
	vg.ScalarMultiplication(&g1Gen, v.BigInt(new(big.Int)))
	rh.ScalarMultiplication(&hGen, blinding.BigInt(new(big.Int)))

	sum := addPoints(vg, rh)
	return Commitment(sum.Bytes())
}

// RandomBlinding 生成承诺致盲因子
func RandomBlinding() (fr.Element, error) {
	var r fr.Element
	if _, err := r.SetRandom(); err != nil {
		return fr.Element{}, fmt.Errorf("生成致盲因子失败: %w", err)
	}
	return r, nil
}

// VerifyOpening 校验承诺开启 (value, blinding)
func VerifyOpening(c Commitment, value uint64, blinding fr.Element) bool {
	return Commit(value, blinding) == c
}
