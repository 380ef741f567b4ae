// Package elgamal 提供机密余额所用的同态加密原语
//
// elgamal.go: BN254 G1上的指数ElGamal实现
//
// 🎯 **核心职责**：机密余额密文的加解密与同态加减法
//
// 💡 **设计理念**：
// - 使用 gnark-crypto 库实现椭圆曲线运算
// - 同一公钥下密文的加/减法对应明文的加/减法，无需解密
// - 64字节线格式：两个压缩G1点（C1 || C2）
package elgamal

import (
	"fmt"
	"math/big"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/gachago/v1/pkg/types"
)

// 域分离标签：派生Pedersen承诺的第二生成元H
const pedersenDST = "gachago:confidential:pedersen:H"

var (
	// g1Gen G1基点G
	g1Gen bn254.G1Affine

	// hGen Pedersen承诺的第二生成元H（hash-to-curve派生，离散对数未知）
	hGen bn254.G1Affine
)

func init() {
	_, _, g1Gen, _ = bn254.Generators()

	h, err := bn254.HashToG1([]byte(pedersenDST), []byte(pedersenDST))
	if err != nil {
		panic(fmt.Sprintf("派生Pedersen生成元失败: %v", err))
	}
	hGen = h
}

// GeneratorG 返回基点G的副本
func GeneratorG() bn254.G1Affine {
	return g1Gen
}

// GeneratorH 返回Pedersen第二生成元H的副本
func GeneratorH() bn254.G1Affine {
	return hGen
}

// SecretKey ElGamal私钥
type SecretKey struct {
	s fr.Element
}

// PublicKey ElGamal公钥（P = s·G）
type PublicKey struct {
	P bn254.G1Affine
}

// Keypair ElGamal密钥对
type Keypair struct {
	Secret SecretKey
	Public PublicKey
}

// GenerateKeypair 生成新的ElGamal密钥对
func GenerateKeypair() (*Keypair, error) {
	var s fr.Element
	if _, err := s.SetRandom(); err != nil {
		return nil, fmt.Errorf("生成私钥随机数失败: %w", err)
	}

	var p bn254.G1Affine
	p.ScalarMultiplication(&g1Gen, s.BigInt(new(big.Int)))

	return &Keypair{
		Secret: SecretKey{s: s},
		Public: PublicKey{P: p},
	}, nil
}

// Scalar 返回私钥标量的副本（仅供证明方构造sigma协议见证使用）
func (sk *SecretKey) Scalar() fr.Element {
	return sk.s
}

// Bytes 返回公钥的32字节压缩编码
func (pk *PublicKey) Bytes() types.ElGamalPubkey {
	return types.ElGamalPubkey(pk.P.Bytes())
}

// PublicKeyFromBytes 从32字节压缩编码解析公钥（含子群检查）
func PublicKeyFromBytes(b types.ElGamalPubkey) (*PublicKey, error) {
	var p bn254.G1Affine
	if _, err := p.SetBytes(b[:]); err != nil {
		return nil, fmt.Errorf("无效的ElGamal公钥编码: %w", err)
	}
	return &PublicKey{P: p}, nil
}

// Ciphertext 指数ElGamal密文
//
// C1 = r·G，C2 = m·G + r·P；两个密文逐点相加即为明文之和的密文。
type Ciphertext struct {
	C1 bn254.G1Affine
	C2 bn254.G1Affine
}

// Zero 返回零密文（两个无穷远点），加密金额0且随机数为0
func Zero() Ciphertext {
	return Ciphertext{}
}

// Encrypt 以新随机数加密金额，返回密文与所用随机数
//
// 随机数由调用方保存，用于之后构造零密文等sigma证明。
func Encrypt(pk *PublicKey, amount uint64) (Ciphertext, fr.Element, error) {
	var r fr.Element
	if _, err := r.SetRandom(); err != nil {
		return Ciphertext{}, fr.Element{}, fmt.Errorf("生成加密随机数失败: %w", err)
	}
	return EncryptWithRandomness(pk, amount, r), r, nil
}

// EncryptWithRandomness 以指定随机数加密金额
//
// r为零时得到确定性密文(O, m·G)，用于明文已知的存入累加。
func EncryptWithRandomness(pk *PublicKey, amount uint64, r fr.Element) Ciphertext {
	var ct Ciphertext

	rBig := r.BigInt(new(big.Int))
	ct.C1.ScalarMultiplication(&g1Gen, rBig)

	var rp bn254.G1Affine
	rp.ScalarMultiplication(&pk.P, rBig)

	m := EncodeAmount(amount)

	var acc bn254.G1Jac
	acc.FromAffine(&m)
	acc.AddMixed(&rp)
	ct.C2.FromJacobian(&acc)

	return ct
}

// EncodeAmount 将明文金额编码为曲线点 m·G
func EncodeAmount(amount uint64) bn254.G1Affine {
	var m bn254.G1Affine
	var s fr.Element
	s.SetUint64(amount)
	m.ScalarMultiplication(&g1Gen, s.BigInt(new(big.Int)))
	return m
}

// Add 同态加法：Enc(a) + Enc(b) = Enc(a+b)
func Add(a, b Ciphertext) Ciphertext {
	return Ciphertext{
		C1: addPoints(a.C1, b.C1),
		C2: addPoints(a.C2, b.C2),
	}
}

// Sub 同态减法：Enc(a) - Enc(b) = Enc(a-b)
//
// 两个操作数必须在同一公钥下加密，否则结果对任何密钥都不可解。
func Sub(a, b Ciphertext) Ciphertext {
	var nb Ciphertext
	nb.C1.Neg(&b.C1)
	nb.C2.Neg(&b.C2)
	return Add(a, nb)
}

// AddAmount 向密文同态加入明文金额（随机数不变）
func AddAmount(a Ciphertext, amount uint64) Ciphertext {
	m := EncodeAmount(amount)
	return Ciphertext{
		C1: a.C1,
		C2: addPoints(a.C2, m),
	}
}

// ScalarMul 密文的标量乘法：k·Enc(m) = Enc(k·m)
//
// 用于把高位待处理余额按2^16缩放后并入可用余额。
func ScalarMul(a Ciphertext, k uint64) Ciphertext {
	var s fr.Element
	s.SetUint64(k)
	kBig := s.BigInt(new(big.Int))

	var out Ciphertext
	out.C1.ScalarMultiplication(&a.C1, kBig)
	out.C2.ScalarMultiplication(&a.C2, kBig)
	return out
}

// Bytes 返回密文的64字节线格式（C1压缩编码 || C2压缩编码）
func (c Ciphertext) Bytes() types.ElGamalCiphertext {
	var out types.ElGamalCiphertext
	c1 := c.C1.Bytes()
	c2 := c.C2.Bytes()
	copy(out[:32], c1[:])
	copy(out[32:], c2[:])
	return out
}

// FromBytes 从64字节线格式解析密文（含子群检查）
//
// 编码不合法时返回错误，调用方应映射为CiphertextArithmeticFailed
// 或相应的转换错误。
func FromBytes(b types.ElGamalCiphertext) (Ciphertext, error) {
	var c Ciphertext
	if _, err := c.C1.SetBytes(b[:32]); err != nil {
		return Ciphertext{}, fmt.Errorf("无效的密文C1编码: %w", err)
	}
	if _, err := c.C2.SetBytes(b[32:]); err != nil {
		return Ciphertext{}, fmt.Errorf("无效的密文C2编码: %w", err)
	}
	return c, nil
}

// SubBytes 对两个64字节编码的密文做同态减法
//
// 任一操作数解码失败即返回错误——这是"密文不兼容"在本实现中的
// 表现形式，调用方据此发出CiphertextArithmeticFailed信号。
func SubBytes(a, b types.ElGamalCiphertext) (types.ElGamalCiphertext, error) {
	ca, err := FromBytes(a)
	if err != nil {
		return types.ElGamalCiphertext{}, err
	}
	cb, err := FromBytes(b)
	if err != nil {
		return types.ElGamalCiphertext{}, err
	}
	return Sub(ca, cb).Bytes(), nil
}

// DecryptsToZero 检查密文在该私钥下是否解密为零
//
// Enc(0) = (r·G, r·P)，解密为零当且仅当 C2 == s·C1。
func DecryptsToZero(sk *SecretKey, c Ciphertext) bool {
	var expect bn254.G1Affine
	expect.ScalarMultiplication(&c.C1, sk.s.BigInt(new(big.Int)))
	return expect.Equal(&c.C2)
}

// babyStepCount BSGS解密的基步表大小（2^16）
const babyStepCount = 1 << 16

// Decrypt 解密密文并在[0, maxAmount]内搜索明文金额
//
// 指数ElGamal的解密得到 M = m·G，恢复m需要在离散对数上做
// 有界搜索（baby-step giant-step）；超出范围时返回错误。
// 协议本身从不解密——这是余额所有者和测试使用的工具。
func Decrypt(sk *SecretKey, c Ciphertext, maxAmount uint64) (uint64, error) {
	var sc1 bn254.G1Affine
	sc1.ScalarMultiplication(&c.C1, sk.s.BigInt(new(big.Int)))

	var mJac bn254.G1Jac
	var negSc1 bn254.G1Affine
	negSc1.Neg(&sc1)
	mJac.FromAffine(&c.C2)
	mJac.AddMixed(&negSc1)

	var m bn254.G1Affine
	m.FromJacobian(&mJac)

	// baby steps: i·G, i ∈ [0, 2^16)
	table := make(map[[32]byte]uint64, babyStepCount)
	var acc bn254.G1Jac
	var cur bn254.G1Affine
	acc.FromAffine(&cur) // 无穷远点
	for i := uint64(0); i < babyStepCount; i++ {
		cur.FromJacobian(&acc)
		table[cur.Bytes()] = i
		acc.AddMixed(&g1Gen)
	}

	// giant steps: M - j·(2^16·G)
	giant := EncodeAmount(babyStepCount)
	var negGiant bn254.G1Affine
	negGiant.Neg(&giant)

	var walk bn254.G1Jac
	walk.FromAffine(&m)
	maxGiant := maxAmount/babyStepCount + 1
	for j := uint64(0); j <= maxGiant; j++ {
		var probe bn254.G1Affine
		probe.FromJacobian(&walk)
		if i, ok := table[probe.Bytes()]; ok {
			amount := j*babyStepCount + i
			if amount <= maxAmount {
				return amount, nil
			}
		}
		walk.AddMixed(&negGiant)
	}

	return 0, fmt.Errorf("明文金额超出搜索范围 [0, %d]", maxAmount)
}

// addPoints 仿射点加法（经由Jacobian路径，正确处理无穷远点与倍点）
func addPoints(a, b bn254.G1Affine) bn254.G1Affine {
	var acc bn254.G1Jac
	acc.FromAffine(&a)
	acc.AddMixed(&b)
	var out bn254.G1Affine
	out.FromJacobian(&acc)
	return out
}
