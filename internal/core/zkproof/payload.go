// payload.go: 证明载荷的二进制编码
//
// 所有载荷均为定长布局，整数采用小端序，标量与曲线点采用
// 各自的32字节规范编码。sigma协议载荷只携带公开陈述与
// (承诺点, 响应标量)；见证重算类载荷携带明文见证，由验证方
// 在校验边界内重算公开陈述后即丢弃。
package zkproof

import (
	"crypto/sha256"
	"encoding/binary"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/gachago/v1/pkg/types"
)

// 域分离标签：Fiat-Shamir挑战计算
const (
	pubkeyValidityDST = "gachago:zkproof:pubkey_validity"
	zeroCiphertextDST = "gachago:zkproof:zero_ciphertext"
)

// 各载荷的定长字节布局
const (
	// pubkey(32) || A(32) || z(32)
	pubkeyValidityPayloadLen = 96

	// pubkey(32) || ciphertext(64) || A1(32) || A2(32) || z(32)
	zeroCiphertextPayloadLen = 192

	// pubkey(32) || ciphertext(64) || commitment(32) || amount(8) || encRandomness(32) || blinding(32)
	equalityPayloadLen = 200

	// destPubkey(32) || auditorPubkey(32) || ctDestLo(64) || ctDestHi(64) ||
	// ctAuditorLo(64) || ctAuditorHi(64) || amountLo(8) || amountHi(8) || rLo(32) || rHi(32)
	validityPayloadLen = 400

	// commitment(32) || bitLength(1) || amount(8) || blinding(32)
	rangePayloadLen = 73
)

// pubkeyValidityPayload 公钥格式良好性证明载荷（Schnorr PoK）
type pubkeyValidityPayload struct {
	Pubkey types.ElGamalPubkey
	A      [32]byte // 承诺点 k·G
	Z      fr.Element
}

func (p *pubkeyValidityPayload) encode() []byte {
	out := make([]byte, 0, pubkeyValidityPayloadLen)
	out = append(out, p.Pubkey[:]...)
	out = append(out, p.A[:]...)
	z := p.Z.Bytes()
	out = append(out, z[:]...)
	return out
}

func decodePubkeyValidityPayload(b []byte) (*pubkeyValidityPayload, error) {
	if len(b) != pubkeyValidityPayloadLen {
		return nil, WrapInvalidPayloadLengthError("pubkey_validity", pubkeyValidityPayloadLen, len(b))
	}
	var p pubkeyValidityPayload
	copy(p.Pubkey[:], b[:32])
	copy(p.A[:], b[32:64])
	p.Z.SetBytes(b[64:96])
	return &p, nil
}

// zeroCiphertextPayload 零密文证明载荷（Chaum-Pedersen DLEQ）
//
// 证明者以私钥s为见证，声明 P = s·G 且 C2 = s·C1，
// 即密文(C1, C2)在P下解密为零。
type zeroCiphertextPayload struct {
	Pubkey     types.ElGamalPubkey
	Ciphertext types.ElGamalCiphertext
	A1         [32]byte // k·G
	A2         [32]byte // k·C1
	Z          fr.Element
}

func (p *zeroCiphertextPayload) encode() []byte {
	out := make([]byte, 0, zeroCiphertextPayloadLen)
	out = append(out, p.Pubkey[:]...)
	out = append(out, p.Ciphertext[:]...)
	out = append(out, p.A1[:]...)
	out = append(out, p.A2[:]...)
	z := p.Z.Bytes()
	out = append(out, z[:]...)
	return out
}

func decodeZeroCiphertextPayload(b []byte) (*zeroCiphertextPayload, error) {
	if len(b) != zeroCiphertextPayloadLen {
		return nil, WrapInvalidPayloadLengthError("zero_ciphertext", zeroCiphertextPayloadLen, len(b))
	}
	var p zeroCiphertextPayload
	copy(p.Pubkey[:], b[:32])
	copy(p.Ciphertext[:], b[32:96])
	copy(p.A1[:], b[96:128])
	copy(p.A2[:], b[128:160])
	p.Z.SetBytes(b[160:192])
	return &p, nil
}

// equalityPayload 密文-承诺相等性证明载荷（见证重算）
//
// 公开陈述为(pubkey, ciphertext, commitment)；见证为
// (amount, encRandomness, blinding)，验证方重算两侧后丢弃。
type equalityPayload struct {
	Pubkey        types.ElGamalPubkey
	Ciphertext    types.ElGamalCiphertext
	Commitment    [32]byte
	Amount        uint64
	EncRandomness fr.Element
	Blinding      fr.Element
}

func (p *equalityPayload) encode() []byte {
	out := make([]byte, 0, equalityPayloadLen)
	out = append(out, p.Pubkey[:]...)
	out = append(out, p.Ciphertext[:]...)
	out = append(out, p.Commitment[:]...)
	out = binary.LittleEndian.AppendUint64(out, p.Amount)
	r := p.EncRandomness.Bytes()
	out = append(out, r[:]...)
	bl := p.Blinding.Bytes()
	out = append(out, bl[:]...)
	return out
}

func decodeEqualityPayload(b []byte) (*equalityPayload, error) {
	if len(b) != equalityPayloadLen {
		return nil, WrapInvalidPayloadLengthError("ciphertext_commitment_equality", equalityPayloadLen, len(b))
	}
	var p equalityPayload
	copy(p.Pubkey[:], b[:32])
	copy(p.Ciphertext[:], b[32:96])
	copy(p.Commitment[:], b[96:128])
	p.Amount = binary.LittleEndian.Uint64(b[128:136])
	p.EncRandomness.SetBytes(b[136:168])
	p.Blinding.SetBytes(b[168:200])
	return &p, nil
}

// validityPayload 分组密文有效性证明载荷（见证重算）
//
// 声明接收方与审计方的低/高位密文在各自公钥下加密了
// 同一对金额分量(amountLo, amountHi)，且共享加密随机数。
type validityPayload struct {
	DestPubkey    types.ElGamalPubkey
	AuditorPubkey types.ElGamalPubkey
	CtDestLo      types.ElGamalCiphertext
	CtDestHi      types.ElGamalCiphertext
	CtAuditorLo   types.ElGamalCiphertext
	CtAuditorHi   types.ElGamalCiphertext
	AmountLo      uint64
	AmountHi      uint64
	RLo           fr.Element
	RHi           fr.Element
}

func (p *validityPayload) encode() []byte {
	out := make([]byte, 0, validityPayloadLen)
	out = append(out, p.DestPubkey[:]...)
	out = append(out, p.AuditorPubkey[:]...)
	out = append(out, p.CtDestLo[:]...)
	out = append(out, p.CtDestHi[:]...)
	out = append(out, p.CtAuditorLo[:]...)
	out = append(out, p.CtAuditorHi[:]...)
	out = binary.LittleEndian.AppendUint64(out, p.AmountLo)
	out = binary.LittleEndian.AppendUint64(out, p.AmountHi)
	rLo := p.RLo.Bytes()
	out = append(out, rLo[:]...)
	rHi := p.RHi.Bytes()
	out = append(out, rHi[:]...)
	return out
}

func decodeValidityPayload(b []byte) (*validityPayload, error) {
	if len(b) != validityPayloadLen {
		return nil, WrapInvalidPayloadLengthError("grouped_ciphertext_validity", validityPayloadLen, len(b))
	}
	var p validityPayload
	copy(p.DestPubkey[:], b[:32])
	copy(p.AuditorPubkey[:], b[32:64])
	copy(p.CtDestLo[:], b[64:128])
	copy(p.CtDestHi[:], b[128:192])
	copy(p.CtAuditorLo[:], b[192:256])
	copy(p.CtAuditorHi[:], b[256:320])
	p.AmountLo = binary.LittleEndian.Uint64(b[320:328])
	p.AmountHi = binary.LittleEndian.Uint64(b[328:336])
	p.RLo.SetBytes(b[336:368])
	p.RHi.SetBytes(b[368:400])
	return &p, nil
}

// rangePayload 批量范围证明载荷（见证重算）
//
// 声明承诺值位于[0, 2^BitLength)。
type rangePayload struct {
	Commitment [32]byte
	BitLength  uint8
	Amount     uint64
	Blinding   fr.Element
}

func (p *rangePayload) encode() []byte {
	out := make([]byte, 0, rangePayloadLen)
	out = append(out, p.Commitment[:]...)
	out = append(out, p.BitLength)
	out = binary.LittleEndian.AppendUint64(out, p.Amount)
	bl := p.Blinding.Bytes()
	out = append(out, bl[:]...)
	return out
}

func decodeRangePayload(b []byte) (*rangePayload, error) {
	if len(b) != rangePayloadLen {
		return nil, WrapInvalidPayloadLengthError("batched_range_proof", rangePayloadLen, len(b))
	}
	var p rangePayload
	copy(p.Commitment[:], b[:32])
	p.BitLength = b[32]
	p.Amount = binary.LittleEndian.Uint64(b[33:41])
	p.Blinding.SetBytes(b[41:73])
	return &p, nil
}

// computeChallenge 计算Fiat-Shamir挑战标量
//
// SHA-256吸收域分离标签与全部公开组件后，经模约减映射到fr。
func computeChallenge(dst string, parts ...[]byte) fr.Element {
	h := sha256.New()
	h.Write([]byte(dst))
	for _, part := range parts {
		h.Write(part)
	}
	var c fr.Element
	c.SetBytes(h.Sum(nil))
	return c
}
