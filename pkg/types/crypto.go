package types

import (
	"bytes"
	"encoding/base64"
	"fmt"
)

// 机密余额相关的密文长度（与链下证明方生成的编码保持一致）
const (
	// ElGamalCiphertextLen ElGamal密文字节长度（两个压缩G1点）
	ElGamalCiphertextLen = 64

	// ElGamalPubkeyLen ElGamal公钥字节长度（压缩G1点）
	ElGamalPubkeyLen = 32

	// AeCiphertextLen 可解密余额快照字节长度（12字节nonce + 8字节密文 + 16字节认证标签）
	AeCiphertextLen = 36

	// AeCiphertextMaxBase64Len 可解密余额快照Base64编码最大长度
	AeCiphertextMaxBase64Len = 48

	// ElGamalPubkeyMaxBase64Len ElGamal公钥Base64编码最大长度
	ElGamalPubkeyMaxBase64Len = 88
)

// ElGamalCiphertext 同态ElGamal密文（不透明的64字节编码）
//
// 密文在同一公钥下支持同态加减法；本类型只承载字节编码，
// 算术运算由confidential包的ElGamal实现完成。
type ElGamalCiphertext [ElGamalCiphertextLen]byte

// Bytes 返回密文的字节切片副本
func (c ElGamalCiphertext) Bytes() []byte {
	b := make([]byte, ElGamalCiphertextLen)
	copy(b, c[:])
	return b
}

// Equal 按位比较两个密文
func (c ElGamalCiphertext) Equal(other ElGamalCiphertext) bool {
	return bytes.Equal(c[:], other[:])
}

// String 返回Base64编码的密文字符串
func (c ElGamalCiphertext) String() string {
	return base64.StdEncoding.EncodeToString(c[:])
}

// MarshalText 实现encoding.TextMarshaler，输出Base64编码
func (c ElGamalCiphertext) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText 实现encoding.TextUnmarshaler，从Base64编码解析
func (c *ElGamalCiphertext) UnmarshalText(text []byte) error {
	parsed, err := ElGamalCiphertextFromBase64(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ElGamalCiphertextFromBase64 从Base64字符串解析ElGamal密文
func ElGamalCiphertextFromBase64(s string) (ElGamalCiphertext, error) {
	var c ElGamalCiphertext
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("无效的Base64密文: %w", err)
	}
	if len(decoded) != ElGamalCiphertextLen {
		return c, fmt.Errorf("无效的密文长度: %d（期望 %d 字节）", len(decoded), ElGamalCiphertextLen)
	}
	copy(c[:], decoded)
	return c, nil
}

// ElGamalCiphertextFromBytes 从字节切片构造ElGamal密文
func ElGamalCiphertextFromBytes(b []byte) (ElGamalCiphertext, error) {
	var c ElGamalCiphertext
	if len(b) != ElGamalCiphertextLen {
		return c, fmt.Errorf("无效的密文长度: %d（期望 %d 字节）", len(b), ElGamalCiphertextLen)
	}
	copy(c[:], b)
	return c, nil
}

// ElGamalPubkey ElGamal公钥（压缩G1点的32字节编码）
type ElGamalPubkey [ElGamalPubkeyLen]byte

// Bytes 返回公钥的字节切片副本
func (p ElGamalPubkey) Bytes() []byte {
	b := make([]byte, ElGamalPubkeyLen)
	copy(b, p[:])
	return b
}

// Equal 按位比较两个公钥
func (p ElGamalPubkey) Equal(other ElGamalPubkey) bool {
	return bytes.Equal(p[:], other[:])
}

// String 返回Base64编码的公钥字符串
func (p ElGamalPubkey) String() string {
	return base64.StdEncoding.EncodeToString(p[:])
}

// MarshalText 实现encoding.TextMarshaler，输出Base64编码
func (p ElGamalPubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText 实现encoding.TextUnmarshaler，从Base64编码解析
func (p *ElGamalPubkey) UnmarshalText(text []byte) error {
	parsed, err := ElGamalPubkeyFromBase64(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ElGamalPubkeyFromBase64 从Base64字符串解析ElGamal公钥
func ElGamalPubkeyFromBase64(s string) (ElGamalPubkey, error) {
	var p ElGamalPubkey
	if len(s) > ElGamalPubkeyMaxBase64Len {
		return p, fmt.Errorf("公钥Base64编码过长: %d（最大 %d）", len(s), ElGamalPubkeyMaxBase64Len)
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return p, fmt.Errorf("无效的Base64公钥: %w", err)
	}
	if len(decoded) != ElGamalPubkeyLen {
		return p, fmt.Errorf("无效的公钥长度: %d（期望 %d 字节）", len(decoded), ElGamalPubkeyLen)
	}
	copy(p[:], decoded)
	return p, nil
}

// AeCiphertext 可解密余额快照（认证加密密文，余额所有者可本地解密）
//
// 每次机密操作后由余额所有者在链下重新加密并随请求提交；
// 账本只保存字节，从不解密。
type AeCiphertext [AeCiphertextLen]byte

// Bytes 返回快照的字节切片副本
func (c AeCiphertext) Bytes() []byte {
	b := make([]byte, AeCiphertextLen)
	copy(b, c[:])
	return b
}

// String 返回Base64编码的快照字符串
func (c AeCiphertext) String() string {
	return base64.StdEncoding.EncodeToString(c[:])
}

// MarshalText 实现encoding.TextMarshaler，输出Base64编码
func (c AeCiphertext) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText 实现encoding.TextUnmarshaler，从Base64编码解析
func (c *AeCiphertext) UnmarshalText(text []byte) error {
	parsed, err := AeCiphertextFromBase64(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// AeCiphertextFromBase64 从Base64字符串解析可解密余额快照
//
// 编码无法解析时返回错误，调用方应映射为DecryptableBalanceConversionFailed。
func AeCiphertextFromBase64(s string) (AeCiphertext, error) {
	var c AeCiphertext
	if len(s) > AeCiphertextMaxBase64Len {
		return c, fmt.Errorf("快照Base64编码过长: %d（最大 %d）", len(s), AeCiphertextMaxBase64Len)
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("无效的Base64快照: %w", err)
	}
	if len(decoded) != AeCiphertextLen {
		return c, fmt.Errorf("无效的快照长度: %d（期望 %d 字节）", len(decoded), AeCiphertextLen)
	}
	copy(c[:], decoded)
	return c, nil
}
