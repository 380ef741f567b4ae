// ae.go: 可解密余额快照的认证加密
//
// 余额所有者持有对称密钥，在每次机密操作后于链下重新加密
// 当前可用余额；账本只保存密文字节，从不解密。
package elgamal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/gachago/v1/pkg/types"
)

// AeKeyLen 认证加密密钥长度（AES-256）
const AeKeyLen = 32

// aeNonceLen GCM nonce长度
const aeNonceLen = 12

// AeKey 可解密余额快照的对称密钥
type AeKey [AeKeyLen]byte

// GenerateAeKey 生成新的认证加密密钥
func GenerateAeKey() (AeKey, error) {
	var k AeKey
	if _, err := rand.Read(k[:]); err != nil {
		return AeKey{}, fmt.Errorf("生成认证加密密钥失败: %w", err)
	}
	return k, nil
}

// Encrypt 加密余额，产出36字节快照（nonce || 密文 || 认证标签）
func (k AeKey) Encrypt(balance uint64) (types.AeCiphertext, error) {
	var out types.AeCiphertext

	block, err := aes.NewCipher(k[:])
	if err != nil {
		return out, fmt.Errorf("初始化AES失败: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return out, fmt.Errorf("初始化GCM失败: %w", err)
	}

	nonce := make([]byte, aeNonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return out, fmt.Errorf("生成nonce失败: %w", err)
	}

	plaintext := make([]byte, 8)
	binary.LittleEndian.PutUint64(plaintext, balance)

	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	copy(out[:aeNonceLen], nonce)
	copy(out[aeNonceLen:], sealed)
	return out, nil
}

// Decrypt 解密快照恢复余额；密文被篡改时认证失败返回错误
func (k AeKey) Decrypt(ct types.AeCiphertext) (uint64, error) {
	block, err := aes.NewCipher(k[:])
	if err != nil {
		return 0, fmt.Errorf("初始化AES失败: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return 0, fmt.Errorf("初始化GCM失败: %w", err)
	}

	plaintext, err := gcm.Open(nil, ct[:aeNonceLen], ct[aeNonceLen:], nil)
	if err != nil {
		return 0, fmt.Errorf("快照认证失败: %w", err)
	}
	if len(plaintext) != 8 {
		return 0, fmt.Errorf("无效的快照明文长度: %d", len(plaintext))
	}
	return binary.LittleEndian.Uint64(plaintext), nil
}
