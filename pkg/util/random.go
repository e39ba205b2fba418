package util

import (
	"crypto/rand"
	"math/big"
)

const randomAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GetRandomString 生成指定长度的随机字符串，用于首次运行时的签名密钥
func GetRandomString(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(randomAlphabet)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			b[i] = randomAlphabet[i%len(randomAlphabet)]
			continue
		}
		b[i] = randomAlphabet[v.Int64()]
	}
	return string(b)
}
