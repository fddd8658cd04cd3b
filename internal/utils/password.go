package utils

import (
	"crypto/rand"
	"math/big"
)

const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%&*"

// GenerateRandomPassword 生成管理员创建账号时下发的初始密码。
// 去掉了 0/O、1/l/I 这类容易抄错的字符。
func GenerateRandomPassword(length int) (string, error) {
	password := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range password {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		password[i] = passwordAlphabet[n.Int64()]
	}
	return string(password), nil
}
