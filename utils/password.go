package utils

import (
	"crypto/rand"
	"math/big"
)

const roomPasswordDigits = "0123456789"

// GenerateRoomPassword sinh mật khẩu số cho khóa cửa
func GenerateRoomPassword(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	buf := make([]byte, length)
	limit := big.NewInt(int64(len(roomPasswordDigits)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = roomPasswordDigits[n.Int64()]
	}
	return string(buf), nil
}
