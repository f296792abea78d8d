package models

import (
	"crypto/rand"
	"math/big"
)

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 9
)

// NewID генерирует короткий алфавитно-цифровой идентификатор записи.
// Уникальность не глобальная, достаточная для одного небольшого набора данных.
func NewID() string {
	buf := make([]byte, idLength)
	max := big.NewInt(int64(len(idAlphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform RNG is broken;
			// degrade to a fixed character rather than panic.
			buf[i] = idAlphabet[0]
			continue
		}
		buf[i] = idAlphabet[n.Int64()]
	}

	return string(buf)
}
