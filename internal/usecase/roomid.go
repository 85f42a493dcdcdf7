package usecase

import (
	"crypto/rand"
	"math/big"
)

// Room identifiers are short uppercase codes, easy to dictate over voice.
const (
	roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomIDLength   = 6
)

func generateRoomID() (string, error) {
	code := make([]byte, roomIDLength)
	max := big.NewInt(int64(len(roomIDAlphabet)))

	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}

		code[i] = roomIDAlphabet[n.Int64()]
	}

	return string(code), nil
}
