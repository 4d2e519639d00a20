package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars     = "0123456789"
	specialChars   = "!@#$%&*"
)

func randomChar(set string) byte {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(err)
	}
	return set[n.Int64()]
}

// GenerateRandomPassword builds a password with at least one character
// of each class, shuffled so the classes don't sit in fixed positions.
// Used for the credentials handed to a freshly created supermarket.
func GenerateRandomPassword(length int) string {
	if length < 4 {
		length = 12
	}
	all := lowercaseChars + uppercaseChars + digitChars + specialChars

	password := make([]byte, 0, length)
	password = append(password,
		randomChar(lowercaseChars),
		randomChar(uppercaseChars),
		randomChar(digitChars),
		randomChar(specialChars),
	)
	for len(password) < length {
		password = append(password, randomChar(all))
	}

	for i := len(password) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			panic(err)
		}
		j := n.Int64()
		password[i], password[j] = password[j], password[i]
	}
	return string(password)
}
