// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// codeAlphabet excludes look-alike characters (0/O, 1/I/L) since codes are typed by hand.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// HashSecret hashes a one-time secret (such as a confirmation code) using bcrypt.
func HashSecret(plainText string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainText), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash secret: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckSecretHash compares a plain-text secret with its hashed version.
func CheckSecretHash(plainText, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainText))
	return err == nil
}

// GenerateCode returns a random code of length characters drawn from an
// unambiguous upper-case alphabet.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("sec: invalid code length %d", length)
	}

	alphabetSize := big.NewInt(int64(len(codeAlphabet)))
	buffer := make([]byte, length)
	for i := range buffer {
		index, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
		}
		buffer[i] = codeAlphabet[index.Int64()]
	}

	return string(buffer), nil
}
