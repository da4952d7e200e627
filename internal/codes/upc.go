package codes

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateUPC produces a random 12-digit UPC-A code: 11 random digits plus the
// standard check digit.
func GenerateUPC() (string, error) {
	digits := make([]int, 11)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generating upc digit: %w", err)
		}
		digits[i] = int(n.Int64())
	}

	body := ""
	for _, d := range digits {
		body += fmt.Sprintf("%d", d)
	}
	return body + fmt.Sprintf("%d", upcCheckDigit(digits)), nil
}

// ValidateUPC reports whether the value is a 12-digit code with a correct
// check digit.
func ValidateUPC(value string) bool {
	if len(value) != 12 {
		return false
	}
	digits := make([]int, 12)
	for i, r := range value {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
	}
	return upcCheckDigit(digits[:11]) == digits[11]
}

// upcCheckDigit implements the UPC-A checksum: odd positions weighted 3.
func upcCheckDigit(digits []int) int {
	oddSum := 0
	evenSum := 0
	for i, d := range digits {
		if i%2 == 0 {
			oddSum += d
		} else {
			evenSum += d
		}
	}
	return (10 - ((oddSum*3 + evenSum) % 10)) % 10
}
