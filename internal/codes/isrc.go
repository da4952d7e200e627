package codes

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

// ISRC layout: CC-XXX-YY-NNNNN (country, registrant, year, designation).
const (
	isrcCountry    = "UA"
	isrcRegistrant = "A1B"
)

var isrcRe = regexp.MustCompile(`^[A-Z]{2}-?[A-Z0-9]{3}-?\d{2}-?\d{5}$`)

// GenerateISRC produces an ISRC with the configured registrant prefix, the
// current two-digit year, and a random five-digit designation.
func GenerateISRC(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return "", fmt.Errorf("generating isrc designation: %w", err)
	}
	year := now.UTC().Year() % 100
	return fmt.Sprintf("%s-%s-%02d-%05d", isrcCountry, isrcRegistrant, year, n.Int64()), nil
}

// ValidateISRC reports whether the value matches the ISRC format, with or
// without separators.
func ValidateISRC(value string) bool {
	return isrcRe.MatchString(strings.ToUpper(strings.TrimSpace(value)))
}

// NormalizeISRC strips separators and uppercases the value.
func NormalizeISRC(value string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(value)), "-", "")
}
