package utils

import (
	"strconv"

	"github.com/google/uuid"
)

func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}

// CanonicalUUID returns the lower-case hyphenated form of s, or false when s
// is not a 36-character UUID.
func CanonicalUUID(s string) (string, bool) {
	if len(s) != 36 {
		return "", false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// ParseIntDefault returns fallback for empty or non-numeric input.
func ParseIntDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
