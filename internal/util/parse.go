package util

import (
	"regexp"
	"strconv"
	"strings"
)

// SafeAtoi converts s to an int, returning 0 on any parse failure.
func SafeAtoi(s string) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return i
}

var nonNumericRegex = regexp.MustCompile(`[^\d]`)

// CleanNumericString strips everything but digits, so counts like
// "1 024 résultats" survive the thousands separators and suffix text.
func CleanNumericString(s string) string {
	return nonNumericRegex.ReplaceAllString(s, "")
}
