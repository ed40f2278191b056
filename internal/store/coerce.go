package store

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ParsePrice reads a decimal price. Unparsable or negative input yields 0.
// Like a browser's parseFloat it takes the longest numeric prefix, so "2.50€"
// is 2.5, "1,5" is 1 and "1e3" is 1000.
func ParsePrice(s string) float64 {
	f, ok := numericPrefix(strings.TrimSpace(s), true)
	if !ok || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// ParseQty reads an integer quantity. Unparsable or non-positive input yields 1.
// "3 kg" is 3 and "2.7" is 2. Huge values are capped at math.MaxInt32.
func ParseQty(s string) int {
	f, ok := numericPrefix(strings.TrimSpace(s), false)
	if !ok || f < 1 {
		return 1
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func numericPrefix(s string, allowFraction bool) (float64, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if allowFraction && end < len(s) && s[end] == '.' {
		j := end + 1
		frac := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			frac++
		}
		if frac > 0 || digits > 0 {
			end = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0, false
	}
	if allowFraction && end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		j := end + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := j
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j > exp {
			end = j
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}
