package filter

import (
	"math"
	"regexp"
	"strconv"
)

var firstDigitsRe = regexp.MustCompile(`\d+`)

// InvestmentValue concatenates every ASCII digit in s and parses the result,
// so "$10,000 - $20,000" is 1000020000. Empty or digit-free input is 0 and
// values too large for int64 saturate.
func InvestmentValue(s string) int64 {
	digits := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	return parseDigits(string(digits))
}

// OutletCount parses only the first run of digits: "120+ outlets (50 franchised)"
// is 120.
func OutletCount(s string) int64 {
	m := firstDigitsRe.FindString(s)
	return parseDigits(m)
}

func parseDigits(d string) int64 {
	if d == "" {
		return 0
	}
	n, err := strconv.ParseInt(d, 10, 64)
	if err != nil {
		// only ErrRange is possible for a pure digit string
		return math.MaxInt64
	}
	return n
}
