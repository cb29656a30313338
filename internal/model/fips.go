package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FIPSLength is the width of a combined state+county FIPS code.
const FIPSLength = 5

// NormalizeFIPSState normalizes a state FIPS code to 2 digits with zero-padding.
func NormalizeFIPSState(code string) string {
	return padDigits(code, 2)
}

// NormalizeFIPSCounty normalizes a county FIPS code to 3 digits with zero-padding.
func NormalizeFIPSCounty(code string) string {
	return padDigits(code, 3)
}

// CombineFIPS combines state and county FIPS codes into a 5-digit code.
func CombineFIPS(state, county string) string {
	s := NormalizeFIPSState(state)
	c := NormalizeFIPSCounty(county)
	if s == "" || c == "" {
		return ""
	}
	return s + c
}

// FormatFIPS formats a numeric FIPS code with proper zero-padding.
func FormatFIPS(code int, digits int) string {
	return fmt.Sprintf("%0*d", digits, code)
}

// NormalizeFIPS turns a county identifier as it appears in exported data
// ("6037", "06037", "6037.0", " 06037 ") into the canonical 5-digit form.
// It returns false when the value is not a valid county code.
func NormalizeFIPS(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	// pandas writes integer columns with NaNs as floats.
	if whole, frac, ok := strings.Cut(code, "."); ok {
		if strings.Trim(frac, "0") != "" {
			return "", false
		}
		code = whole
	}
	if len(code) > FIPSLength {
		return "", false
	}
	n, err := strconv.Atoi(code)
	if err != nil || n <= 0 {
		return "", false
	}
	return FormatFIPS(n, FIPSLength), true
}

// StateFIPSOf returns the 2-digit state portion of a normalized county FIPS.
func StateFIPSOf(fips string) string {
	if len(fips) != FIPSLength {
		return ""
	}
	return fips[:2]
}

func padDigits(code string, width int) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	for len(code) < width {
		code = "0" + code
	}
	return code
}
