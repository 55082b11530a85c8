// Package decoder turns positional text into typed field values.
//
// Decoding is tolerant: malformed or missing content degrades to nil (or to
// the raw text for unparseable dates) and never produces an error. Only the
// line decoder reports problems, and only for required fields left empty.
package decoder

import (
	"strconv"
	"strings"

	"github.com/praetorian-inc/posjson/pkg/types"
	"github.com/shopspring/decimal"
)

// DecodeField converts one raw substring according to its descriptor.
func DecodeField(raw string, fd types.FieldDescriptor) any {
	switch fd.Type {
	case types.TypeDecimal:
		return decodeDecimal(raw, fd.Scale())
	case types.TypeDate:
		return decodeDate(raw)
	case types.TypeBoolean:
		return decodeBoolean(raw)
	case types.TypeInteger:
		return decodeInteger(raw)
	default:
		return decodeCharacter(raw)
	}
}

// decodeDecimal reads digits with an implied decimal point: "0012345" at
// scale 2 is 123.45.
func decodeDecimal(raw string, scale int) any {
	digits := signedDigits(raw)
	if digits == "" {
		return nil
	}
	unscaled, err := decimal.NewFromString(digits)
	if err != nil {
		return nil
	}
	return types.NewAmount(unscaled, scale)
}

// decodeDate accepts DDMMYYYY or DDMMYY (century 20) and emits YYYY-MM-DD.
// Any other digit count returns the raw text unchanged.
func decodeDate(raw string) any {
	d := keepDigits(raw)
	switch len(d) {
	case 8:
		return d[4:8] + "-" + d[2:4] + "-" + d[0:2]
	case 6:
		return "20" + d[4:6] + "-" + d[2:4] + "-" + d[0:2]
	}
	if raw == "" {
		return nil
	}
	return raw
}

func decodeBoolean(raw string) any {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s", "sim", "1", "yes":
		return true
	}
	return false
}

func decodeInteger(raw string) any {
	digits := signedDigits(raw)
	if digits == "" {
		return nil
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return n
}

func decodeCharacter(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return s
}

// signedDigits drops everything but digits and '-', then keeps the leading
// "-?[0-9]+" run. It returns "" when no digit survives in that position.
func signedDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	s := b.String()

	start := 0
	if strings.HasPrefix(s, "-") {
		start = 1
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return ""
	}
	return s[:end]
}

func keepDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
