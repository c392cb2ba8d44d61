// Package core provides the fee schedule domain and its pure calculations.
//
// This file contains the lenient currency parser and the display formatter
// used for every fee amount. Amounts are whole currency units; there is no
// minor unit.
package core

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/dustin/go-humanize"
)

// CurrencyLabel prefixes every formatted amount.
const CurrencyLabel = "Rs. "

// MaxAmount is the largest base fee a record may carry. Twelve months of it
// plus two more amounts still fit in an int64.
const MaxAmount Amount = 1_000_000_000_000_000

// Amount is a non-negative count of whole currency units.
//
// It decodes from either a formatted string ("Rs. 8,000") or a JSON number
// and always encodes back to the formatted string. Decoding never fails:
// anything without digits becomes zero.
type Amount int64

// ParseAmount converts a human formatted currency string into whole units.
//
// Every non-digit character is discarded before parsing, so currency labels,
// thousands separators, whitespace, minus signs and decimal points are all
// noise. Input without digits yields 0, as does a digit run too long for
// int64.
//
// Examples:
//   ParseAmount("Rs. 8,000")    -> 8000
//   ParseAmount("")             -> 0
//   ParseAmount("abc")          -> 0
//   ParseAmount("-250")         -> 250
//   ParseAmount("Rs. 8,000.50") -> 800050 (decimal point dropped, not honored)
func ParseAmount(s string) int64 {
	var n int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			continue
		}
		d := int64(c - '0')
		if n > (math.MaxInt64-d)/10 {
			return 0
		}
		n = n*10 + d
	}
	return n
}

// FormatAmount renders whole units as "Rs. 116,000".
// Callers pass parsed, non-negative values.
func FormatAmount(n int64) string {
	return CurrencyLabel + humanize.Comma(n)
}

// ParseAmountValue is ParseAmount returning an Amount.
func ParseAmountValue(s string) Amount {
	return Amount(ParseAmount(s))
}

// Int64 returns the raw unit count.
func (a Amount) Int64() int64 {
	return int64(a)
}

// String implements fmt.Stringer with the display format.
func (a Amount) String() string {
	return FormatAmount(int64(a))
}

// MarshalJSON encodes the amount as its display string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts strings, numbers and null. It never returns an error.
// Strings go through ParseAmount; number tokens through ParseNumberAmount.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*a = 0
	case b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			*a = 0
			return nil
		}
		*a = ParseAmountValue(str)
	default:
		*a = ParseNumberAmount(json.Number(b))
	}
	return nil
}

// ParseNumberAmount converts a JSON number into whole units. Fractions and
// exponent forms are truncated toward zero ("1e3" -> 1000, "12.5" -> 12),
// the sign is dropped, and anything that is not a number or does not fit in
// an int64 becomes 0.
func ParseNumberAmount(n json.Number) Amount {
	if i, err := n.Int64(); err == nil {
		if i == math.MinInt64 {
			return 0
		}
		if i < 0 {
			i = -i
		}
		return Amount(i)
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) {
		return 0
	}
	f = math.Abs(math.Trunc(f))
	if f >= math.MaxInt64 {
		return 0
	}
	return Amount(f)
}

// addAmounts adds without wrapping, saturating at math.MaxInt64.
func addAmounts(a, b Amount) Amount {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// mulAmount multiplies without wrapping, saturating at math.MaxInt64.
func mulAmount(a Amount, n int64) Amount {
	if n != 0 && a > Amount(math.MaxInt64/n) {
		return math.MaxInt64
	}
	return a * Amount(n)
}
