package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Number renders v with the given number of decimals and groups the integer
// part in threes separated by spaces: 12345.678 → "12 345.68".
func Number(v float64, decimals int) string {
	if decimals <= 0 {
		return group(strconv.FormatFloat(math.Round(v), 'f', 0, 64))
	}
	return group(strconv.FormatFloat(v, 'f', decimals, 64))
}

// Money renders an amount in rubles, keeping only significant fraction digits
func Money(d decimal.Decimal) string {
	return group(d.String())
}

// Kilograms renders a CO2 mass with two decimals
func Kilograms(v float64) string {
	return Number(v, 2)
}

func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return sign + s
	}

	var b strings.Builder
	head := len(intPart) % 3
	if head > 0 {
		b.WriteString(intPart[:head])
	}
	for i := head; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(intPart[i : i+3])
	}

	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}
