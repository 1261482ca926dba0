package util

import (
	"fmt"
	"strings"
)

// FormatPrice renders a USD price with thousands separators and four
// decimals, matching the alert message layout.
func FormatPrice(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	parts := strings.SplitN(s, ".", 2)
	return "$" + groupThousands(parts[0]) + "." + parts[1]
}

// FormatPriceWhole renders a USD price with no decimals (used for BTC).
func FormatPriceWhole(v float64) string {
	return "$" + groupThousands(fmt.Sprintf("%.0f", v))
}

// FormatPct renders a signed percentage with one decimal, e.g. "+15.2%".
func FormatPct(v float64) string {
	return fmt.Sprintf("%+.1f%%", v)
}

// FormatMcap renders a market cap in whole millions, e.g. "$120M".
func FormatMcap(v float64) string {
	return fmt.Sprintf("$%.0fM", v/1e6)
}

func groupThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	n := len(digits)
	if n <= 3 {
		if neg {
			return "-" + digits
		}
		return digits
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
