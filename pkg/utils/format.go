// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatRupiah formats an amount as whole rupiah with thousands grouping,
// e.g. 9000000 -> "Rp 9,000,000". Fractions are rounded away: IDX equity
// prices are quoted in whole rupiah.
func FormatRupiah(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	s := fmt.Sprintf("%.0f", math.Round(amount))
	result := "Rp " + groupThousands(s)
	if negative {
		result = "-" + result
	}
	return result
}

// FormatSignedRupiah is FormatRupiah with an explicit leading sign.
func FormatSignedRupiah(amount float64) string {
	if amount < 0 {
		return FormatRupiah(amount)
	}
	return "+" + FormatRupiah(amount)
}

// FormatPercent formats a percentage with an explicit sign and two decimals.
func FormatPercent(value float64) string {
	return fmt.Sprintf("%+.2f%%", value)
}

// FormatVolume formats a share volume with thousands grouping.
func FormatVolume(volume int64) string {
	negative := volume < 0
	if negative {
		volume = -volume
	}
	s := groupThousands(fmt.Sprintf("%d", volume))
	if negative {
		return "-" + s
	}
	return s
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(s[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
