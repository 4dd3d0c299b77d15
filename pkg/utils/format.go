package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptTimeLayout renders times the way id-ID locales do: 16/10/2026 14.05.09
const ReceiptTimeLayout = "2/1/2006 15.04.05"

// FormatNumber groups the integer part of d with dots (id-ID). Fractions are
// rounded half away from zero; receipts never show cents.
func FormatNumber(d decimal.Decimal) string {
	s := d.Round(0).String()

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatRupiah prefixes FormatNumber with the currency symbol.
func FormatRupiah(d decimal.Decimal) string {
	return "Rp " + FormatNumber(d)
}

// FormatReceiptTime renders t in loc using ReceiptTimeLayout.
func FormatReceiptTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(ReceiptTimeLayout)
}

// ParseBackendTime accepts the timestamp shapes the backend emits.
func ParseBackendTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
