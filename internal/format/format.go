// Package format holds display formatting helpers shared by views and
// templates.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Cedis formats a GHS amount for display: "GHS 1,234.50".
func Cedis(amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	out := "GHS " + thousandSep(whole) + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

func thousandSep(s string) string {
	out := ""
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			out += ","
		}
		out += string(c)
	}
	return out
}

// Date formats a timestamp in the site's short form.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// DateTime formats a timestamp with the time of day.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006 15:04")
}
