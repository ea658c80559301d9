package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shopmetrics/pkg/contracts/domain"
)

// Trend presentation
const (
	TrendUpArrow       = "↗"
	TrendDownArrow     = "↘"
	TrendPositiveClass = "trend-positive"
	TrendNegativeClass = "trend-negative"
	NotAvailable       = "N/A"
)

// FormatCurrency renders a KPI amount with a K or M suffix and no decimals,
// e.g. 1,500,000 → "$2M", 1,500 → "$2K", 500 → "$500".
func FormatCurrency(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("$%.0fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.0fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

// FormatCurrencyAxis renders a chart tick with the same suffix rules as
// FormatCurrency but keeps one decimal when the scaled value is fractional,
// so neighbouring ticks such as $1.5M and $2M stay distinct.
func FormatCurrencyAxis(v float64) string {
	switch {
	case v >= 1e6:
		return "$" + compact(v/1e6) + "M"
	case v >= 1e3:
		return "$" + compact(v/1e3) + "K"
	default:
		return "$" + compact(v)
	}
}

func compact(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}

// FormatCurrencyPrecise renders an exact amount with thousands separators
// and two decimals, e.g. 1234.56 → "$1,234.56", -500.75 → "$-500.75".
func FormatCurrencyPrecise(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	return "$" + sign + groupThousands(whole) + "." + frac
}

// FormatCount renders a count with thousands separators, e.g. 12345 → "12,345"
func FormatCount(n int) string {
	if n < 0 {
		return "-" + groupThousands(strconv.Itoa(-n))
	}
	return groupThousands(strconv.Itoa(n))
}

func groupThousands(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatPercentage renders v with the given number of decimals
func FormatPercentage(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return fmt.Sprintf("%.*f%%", decimals, v)
}

// NewTrend describes the percentage change from previous to current.
// A zero previous value has no defined change.
func NewTrend(current, previous float64) domain.Trend {
	growth := domain.NewGrowthRate(current, previous)
	if !growth.Valid {
		return domain.Trend{Text: NotAvailable}
	}

	t := domain.Trend{Available: true, Change: growth.Value}
	change := growth.Value
	if change >= 0 {
		t.Arrow, t.Class = TrendUpArrow, TrendPositiveClass
	} else {
		t.Arrow, t.Class = TrendDownArrow, TrendNegativeClass
		change = -change
	}
	t.Text = fmt.Sprintf("%s %.2f%%", t.Arrow, change)
	return t
}

// FormatTrend renders the change from previous to current as an HTML span,
// e.g. `<span class="trend-positive">↗ 20.00%</span>`, or "N/A"
func FormatTrend(current, previous float64) string {
	t := NewTrend(current, previous)
	if !t.Available {
		return t.Text
	}
	return fmt.Sprintf(`<span class="%s">%s</span>`, t.Class, t.Text)
}

// MonthName returns the abbreviated English month name, or "" when out of range
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()[:3]
}
