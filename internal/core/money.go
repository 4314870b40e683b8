// Money display formatting for the dashboard. Amounts are plain float64
// dollars in a single implicit base currency; an optional Currency tag only
// changes the rendered suffix.
package core

import "strconv"

const (
	CAD Currency = "CAD"
	USD Currency = "USD"
)

// Currency is a display tag, not an exchange-rate concept.
type Currency string

// FormatMoney renders a signed amount for display. Amounts under 1000 keep
// exactly two decimals; amounts at or above 1000 are rendered as a
// thousands-grouped integer with the fraction dropped, not rounded. The
// sign comes before the dollar glyph: -$123.45.
//
// Examples:
//
//	FormatMoney(123.45)  -> "$123.45"
//	FormatMoney(12345.6) -> "-$12,345" for the negated input
func FormatMoney(value float64) string {
	sign := ""
	abs := value
	if value < 0 {
		sign = "-"
		abs = -value
	}

	var magnitude string
	if abs < 1000 {
		magnitude = strconv.FormatFloat(abs, 'f', 2, 64)
	} else {
		magnitude = groupThousands(int64(abs))
	}
	return sign + "$" + magnitude
}

// FormatMoneyWith is FormatMoney with the currency code appended directly
// after the magnitude: "$12,345USD".
func FormatMoneyWith(value float64, currency Currency) string {
	return FormatMoney(value) + string(currency)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
