package coinfolio

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a ratio expressed in percentage points: 12.5 is 12.5%.
type Percent float64

// Ratio converts a fraction (0.125) to a Percent (12.5).
func Ratio(r decimal.Decimal) Percent { return Percent(r.Shift(2).InexactFloat64()) }

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// Arrow returns the percent prefixed by its trend: "↑ 5.00%", "↓ -3.10%" or "→ 0.00%".
func (p Percent) Arrow() string {
	s := p.String()
	switch {
	case s == "0.00%" || s == "-0.00%":
		return "→ 0.00%"
	case p > 0:
		return "↑ " + s
	default:
		return "↓ " + s
	}
}
