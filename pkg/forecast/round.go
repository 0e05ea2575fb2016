package forecast

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// round rounds the exact binary value of v half to even at the given number of decimal
// places, so 2.675 (stored as 2.67499...) becomes 2.67. v must be finite.
func round(v float64, places int32) float64 {
	d := decimal.RequireFromString(strconv.FormatFloat(v, 'f', int(places), 64))
	f, _ := d.Float64()
	if f == 0 {
		// Drop the sign of a negative zero so it encodes as 0.
		return 0
	}
	return f
}
