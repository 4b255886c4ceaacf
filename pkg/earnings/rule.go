// Package earnings holds the pure earnings arithmetic: the per-ride earnings
// rule, the daily aggregate, online time and the city ranking. Nothing here
// touches storage or the clock.
package earnings

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"ridetracker/pkg/models"
)

var one = decimal.NewFromInt(1)

// amountLiteral is a plain decimal number. Exponents are refused: a value
// like "1e20000000" parses to a decimal whose arithmetic grows without bound.
var amountLiteral = regexp.MustCompile(`^[+-]?\d{1,18}(\.\d{1,18})?$`)

// ParseAmount coerces loosely typed input to a decimal. Absent or
// unparseable input becomes zero; a lone decimal comma is accepted.
func ParseAmount(v interface{}) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero
		}
		return *x
	case string:
		return parseAmountString(x)
	case json.Number:
		return parseAmountString(string(x))
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return decimal.Zero
	}
	return parseAmountString(s)
}

// ParseMultiplier returns an invalid NullDecimal for absent, unparseable or
// zero input, which the earnings rule reads as 1.
func ParseMultiplier(v interface{}) decimal.NullDecimal {
	m := ParseAmount(v)
	if m.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(m)
}

// ComputeTotalEarnings applies the per-platform rule:
//
//	uber:        value + bonus (multiplier ignored)
//	99/indriver: value * multiplier + bonus, multiplier defaulting to 1
func ComputeTotalEarnings(p models.Platform, value, bonus decimal.Decimal, multiplier decimal.NullDecimal) decimal.Decimal {
	if p == models.PlatformUber {
		return value.Add(bonus)
	}

	m := one
	if multiplier.Valid {
		m = multiplier.Decimal
	}
	return value.Mul(m).Add(bonus)
}

func parseAmountString(s string) decimal.Decimal {
	d, ok := ParseLiteral(s)
	if !ok {
		return decimal.Zero
	}
	return d
}

// ParseLiteral parses a plain decimal number, accepting a lone comma as the
// decimal separator. Scientific notation and thousands separators are not
// numbers here.
func ParseLiteral(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if !amountLiteral.MatchString(s) {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
