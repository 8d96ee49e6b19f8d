// Package quantity parses the raw amount text of ingredient mentions and
// the servings metadata value.
//
// Amount text has the form "quantity%unit" or "quantity unit":
//
//	2          single
//	1/2 cup    single, fraction
//	1 1/2%cups single, mixed number
//	*0.5%kg    multi: half a kilogram per serving
//	100|200%g  servings: one value per declared servings tier
//	a pinch    textual, no quantity
package quantity

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/hammamikhairi/cooklang/internal/domain"
)

const (
	unitSeparator    = "%"
	multiPrefix      = "*"
	servingsSplitter = "|"
)

// Parse interprets raw amount text. It returns the amount and the unit;
// text that does not start with a quantity yields no amount and the whole
// text as unit.
func Parse(raw string) (domain.Amount, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Amount{}, "", nil
	}

	if qty, unit, ok := strings.Cut(raw, unitSeparator); ok {
		qty = strings.TrimSpace(qty)
		if qty == "" {
			return domain.Amount{}, strings.TrimSpace(unit), nil
		}
		a, err := parseQuantity(qty)
		if err != nil {
			return domain.Amount{}, "", err
		}
		return a, strings.TrimSpace(unit), nil
	}

	qty, unit := splitLeadingQuantity(raw)
	if qty == "" {
		return domain.Amount{}, raw, nil
	}
	a, err := parseQuantity(qty)
	if err != nil {
		return domain.Amount{}, "", err
	}
	return a, unit, nil
}

// splitLeadingQuantity splits "2 cups" or "1kg" into quantity and unit. A
// mixed number "1 1/2 cups" keeps both numeric words in the quantity.
func splitLeadingQuantity(raw string) (string, string) {
	i := 0
	if strings.HasPrefix(raw, multiPrefix) {
		i = len(multiPrefix)
	}
	if i >= len(raw) || !isNumberStart(rune(raw[i])) {
		return "", ""
	}

	end := numberEnd(raw, i)
	// mixed number: "1 1/2"
	if rest := strings.TrimLeft(raw[end:], " "); rest != raw[end:] {
		if j := numberEnd(rest, 0); j > 0 && strings.Contains(rest[:j], "/") {
			end = len(raw) - len(rest) + j
		}
	}
	return raw[:end], strings.TrimSpace(raw[end:])
}

func isNumberStart(r rune) bool {
	return unicode.IsDigit(r) || r == '.'
}

// numberEnd returns the end offset of the run of digits, '.', '/' and '|'
// starting at i.
func numberEnd(s string, i int) int {
	for i < len(s) {
		c := s[i]
		if (c < '0' || c > '9') && c != '.' && c != '/' && c != '|' {
			break
		}
		i++
	}
	return i
}

func parseQuantity(qty string) (domain.Amount, error) {
	if rest, ok := strings.CutPrefix(qty, multiPrefix); ok {
		v, err := parseNumber(strings.TrimSpace(rest))
		if err != nil {
			return domain.Amount{}, err
		}
		return domain.Multi(v), nil
	}

	if strings.Contains(qty, servingsSplitter) {
		parts := strings.Split(qty, servingsSplitter)
		values := make([]float64, len(parts))
		for i, p := range parts {
			v, err := parseNumber(strings.TrimSpace(p))
			if err != nil {
				return domain.Amount{}, err
			}
			values[i] = v
		}
		return domain.Servings(values...), nil
	}

	v, err := parseNumber(qty)
	if err != nil {
		return domain.Amount{}, err
	}
	return domain.Single(v), nil
}

// parseNumber accepts decimals, fractions "a/b" and mixed numbers "a b/c".
func parseNumber(s string) (float64, error) {
	if whole, frac, ok := strings.Cut(s, " "); ok {
		w, err := parseNumber(strings.TrimSpace(whole))
		if err != nil {
			return 0, err
		}
		f, err := parseNumber(strings.TrimSpace(frac))
		if err != nil {
			return 0, err
		}
		return w + f, nil
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, err2 := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, fmt.Errorf("%q: %w", s, domain.ErrInvalidAmount)
		}
		return checkNumber(s, n/d)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, domain.ErrInvalidAmount)
	}
	return checkNumber(s, v)
}

// checkNumber rejects what ParseFloat accepts but a quantity cannot be:
// NaN, infinities and negative values.
func checkNumber(s string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%q: %w", s, domain.ErrInvalidAmount)
	}
	return v, nil
}

// ParseServings parses a servings metadata value such as "2|4|6", "2, 4"
// or "2-4" into its tiers. Every tier must be a positive whole number.
func ParseServings(value string) ([]int, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == '|' || r == ',' || r == '-'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%q: %w", value, domain.ErrInvalidServings)
	}

	tiers := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%q: %w", value, domain.ErrInvalidServings)
		}
		tiers = append(tiers, n)
	}
	return tiers, nil
}
