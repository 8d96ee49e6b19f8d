package domain

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// AmountKind tags the variant held by an Amount.
type AmountKind string

const (
	// AmountNone means no quantity was given. It is the zero value.
	AmountNone AmountKind = ""
	// AmountMulti is a factor multiplied by the chosen serving count.
	AmountMulti AmountKind = "multi"
	// AmountServings holds one absolute value per declared servings tier.
	AmountServings AmountKind = "servings"
	// AmountSingle is a fixed value independent of servings.
	AmountSingle AmountKind = "single"
)

// Amount is a quantity of an ingredient. Exactly one payload is meaningful
// for a given Kind: Value for Multi and Single, Values for Servings.
type Amount struct {
	Kind   AmountKind `json:"kind,omitempty"`
	Value  float64    `json:"value,omitempty"`
	Values []float64  `json:"values,omitempty"`
}

// Single returns a fixed amount.
func Single(v float64) Amount {
	return Amount{Kind: AmountSingle, Value: v}
}

// Multi returns an amount scaled by the serving count.
func Multi(factor float64) Amount {
	return Amount{Kind: AmountMulti, Value: factor}
}

// Servings returns an amount with one value per servings tier.
func Servings(values ...float64) Amount {
	return Amount{Kind: AmountServings, Values: slices.Clone(values)}
}

// IsZero reports whether no quantity was specified.
func (a Amount) IsZero() bool {
	return a.Kind == AmountNone
}

// Add merges two amounts. An unspecified amount is the identity on both
// sides. Otherwise both amounts must be of the same kind, and servings
// amounts must have the same number of tiers.
func (a Amount) Add(b Amount) (Amount, error) {
	if b.IsZero() {
		return a.Clone(), nil
	}
	if a.IsZero() {
		return b.Clone(), nil
	}
	if a.Kind != b.Kind {
		return Amount{}, fmt.Errorf("%s + %s: %w", a.Kind, b.Kind, ErrAmountMismatch)
	}

	switch a.Kind {
	case AmountSingle:
		return Single(a.Value + b.Value), nil
	case AmountMulti:
		return Multi(a.Value + b.Value), nil
	case AmountServings:
		if len(a.Values) != len(b.Values) {
			return Amount{}, fmt.Errorf("%d tiers + %d tiers: %w", len(a.Values), len(b.Values), ErrAmountShape)
		}
		sum := make([]float64, len(a.Values))
		for i := range a.Values {
			sum[i] = a.Values[i] + b.Values[i]
		}
		return Amount{Kind: AmountServings, Values: sum}, nil
	default:
		return Amount{}, fmt.Errorf("unknown amount kind %q", a.Kind)
	}
}

// Resolve returns the absolute quantity for the given serving count.
// tiers are the servings declared by the recipe metadata.
func (a Amount) Resolve(servings int, tiers []int) (float64, error) {
	switch a.Kind {
	case AmountNone:
		return 0, ErrNoAmount
	case AmountSingle:
		return a.Value, nil
	case AmountMulti:
		return a.Value * float64(servings), nil
	case AmountServings:
		i := slices.Index(tiers, servings)
		if i < 0 || i >= len(a.Values) {
			return 0, fmt.Errorf("%d servings: %w", servings, ErrUnknownTier)
		}
		return a.Values[i], nil
	default:
		return 0, fmt.Errorf("unknown amount kind %q", a.Kind)
	}
}

// Clone returns a copy that shares no memory with a.
func (a Amount) Clone() Amount {
	a.Values = slices.Clone(a.Values)
	return a
}

// String renders the amount in the markup's quantity syntax.
func (a Amount) String() string {
	switch a.Kind {
	case AmountSingle:
		return FormatNumber(a.Value)
	case AmountMulti:
		return "*" + FormatNumber(a.Value)
	case AmountServings:
		parts := make([]string, len(a.Values))
		for i, v := range a.Values {
			parts[i] = FormatNumber(v)
		}
		return strings.Join(parts, "|")
	default:
		return ""
	}
}

// FormatNumber prints v with at most four decimals and no trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}
