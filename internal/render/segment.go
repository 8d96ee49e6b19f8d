// Package render turns a reduced recipe back into readable output.
//
// The instruction text is re-segmented by walking its placeholders: the n-th
// "@" is the n-th ingredient specifier, the n-th "#" the n-th cookware entry
// and the n-th "~" the n-th timer.
package render

import (
	"fmt"
	"strings"

	"github.com/hammamikhairi/cooklang/internal/domain"
)

// SegmentKind identifies what a Segment holds.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentIngredient
	SegmentCookware
	SegmentTimer
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentText:
		return "text"
	case SegmentIngredient:
		return "ingredient"
	case SegmentCookware:
		return "cookware"
	case SegmentTimer:
		return "timer"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// Segment is a piece of a step: literal text or one resolved mention.
type Segment struct {
	Kind SegmentKind
	// Text is set for SegmentText and holds the unescaped text.
	Text       string
	Ingredient domain.IngredientSpecifier
	Cookware   string
	Timer      domain.Timer
}

// Step is one line of the instruction.
type Step struct {
	Number   int
	Segments []Segment
}

// Steps re-segments the instruction of r. It fails with
// domain.ErrPlaceholderMismatch when the placeholders and metadata lists
// disagree in count.
func Steps(r *domain.Recipe) ([]Step, error) {
	var (
		out                    []Step
		nIngr, nCookw, nTimers int
		meta                   = r.Metadata
	)

	for i, line := range r.Steps() {
		step := Step{Number: i + 1}
		var text strings.Builder
		flush := func() {
			if text.Len() > 0 {
				step.Segments = append(step.Segments, Segment{Kind: SegmentText, Text: text.String()})
				text.Reset()
			}
		}

		runes := []rune(line)
		for j := 0; j < len(runes); j++ {
			c := runes[j]
			switch c {
			case domain.Escape:
				if j+1 < len(runes) && domain.Escapable(runes[j+1]) {
					j++
				}
				text.WriteRune(runes[j])
			case domain.IngredientPlaceholder:
				if nIngr >= len(meta.IngredientsSpecifiers) {
					return nil, mismatch("ingredient", nIngr+1, len(meta.IngredientsSpecifiers))
				}
				flush()
				step.Segments = append(step.Segments, Segment{Kind: SegmentIngredient, Ingredient: meta.IngredientsSpecifiers[nIngr]})
				nIngr++
			case domain.CookwarePlaceholder:
				if nCookw >= len(meta.Cookware) {
					return nil, mismatch("cookware", nCookw+1, len(meta.Cookware))
				}
				flush()
				step.Segments = append(step.Segments, Segment{Kind: SegmentCookware, Cookware: meta.Cookware[nCookw]})
				nCookw++
			case domain.TimerPlaceholder:
				if nTimers >= len(meta.Timer) {
					return nil, mismatch("timer", nTimers+1, len(meta.Timer))
				}
				flush()
				step.Segments = append(step.Segments, Segment{Kind: SegmentTimer, Timer: meta.Timer[nTimers]})
				nTimers++
			default:
				text.WriteRune(c)
			}
		}
		flush()
		out = append(out, step)
	}

	switch {
	case nIngr != len(meta.IngredientsSpecifiers):
		return nil, mismatch("ingredient", nIngr, len(meta.IngredientsSpecifiers))
	case nCookw != len(meta.Cookware):
		return nil, mismatch("cookware", nCookw, len(meta.Cookware))
	case nTimers != len(meta.Timer):
		return nil, mismatch("timer", nTimers, len(meta.Timer))
	}
	return out, nil
}

func mismatch(kind string, placeholders, entries int) error {
	return fmt.Errorf("%d %s placeholders for %d entries: %w", placeholders, kind, entries, domain.ErrPlaceholderMismatch)
}
