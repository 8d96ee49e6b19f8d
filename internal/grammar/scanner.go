package grammar

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"

	"github.com/hammamikhairi/cooklang/internal/ast"
)

// lineScanner scans a single source line. Offsets are byte offsets into line.
type lineScanner struct {
	filename string
	line     string
	lineNo   int
	base     int
	diags    hcl.Diagnostics

	// step state
	end     int
	items   []ast.StepItem
	content strings.Builder
	from    int  // offset where the pending content started
	gap     bool // whitespace seen since the last emitted item
}

func isMarker(c byte) bool {
	return c == '@' || c == '#' || c == '~'
}

func isEscapable(c byte) bool {
	return isMarker(c) || c == '\\'
}

// isNameRune reports whether r may appear in a short-form name.
func isNameRune(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}
	if unicode.IsPunct(r) || unicode.IsSymbol(r) {
		return r == '_' || r == '-' || r == '\''
	}
	return true
}

func (s *lineScanner) step(lead, end int) ast.Line {
	s.end = end
	s.from = lead

	for i := lead; i < end; {
		r, size := utf8.DecodeRuneInString(s.line[i:])

		var (
			next int
			ok   bool
		)
		switch r {
		case '\\':
			// Only markers and backslashes are escapable; any other
			// backslash is kept as written.
			if i+size < end && isEscapable(s.line[i+size]) {
				s.literal(i, s.line[i+size:i+size+1])
				i += size + 1
				continue
			}
		case '@', '#':
			next, ok = s.mention(i, r)
		case '~':
			next, ok = s.timer(i)
		case '!':
			next, ok = s.image(i)
		}

		if s.diags.HasErrors() {
			return nil
		}
		if ok {
			i = next
			continue
		}
		s.literal(i, s.line[i:i+size])
		i += size
	}
	s.flush(end)
	if len(s.items) == 0 {
		return nil
	}

	return &ast.Step{
		Span:  ast.Span{Range: s.rng(lead, end)},
		Items: s.items,
	}
}

// literal appends text to the pending content run.
func (s *lineScanner) literal(at int, text string) {
	if s.content.Len() == 0 {
		s.from = at
	}
	s.content.WriteString(text)
}

// flush turns the pending content into a Content item. Surrounding
// whitespace is not part of the item; it only marks neighbours as spaced.
func (s *lineScanner) flush(at int) {
	raw := s.content.String()
	s.content.Reset()
	if raw == "" {
		return
	}

	left := strings.TrimLeftFunc(raw, unicode.IsSpace)
	text := strings.TrimRightFunc(left, unicode.IsSpace)
	if text == "" {
		s.gap = true
		return
	}

	s.items = append(s.items, &ast.Content{
		Span: ast.Span{Range: s.rng(s.from, at), Spaced: s.gap || len(left) < len(raw)},
		Text: text,
	})
	s.gap = len(text) < len(left)
}

// open flushes pending content and returns the span of an annotation
// covering [from, to).
func (s *lineScanner) open(from, to int) ast.Span {
	s.flush(from)
	span := ast.Span{Range: s.rng(from, to), Spaced: s.gap}
	s.gap = false
	return span
}

// mention scans an ingredient or cookware annotation starting at the marker
// at offset i. It returns the offset after the annotation and false when the
// marker is literal text.
func (s *lineScanner) mention(i int, marker rune) (int, bool) {
	start := i + 1
	if start >= s.end {
		return 0, false
	}
	if r, _ := utf8.DecodeRuneInString(s.line[start:]); unicode.IsSpace(r) {
		return 0, false
	}

	kind := "ingredient"
	if marker == '#' {
		kind = "cookware"
	}

	// Long form: a name running up to "{" without crossing another marker.
	j := start
	for j < s.end && s.line[j] != '{' && !isMarker(s.line[j]) {
		j++
	}
	if j < s.end && s.line[j] == '{' && j > start {
		name := s.line[start:j]
		if last, _ := utf8.DecodeLastRuneInString(name); !unicode.IsSpace(last) {
			payload, next, ok := s.block(j, kind)
			if !ok {
				return 0, false
			}
			s.emitMention(i, next, marker, name, payload)
			return next, true
		}
	}

	// Short form.
	j = start
	for j < s.end {
		r, size := utf8.DecodeRuneInString(s.line[j:])
		if !isNameRune(r) {
			break
		}
		j += size
	}
	if j == start {
		return 0, false
	}
	s.emitMention(i, j, marker, s.line[start:j], "")
	return j, true
}

func (s *lineScanner) emitMention(from, to int, marker rune, name, payload string) {
	if marker == '@' {
		s.items = append(s.items, &ast.Ingredient{
			Span:   s.open(from, to),
			Name:   name,
			Amount: strings.TrimSpace(payload),
		})
		return
	}
	if strings.TrimSpace(payload) != "" {
		rng := s.rng(from, to)
		s.diags = append(s.diags, &hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  "Cookware quantity ignored",
			Detail:   fmt.Sprintf("The text %q between the braces of cookware %q is not used.", payload, name),
			Subject:  &rng,
		})
	}
	s.items = append(s.items, &ast.Cookware{Span: s.open(from, to), Name: name})
}

// block reads the text between the "{" at offset open and the next "}" on the
// line. A missing "}" is an error.
func (s *lineScanner) block(open int, kind string) (string, int, bool) {
	closing := strings.IndexByte(s.line[open+1:s.end], '}')
	if closing < 0 {
		s.errorf(open, open+1, "Unterminated "+kind+" block",
			fmt.Sprintf("The \"{\" opening this %s has no matching \"}\" on the same line.", kind))
		return "", 0, false
	}
	return s.line[open+1 : open+1+closing], open + closing + 2, true
}

// timer scans "~{duration%unit}" or "~name{duration%unit}" at offset i.
func (s *lineScanner) timer(i int) (int, bool) {
	start := i + 1
	j := start
	for j < s.end && s.line[j] != '{' && !isMarker(s.line[j]) {
		j++
	}
	if j >= s.end || s.line[j] != '{' {
		return 0, false
	}
	name := s.line[start:j]
	if name != "" && strings.TrimSpace(name) != name {
		return 0, false
	}

	body, next, ok := s.block(j, "timer")
	if !ok {
		return 0, false
	}
	durText, unit, _ := strings.Cut(body, "%")
	durText = strings.TrimSpace(durText)
	duration, err := strconv.ParseInt(durText, 10, 64)
	if err != nil {
		s.errorf(j+1, next-1, "Invalid timer duration",
			fmt.Sprintf("The timer duration %q is not a whole number.", durText))
		return 0, false
	}

	s.items = append(s.items, &ast.Timer{
		Span:     s.open(i, next),
		Name:     name,
		Duration: duration,
		Unit:     strings.TrimSpace(unit),
	})
	return next, true
}

// image skips a "![alt](target)" tag at offset i. Images are not part of the
// recipe model.
func (s *lineScanner) image(i int) (int, bool) {
	rest := s.line[i:s.end]
	if !strings.HasPrefix(rest, "![") {
		return 0, false
	}
	mid := strings.Index(rest, "](")
	if mid < 0 {
		return 0, false
	}
	closing := strings.IndexByte(rest[mid+2:], ')')
	if closing < 0 {
		return 0, false
	}
	next := i + mid + 2 + closing + 1

	rng := s.rng(i, next)
	s.diags = append(s.diags, &hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  "Image tag ignored",
		Detail:   "Image tags are not supported and were skipped.",
		Subject:  &rng,
	})
	return next, true
}

func (s *lineScanner) errorf(from, to int, summary, detail string) {
	rng := s.rng(from, to)
	s.diags = append(s.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  &rng,
	})
}

func (s *lineScanner) pos(off int) hcl.Pos {
	return hcl.Pos{
		Line:   s.lineNo,
		Column: utf8.RuneCountInString(s.line[:off]) + 1,
		Byte:   s.base + off,
	}
}

func (s *lineScanner) rng(from, to int) hcl.Range {
	return hcl.Range{Filename: s.filename, Start: s.pos(from), End: s.pos(to)}
}
