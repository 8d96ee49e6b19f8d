// Package grammar turns recipe markup into ast lines.
//
// The markup is line oriented. A line starting with ">>" is a metadata
// entry, a line starting with "--" is a comment, a blank line is dropped and
// anything else is a step. Inside a step:
//
//	@name            ingredient, short form
//	@long name{1kg}  ingredient, long form with raw amount
//	#name  #a b{}    cookware
//	~{25%minutes}    timer, optionally named: ~eggs{3%min}
//	![alt](path)     image tag, skipped
//	\@  \\           literal marker character, literal backslash
//
// Malformed annotations are errors positioned at the offending text; stray
// marker characters are literal content, and so is a backslash before
// anything but a marker or another backslash.
package grammar

import (
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/hammamikhairi/cooklang/internal/ast"
)

const (
	metadataPrefix = ">>"
	commentPrefix  = "--"
)

// Parse parses src. Positions are reported relative to start, which lets a
// caller parse the body of a larger document; a zero start means line 1,
// column 1. Lines are nil whenever the diagnostics contain an error.
func Parse(src []byte, filename string, start hcl.Pos) ([]ast.Line, hcl.Diagnostics) {
	if start.Line < 1 {
		start.Line = 1
	}

	var (
		lines []ast.Line
		diags hcl.Diagnostics
	)

	text := string(src)
	lineNo := start.Line
	offset := 0
	for offset <= len(text) {
		end := strings.IndexByte(text[offset:], '\n')
		next := offset + end + 1
		if end < 0 {
			end = len(text) - offset
			next = len(text) + 1
		}
		raw := strings.TrimSuffix(text[offset:offset+end], "\r")

		s := &lineScanner{
			filename: filename,
			line:     raw,
			lineNo:   lineNo,
			base:     start.Byte + offset,
		}
		if l := s.scan(); l != nil {
			lines = append(lines, l)
		}
		diags = append(diags, s.diags...)

		offset = next
		lineNo++
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return lines, diags
}

// scan classifies the line and returns nil for blank and comment lines and
// for lines that produced an error.
func (s *lineScanner) scan() ast.Line {
	body := strings.TrimSpace(s.line)
	if body == "" {
		return nil
	}
	lead := strings.Index(s.line, body)
	end := lead + len(body)

	switch {
	case strings.HasPrefix(body, commentPrefix):
		return nil
	case strings.HasPrefix(body, metadataPrefix):
		return s.metadata(lead, end)
	default:
		return s.step(lead, end)
	}
}

func (s *lineScanner) metadata(lead, end int) ast.Line {
	rest := s.line[lead+len(metadataPrefix) : end]

	colon := -1
	for i := 0; i < len(rest); i++ {
		if rest[i] == '\\' && i+1 < len(rest) && rest[i+1] == ':' {
			i++
			continue
		}
		if rest[i] == ':' {
			colon = i
			break
		}
	}
	if colon < 0 {
		s.errorf(lead, end, "Invalid metadata line", "A metadata line must have the form \">> key: value\".")
		return nil
	}

	key := unescapeColons(strings.TrimSpace(rest[:colon]))
	if key == "" {
		s.errorf(lead, end, "Missing metadata key", "The text before the first \":\" must not be empty.")
		return nil
	}

	return &ast.Metadata{
		Span:  ast.Span{Range: s.rng(lead, end)},
		Key:   key,
		Value: unescapeColons(strings.TrimSpace(rest[colon+1:])),
	}
}

func unescapeColons(v string) string {
	return strings.ReplaceAll(v, `\:`, ":")
}
