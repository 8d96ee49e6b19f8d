package cooklang

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/hashicorp/hcl/v2"

	"github.com/hammamikhairi/cooklang/internal/ast"
	"github.com/hammamikhairi/cooklang/internal/domain"
)

// splitFrontMatter separates an optional YAML ("---") or TOML ("+++") header
// from the markup body. The returned position is where the body starts.
func splitFrontMatter(filename string, src []byte) ([]ast.Line, []byte, hcl.Pos, error) {
	start := hcl.Pos{Line: 1, Column: 1}

	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return nil, nil, start, fmt.Errorf("parse front matter: %w", err)
	}
	if len(meta) == 0 || !bytes.HasSuffix(src, body) {
		return nil, src, start, nil
	}

	header := src[:len(src)-len(body)]
	start.Line += bytes.Count(header, []byte("\n"))
	start.Byte = len(header)

	rng := hcl.Range{
		Filename: filename,
		Start:    hcl.Pos{Line: 1, Column: 1},
		End:      start,
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lines := make([]ast.Line, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, &ast.Metadata{
			Span:  ast.Span{Range: rng},
			Key:   k,
			Value: stringify(meta[k]),
		})
	}
	return lines, body, start, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return domain.FormatNumber(val)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	default:
		return fmt.Sprint(val)
	}
}
