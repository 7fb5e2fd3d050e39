package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/broady/tycon/internal/annotation"
	"github.com/broady/tycon/tycongen/ir"
)

// examples parses @example tags. Each tag's text is the example name on
// the first line followed by a JSON literal. Structural problems are
// reported in tag order; category mismatches are checked only once every
// example has parsed.
func (p *Parser) examples(tags []annotation.Tag, typ ir.Type) ([]ir.Example, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	category := ir.CategoryOf(typ, p.Types)

	examples := make([]ir.Example, 0, len(tags))
	literals := make([]any, 0, len(tags))
	seen := make(map[string]bool)
	for _, tag := range tags {
		name, literal := splitExample(tag.Text)
		if name == "" || literal == "" {
			return nil, p.errorf(tag.Pos, "@%s needs a name on the first line and a JSON value on the next", TagExample)
		}
		if seen[name] {
			return nil, p.errorf(tag.Pos, "duplicate example %q", name)
		}
		seen[name] = true

		if category == ir.CategoryString && !strings.HasPrefix(literal, `"`) {
			return nil, p.errorf(tag.Pos, "example %q must be a quoted JSON string", name)
		}
		var value any
		if err := json.Unmarshal([]byte(literal), &value); err != nil {
			return nil, &ParserError{
				Pos: p.position(tag.Pos),
				Msg: fmt.Sprintf("example %q is not valid JSON: %v", name, err),
				Err: err,
			}
		}
		examples = append(examples, ir.Example{Name: name, Value: value})
		literals = append(literals, decodeLiteral(literal))
	}

	for i, lit := range literals {
		if !p.matchesCategory(lit, typ) {
			return nil, p.errorf(tags[i].Pos, "type of example must match type of param")
		}
	}
	return examples, nil
}

// splitExample splits tag text into the example name and its literal.
func splitExample(text string) (name, literal string) {
	name, literal, _ = strings.Cut(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(name), strings.TrimSpace(literal)
}

// integerLiteral is the only number form accepted for integer kinds.
var integerLiteral = regexp.MustCompile(`^-?\d+$`)

// decodeLiteral decodes an already valid JSON literal keeping numbers as
// their source text.
func decodeLiteral(literal string) any {
	dec := json.NewDecoder(bytes.NewReader([]byte(literal)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// matchesCategory reports whether a JSON value decoded with UseNumber
// belongs to the category of typ. Arrays match element-wise. A number is
// in the number category only when it is an integer literal; fractions
// and exponents are accepted for FLOAT and DOUBLE alone.
func (p *Parser) matchesCategory(value any, typ ir.Type) bool {
	resolved := p.Types.Resolve(typ)
	if arr, ok := resolved.(*ir.ArrayType); ok {
		items, ok := value.([]any)
		if !ok {
			return false
		}
		for _, item := range items {
			if !p.matchesCategory(item, arr.Element) {
				return false
			}
		}
		return true
	}
	if n, ok := value.(json.Number); ok && !integerLiteral.MatchString(n.String()) {
		prim, ok := resolved.(*ir.PrimitiveType)
		return ok && (prim.PrimitiveKind == ir.PrimitiveFloat || prim.PrimitiveKind == ir.PrimitiveDouble)
	}
	return valueCategory(value) == ir.CategoryOf(typ, p.Types)
}

func valueCategory(v any) ir.Category {
	switch v.(type) {
	case json.Number, float64:
		return ir.CategoryNumber
	case bool:
		return ir.CategoryBoolean
	case string:
		return ir.CategoryString
	case []any:
		return ir.CategoryArray
	case map[string]any:
		return ir.CategoryObject
	default:
		return ir.CategoryUnknown
	}
}
