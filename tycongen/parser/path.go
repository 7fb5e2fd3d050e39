package parser

import (
	"fmt"
	"strings"

	"github.com/broady/tycon/tycongen/ir"
)

// parsePath splits a route such as /users/{id}/posts/:post into path
// components. Placeholder types are bound later.
func parsePath(route string) ([]ir.PathComponent, error) {
	if !strings.HasPrefix(route, "/") {
		return nil, fmt.Errorf("path %q must start with /", route)
	}

	var (
		out    []ir.PathComponent
		static strings.Builder
		seen   = make(map[string]bool)
	)
	placeholder := func(name string) error {
		if name == "" || !pathParamName.MatchString(name) {
			return fmt.Errorf("path %q has malformed placeholder %q", route, name)
		}
		if seen[name] {
			return fmt.Errorf("path %q repeats placeholder %q", route, name)
		}
		seen[name] = true
		if static.Len() > 0 {
			out = append(out, ir.StaticSegment{Content: static.String()})
			static.Reset()
		}
		out = append(out, ir.DynamicSegment{Name: name})
		return nil
	}

	for i := 0; i < len(route); {
		c := route[i]
		switch {
		case c == '{':
			end := strings.IndexByte(route[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("path %q has unterminated {", route)
			}
			if err := placeholder(route[i+1 : i+end]); err != nil {
				return nil, err
			}
			i += end + 1
		case c == ':' && route[i-1] == '/':
			end := strings.IndexByte(route[i:], '/')
			if end < 0 {
				end = len(route) - i
			}
			if err := placeholder(route[i+1 : i+end]); err != nil {
				return nil, err
			}
			i += end
		case c == '}':
			return nil, fmt.Errorf("path %q has unmatched }", route)
		default:
			static.WriteByte(c)
			i++
		}
	}
	if static.Len() > 0 {
		out = append(out, ir.StaticSegment{Content: static.String()})
	}
	return out, nil
}
