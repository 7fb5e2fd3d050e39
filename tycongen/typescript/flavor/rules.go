package flavor

import (
	"fmt"
	"strings"
)

// Rule is one entry of a `validate` struct tag, e.g. "min=8".
type Rule struct {
	Name  string
	Param string
}

// Support reports how a rule maps onto zod.
type Support int

const (
	// Supported rules have a zod equivalent.
	Supported Support = iota
	// Skipped rules are structural or cross-field and are ignored.
	Skipped
	// Unsupported rules have no zod equivalent and produce a warning.
	Unsupported
)

// Target is the shape a rule is applied to.
type Target int

const (
	TargetNumber Target = iota
	TargetString
	TargetArray
)

// ParseRules splits "required,email,min=8" into rules.
func ParseRules(tag string) []Rule {
	var rules []Rule
	for part := range strings.SplitSeq(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, param, _ := strings.Cut(part, "=")
		rules = append(rules, Rule{Name: name, Param: param})
	}
	return rules
}

// HasRequired reports whether rules contains "required".
func HasRequired(rules []Rule) bool {
	for _, r := range rules {
		if r.Name == "required" {
			return true
		}
	}
	return false
}

// OneOf returns the values of a "oneof" rule, or nil.
func OneOf(rules []Rule) []string {
	for _, r := range rules {
		if r.Name == "oneof" && r.Param != "" {
			return strings.Fields(r.Param)
		}
	}
	return nil
}

var patterns = map[string]string{
	"alphanum":  `/^[a-zA-Z0-9]+$/`,
	"alpha":     `/^[a-zA-Z]+$/`,
	"numeric":   `/^[0-9]+$/`,
	"lowercase": `/^[a-z]+$/`,
	"uppercase": `/^[A-Z]+$/`,
	"base64":    `/^[A-Za-z0-9+/]*={0,2}$/`,
	"base64url": `/^[A-Za-z0-9_-]*={0,2}$/`,
	"hostname":  `/^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z]{2,}$/`,
	"fqdn":      `/^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z]{2,}$/`,
	"mac":       `/^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$/`,
	"semver":    `/^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?(\+[a-zA-Z0-9.]+)?$/`,
	"e164":      `/^\+[1-9]\d{1,14}$/`,
	"isbn":      `/^(?:\d[- ]*){9}[\dXx]$/`,
	"isbn10":    `/^(?:\d[- ]*){9}[\dXx]$/`,
	"isbn13":    `/^(?:\d[- ]*){13}$/`,
}

// formats maps string format rules to {classic method, mini check}.
var formats = map[string][2]string{
	"email":    {".email()", "z.email()"},
	"url":      {".url()", "z.url()"},
	"uri":      {".url()", "z.url()"},
	"uuid":     {".uuid()", "z.uuid()"},
	"uuid4":    {".uuid()", "z.uuid()"},
	"datetime": {".datetime()", "z.iso.datetime()"},
	"ip":       {".ip()", "z.ip()"},
	"ip4":      {`.ip({ version: "v4" })`, "z.ipv4()"},
	"ipv4":     {`.ip({ version: "v4" })`, "z.ipv4()"},
	"ip6":      {`.ip({ version: "v6" })`, "z.ipv6()"},
	"ipv6":     {`.ip({ version: "v6" })`, "z.ipv6()"},
}

var skipped = map[string]bool{
	"omitempty": true, "omitzero": true, "omitnil": true, "dive": true,
	"keys": true, "endkeys": true, "unique": true, "oneof": true,
	"required_with": true, "required_without": true, "required_if": true,
	"excluded_if": true, "excluded_unless": true,
	"eqfield": true, "nefield": true, "gtfield": true, "gtefield": true,
	"ltfield": true, "ltefield": true, "eqcsfield": true, "necsfield": true,
	"gtcsfield": true, "gtecsfield": true, "ltcsfield": true, "ltecsfield": true,
}

// literal renders a rule parameter as a TS literal for the target.
func literal(param string, t Target) string {
	if t == TargetString {
		return fmt.Sprintf("%q", param)
	}
	return param
}

// Classic returns the zod method chain suffix for r, e.g. ".min(8)".
func (r Rule) Classic(t Target) (string, Support) {
	if skipped[r.Name] {
		return "", Skipped
	}
	if f, ok := formats[r.Name]; ok && t == TargetString {
		return f[0], Supported
	}
	if p, ok := patterns[r.Name]; ok && t == TargetString {
		return ".regex(" + p + ")", Supported
	}
	switch r.Name {
	case "required":
		if t == TargetString {
			return ".min(1)", Supported
		}
		return "", Supported
	case "min", "max", "gt", "gte", "lt", "lte":
		if r.Param != "" {
			return fmt.Sprintf(".%s(%s)", r.Name, r.Param), Supported
		}
	case "len":
		if r.Param != "" {
			return fmt.Sprintf(".length(%s)", r.Param), Supported
		}
	case "eq", "ne":
		if r.Param != "" {
			op := map[string]string{"eq": "===", "ne": "!=="}[r.Name]
			return fmt.Sprintf(".refine((v) => v %s %s)", op, literal(r.Param, t)), Supported
		}
	case "contains":
		if r.Param != "" {
			return fmt.Sprintf(".includes(%q)", r.Param), Supported
		}
	case "startswith":
		if r.Param != "" {
			return fmt.Sprintf(".startsWith(%q)", r.Param), Supported
		}
	case "endswith":
		if r.Param != "" {
			return fmt.Sprintf(".endsWith(%q)", r.Param), Supported
		}
	}
	return "", Unsupported
}

// Mini returns the zod-mini check for r, e.g. "z.minLength(8)".
func (r Rule) Mini(t Target) (string, Support) {
	if skipped[r.Name] {
		return "", Skipped
	}
	if f, ok := formats[r.Name]; ok && t == TargetString {
		return f[1], Supported
	}
	if p, ok := patterns[r.Name]; ok && t == TargetString {
		return "z.regex(" + p + ")", Supported
	}
	switch r.Name {
	case "required":
		if t == TargetString {
			return "z.minLength(1)", Supported
		}
		return "", Supported
	case "min", "max":
		if r.Param == "" {
			break
		}
		if t == TargetNumber {
			return fmt.Sprintf("z.%s(%s)", map[string]string{"min": "gte", "max": "lte"}[r.Name], r.Param), Supported
		}
		return fmt.Sprintf("z.%sLength(%s)", r.Name, r.Param), Supported
	case "gt", "gte", "lt", "lte":
		if r.Param != "" {
			return fmt.Sprintf("z.%s(%s)", r.Name, r.Param), Supported
		}
	case "len":
		if r.Param != "" {
			return fmt.Sprintf("z.length(%s)", r.Param), Supported
		}
	case "eq", "ne":
		if r.Param != "" {
			op := map[string]string{"eq": "===", "ne": "!=="}[r.Name]
			return fmt.Sprintf("z.refine((v) => v %s %s)", op, literal(r.Param, t)), Supported
		}
	case "contains":
		if r.Param != "" {
			return fmt.Sprintf("z.includes(%q)", r.Param), Supported
		}
	case "startswith":
		if r.Param != "" {
			return fmt.Sprintf("z.startsWith(%q)", r.Param), Supported
		}
	case "endswith":
		if r.Param != "" {
			return fmt.Sprintf("z.endsWith(%q)", r.Param), Supported
		}
	}
	return "", Unsupported
}
