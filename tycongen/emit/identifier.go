package emit

import (
	"strings"
	"unicode"
)

// reservedWords are the ECMAScript/TypeScript reserved words that cannot
// name a binding.
var reservedWords = map[string]bool{
	"await": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true, "export": true,
	"extends": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "implements": true, "import": true,
	"in": true, "instanceof": true, "interface": true, "let": true,
	"new": true, "null": true, "package": true, "private": true,
	"protected": true, "public": true, "return": true, "static": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true,
	// Not reserved, but shadowing these breaks the emitted code.
	"arguments": true, "eval": true, "undefined": true,
}

// IsReserved reports whether name cannot be used as a binding.
func IsReserved(name string) bool {
	return reservedWords[name]
}

// IsIdentifier reports whether name can be written unquoted as a
// property name or member access.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			return false
		}
	}
	return true
}

// Sanitize turns name into a valid, non-reserved binding identifier.
func Sanitize(name string) string {
	if name == "" {
		return "_"
	}
	var sb strings.Builder
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			sb.WriteByte('_')
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	s := sb.String()
	if reservedWords[s] {
		return s + "_"
	}
	return s
}

// LowerCamel lower-cases the leading run of upper-case letters, keeping
// the last one of a run that precedes a lower-case letter: "GetUser" →
// "getUser", "HTTPStatus" → "httpStatus", "ID" → "id".
func LowerCamel(name string) string {
	r := []rune(name)
	for i := range r {
		if !unicode.IsUpper(r[i]) {
			break
		}
		if i > 0 && i+1 < len(r) && unicode.IsLower(r[i+1]) {
			break
		}
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}

// UpperCamel converts a name such as "user-id" or "user_id" to "UserId".
func UpperCamel(name string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			sb.WriteRune(unicode.ToUpper(r))
			upper = false
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
