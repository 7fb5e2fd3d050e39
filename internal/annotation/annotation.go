// Package annotation scans Go doc comments for tycon annotation tags.
//
// A tag is a comment line that starts with '@' followed by a name:
//
//	// GetUser returns a single user.
//	//
//	// @endpoint GET /users/{id}
//
// The tag's text is the rest of that line plus any following non-blank
// lines that are not themselves tags. Everything outside a tag is the
// description. Scanning never fails; interpreting tag text is up to the
// caller.
package annotation

import (
	"go/ast"
	"go/token"
	"strings"
)

// Tag is a single annotation. Tags are values; callers receive copies.
type Tag struct {
	// Name is the tag name without the leading '@'.
	Name string

	// Text is the raw tag text with surrounding whitespace removed.
	// Continuation lines are joined with "\n".
	Text string

	// Pos is the position of the line that opened the tag.
	Pos token.Pos
}

// Comment is the result of scanning a doc comment.
type Comment struct {
	tags        []Tag
	description string
	pos         token.Pos
}

// Tags returns a copy of all tags in source order.
func (c Comment) Tags() []Tag {
	out := make([]Tag, len(c.tags))
	copy(out, c.tags)
	return out
}

// Has reports whether a tag with the given name is present.
func (c Comment) Has(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// Lookup returns the first tag with the given name.
func (c Comment) Lookup(name string) (Tag, bool) {
	for _, t := range c.tags {
		if t.Name == name {
			return t, true
		}
	}
	return Tag{}, false
}

// All returns every tag with the given name in source order.
func (c Comment) All(name string) []Tag {
	var out []Tag
	for _, t := range c.tags {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

// Description returns the free text of the comment with tags removed,
// trimmed of surrounding whitespace.
func (c Comment) Description() string {
	return c.description
}

// Summary returns the first paragraph of the description.
func (c Comment) Summary() string {
	summary, _, _ := strings.Cut(c.description, "\n\n")
	return summary
}

// Pos returns the position of the comment group, or token.NoPos.
func (c Comment) Pos() token.Pos {
	return c.pos
}

// Scan scans a doc comment. A nil group yields an empty Comment.
func Scan(doc *ast.CommentGroup) Comment {
	if doc == nil {
		return Comment{}
	}
	var s scanner
	for _, c := range doc.List {
		text := c.Text
		if strings.HasPrefix(text, "//") {
			if isDirective(text[2:]) {
				continue
			}
			s.line(strings.TrimPrefix(text[2:], " "), c.Slash)
			continue
		}
		// /* block */ comments: every line shares the opening position.
		body := strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
		for _, l := range strings.Split(body, "\n") {
			l = strings.TrimSpace(l)
			l = strings.TrimPrefix(l, "* ")
			if l == "*" {
				l = ""
			}
			s.line(l, c.Slash)
		}
	}
	return s.finish(doc.Pos())
}

// ScanText scans comment text that has already had its comment markers
// removed, as returned by ast.CommentGroup.Text. Tag positions are NoPos.
func ScanText(text string) Comment {
	var s scanner
	for _, l := range strings.Split(text, "\n") {
		s.line(l, token.NoPos)
	}
	return s.finish(token.NoPos)
}

type scanner struct {
	tags  []Tag
	desc  []string
	open  bool
	lines []string
}

func (s *scanner) line(l string, pos token.Pos) {
	trimmed := strings.TrimSpace(l)
	if name, rest, ok := tagLine(trimmed); ok {
		s.close()
		s.tags = append(s.tags, Tag{Name: name, Pos: pos})
		s.open = true
		s.lines = []string{rest}
		return
	}
	if trimmed == "" {
		s.close()
		s.desc = append(s.desc, "")
		return
	}
	if s.open {
		s.lines = append(s.lines, trimmed)
		return
	}
	s.desc = append(s.desc, strings.TrimRight(l, " \t"))
}

func (s *scanner) close() {
	if !s.open {
		return
	}
	s.tags[len(s.tags)-1].Text = strings.TrimSpace(strings.Join(s.lines, "\n"))
	s.open = false
	s.lines = nil
}

func (s *scanner) finish(pos token.Pos) Comment {
	s.close()
	return Comment{
		tags:        s.tags,
		description: collapseBlankLines(strings.TrimSpace(strings.Join(s.desc, "\n"))),
		pos:         pos,
	}
}

// tagLine splits "@name rest" into name and rest.
func tagLine(l string) (name, rest string, ok bool) {
	if len(l) < 2 || l[0] != '@' || !isNameStart(l[1]) {
		return "", "", false
	}
	i := 2
	for i < len(l) && isNameChar(l[i]) {
		i++
	}
	if i < len(l) && l[i] != ' ' && l[i] != '\t' {
		// "@foo.bar" or an email-like token, not a tag.
		return "", "", false
	}
	return l[1:i], strings.TrimSpace(l[i:]), true
}

func isNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9' || c == '_' || c == '-'
}

// isDirective reports whether a line comment body is a tool directive
// such as "go:generate", which ast.CommentGroup.Text also drops.
func isDirective(body string) bool {
	colon := strings.IndexByte(body, ':')
	if colon <= 0 || colon == len(body)-1 {
		return false
	}
	for i := 0; i < colon; i++ {
		c := body[i]
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
			return false
		}
	}
	c := body[colon+1]
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
