package emit

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const indentUnit = "  "

// precedence of the binary operators the generators use.
var precedence = map[string]int{
	"||":  1,
	"??":  1,
	"&&":  2,
	"===": 3,
	"!==": 3,
	"<":   4,
	"<=":  4,
	">":   4,
	">=":  4,
	"+":   5,
	"-":   5,
	"*":   6,
	"/":   6,
}

// Render prints f as TypeScript source.
func Render(f *File) []byte {
	p := &printer{}
	if f.Header != "" {
		for _, l := range strings.Split(strings.TrimRight(f.Header, "\n"), "\n") {
			p.buf.WriteString(strings.TrimRight("// "+l, " "))
			p.buf.WriteByte('\n')
		}
		p.buf.WriteByte('\n')
	}
	p.stmts(f.Body)
	return p.buf.Bytes()
}

// RenderExpr prints a single expression at depth zero.
func RenderExpr(e Expr) string {
	p := &printer{}
	p.expr(e)
	return p.buf.String()
}

type printer struct {
	buf   bytes.Buffer
	depth int
}

func (p *printer) indent() {
	for range p.depth {
		p.buf.WriteString(indentUnit)
	}
}

func (p *printer) stmts(list []Stmt) {
	for _, s := range list {
		p.stmt(s)
	}
}

func (p *printer) block(list []Stmt) {
	p.buf.WriteString("{\n")
	p.depth++
	p.stmts(list)
	p.depth--
	p.indent()
	p.buf.WriteByte('}')
}

func (p *printer) stmt(s Stmt) {
	if _, ok := s.(Blank); ok {
		p.buf.WriteByte('\n')
		return
	}
	p.indent()
	switch s := s.(type) {
	case Import:
		p.buf.WriteString("import ")
		if s.TypeOnly {
			p.buf.WriteString("type ")
		}
		if s.Default != "" {
			p.buf.WriteString(s.Default)
			if len(s.Names) > 0 {
				p.buf.WriteString(", ")
			}
		}
		if len(s.Names) > 0 {
			p.buf.WriteString("{ ")
			p.buf.WriteString(strings.Join(s.Names, ", "))
			p.buf.WriteString(" }")
		}
		p.buf.WriteString(" from ")
		p.buf.WriteString(Quote(s.From))
		p.buf.WriteString(";\n")
	case Const:
		if s.Export {
			p.buf.WriteString("export ")
		}
		p.buf.WriteString("const ")
		p.buf.WriteString(s.Name)
		if s.Type != "" {
			p.buf.WriteString(": ")
			p.buf.WriteString(s.Type)
		}
		p.buf.WriteString(" = ")
		p.expr(s.Value)
		p.buf.WriteString(";\n")
	case ExprStmt:
		p.expr(s.X)
		p.buf.WriteString(";\n")
	case If:
		p.ifChain(s)
		p.buf.WriteByte('\n')
	case Return:
		p.buf.WriteString("return")
		if s.Value != nil {
			p.buf.WriteByte(' ')
			p.expr(s.Value)
		}
		p.buf.WriteString(";\n")
	case Throw:
		p.buf.WriteString("throw ")
		p.expr(s.Value)
		p.buf.WriteString(";\n")
	case Func:
		p.fn(s)
	default:
		panic(fmt.Sprintf("emit: unknown statement %T", s))
	}
}

func (p *printer) ifChain(s If) {
	p.buf.WriteString("if (")
	p.expr(s.Cond)
	p.buf.WriteString(") ")
	p.block(s.Then)
	if len(s.Else) == 0 {
		return
	}
	p.buf.WriteString(" else ")
	if len(s.Else) == 1 {
		if next, ok := s.Else[0].(If); ok {
			p.ifChain(next)
			return
		}
	}
	p.block(s.Else)
}

func (p *printer) fn(s Func) {
	if s.Doc != "" {
		p.buf.WriteString("/**\n")
		for _, l := range strings.Split(s.Doc, "\n") {
			p.indent()
			p.buf.WriteString(strings.TrimRight(" * "+l, " "))
			p.buf.WriteByte('\n')
		}
		p.indent()
		p.buf.WriteString(" */\n")
		p.indent()
	}
	if s.Export {
		p.buf.WriteString("export ")
	}
	if s.Async {
		p.buf.WriteString("async ")
	}
	p.buf.WriteString("function ")
	p.buf.WriteString(s.Name)
	p.params(s.Params)
	if s.Result != "" {
		p.buf.WriteString(": ")
		p.buf.WriteString(s.Result)
	}
	p.buf.WriteByte(' ')
	p.block(s.Body)
	p.buf.WriteByte('\n')
}

func (p *printer) params(params []Param) {
	p.buf.WriteByte('(')
	for i, prm := range params {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		p.buf.WriteString(prm.Name)
		if prm.Type != "" {
			p.buf.WriteString(": ")
			p.buf.WriteString(prm.Type)
		}
	}
	p.buf.WriteByte(')')
}

func (p *printer) args(args []Expr) {
	p.buf.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		p.expr(a)
	}
	p.buf.WriteByte(')')
}

func (p *printer) expr(e Expr) {
	switch e := e.(type) {
	case Ident:
		p.buf.WriteString(string(e))
	case Str:
		p.buf.WriteString(Quote(string(e)))
	case Num:
		p.buf.WriteString(strconv.Itoa(int(e)))
	case Member:
		p.operand(e.X)
		if IsIdentifier(e.Name) {
			p.buf.WriteByte('.')
			p.buf.WriteString(e.Name)
		} else {
			p.buf.WriteByte('[')
			p.buf.WriteString(Quote(e.Name))
			p.buf.WriteByte(']')
		}
	case Index:
		p.operand(e.X)
		p.buf.WriteByte('[')
		p.expr(e.Key)
		p.buf.WriteByte(']')
	case Call:
		p.operand(e.Fn)
		p.args(e.Args)
	case New:
		p.buf.WriteString("new ")
		p.operand(e.Fn)
		p.args(e.Args)
	case Await:
		p.buf.WriteString("await ")
		p.unary(e.X)
	case Not:
		p.buf.WriteByte('!')
		p.unary(e.X)
	case Binary:
		prec, ok := precedence[e.Op]
		if !ok {
			panic(fmt.Sprintf("emit: unknown operator %q", e.Op))
		}
		p.side(e.L, prec, false)
		p.buf.WriteString(" " + e.Op + " ")
		p.side(e.R, prec, true)
	case Object:
		if len(e.Props) == 0 {
			p.buf.WriteString("{}")
			return
		}
		p.buf.WriteString("{ ")
		for i, prop := range e.Props {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			if IsIdentifier(prop.Key) {
				p.buf.WriteString(prop.Key)
			} else {
				p.buf.WriteString(Quote(prop.Key))
			}
			p.buf.WriteString(": ")
			p.expr(prop.Value)
		}
		p.buf.WriteString(" }")
	case Arrow:
		if e.Async {
			p.buf.WriteString("async ")
		}
		p.params(e.Params)
		p.buf.WriteString(" => ")
		p.block(e.Body)
	default:
		panic(fmt.Sprintf("emit: unknown expression %T", e))
	}
}

// operand prints x where a member access, call or index follows it.
func (p *printer) operand(x Expr) {
	switch x.(type) {
	case Binary, Await, Not, Arrow, New, Object:
		p.paren(x)
	default:
		p.expr(x)
	}
}

// unary prints the operand of a prefix operator.
func (p *printer) unary(x Expr) {
	switch x.(type) {
	case Binary, Arrow:
		p.paren(x)
	default:
		p.expr(x)
	}
}

func (p *printer) side(x Expr, parent int, right bool) {
	if b, ok := x.(Binary); ok {
		prec := precedence[b.Op]
		if prec < parent || (right && prec == parent) {
			p.paren(x)
			return
		}
	}
	if _, ok := x.(Arrow); ok {
		p.paren(x)
		return
	}
	p.expr(x)
}

func (p *printer) paren(x Expr) {
	p.buf.WriteByte('(')
	p.expr(x)
	p.buf.WriteByte(')')
}

// Quote returns s as a double-quoted TypeScript string literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			if r < 0x20 || r == utf8.RuneError && size == 1 {
				fmt.Fprintf(&sb, `\u%04x`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
