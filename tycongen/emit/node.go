// Package emit builds TypeScript source from a small, closed set of
// statement and expression nodes.
//
// Generators assemble a File out of nodes and call Render; no generator
// writes source text directly. Type annotations are carried as already
// rendered TypeScript type strings.
package emit

// File is one TypeScript module.
type File struct {
	// Header is emitted as a leading line comment block.
	Header string
	Body   []Stmt
}

// Stmt is a statement node.
type Stmt interface {
	stmt()
}

// Expr is an expression node.
type Expr interface {
	expr()
}

// Import is `import x, { a, b } from "m"` or `import type { ... }`.
type Import struct {
	Default  string
	Names    []string
	TypeOnly bool
	From     string
}

// Const binds a name: `const name: Type = value`.
type Const struct {
	Export bool
	Name   string
	Type   string
	Value  Expr
}

// ExprStmt evaluates an expression for its effect.
type ExprStmt struct {
	X Expr
}

// If is a conditional. Else may be empty.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// Return returns Value, or nothing when Value is nil.
type Return struct {
	Value Expr
}

// Throw raises Value.
type Throw struct {
	Value Expr
}

// Func is a function declaration.
type Func struct {
	Doc    string
	Export bool
	Async  bool
	Name   string
	Params []Param
	Result string
	Body   []Stmt
}

// Blank renders an empty line.
type Blank struct{}

// Param is a function parameter with an optional type annotation.
type Param struct {
	Name string
	Type string
}

func (Import) stmt()   {}
func (Const) stmt()    {}
func (ExprStmt) stmt() {}
func (If) stmt()       {}
func (Return) stmt()   {}
func (Throw) stmt()    {}
func (Func) stmt()     {}
func (Blank) stmt()    {}

// Ident is a bare identifier.
type Ident string

// Str is a string literal.
type Str string

// Num is an integer literal.
type Num int

// Member is `x.name`, or `x["name"]` when name is not an identifier.
type Member struct {
	X    Expr
	Name string
}

// Index is `x[key]`.
type Index struct {
	X   Expr
	Key Expr
}

// Call is `fn(args...)`.
type Call struct {
	Fn   Expr
	Args []Expr
}

// New is `new fn(args...)`.
type New struct {
	Fn   Expr
	Args []Expr
}

// Await is `await x`.
type Await struct {
	X Expr
}

// Not is `!x`.
type Not struct {
	X Expr
}

// Binary is `l op r`.
type Binary struct {
	Op   string
	L, R Expr
}

// Object is an object literal.
type Object struct {
	Props []Prop
}

// Prop is one object literal member.
type Prop struct {
	Key   string
	Value Expr
}

// Arrow is an arrow function with a block body.
type Arrow struct {
	Async  bool
	Params []Param
	Body   []Stmt
}

func (Ident) expr()  {}
func (Str) expr()    {}
func (Num) expr()    {}
func (Member) expr() {}
func (Index) expr()  {}
func (Call) expr()   {}
func (New) expr()    {}
func (Await) expr()  {}
func (Not) expr()    {}
func (Binary) expr() {}
func (Object) expr() {}
func (Arrow) expr()  {}

// Sel chains member accesses: Sel(x, "a", "b") is x.a.b.
func Sel(x Expr, names ...string) Expr {
	for _, n := range names {
		x = Member{X: x, Name: n}
	}
	return x
}

// CallOf is shorthand for Call{Fn: fn, Args: args}.
func CallOf(fn Expr, args ...Expr) Call {
	return Call{Fn: fn, Args: args}
}
