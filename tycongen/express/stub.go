package express

import (
	"fmt"
	"slices"
	"strings"

	"github.com/broady/tycon/tycongen/emit"
	"github.com/broady/tycon/tycongen/ir"
	"github.com/broady/tycon/tycongen/typescript"
)

// GenerateStub returns the handler module for e: an exported async
// function whose parameters and result union are derived from the IR and
// whose body throws until the user implements it.
func GenerateStub(e *ir.Endpoint, opts Options) *emit.File {
	opts = opts.withDefaults()
	scope := NewScope(nil)
	var params []emit.Param

	if !ir.IsVoid(e.Request) {
		params = append(params, emit.Param{Name: scope.Declare("body"), Type: typescript.TypeString(e.Request)})
	}
	for _, seg := range e.DynamicSegments() {
		params = append(params, emit.Param{Name: scope.Declare(seg.Name), Type: typescript.TypeString(seg.Type)})
	}
	for _, h := range e.Headers {
		typ := typescript.TypeString(h.Type)
		if h.Optional {
			typ += " | undefined"
		}
		params = append(params, emit.Param{Name: scope.Declare(emit.LowerCamel(h.Name)), Type: typ})
	}

	name := HandlerName(e)
	var body []emit.Stmt
	if refs := stubReferences(e); len(refs) > 0 {
		body = append(body, emit.Import{Names: refs, TypeOnly: true, From: opts.TypesModule}, emit.Blank{})
	}
	body = append(body, emit.Func{
		Doc:    stubDoc(e),
		Export: true,
		Async:  true,
		Name:   name,
		Params: params,
		Result: "Promise<" + ResultType(e) + ">",
		Body: []emit.Stmt{emit.Throw{Value: emit.New{
			Fn:   emit.Ident("Error"),
			Args: []emit.Expr{emit.Str("Not implemented: " + e.Name)},
		}}},
	})
	return &emit.File{Body: body}
}

// ResultType is the union of the responses e's handler may return.
func ResultType(e *ir.Endpoint) string {
	member := func(status, data string) string {
		return "{ status: " + status + "; data: " + data + " }"
	}
	members := []string{member("200", typescript.TypeString(e.Response))}
	for _, ce := range e.CustomErrors {
		members = append(members, member(fmt.Sprint(ce.StatusCode), typescript.TypeString(ce.Type)))
	}
	members = append(members, member("number", typescript.TypeString(e.DefaultError)))
	return strings.Join(members, " | ")
}

// stubReferences returns the sorted, distinct type names in e's
// signature.
func stubReferences(e *ir.Endpoint) []string {
	types := []ir.Type{e.Request}
	for _, seg := range e.DynamicSegments() {
		types = append(types, seg.Type)
	}
	for _, h := range e.Headers {
		types = append(types, h.Type)
	}
	types = append(types, e.Response)
	for _, ce := range e.CustomErrors {
		types = append(types, ce.Type)
	}
	types = append(types, e.DefaultError)

	refs := ir.References(types...)
	slices.Sort(refs)
	return refs
}

func stubDoc(e *ir.Endpoint) string {
	route := e.Method + " " + e.PathTemplate()
	doc := e.Documentation.Body
	if doc == "" {
		doc = e.Documentation.Summary
	}
	if doc == "" {
		return route
	}
	return doc + "\n\n" + route
}
