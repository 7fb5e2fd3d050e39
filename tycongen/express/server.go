// Package express generates an Express server from an ir.Api: server.ts
// with one validated route per endpoint, and one handler stub module per
// endpoint for the user to implement.
//
// Generators assume the Api has passed ir.Api.Validate; malformed IR is a
// programming error and panics.
package express

import (
	"fmt"
	"strings"

	"github.com/broady/tycon/tycongen/emit"
	"github.com/broady/tycon/tycongen/ir"
	"github.com/broady/tycon/tycongen/typescript"
	"github.com/broady/tycon/tycongen/typescript/flavor"
)

// Options controls module paths and the listen port.
type Options struct {
	// Port is the default listen port; PORT in the environment wins.
	Port int

	// ValidatorsModule is imported by server.ts. Default "./validators".
	ValidatorsModule string

	// HandlersDir holds the stub modules, relative to server.ts.
	// Default "handlers".
	HandlersDir string

	// TypesModule is imported by the stubs. Default "../types".
	TypesModule string
}

func (o Options) withDefaults() Options {
	if o.Port == 0 {
		o.Port = 3000
	}
	if o.ValidatorsModule == "" {
		o.ValidatorsModule = "./validators"
	}
	if o.HandlersDir == "" {
		o.HandlersDir = "handlers"
	}
	if o.TypesModule == "" {
		o.TypesModule = "../types"
	}
	return o
}

// HandlerName is the exported function a stub module declares for e.
func HandlerName(e *ir.Endpoint) string {
	return emit.Sanitize(emit.LowerCamel(e.Name))
}

// StubPath is the stub module's path relative to the output directory.
func StubPath(e *ir.Endpoint, opts Options) string {
	return opts.withDefaults().HandlersDir + "/" + HandlerName(e) + ".ts"
}

// Module-level names in server.ts that no generated binding may shadow.
var moduleNames = []string{
	"express", "cors", "app", "port",
	"process", "console", "Number", "JSON", "Error", "Promise",
}

// GenerateServer returns server.ts for api: middleware, one route per
// endpoint in api order, then the listen call.
func GenerateServer(api *ir.Api, opts Options) *emit.File {
	opts = opts.withDefaults()
	module := NewScope(nil, moduleNames...)

	var (
		validators []string
		handlers   []emit.Stmt
		routes     []emit.Stmt
	)
	for _, e := range api.Endpoints() {
		for _, v := range endpointValidators(e) {
			module.names[v] = true
			validators = append(validators, v)
		}
	}
	for _, e := range api.Endpoints() {
		fn := HandlerName(e)
		local := module.Declare(fn)
		name := fn
		if local != fn {
			name = fn + " as " + local
		}
		handlers = append(handlers, emit.Import{
			Names: []string{name},
			From:  "./" + opts.HandlersDir + "/" + fn,
		})
		routes = append(routes, emit.Blank{}, route(e, module, local))
	}

	body := []emit.Stmt{
		emit.Import{Default: "express", From: "express"},
		emit.Import{Default: "cors", From: "cors"},
	}
	if len(validators) > 0 {
		body = append(body, emit.Import{Names: validators, From: opts.ValidatorsModule})
	}
	body = append(body, handlers...)
	body = append(body,
		emit.Blank{},
		emit.Const{Name: "app", Value: emit.CallOf(emit.Ident("express"))},
		emit.ExprStmt{X: emit.CallOf(emit.Sel(emit.Ident("app"), "use"), emit.CallOf(emit.Ident("cors")))},
		emit.ExprStmt{X: emit.CallOf(emit.Sel(emit.Ident("app"), "use"), emit.CallOf(emit.Sel(emit.Ident("express"), "json")))},
	)
	body = append(body, routes...)
	body = append(body,
		emit.Blank{},
		emit.Const{Name: "port", Value: emit.CallOf(emit.Ident("Number"), emit.Binary{
			Op: "??",
			L:  emit.Sel(emit.Ident("process"), "env", "PORT"),
			R:  emit.Num(opts.Port),
		})},
		emit.ExprStmt{X: emit.CallOf(emit.Sel(emit.Ident("app"), "listen"), emit.Ident("port"), emit.Arrow{
			Body: []emit.Stmt{emit.ExprStmt{X: emit.CallOf(
				emit.Sel(emit.Ident("console"), "log"),
				emit.Binary{Op: "+", L: emit.Str("Listening on port "), R: emit.Ident("port")},
			)}},
		})},
	)
	return &emit.File{Header: typescript.Header, Body: body}
}

// endpointValidators lists the validators route(e) refers to, in the
// order it uses them.
func endpointValidators(e *ir.Endpoint) []string {
	ids := validatorIdentifiers(e)
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.name
	}
	return names
}

// route returns `app.<method>(path, async (req, res) => {...})`.
func route(e *ir.Endpoint, module *Scope, handler string) emit.Stmt {
	method := strings.ToLower(e.Method)
	if !ir.IsValidMethod(e.Method) {
		panic(fmt.Sprintf("express: endpoint %s has unsupported method %q", e.Name, e.Method))
	}
	return emit.ExprStmt{X: emit.CallOf(
		emit.Sel(emit.Ident("app"), method),
		emit.Str(e.PathTemplate()),
		emit.Arrow{
			Async:  true,
			Params: []emit.Param{{Name: "req"}, {Name: "res"}},
			Body:   HandlerBody(e, NewScope(module, "req", "res"), handler),
		},
	)}
}

// HandlerBody returns the statements of e's request handler. Inputs are
// validated in order (body, path parameters, headers), the handler is
// awaited with their parsed values, and its result is validated against
// the schema its status selects before being sent.
func HandlerBody(e *ir.Endpoint, scope *Scope, handler string) []emit.Stmt {
	var (
		stmts []emit.Stmt
		args  []emit.Expr
	)
	input := func(local, validator string, value emit.Expr, message string) {
		stmts = append(stmts, emit.Const{
			Name:  local,
			Value: safeParse(validator, value),
		})
		stmts = append(stmts, reject(local, 400, message))
		args = append(args, emit.Sel(emit.Ident(local), "data"))
	}

	if !ir.IsVoid(e.Request) {
		input(scope.Declare("body"), flavor.RequestValidator(e),
			emit.Sel(emit.Ident("req"), "body"), "Invalid request")
	}
	for _, seg := range e.DynamicSegments() {
		input(scope.Declare(seg.Name), flavor.ParamValidator(e, seg.Name),
			emit.Index{X: emit.Sel(emit.Ident("req"), "params"), Key: emit.Str(seg.Name)},
			"Invalid path parameter "+seg.Name)
	}
	for _, h := range e.Headers {
		input(scope.Declare(emit.LowerCamel(h.Name)), flavor.HeaderValidator(e, h),
			emit.CallOf(emit.Sel(emit.Ident("req"), "get"), emit.Str(h.WireName)),
			"Invalid header "+h.WireName)
	}

	result := scope.Declare("result")
	payload := scope.Declare("payload")
	status := emit.Sel(emit.Ident(result), "status")
	data := emit.Sel(emit.Ident(result), "data")

	stmts = append(stmts, emit.Const{
		Name:  result,
		Value: emit.Await{X: emit.Call{Fn: emit.Ident(handler), Args: args}},
	})

	checkOutput := func(validator, message string) []emit.Stmt {
		return []emit.Stmt{
			emit.Const{Name: payload, Value: safeParse(validator, data)},
			reject(payload, 500, message),
		}
	}
	for _, ce := range e.CustomErrors {
		then := checkOutput(flavor.CustomErrorValidator(e, ce.StatusCode),
			fmt.Sprintf("Invalid error response for status %d", ce.StatusCode))
		then = append(then, send(status, data), emit.Return{})
		stmts = append(stmts, emit.If{
			Cond: emit.Binary{Op: "===", L: status, R: emit.Num(ce.StatusCode)},
			Then: then,
		})
	}
	stmts = append(stmts,
		emit.If{
			Cond: emit.Binary{
				Op: "&&",
				L:  emit.Binary{Op: ">=", L: status, R: emit.Num(200)},
				R:  emit.Binary{Op: "<", L: status, R: emit.Num(300)},
			},
			Then: checkOutput(flavor.ResponseValidator(e), "Invalid successful response"),
			Else: checkOutput(flavor.DefaultErrorValidator(e), "Invalid error response"),
		},
		send(status, data),
	)
	return stmts
}

func safeParse(validator string, value emit.Expr) emit.Expr {
	return emit.CallOf(emit.Sel(emit.Ident(validator), "safeParse"), value)
}

// reject answers code with message and the validation issues of the
// failed parse bound to local, then stops handling.
func reject(local string, code int, message string) emit.Stmt {
	return emit.If{
		Cond: emit.Not{X: emit.Sel(emit.Ident(local), "success")},
		Then: []emit.Stmt{
			send(emit.Num(code), emit.Object{Props: []emit.Prop{
				{Key: "message", Value: emit.Str(message)},
				{Key: "issues", Value: emit.Sel(emit.Ident(local), "error", "issues")},
			}}),
			emit.Return{},
		},
	}
}

func send(status, payload emit.Expr) emit.Stmt {
	return emit.ExprStmt{X: emit.CallOf(
		emit.Sel(emit.CallOf(emit.Sel(emit.Ident("res"), "status"), status), "json"),
		payload,
	)}
}
