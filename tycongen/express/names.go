package express

import (
	"fmt"
	"strings"

	"github.com/broady/tycon/tycongen/emit"
	"github.com/broady/tycon/tycongen/ir"
	"github.com/broady/tycon/tycongen/typescript/flavor"
)

// identifier is a generated TypeScript name and the declaration it came
// from.
type identifier struct {
	name     string
	owner    string
	source   ir.Source
	endpoint *ir.Endpoint
}

// validatorIdentifiers lists e's validators in the order route(e) uses
// them.
func validatorIdentifiers(e *ir.Endpoint) []identifier {
	own := func(name, what string, src ir.Source) identifier {
		if src.IsZero() {
			src = e.Source
		}
		return identifier{name: name, owner: what, source: src, endpoint: e}
	}
	var ids []identifier
	if !ir.IsVoid(e.Request) {
		ids = append(ids, own(flavor.RequestValidator(e), "request of "+e.Name, e.Source))
	}
	for _, seg := range e.DynamicSegments() {
		var src ir.Source
		if p, ok := e.PathParam(seg.Name); ok {
			src = p.Source
		}
		ids = append(ids, own(flavor.ParamValidator(e, seg.Name),
			fmt.Sprintf("path parameter %q of %s", seg.Name, e.Name), src))
	}
	for _, h := range e.Headers {
		ids = append(ids, own(flavor.HeaderValidator(e, h),
			fmt.Sprintf("header %s of %s", h.Name, e.Name), h.Source))
	}
	for _, ce := range e.CustomErrors {
		ids = append(ids, own(flavor.CustomErrorValidator(e, ce.StatusCode),
			fmt.Sprintf("error %d of %s", ce.StatusCode, e.Name), e.Source))
	}
	return append(ids,
		own(flavor.ResponseValidator(e), "response of "+e.Name, e.Source),
		own(flavor.DefaultErrorValidator(e), "default error of "+e.Name, e.Source),
	)
}

// CheckIdentifiers reports declarations whose generated names collide:
// two validators exported under one name from validators.ts, or two
// endpoints sharing a handler stub. Stub paths are compared without case
// so the output also works on case-insensitive filesystems.
//
// Each error is an *ir.ValidationError positioned at the later
// declaration.
func CheckIdentifiers(api *ir.Api, opts Options) []error {
	opts = opts.withDefaults()
	var errs []error
	add := func(code string, src ir.Source, format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		if pos := src.String(); pos != "" {
			msg = pos + ": " + msg
		}
		errs = append(errs, &ir.ValidationError{Code: code, Message: msg})
	}

	stubs := make(map[string]*ir.Endpoint)
	for _, e := range api.Endpoints() {
		path := StubPath(e, opts)
		key := strings.ToLower(path)
		if prev, ok := stubs[key]; ok {
			add("handler_collision", e.Source, "endpoints %s and %s both generate handler stub %s",
				prev.Name, e.Name, path)
			continue
		}
		stubs[key] = e
	}

	validators := make(map[string]identifier)
	for _, e := range api.Endpoints() {
		for _, id := range validatorIdentifiers(e) {
			prev, ok := validators[id.name]
			if !ok {
				validators[id.name] = id
				continue
			}
			if prev.endpoint != e && sharesPrefix(prev.endpoint, e) {
				continue // reported as a handler collision
			}
			add("identifier_collision", id.source, "%s and %s both generate %s",
				prev.owner, id.owner, id.name)
		}
	}
	return errs
}

// sharesPrefix reports whether a and b name all their validators and
// their handler alike.
func sharesPrefix(a, b *ir.Endpoint) bool {
	return emit.LowerCamel(a.Name) == emit.LowerCamel(b.Name)
}
