// Package irtest builds small IR fixtures for generator tests.
package irtest

import (
	"testing"

	"github.com/broady/tycon/tycongen/ir"
)

// GetUser is GET /users/{id} with two headers, a 404 error and an
// ApiError default.
func GetUser() *ir.Endpoint {
	return &ir.Endpoint{
		Name:   "GetUser",
		Method: "GET",
		Path: []ir.PathComponent{
			ir.StaticSegment{Content: "/users/"},
			ir.DynamicSegment{Name: "id", Type: ir.Int32()},
		},
		PathParams: []ir.PathParam{{Name: "id", Type: ir.Int32()}},
		Headers: []ir.Header{
			{Name: "RequestID", WireName: "X-Request-Id", Type: ir.String()},
			{Name: "Locale", WireName: "Accept-Language", Type: ir.String(), Optional: true},
		},
		Request:      ir.Void(),
		Response:     ir.Ref("User"),
		CustomErrors: []ir.CustomError{{StatusCode: 404, Type: ir.Ref("NotFoundError")}},
		DefaultError: ir.Ref("ApiError"),
	}
}

// CreateUser is POST /users with a body and a 409 error.
func CreateUser() *ir.Endpoint {
	return &ir.Endpoint{
		Name:         "CreateUser",
		Method:       "POST",
		Path:         []ir.PathComponent{ir.StaticSegment{Content: "/users"}},
		Request:      ir.Ref("CreateUserRequest"),
		Response:     ir.Ref("User"),
		CustomErrors: []ir.CustomError{{StatusCode: 409, Type: ir.Ref("ApiError")}},
		DefaultError: ir.Ref("ApiError"),
	}
}

// ListPosts is GET /users/:userId/tags/:tag/posts; the placeholders
// appear in the opposite order of the sorted PathParams.
func ListPosts() *ir.Endpoint {
	return &ir.Endpoint{
		Name:   "ListPosts",
		Method: "GET",
		Path: []ir.PathComponent{
			ir.StaticSegment{Content: "/users/"},
			ir.DynamicSegment{Name: "userId", Type: ir.Int64()},
			ir.StaticSegment{Content: "/tags/"},
			ir.DynamicSegment{Name: "tag", Type: ir.Array(ir.String())},
			ir.StaticSegment{Content: "/posts"},
		},
		PathParams: []ir.PathParam{
			{Name: "tag", Type: ir.Array(ir.String())},
			{Name: "userId", Type: ir.Int64()},
		},
		Request:      ir.Void(),
		Response:     ir.Array(ir.Ref("Post")),
		DefaultError: ir.Unknown(),
	}
}

// Declarations returns the named types the sample endpoints reference.
func Declarations() []*ir.TypeDeclaration {
	return []*ir.TypeDeclaration{
		{Name: "User", Type: &ir.ObjectType{Properties: []ir.Property{
			{Name: "id", Type: ir.Int64()},
			{Name: "email", Type: ir.String(), ValidateTag: "required,email"},
			{Name: "nickname", Type: ir.String(), Optional: true},
			{Name: "role", Type: ir.Ref("Role")},
		}}},
		{Name: "Role", Type: ir.Enum("admin", "member")},
		{Name: "CreateUserRequest", Type: &ir.ObjectType{Properties: []ir.Property{
			{Name: "email", Type: ir.String(), ValidateTag: "required,email"},
			{Name: "age", Type: ir.Int32(), Optional: true, ValidateTag: "omitempty,gte=13"},
		}}},
		{Name: "Post", Type: &ir.ObjectType{Properties: []ir.Property{
			{Name: "title", Type: ir.String(), ValidateTag: "min=1,max=200"},
			{Name: "tags", Type: ir.Array(ir.String())},
		}}},
		{Name: "NotFoundError", Type: &ir.ObjectType{Properties: []ir.Property{
			{Name: "resource", Type: ir.String()},
		}}},
		{Name: "ApiError", Type: &ir.ObjectType{Properties: []ir.Property{
			{Name: "code", Type: ir.String()},
			{Name: "message", Type: ir.String()},
		}}},
	}
}

// Api returns an Api holding GetUser, CreateUser and ListPosts.
func Api(tb testing.TB) *ir.Api {
	tb.Helper()
	api := ir.NewApi("users")
	for _, d := range Declarations() {
		if err := api.Types.Add(d); err != nil {
			tb.Fatal(err)
		}
	}
	for _, e := range []*ir.Endpoint{GetUser(), CreateUser(), ListPosts()} {
		if err := api.AddEndpoint(e); err != nil {
			tb.Fatal(err)
		}
	}
	if errs := api.Validate(); len(errs) > 0 {
		tb.Fatalf("sample api invalid: %v", errs)
	}
	return api
}
