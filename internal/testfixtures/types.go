// Package testfixtures is an annotated API used by tycon's tests, plus
// helpers for type-checking source snippets in memory.
package testfixtures

import "time"

// User is a registered user.
type User struct {
	ID int64 `json:"id"`

	// Username is unique across the system.
	Username  string    `json:"username" validate:"required,min=3"`
	Email     string    `json:"email,omitempty" validate:"omitempty,email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Role is a user's permission level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// CreateUserRequest is the body of CreateUser.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Role     *Role  `json:"role,omitempty"`
}

// Post is a blog post.
type Post struct {
	ID       int64    `json:"id"`
	AuthorID int64    `json:"author_id"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
}

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

// ApiError is the catch-all error payload.
type ApiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GetUser returns a single user.
//
// @endpoint GET /users/{id}
type GetUser struct {
	// @pathParams
	Params struct {
		// The user's numeric identifier.
		//
		// @example small
		// 1
		// @example large
		// 9007199254740
		ID int64 `path:"id"`
	}

	// @headers
	Headers struct {
		RequestID string  `header:"X-Request-Id"`
		Locale    *string `header:"Accept-Language"`
	}

	// @response
	Response User

	// @error 404
	NotFound NotFoundError

	// @defaultError
	Error ApiError
}

// CreateUser registers a user.
//
// @endpoint POST /users
type CreateUser struct {
	// @request
	Request CreateUserRequest

	// @response
	Response User

	// @error 409
	Conflict ApiError

	// @defaultError
	Error ApiError
}

// ListPosts lists a user's posts with a given tag.
//
// @endpoint GET /users/:userId/tags/:tag/posts
type ListPosts struct {
	// @pathParams
	Params struct {
		UserID int64 `path:"userId"`

		// @example go
		// "golang"
		Tag string `path:"tag"`
	}

	// @response
	Response []Post

	// @defaultError
	Error ApiError
}

// DeletePost removes a post.
//
// @endpoint DELETE /posts/{id}
type DeletePost struct {
	// @pathParams
	Params struct {
		ID int64 `path:"id"`
	}

	// @error 403
	Forbidden ApiError

	// @error 404
	NotFound NotFoundError
}
