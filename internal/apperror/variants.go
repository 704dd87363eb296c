package apperror

import (
	"fmt"
	"net/http"
)

// NewValidation constructs the validation variant (422). The fields map
// carries one ordered message list per failing field path; an empty map is
// permitted only for hand-built business-rule errors.
func NewValidation(message string, fields *FieldErrors, opts ...Option) *Error {
	if message == "" {
		message = "Validation failed"
	}
	if fields == nil {
		fields = NewFieldErrors()
	}
	e := New(message, http.StatusUnprocessableEntity, opts...)
	e.Name = NameValidation
	e.Fields = fields
	return e
}

// NewAuthentication constructs the authentication variant (401).
func NewAuthentication(message string, opts ...Option) *Error {
	if message == "" {
		message = "Authentication failed"
	}
	e := New(message, http.StatusUnauthorized, opts...)
	e.Name = NameAuthentication
	return e
}

// NewAuthorization constructs the authorization variant (403).
func NewAuthorization(message string, opts ...Option) *Error {
	if message == "" {
		message = "You do not have permission to perform this action"
	}
	e := New(message, http.StatusForbidden, opts...)
	e.Name = NameAuthorization
	return e
}

// NewToken constructs the token variant (401), used when a credential was
// presented but could not be verified.
func NewToken(message string, opts ...Option) *Error {
	if message == "" {
		message = "Invalid or expired token"
	}
	e := New(message, http.StatusUnauthorized, opts...)
	e.Name = NameToken
	return e
}

// NewNotFound constructs the not-found variant (404). The identifier may be
// empty when the resource is not addressed by ID.
func NewNotFound(resource, identifier string, opts ...Option) *Error {
	if resource == "" {
		resource = "Resource"
	}
	message := fmt.Sprintf("%s not found", resource)
	if identifier != "" {
		message = fmt.Sprintf("%s with identifier '%s' not found", resource, identifier)
	}
	e := New(message, http.StatusNotFound, opts...)
	e.Name = NameNotFound
	e.WithContext("resource", resource)
	if identifier != "" {
		e.WithContext("identifier", identifier)
	}
	return e
}

// NewConflict constructs the conflict variant (409).
func NewConflict(message string, opts ...Option) *Error {
	if message == "" {
		message = "The request conflicts with the current state of the resource"
	}
	e := New(message, http.StatusConflict, opts...)
	e.Name = NameConflict
	return e
}

// newInternal constructs the 500 non-operational conversion target for
// unrecognized failures.
func newInternal(message string, cause error) *Error {
	if message == "" {
		message = "Internal server error"
	}
	e := New(message, http.StatusInternalServerError, NonOperational(), WithCause(cause))
	e.Name = NameInternal
	return e
}
