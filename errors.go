package bookshop

import (
	"github.com/goliatone/go-errors"
)

// Text codes carried on rich errors so transports can map failures
// without string matching.
const (
	TextCodeUnauthenticated      = "UNAUTHENTICATED"
	TextCodeTokenInvalid         = "TOKEN_INVALID"
	TextCodeNotFound             = "NOT_FOUND"
	TextCodeInsufficientStock    = "INSUFFICIENT_STOCK"
	TextCodeInsufficientQuantity = "INSUFFICIENT_QUANTITY"
	TextCodeEmptyPassword        = "EMPTY_PASSWORD"
	TextCodePasswordMismatch     = "PASSWORD_MISMATCH"
)

// ErrUnauthenticated covers missing, malformed, or wrong-scheme
// credentials, and identities that cannot be used to authenticate.
var ErrUnauthenticated = errors.New("authentication credentials were not provided", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeUnauthenticated)

// ErrTokenInvalid covers bad signatures, expired tokens, wrong
// audiences, and missing required claims.
var ErrTokenInvalid = errors.New("token is invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenInvalid)

// ErrNotFound is returned for records that are absent or not owned
// by the caller.
var ErrNotFound = errors.New("record not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode(TextCodeNotFound)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeEmptyPassword)

// ErrMismatchedHashAndPassword is returned when a cleartext password
// does not match the stored hash
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodePasswordMismatch)

// NewInsufficientStockError reports a replenishment request that
// exceeds the book's current stock.
func NewInsufficientStockError(title string, stock int) *errors.Error {
	return errors.New("not enough stock of "+title, errors.CategoryConflict).
		WithCode(errors.CodeConflict).
		WithTextCode(TextCodeInsufficientStock).
		WithMetadata(map[string]any{
			"book":  title,
			"stock": stock,
		})
}

// NewInsufficientQuantityError reports a cart adjustment that removes
// more units than the line currently holds.
func NewInsufficientQuantityError(lineQuantity, requested int) *errors.Error {
	return errors.New("cannot remove more items than the cart holds", errors.CategoryConflict).
		WithCode(errors.CodeConflict).
		WithTextCode(TextCodeInsufficientQuantity).
		WithMetadata(map[string]any{
			"quantity":  lineQuantity,
			"requested": requested,
		})
}

// HasTextCode reports whether err carries the given text code.
func HasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}
