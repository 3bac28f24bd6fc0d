package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/paperleaf/bookshop"
)

const userLocalKey = "bookshop_user"

// RequireAuth resolves the bearer token on the Authorization header
// to a user before dispatch. Every protected endpoint sits behind
// this; handlers read the user back with CurrentUser.
func RequireAuth(auther *bookshop.Auther) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := auther.ExtractToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}

		user, err := auther.ResolveIdentity(c.UserContext(), raw)
		if err != nil {
			return err
		}

		c.Locals(userLocalKey, user)
		return c.Next()
	}
}

// CurrentUser returns the authenticated user stashed by RequireAuth.
func CurrentUser(c *fiber.Ctx) (*bookshop.User, error) {
	user, ok := c.Locals(userLocalKey).(*bookshop.User)
	if !ok || user == nil {
		return nil, errors.New("no authenticated user on request", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(bookshop.TextCodeUnauthenticated)
	}
	return user, nil
}
