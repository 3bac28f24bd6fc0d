package bookshop

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

// Auther resolves bearer credentials to users and authenticates
// username/password logins.
type Auther struct {
	users  Users
	tokens *TokenService
	scheme string
	logger Logger
}

// NewAuther returns a new Auther
func NewAuther(users Users, tokens *TokenService, cfg Config) *Auther {
	return &Auther{
		users:  users,
		tokens: tokens,
		scheme: cfg.GetAuthScheme(),
		logger: defLogger{},
	}
}

func (a *Auther) WithLogger(logger Logger) *Auther {
	a.logger = logger
	return a
}

// ExtractToken pulls the raw token out of an auth header value. A
// two-part "scheme token" value must carry the configured scheme; a
// bare single-part value is accepted as the raw token.
func (a *Auther) ExtractToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) == 0 {
		return "", errors.Wrap(ErrUnauthenticated, ErrUnauthenticated.Category, "token not provided").
			WithCode(errors.CodeUnauthorized).
			WithTextCode(ErrUnauthenticated.TextCode)
	}

	if len(parts) == 2 && parts[0] != a.scheme {
		return "", errors.Wrap(ErrUnauthenticated, ErrUnauthenticated.Category, "invalid auth scheme used").
			WithCode(errors.CodeUnauthorized).
			WithTextCode(ErrUnauthenticated.TextCode)
	}

	if len(parts) == 2 {
		return parts[1], nil
	}

	return parts[0], nil
}

// ResolveIdentity decodes an AUTH-audience token and loads the user
// it identifies. Users that are neither active nor verified cannot
// authenticate.
func (a *Auther) ResolveIdentity(ctx context.Context, rawToken string) (*User, error) {
	claims, err := a.tokens.Decode(rawToken, AudienceAuth)
	if err != nil {
		return nil, err
	}

	userID, err := SubjectID(claims)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Wrap(ErrUnauthenticated, ErrUnauthenticated.Category, "user not found").
				WithCode(errors.CodeUnauthorized).
				WithTextCode(ErrUnauthenticated.TextCode)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}

	if !user.IsActive && !user.IsVerified {
		return nil, errors.Wrap(ErrUnauthenticated, ErrUnauthenticated.Category, "user not verified").
			WithCode(errors.CodeUnauthorized).
			WithTextCode(ErrUnauthenticated.TextCode)
	}

	return user, nil
}

// Login checks the password for the given username and returns the
// user plus an AUTH token. The token is empty until the user has
// verified their account.
func (a *Auther) Login(ctx context.Context, username, password string) (*User, string, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, "", ErrUnauthenticated
		}
		return nil, "", errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		a.logger.Info("Login password mismatch for %s", username)
		return nil, "", ErrUnauthenticated
	}

	if err := a.users.TrackLogin(ctx, user); err != nil {
		// login bookkeeping must not block a valid login
		a.logger.Error("Login tracking failed: %s", err)
	}
	now := time.Now()
	user.LoggedInAt = &now

	if !user.IsVerified {
		return user, "", nil
	}

	token, err := a.tokens.AuthToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
