package bookshop

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Audience scopes a token to the single flow allowed to accept it.
type Audience string

const (
	// AudienceAuth is carried by login tokens
	AudienceAuth Audience = "auth"
	// AudienceVerifyUser is carried by account verification tokens
	AudienceVerifyUser Audience = "verify_user"
	// AudienceTest is reserved for tests
	AudienceTest Audience = "test"
)

// ClaimUserID is the claim naming the token's subject
const ClaimUserID = "user_id"

// TokenService encodes and decodes signed, audience-scoped tokens
// using a process-wide HMAC secret.
type TokenService struct {
	signingKey    []byte
	issuer        string
	defaultExpiry time.Duration
	authExpiry    time.Duration
	logger        Logger
}

// NewTokenService creates a TokenService from cfg. Only HMAC signing
// is supported; any other configured method fails here rather than
// at first use.
func NewTokenService(cfg Config, logger Logger) (*TokenService, error) {
	if logger == nil {
		logger = defLogger{}
	}

	if cfg.GetSigningMethod() != jwt.SigningMethodHS256.Alg() {
		return nil, errors.New(
			fmt.Sprintf("unsupported signing method: %s", cfg.GetSigningMethod()),
			errors.CategoryInternal,
		)
	}

	if cfg.GetSigningKey() == "" {
		return nil, errors.New("signing key must not be empty", errors.CategoryInternal)
	}

	return &TokenService{
		signingKey:    []byte(cfg.GetSigningKey()),
		issuer:        cfg.GetIssuer(),
		defaultExpiry: cfg.GetTokenExpiration(),
		authExpiry:    cfg.GetAuthTokenExpiration(),
		logger:        logger,
	}, nil
}

// Encode stamps the claims with audience, issuer, issued-at, and
// expiry, then signs them. A zero exp falls back to the configured
// default duration from now.
func (ts *TokenService) Encode(claims jwt.MapClaims, aud Audience, exp time.Time) (string, error) {
	if claims == nil {
		claims = jwt.MapClaims{}
	}

	now := time.Now()
	if exp.IsZero() {
		exp = now.Add(ts.defaultExpiry)
	}

	claims["aud"] = string(aud)
	claims["iss"] = ts.issuer
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(exp)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Decode verifies signature, issuer, expiry, and that the token was
// encoded for the requested audience. Every failure mode surfaces as
// ErrTokenInvalid.
func (ts *TokenService) Decode(tokenString string, aud Audience) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService decode rejected signing method %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	},
		jwt.WithIssuer(ts.issuer),
		jwt.WithAudience(string(aud)),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		return nil, errors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(ErrTokenInvalid.TextCode)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService decode could not map claims")
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// AuthToken issues an AUTH-audience token identifying the given user.
func (ts *TokenService) AuthToken(userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", errors.New("recognizable user identification not found", errors.CategoryValidation).
			WithTextCode(TextCodeTokenInvalid)
	}

	exp := time.Now().Add(ts.authExpiry)
	return ts.Encode(jwt.MapClaims{ClaimUserID: userID.String()}, AudienceAuth, exp)
}

// SubjectID extracts and parses the user id claim from decoded
// claims. Fails with ErrTokenInvalid when absent or malformed.
func SubjectID(claims jwt.MapClaims) (uuid.UUID, error) {
	raw, ok := claims[ClaimUserID].(string)
	if !ok {
		return uuid.Nil, errors.Wrap(
			ErrTokenInvalid,
			ErrTokenInvalid.Category,
			"token contained no recognizable user identification",
		).WithTextCode(ErrTokenInvalid.TextCode)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithTextCode(ErrTokenInvalid.TextCode)
	}

	return id, nil
}
