package bookshop

import (
	"context"
	"fmt"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"

	"github.com/paperleaf/bookshop/mailer"
)

// VerificationTokenTTL bounds how long a verification link stays
// usable.
const VerificationTokenTTL = 30 * time.Minute

// Verifier runs the account verification flow: it issues a
// VERIFY_USER-audience token when an account is created and consumes
// it when the user clicks the emailed link.
type Verifier struct {
	users   Users
	tokens  *TokenService
	mail    mailer.Sender
	baseURL string
	logger  Logger
}

// NewVerifier returns a new Verifier. baseURL is the public address
// the verification link points back to.
func NewVerifier(users Users, tokens *TokenService, mail mailer.Sender, baseURL string) *Verifier {
	return &Verifier{
		users:   users,
		tokens:  tokens,
		mail:    mail,
		baseURL: baseURL,
		logger:  defLogger{},
	}
}

func (v *Verifier) WithLogger(logger Logger) *Verifier {
	v.logger = logger
	return v
}

// Request issues a verification token for a freshly created user and
// mails the verification link. The registration handler invokes this
// exactly once per created account.
func (v *Verifier) Request(ctx context.Context, user *User) error {
	claims := jwt.MapClaims{
		"username":  user.Username,
		ClaimUserID: user.ID.String(),
	}

	token, err := v.tokens.Encode(claims, AudienceVerifyUser, time.Now().Add(VerificationTokenTTL))
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to issue verification token")
	}

	msg := mailer.Verification(v.baseURL, token, user.Username, user.Email)
	if err := v.mail.Send(ctx, msg); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to send verification email")
	}

	v.logger.Info("Verification mail sent to %s", user.Email)
	return nil
}

// Consume decodes a verification token, marks the user verified, and
// returns a human-readable confirmation. Re-consuming a token for an
// already verified user re-sets the same flag.
func (v *Verifier) Consume(ctx context.Context, rawToken string) (string, error) {
	claims, err := v.tokens.Decode(rawToken, AudienceVerifyUser)
	if err != nil {
		return "", err
	}

	userID, err := SubjectID(claims)
	if err != nil {
		return "", err
	}

	user, err := v.users.SetVerified(ctx, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", errors.Wrap(ErrNotFound, ErrNotFound.Category, "user not found").
				WithCode(errors.CodeNotFound).
				WithTextCode(ErrNotFound.TextCode)
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to mark user verified")
	}

	return fmt.Sprintf("%s is verified", capitalize(user.Username)), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
