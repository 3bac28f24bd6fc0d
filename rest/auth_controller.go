package rest

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/paperleaf/bookshop"
)

// AuthController serves registration, login, and the verification
// link.
type AuthController struct {
	Users    bookshop.Users
	Auther   *bookshop.Auther
	Verifier *bookshop.Verifier
	Logger   bookshop.Logger
}

// NewAuthController wires the auth endpoints; all collaborators are
// required.
func NewAuthController(users bookshop.Users, auther *bookshop.Auther, verifier *bookshop.Verifier, logger bookshop.Logger) *AuthController {
	if users == nil {
		panic("Missing Users repository in auth controller...")
	}
	if auther == nil {
		panic("Missing Auther in auth controller...")
	}
	if verifier == nil {
		panic("Missing Verifier in auth controller...")
	}

	return &AuthController{
		Users:    users,
		Auther:   auther,
		Verifier: verifier,
		Logger:   logger,
	}
}

// RegistrationRequest payload. First and last name are accepted for
// compatibility but not written; the password never appears in
// responses.
type RegistrationRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
}

// Validate will run validation rules
func (r RegistrationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(1, 150),
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, 128),
		),
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
	)
}

// RegistrationResponse is the created account without credentials.
type RegistrationResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// Register creates an unverified account and triggers the
// verification mail. The mail is requested here, explicitly, exactly
// once per created account.
func (a *AuthController) Register(c *fiber.Ctx) error {
	payload := RegistrationRequest{}
	if err := decodeJSON(c, &payload); err != nil {
		return err
	}

	if err := payload.Validate(); err != nil {
		return validationError(err)
	}

	hash, err := bookshop.HashPassword(payload.Password)
	if err != nil {
		return err
	}

	user, err := a.Users.Create(c.UserContext(), &bookshop.User{
		Username:     payload.Username,
		Email:        payload.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryConflict, "could not create user").
			WithCode(errors.CodeConflict)
	}

	if err := a.Verifier.Request(c.UserContext(), user); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(RegistrationResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// Login authenticates a username/password pair. Verified accounts
// get an AUTH token under data.access_token; unverified accounts get
// data null.
func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := LoginRequest{}
	if err := decodeJSON(c, &payload); err != nil {
		return err
	}

	if err := payload.Validate(); err != nil {
		return validationError(err)
	}

	_, token, err := a.Auther.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		return err
	}

	var data any
	if token != "" {
		data = fiber.Map{"access_token": token}
	}

	return c.JSON(fiber.Map{"data": data})
}

// Verify consumes a verification token from the emailed link and
// answers in plain text.
func (a *AuthController) Verify(c *fiber.Ctx) error {
	msg, err := a.Verifier.Consume(c.UserContext(), c.Params("token"))
	if err != nil {
		return err
	}

	return c.SendString(msg)
}
