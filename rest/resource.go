package rest

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/paperleaf/bookshop"
)

// Strategy configures one resource for the generic controller: its
// record type T, its request payload type P, whether queries are
// scoped to the caller, and the hooks that decode, validate, persist,
// and serialize. Every hook is required; NewController fails fast on
// a missing one instead of probing at request time.
type Strategy[T, P any] struct {
	Name   string
	Scoped bool

	// Decode binds and validates the request payload for create and
	// update.
	Decode func(c *fiber.Ctx) (P, error)

	List     func(ctx context.Context, owner *bookshop.User) ([]T, error)
	Retrieve func(ctx context.Context, id uuid.UUID, owner *bookshop.User) (T, error)
	Create   func(ctx context.Context, owner *bookshop.User, payload P) (T, error)
	Update   func(ctx context.Context, id uuid.UUID, owner *bookshop.User, payload P) (T, error)

	// Delete receives the raw request body; resources that accept
	// deletion arguments (cart adjustments) parse it, the rest
	// ignore it.
	Delete func(ctx context.Context, id uuid.UUID, owner *bookshop.User, body []byte) error

	Serialize func(record T) any
}

// Controller dispatches list/retrieve/create/update/delete for one
// configured resource.
type Controller[T, P any] struct {
	strategy Strategy[T, P]
}

// NewController validates the strategy and builds its controller.
func NewController[T, P any](s Strategy[T, P]) (*Controller[T, P], error) {
	if s.Name == "" {
		return nil, errors.New("resource strategy requires a name", errors.CategoryInternal)
	}

	hooks := map[string]bool{
		"Decode":    s.Decode == nil,
		"List":      s.List == nil,
		"Retrieve":  s.Retrieve == nil,
		"Create":    s.Create == nil,
		"Update":    s.Update == nil,
		"Delete":    s.Delete == nil,
		"Serialize": s.Serialize == nil,
	}
	for name, missing := range hooks {
		if missing {
			return nil, errors.New(
				fmt.Sprintf("resource %q strategy is missing the %s hook", s.Name, name),
				errors.CategoryInternal,
			)
		}
	}

	return &Controller[T, P]{strategy: s}, nil
}

// MustController is NewController that panics on a bad strategy, for
// wiring at startup.
func MustController[T, P any](s Strategy[T, P]) *Controller[T, P] {
	ctrl, err := NewController(s)
	if err != nil {
		panic(err)
	}
	return ctrl
}

// Register mounts the CRUD handlers on the given router group.
func (ct *Controller[T, P]) Register(r fiber.Router) {
	r.Get("/", ct.List)
	r.Post("/", ct.Create)
	r.Get("/:id", ct.Retrieve)
	r.Put("/:id", ct.Update)
	r.Delete("/:id", ct.Delete)
}

func (ct *Controller[T, P]) List(c *fiber.Ctx) error {
	owner, err := ct.owner(c)
	if err != nil {
		return err
	}

	records, err := ct.strategy.List(c.UserContext(), owner)
	if err != nil {
		return err
	}

	out := make([]any, 0, len(records))
	for _, record := range records {
		out = append(out, ct.strategy.Serialize(record))
	}

	return c.JSON(out)
}

func (ct *Controller[T, P]) Retrieve(c *fiber.Ctx) error {
	owner, err := ct.owner(c)
	if err != nil {
		return err
	}

	id, err := ct.recordID(c)
	if err != nil {
		return err
	}

	record, err := ct.strategy.Retrieve(c.UserContext(), id, owner)
	if err != nil {
		return err
	}

	return c.JSON(ct.strategy.Serialize(record))
}

func (ct *Controller[T, P]) Create(c *fiber.Ctx) error {
	owner, err := ct.owner(c)
	if err != nil {
		return err
	}

	payload, err := ct.strategy.Decode(c)
	if err != nil {
		return err
	}

	record, err := ct.strategy.Create(c.UserContext(), owner, payload)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(ct.strategy.Serialize(record))
}

func (ct *Controller[T, P]) Update(c *fiber.Ctx) error {
	owner, err := ct.owner(c)
	if err != nil {
		return err
	}

	id, err := ct.recordID(c)
	if err != nil {
		return err
	}

	payload, err := ct.strategy.Decode(c)
	if err != nil {
		return err
	}

	record, err := ct.strategy.Update(c.UserContext(), id, owner, payload)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(ct.strategy.Serialize(record))
}

func (ct *Controller[T, P]) Delete(c *fiber.Ctx) error {
	owner, err := ct.owner(c)
	if err != nil {
		return err
	}

	id, err := ct.recordID(c)
	if err != nil {
		return err
	}

	if err := ct.strategy.Delete(c.UserContext(), id, owner, c.Body()); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (ct *Controller[T, P]) owner(c *fiber.Ctx) (*bookshop.User, error) {
	if !ct.strategy.Scoped {
		return nil, nil
	}
	return CurrentUser(c)
}

// recordID parses the :id path segment. Unparseable ids behave like
// absent records.
func (ct *Controller[T, P]) recordID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.Wrap(bookshop.ErrNotFound, bookshop.ErrNotFound.Category, ct.strategy.Name+" not found").
			WithCode(errors.CodeNotFound).
			WithTextCode(bookshop.ErrNotFound.TextCode)
	}
	return id, nil
}

func decodeJSON[P any](c *fiber.Ctx, payload *P) error {
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}
	return nil
}

func validationError(err error) error {
	return errors.Wrap(err, errors.CategoryValidation, "validation failed").
		WithCode(errors.CodeBadRequest).
		WithMetadata(map[string]any{
			"fields": err.Error(),
		})
}
