package rest

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/paperleaf/bookshop"
)

// BookPayload is the write shape for inventory records.
type BookPayload struct {
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Validate will run validation rules
func (p BookPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(
			&p.Title,
			validation.Required,
			validation.Length(1, 100),
		),
		validation.Field(
			&p.Author,
			validation.Required,
			validation.Length(1, 100),
		),
		validation.Field(
			&p.Price,
			validation.Required,
			validation.Min(0.0),
		),
		validation.Field(
			&p.Quantity,
			validation.Min(0),
		),
	)
}

// BookStrategy configures the public inventory resource. Listing and
// retrieval are unscoped: the catalogue is visible to everyone.
func BookStrategy(repo bookshop.Books) Strategy[*bookshop.Book, BookPayload] {
	return Strategy[*bookshop.Book, BookPayload]{
		Name:   "book",
		Scoped: false,

		Decode: func(c *fiber.Ctx) (BookPayload, error) {
			payload := BookPayload{}
			if err := decodeJSON(c, &payload); err != nil {
				return payload, err
			}
			if err := payload.Validate(); err != nil {
				return payload, validationError(err)
			}
			return payload, nil
		},

		List: func(ctx context.Context, _ *bookshop.User) ([]*bookshop.Book, error) {
			return repo.List(ctx)
		},

		Retrieve: func(ctx context.Context, id uuid.UUID, _ *bookshop.User) (*bookshop.Book, error) {
			book, err := repo.GetByID(ctx, id)
			if err != nil {
				return nil, bookNotFound(err)
			}
			return book, nil
		},

		Create: func(ctx context.Context, _ *bookshop.User, payload BookPayload) (*bookshop.Book, error) {
			return repo.Create(ctx, &bookshop.Book{
				Title:    payload.Title,
				Author:   payload.Author,
				Price:    payload.Price,
				Quantity: payload.Quantity,
			})
		},

		Update: func(ctx context.Context, id uuid.UUID, _ *bookshop.User, payload BookPayload) (*bookshop.Book, error) {
			record, err := repo.GetByID(ctx, id)
			if err != nil {
				return nil, bookNotFound(err)
			}

			record.Title = payload.Title
			record.Author = payload.Author
			record.Price = payload.Price
			record.Quantity = payload.Quantity

			return repo.Update(ctx, record)
		},

		Delete: func(ctx context.Context, id uuid.UUID, _ *bookshop.User, _ []byte) error {
			if err := repo.Delete(ctx, id); err != nil {
				return bookNotFound(err)
			}
			return nil
		},

		Serialize: func(record *bookshop.Book) any {
			return record
		},
	}
}

func bookNotFound(err error) error {
	if errors.IsNotFound(err) {
		return errors.Wrap(bookshop.ErrNotFound, bookshop.ErrNotFound.Category, "book not found").
			WithCode(errors.CodeNotFound).
			WithTextCode(bookshop.ErrNotFound.TextCode)
	}
	return err
}
