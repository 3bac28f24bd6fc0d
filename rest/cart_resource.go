package rest

import (
	"context"
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/paperleaf/bookshop"
)

// ItemPayload is one requested (book, quantity) pair.
type ItemPayload struct {
	Book     uuid.UUID `json:"book"`
	Quantity int       `json:"quantity"`
}

// Validate will run validation rules
func (p ItemPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(
			&p.Book,
			validation.Required,
		),
		validation.Field(
			&p.Quantity,
			validation.Required,
			validation.Min(1),
		),
	)
}

// AddItemsRequest payload for cart create and replace.
type AddItemsRequest struct {
	Books []ItemPayload `json:"books"`
}

// Validate will run validation rules
func (r AddItemsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Books,
			validation.Required,
		),
	)
}

func (r AddItemsRequest) items() []bookshop.ItemRequest {
	items := make([]bookshop.ItemRequest, 0, len(r.Books))
	for _, b := range r.Books {
		items = append(items, bookshop.ItemRequest{
			BookID:   b.Book,
			Quantity: b.Quantity,
		})
	}
	return items
}

// AdjustmentPayload removes quantity units from one cart line.
type AdjustmentPayload struct {
	CartItemID uuid.UUID `json:"cart_item_id"`
	Quantity   int       `json:"quantity"`
}

// Validate will run validation rules
func (p AdjustmentPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(
			&p.CartItemID,
			validation.Required,
		),
		validation.Field(
			&p.Quantity,
			validation.Required,
			validation.Min(1),
		),
	)
}

// CartStrategy configures the cart resource. Everything is scoped to
// the authenticated user; mutations go through the ledger so line
// reconciliation and stock checks apply on every path.
func CartStrategy(ledger *bookshop.CartLedger, repo bookshop.Carts) Strategy[*bookshop.Cart, AddItemsRequest] {
	return Strategy[*bookshop.Cart, AddItemsRequest]{
		Name:   "cart",
		Scoped: true,

		Decode: func(c *fiber.Ctx) (AddItemsRequest, error) {
			payload := AddItemsRequest{}
			if err := decodeJSON(c, &payload); err != nil {
				return payload, err
			}
			if err := payload.Validate(); err != nil {
				return payload, validationError(err)
			}
			return payload, nil
		},

		List: func(ctx context.Context, owner *bookshop.User) ([]*bookshop.Cart, error) {
			return repo.List(ctx, owner.ID)
		},

		Retrieve: func(ctx context.Context, id uuid.UUID, owner *bookshop.User) (*bookshop.Cart, error) {
			cart, err := repo.GetByID(ctx, id, owner.ID)
			if err != nil {
				if errors.IsNotFound(err) {
					return nil, errors.Wrap(bookshop.ErrNotFound, bookshop.ErrNotFound.Category, "cart not found").
						WithCode(errors.CodeNotFound).
						WithTextCode(bookshop.ErrNotFound.TextCode)
				}
				return nil, err
			}
			return cart, nil
		},

		Create: func(ctx context.Context, owner *bookshop.User, payload AddItemsRequest) (*bookshop.Cart, error) {
			return ledger.AddItems(ctx, owner, payload.items())
		},

		Update: func(ctx context.Context, id uuid.UUID, owner *bookshop.User, payload AddItemsRequest) (*bookshop.Cart, error) {
			return ledger.ReplaceItems(ctx, owner, id, payload.items())
		},

		Delete: func(ctx context.Context, id uuid.UUID, owner *bookshop.User, body []byte) error {
			adjustments, err := decodeAdjustments(body)
			if err != nil {
				return err
			}
			return ledger.RemoveOrAdjust(ctx, owner, id, adjustments)
		},

		Serialize: serializeCart,
	}
}

// decodeAdjustments parses the optional DELETE body. An empty body
// means no adjustments, which empties or deletes the cart.
func decodeAdjustments(body []byte) ([]bookshop.Adjustment, error) {
	if len(body) == 0 {
		return nil, nil
	}

	var payload []AdjustmentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	adjustments := make([]bookshop.Adjustment, 0, len(payload))
	for _, p := range payload {
		if err := p.Validate(); err != nil {
			return nil, validationError(err)
		}
		adjustments = append(adjustments, bookshop.Adjustment{
			CartItemID: p.CartItemID,
			Quantity:   p.Quantity,
		})
	}

	return adjustments, nil
}

func serializeCart(cart *bookshop.Cart) any {
	items := make([]fiber.Map, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, fiber.Map{
			"id":          line.ID,
			"book":        line.Book,
			"quantity":    line.Quantity,
			"total_price": line.TotalPrice(),
		})
	}

	return fiber.Map{
		"id":          cart.ID,
		"user_id":     cart.UserID,
		"is_ordered":  cart.IsOrdered,
		"items":       items,
		"total_price": cart.TotalPrice(),
	}
}

// CheckoutHandler marks the addressed open cart ordered. Payment is
// a stub: checkout only flips the cart state.
func CheckoutHandler(ledger *bookshop.CartLedger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}

		cartID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return errors.Wrap(bookshop.ErrNotFound, bookshop.ErrNotFound.Category, "cart not found").
				WithCode(errors.CodeNotFound).
				WithTextCode(bookshop.ErrNotFound.TextCode)
		}

		msg, err := ledger.Checkout(c.UserContext(), user, cartID)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{"detail": msg})
	}
}
