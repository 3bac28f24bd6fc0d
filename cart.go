package bookshop

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ItemRequest asks for quantity units of a book.
type ItemRequest struct {
	BookID   uuid.UUID `json:"book"`
	Quantity int       `json:"quantity"`
}

// Adjustment removes quantity units from an existing cart line.
type Adjustment struct {
	CartItemID uuid.UUID `json:"cart_item_id"`
	Quantity   int       `json:"quantity"`
}

// CartLedger maintains each user's open cart: line reconciliation on
// repeated additions, partial removal, and the transition to ordered
// at checkout.
//
// The multi-step mutations below are sequential reads and writes
// without a wrapping transaction; concurrent requests against the
// same cart are not coordinated. RepositoryManager.RunInTx is the
// hook if that ever needs to change.
type CartLedger struct {
	carts  Carts
	books  Books
	logger Logger
}

// NewCartLedger returns a new CartLedger
func NewCartLedger(carts Carts, books Books) *CartLedger {
	return &CartLedger{
		carts:  carts,
		books:  books,
		logger: defLogger{},
	}
}

func (l *CartLedger) WithLogger(logger Logger) *CartLedger {
	l.logger = logger
	return l
}

// AddItems adds the requested books to the user's open cart, creating
// the cart when none exists. A request for a book already in the cart
// is a replenishment: the incoming quantity is checked against the
// book's current stock and, when it fits, added to the existing line.
//
// The replenishment check deliberately compares the incoming quantity
// to stock rather than the resulting line total; carts that grow one
// batch at a time can therefore exceed stock across calls.
func (l *CartLedger) AddItems(ctx context.Context, user *User, items []ItemRequest) (*Cart, error) {
	cart, err := l.openCart(ctx, user)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		book, err := l.books.GetByID(ctx, item.BookID)
		if err != nil {
			if errors.IsNotFound(err) {
				return nil, errors.Wrap(ErrNotFound, ErrNotFound.Category, "book not found").
					WithCode(errors.CodeNotFound).
					WithTextCode(ErrNotFound.TextCode).
					WithMetadata(map[string]any{"book": item.BookID.String()})
			}
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load book")
		}

		line, err := l.carts.GetLine(ctx, cart.ID, book.ID)
		if err != nil {
			if !errors.IsNotFound(err) {
				return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load cart line")
			}

			_, err = l.carts.CreateLine(ctx, &CartItem{
				CartID:   cart.ID,
				UserID:   user.ID,
				BookID:   book.ID,
				Quantity: item.Quantity,
			})
			if err != nil {
				return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create cart line")
			}
			continue
		}

		if item.Quantity > book.Quantity {
			return nil, NewInsufficientStockError(book.Title, book.Quantity)
		}

		if err := l.carts.UpdateLineQuantity(ctx, line.ID, line.Quantity+item.Quantity); err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update cart line")
		}
	}

	return l.carts.GetOpenByID(ctx, cart.ID, user.ID)
}

// ReplaceItems makes the open cart hold exactly the given items:
// lines for absent books are removed, the rest are set to the
// requested quantities.
func (l *CartLedger) ReplaceItems(ctx context.Context, user *User, cartID uuid.UUID, items []ItemRequest) (*Cart, error) {
	cart, err := l.carts.GetOpenByID(ctx, cartID, user.ID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, cartNotFound(cartID)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load cart")
	}

	desired := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		desired[item.BookID] += item.Quantity
	}

	for _, line := range cart.Items {
		if _, keep := desired[line.BookID]; keep {
			continue
		}
		if err := l.carts.DeleteLine(ctx, line.ID); err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to remove cart line")
		}
	}

	for bookID, quantity := range desired {
		book, err := l.books.GetByID(ctx, bookID)
		if err != nil {
			if errors.IsNotFound(err) {
				return nil, errors.Wrap(ErrNotFound, ErrNotFound.Category, "book not found").
					WithCode(errors.CodeNotFound).
					WithTextCode(ErrNotFound.TextCode).
					WithMetadata(map[string]any{"book": bookID.String()})
			}
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load book")
		}

		if line := cart.Line(book.ID); line != nil {
			if err := l.carts.UpdateLineQuantity(ctx, line.ID, quantity); err != nil {
				return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update cart line")
			}
			continue
		}

		_, err = l.carts.CreateLine(ctx, &CartItem{
			CartID:   cart.ID,
			UserID:   user.ID,
			BookID:   book.ID,
			Quantity: quantity,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create cart line")
		}
	}

	return l.carts.GetOpenByID(ctx, cart.ID, user.ID)
}

// RemoveOrAdjust decrements cart lines by the given adjustments. A
// line decremented to zero is removed; a cart with no lines is
// deleted outright before any adjustments are considered.
func (l *CartLedger) RemoveOrAdjust(ctx context.Context, user *User, cartID uuid.UUID, adjustments []Adjustment) error {
	cart, err := l.carts.GetOpenByID(ctx, cartID, user.ID)
	if err != nil {
		if errors.IsNotFound(err) {
			return cartNotFound(cartID)
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load cart")
	}

	if len(cart.Items) == 0 {
		if err := l.carts.Delete(ctx, cart.ID); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to delete cart")
		}
		return nil
	}

	for _, adj := range adjustments {
		line, err := l.carts.GetLineByID(ctx, cart.ID, adj.CartItemID)
		if err != nil {
			if errors.IsNotFound(err) {
				return errors.Wrap(ErrNotFound, ErrNotFound.Category, "cart item not found").
					WithCode(errors.CodeNotFound).
					WithTextCode(ErrNotFound.TextCode).
					WithMetadata(map[string]any{"cart_item": adj.CartItemID.String()})
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to load cart line")
		}

		if adj.Quantity > line.Quantity {
			return NewInsufficientQuantityError(line.Quantity, adj.Quantity)
		}

		remaining := line.Quantity - adj.Quantity
		if remaining == 0 {
			if err := l.carts.DeleteLine(ctx, line.ID); err != nil {
				return errors.Wrap(err, errors.CategoryInternal, "failed to remove cart line")
			}
			continue
		}

		if err := l.carts.UpdateLineQuantity(ctx, line.ID, remaining); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to update cart line")
		}
	}

	return nil
}

// Checkout flips the user's open cart to ordered. Carts that do not
// exist, belong to someone else, or were already ordered all fail
// with not-found; the transition is irreversible. Payment is out of
// scope: nothing is charged here.
func (l *CartLedger) Checkout(ctx context.Context, user *User, cartID uuid.UUID) (string, error) {
	cart, err := l.carts.GetOpenByID(ctx, cartID, user.ID)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", cartNotFound(cartID)
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to load cart")
	}

	if err := l.carts.MarkOrdered(ctx, cart); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to mark cart ordered")
	}

	l.logger.Info("Cart %s checked out by %s", cart.ID, user.Username)
	return fmt.Sprintf("order placed for cart %s", cart.ID), nil
}

func (l *CartLedger) openCart(ctx context.Context, user *User) (*Cart, error) {
	cart, err := l.carts.GetOpen(ctx, user.ID)
	if err == nil {
		return cart, nil
	}

	if !errors.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load cart")
	}

	cart, err = l.carts.Create(ctx, &Cart{UserID: user.ID})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create cart")
	}

	return cart, nil
}

func cartNotFound(cartID uuid.UUID) error {
	return errors.Wrap(ErrNotFound, ErrNotFound.Category, "cart not found").
		WithCode(errors.CodeNotFound).
		WithTextCode(ErrNotFound.TextCode).
		WithMetadata(map[string]any{"cart": cartID.String()})
}
