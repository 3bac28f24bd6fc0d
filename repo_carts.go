package bookshop

import (
	"context"
	"database/sql"
	"errors"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Carts is the cart and cart-line store the ledger drives. Loaded
// carts always come back with their lines and line books attached.
type Carts interface {
	List(ctx context.Context, userID uuid.UUID) ([]*Cart, error)
	GetOpen(ctx context.Context, userID uuid.UUID) (*Cart, error)
	GetOpenByID(ctx context.Context, id, userID uuid.UUID) (*Cart, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*Cart, error)
	Create(ctx context.Context, record *Cart) (*Cart, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkOrdered(ctx context.Context, cart *Cart) error

	GetLine(ctx context.Context, cartID, bookID uuid.UUID) (*CartItem, error)
	GetLineByID(ctx context.Context, cartID, lineID uuid.UUID) (*CartItem, error)
	CreateLine(ctx context.Context, record *CartItem) (*CartItem, error)
	UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
}

type carts struct {
	repository.Repository[*Cart]
	db *bun.DB
}

var _ Carts = (*carts)(nil)

// NewCartsRepository builds the bun-backed Carts store.
func NewCartsRepository(db *bun.DB) Carts {
	repo := repository.NewRepository[*Cart](db, repository.ModelHandlers[*Cart]{
		NewRecord: func() *Cart { return &Cart{} },
		GetID: func(c *Cart) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Cart, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
	})

	return &carts{
		Repository: repo,
		db:         db,
	}
}

func (r *carts) List(ctx context.Context, userID uuid.UUID) ([]*Cart, error) {
	var records []*Cart
	err := r.db.NewSelect().
		Model(&records).
		Relation("Items").
		Relation("Items.Book").
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *carts) GetOpen(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	record := &Cart{}
	err := r.db.NewSelect().
		Model(record).
		Relation("Items").
		Relation("Items.Book").
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.is_ordered = ?", false).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapCartNotFound(err, map[string]any{"user_id": userID.String()})
	}
	return record, nil
}

func (r *carts) GetOpenByID(ctx context.Context, id, userID uuid.UUID) (*Cart, error) {
	record := &Cart{}
	err := r.db.NewSelect().
		Model(record).
		Relation("Items").
		Relation("Items.Book").
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.is_ordered = ?", false).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapCartNotFound(err, map[string]any{"id": id.String()})
	}
	return record, nil
}

func (r *carts) GetByID(ctx context.Context, id, userID uuid.UUID) (*Cart, error) {
	record := &Cart{}
	err := r.db.NewSelect().
		Model(record).
		Relation("Items").
		Relation("Items.Book").
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapCartNotFound(err, map[string]any{"id": id.String()})
	}
	return record, nil
}

func (r *carts) Create(ctx context.Context, record *Cart) (*Cart, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.Repository.Create(ctx, record)
}

func (r *carts) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.NewDelete().
		Model((*CartItem)(nil)).
		Where("cart_id = ?", id).
		Exec(ctx); err != nil {
		return err
	}

	_, err := r.db.NewDelete().
		Model((*Cart)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *carts) MarkOrdered(ctx context.Context, cart *Cart) error {
	cart.IsOrdered = true
	_, err := r.db.NewUpdate().
		Model(cart).
		Column("is_ordered", "updated_at").
		Where("?TableAlias.id = ?", cart.ID).
		Exec(ctx)
	return err
}

func (r *carts) GetLine(ctx context.Context, cartID, bookID uuid.UUID) (*CartItem, error) {
	record := &CartItem{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.cart_id = ?", cartID).
		Where("?TableAlias.book_id = ?", bookID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapCartNotFound(err, map[string]any{
			"cart_id": cartID.String(),
			"book_id": bookID.String(),
		})
	}
	return record, nil
}

func (r *carts) GetLineByID(ctx context.Context, cartID, lineID uuid.UUID) (*CartItem, error) {
	record := &CartItem{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", lineID).
		Where("?TableAlias.cart_id = ?", cartID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapCartNotFound(err, map[string]any{
			"cart_id": cartID.String(),
			"id":      lineID.String(),
		})
	}
	return record, nil
}

func (r *carts) CreateLine(ctx context.Context, record *CartItem) (*CartItem, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *carts) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	_, err := r.db.NewUpdate().
		Model((*CartItem)(nil)).
		Set("quantity = ?", quantity).
		Where("id = ?", lineID).
		Exec(ctx)
	return err
}

func (r *carts) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*CartItem)(nil)).
		Where("id = ?", lineID).
		Exec(ctx)
	return err
}

func wrapCartNotFound(err error, metadata map[string]any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.NewRecordNotFound().WithMetadata(metadata)
	}
	return err
}
