package bookshop

import (
	"context"
	"database/sql"
	"errors"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Books is the inventory store.
type Books interface {
	List(ctx context.Context) ([]*Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)
	Create(ctx context.Context, record *Book) (*Book, error)
	Update(ctx context.Context, record *Book) (*Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type books struct {
	repository.Repository[*Book]
	db *bun.DB
}

var _ Books = (*books)(nil)

// NewBooksRepository builds the bun-backed Books store.
func NewBooksRepository(db *bun.DB) Books {
	repo := repository.NewRepository[*Book](db, repository.ModelHandlers[*Book]{
		NewRecord: func() *Book { return &Book{} },
		GetID: func(b *Book) uuid.UUID {
			if b == nil {
				return uuid.Nil
			}
			return b.ID
		},
		SetID: func(b *Book, id uuid.UUID) {
			if b != nil {
				b.ID = id
			}
		},
	})

	return &books{
		Repository: repo,
		db:         db,
	}
}

func (r *books) List(ctx context.Context) ([]*Book, error) {
	var records []*Book
	err := r.db.NewSelect().
		Model(&records).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *books) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	record := &Book{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}
	return record, nil
}

func (r *books) Create(ctx context.Context, record *Book) (*Book, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.Repository.Create(ctx, record)
}

func (r *books) Update(ctx context.Context, record *Book) (*Book, error) {
	// full replace: retrieval already confirmed the record exists
	return r.Repository.Update(ctx, record, repository.UpdateByID(record.ID.String()))
}

func (r *books) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}
