package bookshop

import (
	"context"
	"database/sql"
	"errors"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the account store surface the auth and verification flows
// consume.
type Users interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, record *User) (*User, error)
	SetVerified(ctx context.Context, id uuid.UUID) (*User, error)
	TrackLogin(ctx context.Context, user *User) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository builds the bun-backed Users store.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (r *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapUserNotFound(err, "id", id.String())
	}
	return record, nil
}

func (r *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	record := &User{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapUserNotFound(err, "username", username)
	}
	return record, nil
}

func (r *users) Create(ctx context.Context, record *User) (*User, error) {
	prepareUserDefaults(record)
	return r.Repository.Create(ctx, record)
}

// SetVerified flips is_verified and returns the updated user. The
// write is idempotent: re-verifying an already verified user leaves
// the flag true.
func (r *users) SetVerified(ctx context.Context, id uuid.UUID) (*User, error) {
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	record.IsVerified = true
	_, err = r.db.NewUpdate().
		Model(record).
		Column("is_verified", "updated_at").
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (r *users) TrackLogin(ctx context.Context, user *User) error {
	loggedInAt := time.Now()
	_, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("loggedin_at = ?", loggedInAt).
		Where("?TableAlias.id = ?", user.ID).
		Exec(ctx)
	return err
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	// accounts start active and unverified; only the verification
	// flow flips IsVerified
	record.IsActive = true
	record.IsVerified = false
}

func wrapUserNotFound(err error, column, value string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				column: value,
			})
	}
	return err
}
