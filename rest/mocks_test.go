package rest_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/paperleaf/bookshop"
	"github.com/paperleaf/bookshop/mailer"
	"github.com/paperleaf/bookshop/rest"
)

type testConfig struct{}

func (testConfig) GetSigningKey() string                 { return "test-signing-key" }
func (testConfig) GetSigningMethod() string              { return "HS256" }
func (testConfig) GetIssuer() string                     { return "bookshop-test" }
func (testConfig) GetAuthScheme() string                 { return "Bearer" }
func (testConfig) GetTokenExpiration() time.Duration     { return 15 * time.Minute }
func (testConfig) GetAuthTokenExpiration() time.Duration { return time.Hour }

func notFound() error {
	return repository.NewRecordNotFound()
}

// MockUsers implements bookshop.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByID(ctx context.Context, id uuid.UUID) (*bookshop.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*bookshop.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByUsername(ctx context.Context, username string) (*bookshop.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*bookshop.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *bookshop.User) (*bookshop.User, error) {
	args := m.Called(ctx, record)
	if u := args.Get(0); u != nil {
		return u.(*bookshop.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) SetVerified(ctx context.Context, id uuid.UUID) (*bookshop.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*bookshop.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) TrackLogin(ctx context.Context, user *bookshop.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockBooks implements bookshop.Books
type MockBooks struct {
	mock.Mock
}

func (m *MockBooks) List(ctx context.Context) ([]*bookshop.Book, error) {
	args := m.Called(ctx)
	if b := args.Get(0); b != nil {
		return b.([]*bookshop.Book), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBooks) GetByID(ctx context.Context, id uuid.UUID) (*bookshop.Book, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*bookshop.Book), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBooks) Create(ctx context.Context, record *bookshop.Book) (*bookshop.Book, error) {
	args := m.Called(ctx, record)
	if b := args.Get(0); b != nil {
		return b.(*bookshop.Book), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBooks) Update(ctx context.Context, record *bookshop.Book) (*bookshop.Book, error) {
	args := m.Called(ctx, record)
	if b := args.Get(0); b != nil {
		return b.(*bookshop.Book), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBooks) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCarts implements bookshop.Carts
type MockCarts struct {
	mock.Mock
}

func (m *MockCarts) List(ctx context.Context, userID uuid.UUID) ([]*bookshop.Cart, error) {
	args := m.Called(ctx, userID)
	if c := args.Get(0); c != nil {
		return c.([]*bookshop.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCarts) GetOpen(ctx context.Context, userID uuid.UUID) (*bookshop.Cart, error) {
	args := m.Called(ctx, userID)
	if c := args.Get(0); c != nil {
		return c.(*bookshop.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCarts) GetOpenByID(ctx context.Context, id, userID uuid.UUID) (*bookshop.Cart, error) {
	args := m.Called(ctx, id, userID)
	if c := args.Get(0); c != nil {
		return c.(*bookshop.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCarts) GetByID(ctx context.Context, id, userID uuid.UUID) (*bookshop.Cart, error) {
	args := m.Called(ctx, id, userID)
	if c := args.Get(0); c != nil {
		return c.(*bookshop.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCarts) Create(ctx context.Context, record *bookshop.Cart) (*bookshop.Cart, error) {
	args := m.Called(ctx, record)
	if c := args.Get(0); c != nil {
		return c.(*bookshop.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCarts) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCarts) MarkOrdered(ctx context.Context, cart *bookshop.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *MockCarts) GetLine(ctx context.Context, cartID, bookID uuid.UUID) (*bookshop.CartItem, error) {
	args := m.Called(ctx, cartID, bookID)
	if l := args.Get(0); l != nil {
		return l.(*bookshop.CartItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCarts) GetLineByID(ctx context.Context, cartID, lineID uuid.UUID) (*bookshop.CartItem, error) {
	args := m.Called(ctx, cartID, lineID)
	if l := args.Get(0); l != nil {
		return l.(*bookshop.CartItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCarts) CreateLine(ctx context.Context, record *bookshop.CartItem) (*bookshop.CartItem, error) {
	args := m.Called(ctx, record)
	if l := args.Get(0); l != nil {
		return l.(*bookshop.CartItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCarts) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	args := m.Called(ctx, lineID, quantity)
	return args.Error(0)
}

func (m *MockCarts) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	args := m.Called(ctx, lineID)
	return args.Error(0)
}

// mockRepos implements bookshop.RepositoryManager over the mocks
type mockRepos struct {
	users *MockUsers
	books *MockBooks
	carts *MockCarts
}

func newMockRepos() *mockRepos {
	return &mockRepos{
		users: &MockUsers{},
		books: &MockBooks{},
		carts: &MockCarts{},
	}
}

func (r *mockRepos) Validate() error { return nil }
func (r *mockRepos) MustValidate()   {}
func (r *mockRepos) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}
func (r *mockRepos) Users() bookshop.Users { return r.users }
func (r *mockRepos) Books() bookshop.Books { return r.books }
func (r *mockRepos) Carts() bookshop.Carts { return r.carts }

// capturingSender implements mailer.Sender and records every message
type capturingSender struct {
	messages []mailer.Message
	err      error
}

func (s *capturingSender) Send(ctx context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

type testEnv struct {
	app    *fiber.App
	repos  *mockRepos
	tokens *bookshop.TokenService
	sender *capturingSender
}

// newTestEnv wires the full HTTP surface over mocked repositories.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repos := newMockRepos()
	sender := &capturingSender{}
	cfg := testConfig{}

	tokens, err := bookshop.NewTokenService(cfg, nil)
	require.NoError(t, err)

	api := &rest.API{
		Repos:    repos,
		Auther:   bookshop.NewAuther(repos.Users(), tokens, cfg),
		Verifier: bookshop.NewVerifier(repos.Users(), tokens, sender, "http://shop.example.com"),
		Ledger:   bookshop.NewCartLedger(repos.Carts(), repos.Books()),
		Logger:   bookshop.DefaultLogger,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: rest.NewErrorHandler(bookshop.DefaultLogger),
	})
	require.NoError(t, api.Register(app))

	return &testEnv{app: app, repos: repos, tokens: tokens, sender: sender}
}

// authorize registers a verified user with the mock and returns the
// Authorization header value for them.
func (e *testEnv) authorize(t *testing.T, user *bookshop.User) string {
	t.Helper()
	e.repos.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	token, err := e.tokens.AuthToken(user.ID)
	require.NoError(t, err)
	return "Bearer " + token
}
