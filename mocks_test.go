package bookshop_test

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/paperleaf/bookshop"
	"github.com/paperleaf/bookshop/mailer"
)

// testConfig implements bookshop.Config for tests
type testConfig struct {
	signingKey    string
	signingMethod string
	issuer        string
	authScheme    string
	tokenExp      time.Duration
	authTokenExp  time.Duration
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey:    "test-signing-key",
		signingMethod: "HS256",
		issuer:        "bookshop-test",
		authScheme:    "Bearer",
		tokenExp:      15 * time.Minute,
		authTokenExp:  time.Hour,
	}
}

func (c testConfig) GetSigningKey() string                 { return c.signingKey }
func (c testConfig) GetSigningMethod() string              { return c.signingMethod }
func (c testConfig) GetIssuer() string                     { return c.issuer }
func (c testConfig) GetAuthScheme() string                 { return c.authScheme }
func (c testConfig) GetTokenExpiration() time.Duration     { return c.tokenExp }
func (c testConfig) GetAuthTokenExpiration() time.Duration { return c.authTokenExp }

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

// capturingSender implements mailer.Sender and records every message
type capturingSender struct {
	messages []capturedMessage
	err      error
}

type capturedMessage struct {
	to      string
	subject string
	body    string
}

func (s *capturingSender) Send(ctx context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, capturedMessage{
		to:      msg.To,
		subject: msg.Subject,
		body:    msg.Body,
	})
	return nil
}
