package bookshop

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. New users start unverified; the
// verification flow is the only place that flips IsVerified.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName     string     `bun:"first_name" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name" json:"last_name,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	IsActive      bool       `bun:"is_active" json:"is_active,omitempty"`
	IsVerified    bool       `bun:"is_verified" json:"is_verified,omitempty"`
	LoggedInAt    *time.Time `bun:"loggedin_at,nullzero" json:"loggedin_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Book is an inventory item. Quantity is the available stock.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:book"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title"`
	Author        string     `bun:"author,notnull" json:"author"`
	Price         float64    `bun:"price,notnull" json:"price"`
	Quantity      int        `bun:"quantity" json:"quantity"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Cart is a user's shopping cart. At most one cart per user has
// IsOrdered=false; once ordered the cart is immutable.
type Cart struct {
	bun.BaseModel `bun:"table:carts,alias:cart"`
	ID            uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID   `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	IsOrdered     bool        `bun:"is_ordered" json:"is_ordered"`
	Items         []*CartItem `bun:"rel:has-many,join:id=cart_id" json:"items,omitempty"`
	CreatedAt     *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// TotalPrice sums the line totals of the attached items.
func (c *Cart) TotalPrice() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.TotalPrice()
	}
	return total
}

// Line returns the item for the given book, nil when absent.
func (c *Cart) Line(bookID uuid.UUID) *CartItem {
	for _, item := range c.Items {
		if item.BookID == bookID {
			return item
		}
	}
	return nil
}

// CartItem is one (book, quantity) line within a cart. While the
// cart is open at most one line exists per (cart, book) pair.
type CartItem struct {
	bun.BaseModel `bun:"table:cart_items,alias:ci"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	CartID        uuid.UUID  `bun:"cart_id,notnull,type:uuid" json:"cart_id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	BookID        uuid.UUID  `bun:"book_id,notnull,type:uuid" json:"book_id,omitempty"`
	Book          *Book      `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	Quantity      int        `bun:"quantity,notnull" json:"quantity"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// TotalPrice is the line price, zero when the book is not loaded.
func (ci *CartItem) TotalPrice() float64 {
	if ci.Book == nil {
		return 0
	}
	return ci.Book.Price * float64(ci.Quantity)
}
