package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/paperleaf/bookshop"
)

// API bundles the collaborators the HTTP surface needs.
type API struct {
	Repos    bookshop.RepositoryManager
	Auther   *bookshop.Auther
	Verifier *bookshop.Verifier
	Ledger   *bookshop.CartLedger
	Logger   bookshop.Logger
}

// Register mounts every route on the app. Auth and inventory are
// public; cart and checkout sit behind RequireAuth.
func (api *API) Register(app *fiber.App) error {
	authCtrl := NewAuthController(api.Repos.Users(), api.Auther, api.Verifier, api.Logger)

	app.Post("/register", authCtrl.Register)
	app.Post("/login", authCtrl.Login)
	app.Get("/verify/:token", authCtrl.Verify)

	books, err := NewController(BookStrategy(api.Repos.Books()))
	if err != nil {
		return err
	}
	books.Register(app.Group("/book"))

	carts, err := NewController(CartStrategy(api.Ledger, api.Repos.Carts()))
	if err != nil {
		return err
	}
	carts.Register(app.Group("/cart", RequireAuth(api.Auther)))

	app.Post("/checkout/:id", RequireAuth(api.Auther), CheckoutHandler(api.Ledger))

	return nil
}
