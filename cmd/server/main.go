package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/paperleaf/bookshop"
	"github.com/paperleaf/bookshop/mailer"
	"github.com/paperleaf/bookshop/rest"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := bookshop.LoadConfig()
	logger := bookshop.DefaultLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := createTables(ctx, db); err != nil {
		return err
	}

	repos := bookshop.NewRepositoryManager(db)
	repos.MustValidate()

	tokens, err := bookshop.NewTokenService(cfg, logger)
	if err != nil {
		return err
	}

	sender := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.MailFrom, cfg.SMTPUsername, cfg.SMTPPassword)

	api := &rest.API{
		Repos:    repos,
		Auther:   bookshop.NewAuther(repos.Users(), tokens, cfg).WithLogger(logger),
		Verifier: bookshop.NewVerifier(repos.Users(), tokens, sender, cfg.BaseURL).WithLogger(logger),
		Ledger:   bookshop.NewCartLedger(repos.Carts(), repos.Books()).WithLogger(logger),
		Logger:   logger,
	}

	app := fiber.New(fiber.Config{
		AppName:      "bookshop",
		ErrorHandler: rest.NewErrorHandler(logger),
	})

	if err := api.Register(app); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.ListenAddr)
	}()

	logger.Info("Server listening on %s", cfg.ListenAddr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	return app.ShutdownWithTimeout(10 * time.Second)
}

// createTables bootstraps the sqlite dev schema. Production
// deployments manage their own schema; this keeps the server
// runnable out of the box.
func createTables(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*bookshop.User)(nil),
		(*bookshop.Book)(nil),
		(*bookshop.Cart)(nil),
		(*bookshop.CartItem)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}
