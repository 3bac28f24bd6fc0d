// Package bookshop implements the domain core of a small bookshop
// backend: signed token issuance and verification, username/password
// authentication, the account verification flow, the book inventory,
// and the shopping cart ledger with checkout.
//
// Token lifecycle:
//   - registration creates an unverified user and mails a
//     VERIFY_USER-audience token embedded in a verification link
//   - consuming that token flips the user's verified flag
//   - login returns an AUTH-audience token only for verified users
//   - protected requests resolve the bearer token back to a user
//
// Persistence goes through the repositories in repo_*.go (bun over
// SQL), HTTP through the rest package, and mail through the mailer
// package. The cart ledger holds the only nontrivial state
// transitions: one open cart per user, one line per (cart, book)
// pair, and an irreversible flip to ordered at checkout.
package bookshop
