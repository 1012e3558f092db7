// Package papertrading keeps the cash ledger of simulated trading accounts.
//
// The package is local-first: accounts, positions and orders live in three
// JSON files under a store root directory (users.json, positions.json and
// orders.json), read and rewritten as a whole.
//
// The core functionalities include:
//   - Ledger: registering accounts and moving cash in and out of them
//     (deposit, withdraw, reset), with a strict invariant that a cash
//     movement applies the same signed delta to the balance and to the total
//     assets of the account.
//   - Store Access: the [Store] interface the ledger runs against, with a file
//     backed implementation ([FileStore]) and an in-memory one ([MemStore]).
//   - Confirmation: the [Confirmer] capability used by destructive operations
//     to wait for an explicit user agreement.
//
// The repair of malformed user identifiers across the stores lives in the
// reconcile package, and the identifier classification in the identity
// package.
package papertrading
