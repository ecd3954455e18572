// Package store persists participants and the settlement idempotency ledger.
//
// Error contract:
//   - FindByID and Execute return sentinel.ErrNotFound for unknown participants
//   - Create returns sentinel.ErrConflict when the participant already exists
//   - validate errors passed to Execute are returned unchanged and nothing is written
package store
