// internal/domain/inventory/errors.go
package inventory

import "errors"

// Sentinel errors surfaced by the stock ledger engine. Handlers map these to
// HTTP statuses with errors.Is; services wrap infrastructure failures with
// fmt.Errorf("...: %w", err) instead.
var (
	// ErrInvalidMovement rejects a zero or wrongly-signed delta before any write
	ErrInvalidMovement = errors.New("invalid movement: zero or malformed quantity")

	// ErrVariantNotFound indicates the target variant does not exist for the seller
	ErrVariantNotFound = errors.New("variant not found")

	// ErrNotSimpleVariant indicates an operation that requires a physically
	// stocked variant was aimed at a bundle
	ErrNotSimpleVariant = errors.New("operation requires a simple variant")

	// ErrConcurrencyConflict is returned after bounded retries on lock or
	// serialization contention are exhausted
	ErrConcurrencyConflict = errors.New("concurrent stock update conflict")

	// ErrLedgerLocked blocks writes to a variant whose cached balance no
	// longer matches the ledger, pending manual reconciliation
	ErrLedgerLocked = errors.New("variant ledger is locked pending reconciliation")
)
