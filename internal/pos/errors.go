package pos

import (
	"errors"
	"fmt"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
)

var (
	ErrInvalidQuantity      = fmt.Errorf("%w: quantity must be a positive integer", domain.ErrInvalidInput)
	ErrUnknownPaymentMethod = fmt.Errorf("%w: unknown payment method", domain.ErrInvalidInput)
	ErrInvalidDate          = fmt.Errorf("%w: transaction date must be YYYY-MM-DD", domain.ErrInvalidInput)
	ErrEmptyCart            = errors.New("cart is empty")
	ErrItemNotInCatalog     = fmt.Errorf("medicine not in catalog snapshot: %w", domain.ErrNotFound)
	ErrLineNotFound         = fmt.Errorf("cart line: %w", domain.ErrNotFound)
	ErrSessionNotFound      = fmt.Errorf("pos session: %w", domain.ErrNotFound)
	ErrCheckoutInProgress   = errors.New("checkout already in progress")
	ErrInvoiceUnavailable   = errors.New("no invoice available for this session")
	ErrSurfaceUnavailable   = errors.New("print surface unavailable")
)

// CommitError reports a checkout that stopped at line Index. Committed lines
// before it stay recorded unless the committer ran in atomic mode.
type CommitError struct {
	Index      int
	MedicineID string
	Committed  int
	Err        error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("checkout failed at line %d (medicine %s, %d lines committed): %v", e.Index+1, e.MedicineID, e.Committed, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
