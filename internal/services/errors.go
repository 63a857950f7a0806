package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountInUse            = errors.New("account has referencing transactions")
	ErrCategoryInUse           = errors.New("category has referencing transactions")
	ErrCategorySystemProtected = errors.New("system categories cannot be deleted")
	ErrCategoryKeyImmutable    = errors.New("category key cannot change once created")
	ErrDefaultAccountRequired  = errors.New("one account must stay default, promote another account instead")
	ErrSplitChildLocked        = errors.New("split children are managed through their parent")
	ErrSplitParentLocked       = errors.New("split parent amount is fixed by its allocations")
	ErrTransferLegLocked       = errors.New("transfer legs only allow descriptive edits")
	ErrSplitNotAllowed         = errors.New("transfer legs cannot be split")
	ErrNotSplit                = errors.New("transaction has no split allocations")
	ErrSameAccountTransfer     = errors.New("transfer requires two distinct accounts")
)

// AllocationMismatchError reports how far a split request is from the exact
// parent amount so the caller can correct it.
type AllocationMismatchError struct {
	ParentAmount decimal.Decimal
	Allocated    decimal.Decimal
}

func (e *AllocationMismatchError) Error() string {
	remaining := e.ParentAmount.Sub(e.Allocated)
	if remaining.IsNegative() {
		return fmt.Sprintf("allocations exceed parent amount by %s", remaining.Neg())
	}
	return fmt.Sprintf("allocations fall short of parent amount by %s", remaining)
}

// Remaining returns the unallocated amount, negative when over-allocated
func (e *AllocationMismatchError) Remaining() decimal.Decimal {
	return e.ParentAmount.Sub(e.Allocated)
}
