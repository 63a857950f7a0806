package services

import (
	"errors"
	"fmt"

	"github.com/ggegelya/expensetracker/internal/models"
	"github.com/ggegelya/expensetracker/internal/repositories"
)

// Reconciler applies a transaction's signed balance delta to its posting
// account, or the inverse when reversing. Split children never post, only
// the parent's net effect reaches an account. A missing account is a hard
// error rather than a silent skip, skipping would leave the stored balance
// permanently out of step with the transaction set.
type Reconciler struct{}

// NewReconciler creates a balance reconciler
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Apply posts the transaction's effective amount to its account
func (r *Reconciler) Apply(accounts repositories.AccountRepositoryInterface, txn *models.Transaction) error {
	return r.reconcile(accounts, txn, false)
}

// Reverse undoes a previously posted transaction's balance effect.
// Apply followed by Reverse is an exact no-op on the account balance.
func (r *Reconciler) Reverse(accounts repositories.AccountRepositoryInterface, txn *models.Transaction) error {
	return r.reconcile(accounts, txn, true)
}

func (r *Reconciler) reconcile(accounts repositories.AccountRepositoryInterface, txn *models.Transaction, reversal bool) error {
	if !txn.IsPosting() {
		return nil
	}

	accountID, err := txn.PostingAccountID()
	if err != nil {
		return err
	}

	delta := txn.EffectiveAmount()
	if reversal {
		delta = delta.Neg()
	}

	if err := accounts.AdjustBalance(accountID, delta); err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return fmt.Errorf("reconciling transaction %s against account %s: %w", txn.ID, accountID, err)
		}
		return err
	}

	return nil
}
