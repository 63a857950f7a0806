package services

import (
	"context"
	"log/slog"

	"github.com/ggegelya/expensetracker/internal/database"
	"github.com/ggegelya/expensetracker/internal/models"
	"github.com/ggegelya/expensetracker/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// accountService manages account metadata. Balances never change here, only
// the ledger write path posts deltas.
type accountService struct {
	db       *database.DB
	accounts repositories.AccountRepositoryInterface
	notifier *ChangeNotifier
	logger   *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(db *database.DB, accounts repositories.AccountRepositoryInterface, notifier *ChangeNotifier, logger *slog.Logger) AccountServiceInterface {
	return &accountService{
		db:       db,
		accounts: accounts,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateAccount creates an account. The first account in the system becomes
// default automatically, a new default demotes the previous one.
func (s *accountService) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.Currency == "" {
		account.Currency = "UAH"
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)

		existing, err := accounts.GetAll()
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			account.IsDefault = true
		}

		if err := accounts.Create(account); err != nil {
			return err
		}
		if account.IsDefault {
			return accounts.ClearDefaultExcept(account.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created", "account_id", account.ID, "tag", account.Tag)
	s.notifier.Notify()
	return account, nil
}

// GetAccount retrieves one account
func (s *accountService) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.accounts.GetByID(id)
}

// GetAccounts lists all accounts with balances
func (s *accountService) GetAccounts(ctx context.Context) ([]models.Account, error) {
	return s.accounts.GetAll()
}

// UpdateAccount edits account metadata. The balance field is owned by the
// ledger and ignored on this path. Unsetting the default flag directly is
// rejected, promoting another account is the way to move it.
func (s *accountService) UpdateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	var updated *models.Account

	err := s.db.Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)

		prior, err := accounts.GetByID(account.ID)
		if err != nil {
			return err
		}

		if prior.IsDefault && !account.IsDefault {
			return ErrDefaultAccountRequired
		}

		next := *prior
		next.Name = account.Name
		next.Tag = account.Tag
		next.TagNormalized = models.NormalizeTag(account.Tag)
		next.AccountType = account.AccountType
		next.IsDefault = account.IsDefault
		if account.Currency != "" {
			next.Currency = account.Currency
		}

		if err := next.Validate(); err != nil {
			return err
		}
		if err := accounts.Update(&next); err != nil {
			return err
		}
		if next.IsDefault {
			if err := accounts.ClearDefaultExcept(next.ID); err != nil {
				return err
			}
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account updated", "account_id", updated.ID, "tag", updated.Tag)
	s.notifier.Notify()
	return updated, nil
}

// DeleteAccount removes an account that nothing references. When the default
// account goes, the oldest remaining account inherits the flag.
func (s *accountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)

		account, err := accounts.GetByID(id)
		if err != nil {
			return err
		}

		references, err := accounts.ReferencingTransactionCount(id)
		if err != nil {
			return err
		}
		if references > 0 {
			return ErrAccountInUse
		}

		if err := accounts.Delete(id); err != nil {
			return err
		}

		if account.IsDefault {
			remaining, err := accounts.GetAll()
			if err != nil {
				return err
			}
			if len(remaining) > 0 {
				oldest := remaining[0]
				oldest.IsDefault = true
				if err := accounts.Update(&oldest); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("account deleted", "account_id", id)
	s.notifier.Notify()
	return nil
}
