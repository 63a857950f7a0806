package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

// SeedService fills an empty database with demo accounts, a few months of
// posted history, and a handful of unresolved bank imports. Dev and demo
// environments only, a non-empty database is left alone.
type SeedService struct {
	accounts   AccountServiceInterface
	categories CategoryServiceInterface
	ledger     LedgerServiceInterface
	pendings   PendingServiceInterface
	logger     *slog.Logger
}

// NewSeedService creates the demo data seeder
func NewSeedService(
	accounts AccountServiceInterface,
	categories CategoryServiceInterface,
	ledger LedgerServiceInterface,
	pendings PendingServiceInterface,
	logger *slog.Logger,
) *SeedService {
	return &SeedService{
		accounts:   accounts,
		categories: categories,
		ledger:     ledger,
		pendings:   pendings,
		logger:     logger,
	}
}

var seedMerchants = []struct {
	name        string
	categoryKey string
	minAmount   float64
	maxAmount   float64
}{
	{"Silpo", models.CategoryKeyGroceries, 150, 1200},
	{"ATB", models.CategoryKeyGroceries, 80, 600},
	{"McDonalds", models.CategoryKeyDining, 120, 450},
	{"Aroma Kava", models.CategoryKeyDining, 60, 180},
	{"Uklon", models.CategoryKeyTaxi, 90, 350},
	{"Bolt", models.CategoryKeyTaxi, 70, 300},
	{"WOG", models.CategoryKeyTransport, 500, 2000},
	{"Megogo", models.CategoryKeyEntertainment, 99, 299},
	{"Rozetka", models.CategoryKeyShopping, 300, 5000},
	{"Kyivstar", models.CategoryKeyUtilities, 150, 400},
	{"Podorozhnyk", models.CategoryKeyHealth, 100, 800},
}

// Run seeds demo data if the database is empty
func (s *SeedService) Run(ctx context.Context) error {
	existing, err := s.accounts.GetAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing accounts: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info("seed skipped, accounts already exist", "count", len(existing))
		return nil
	}

	if err := s.categories.EnsureSystemCategories(ctx); err != nil {
		return fmt.Errorf("failed to seed system categories: %w", err)
	}

	card, err := s.accounts.CreateAccount(ctx, &models.Account{
		Name:        "Mono Card",
		Tag:         "mono",
		AccountType: models.AccountTypeCard,
		IsDefault:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to seed card account: %w", err)
	}

	cash, err := s.accounts.CreateAccount(ctx, &models.Account{
		Name:        "Wallet Cash",
		Tag:         "cash",
		AccountType: models.AccountTypeCash,
	})
	if err != nil {
		return fmt.Errorf("failed to seed cash account: %w", err)
	}

	savings, err := s.accounts.CreateAccount(ctx, &models.Account{
		Name:        "Rainy Day",
		Tag:         "savings",
		AccountType: models.AccountTypeSavings,
	})
	if err != nil {
		return fmt.Errorf("failed to seed savings account: %w", err)
	}

	categories, err := s.categories.GetCategories(ctx)
	if err != nil {
		return err
	}
	categoryByKey := make(map[string]models.Category, len(categories))
	for _, category := range categories {
		categoryByKey[category.Key] = category
	}

	now := time.Now().UTC()

	// Three months of salary into the card account
	salary := categoryByKey[models.CategoryKeySalary]
	for month := 0; month < 3; month++ {
		date := now.AddDate(0, -month, 0)
		_, err := s.ledger.CreateTransaction(ctx, &models.Transaction{
			TransactionType: models.TransactionTypeIncome,
			Amount:          decimal.NewFromInt(65000),
			Description:     "Salary",
			TransactionDate: date,
			CategoryID:      &salary.ID,
			ToAccountID:     &card.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to seed salary: %w", err)
		}
	}

	// Scattered merchant expenses over the last 90 days
	for i := 0; i < 60; i++ {
		merchant := seedMerchants[gofakeit.Number(0, len(seedMerchants)-1)]
		category := categoryByKey[merchant.categoryKey]
		amount := decimal.NewFromFloat(gofakeit.Float64Range(merchant.minAmount, merchant.maxAmount)).Round(2)
		date := now.AddDate(0, 0, -gofakeit.Number(0, 90))

		_, err := s.ledger.CreateTransaction(ctx, &models.Transaction{
			TransactionType: models.TransactionTypeExpense,
			Amount:          amount,
			Description:     merchant.name,
			TransactionDate: date,
			CategoryID:      &category.ID,
			FromAccountID:   &card.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to seed expense: %w", err)
		}
	}

	// One monthly transfer into savings and some pocket cash
	if _, err := s.ledger.CreateTransfer(ctx, TransferRequest{
		FromAccountID: card.ID,
		ToAccountID:   savings.ID,
		Amount:        decimal.NewFromInt(10000),
		Description:   "Monthly savings",
		Date:          now.AddDate(0, 0, -14),
	}); err != nil {
		return fmt.Errorf("failed to seed savings transfer: %w", err)
	}
	if _, err := s.ledger.CreateTransfer(ctx, TransferRequest{
		FromAccountID: card.ID,
		ToAccountID:   cash.ID,
		Amount:        decimal.NewFromInt(2000),
		Description:   "Pocket cash",
		Date:          now.AddDate(0, 0, -7),
	}); err != nil {
		return fmt.Errorf("failed to seed cash transfer: %w", err)
	}

	// Unresolved bank imports waiting for categorization
	for i := 0; i < 5; i++ {
		merchant := seedMerchants[gofakeit.Number(0, len(seedMerchants)-1)]
		amount := decimal.NewFromFloat(gofakeit.Float64Range(merchant.minAmount, merchant.maxAmount)).Round(2)

		_, err := s.pendings.ImportPending(ctx, &models.PendingTransaction{
			BankTransactionID: fmt.Sprintf("SEED-%s", gofakeit.UUID()),
			Amount:            amount,
			Description:       fmt.Sprintf("%s KYIV UA", merchant.name),
			MerchantName:      merchant.name,
			TransactionDate:   now.AddDate(0, 0, -gofakeit.Number(0, 3)),
			TransactionType:   models.TransactionTypeExpense,
			AccountID:         card.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to seed pending transaction: %w", err)
		}
	}

	s.logger.Info("demo data seeded",
		"accounts", 3,
		"pending_imports", 5)
	return nil
}
