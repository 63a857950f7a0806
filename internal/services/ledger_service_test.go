package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ggegelya/expensetracker/internal/database"
	"github.com/ggegelya/expensetracker/internal/models"
	"github.com/ggegelya/expensetracker/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type LedgerServiceSuite struct {
	suite.Suite
	db        *database.DB
	ledger    LedgerServiceInterface
	accounts  repositories.AccountRepositoryInterface
	pendings  repositories.PendingTransactionRepositoryInterface
	notifier  *ChangeNotifier
	main      *models.Account
	second    *models.Account
	groceries *models.Category
	taxi      *models.Category
	ctx       context.Context
}

func (s *LedgerServiceSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.ctx = context.Background()

	transactions := repositories.NewTransactionRepository(s.db.DB)
	s.accounts = repositories.NewAccountRepository(s.db.DB)
	categories := repositories.NewCategoryRepository(s.db.DB)
	s.pendings = repositories.NewPendingTransactionRepository(s.db.DB)

	s.notifier = NewChangeNotifier(10*time.Millisecond, testLogger())
	s.notifier.Start()

	s.ledger = NewLedgerService(s.db, transactions, s.accounts, categories, s.pendings,
		s.notifier, NewNoopMetrics(), testLogger())

	s.main = database.CreateTestAccount(s.T(), s.db, "main")
	s.second = database.CreateTestAccount(s.T(), s.db, "second")
	s.groceries = database.CreateTestCategory(s.T(), s.db, "groceries")
	s.taxi = database.CreateTestCategory(s.T(), s.db, "taxi")
}

func (s *LedgerServiceSuite) TearDownTest() {
	s.notifier.Stop()
	database.CleanupTestDB(s.T(), s.db)
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) balance(id uuid.UUID) decimal.Decimal {
	s.T().Helper()
	account, err := s.accounts.GetByID(id)
	s.Require().NoError(err)
	return account.Balance
}

func (s *LedgerServiceSuite) createExpense(amount string, account *models.Account) *models.Transaction {
	s.T().Helper()
	amt, err := decimal.NewFromString(amount)
	s.Require().NoError(err)

	txn, err := s.ledger.CreateTransaction(s.ctx, &models.Transaction{
		TransactionType: models.TransactionTypeExpense,
		Amount:          amt,
		Description:     "test expense",
		FromAccountID:   &account.ID,
		CategoryID:      &s.groceries.ID,
	})
	s.Require().NoError(err)
	return txn
}

func (s *LedgerServiceSuite) TestCreateExpense_PostsNegativeDelta() {
	s.createExpense("250.00", s.main)

	s.True(s.balance(s.main.ID).Equal(decimal.RequireFromString("-250.00")))
}

func (s *LedgerServiceSuite) TestCreate_RejectsBadPairing() {
	_, err := s.ledger.CreateTransaction(s.ctx, &models.Transaction{
		TransactionType: models.TransactionTypeExpense,
		Amount:          decimal.NewFromInt(100),
		ToAccountID:     &s.main.ID,
	})
	s.ErrorIs(err, models.ErrFromAccountRequired)
}

func (s *LedgerServiceSuite) TestCreate_RejectsMissingAccount() {
	ghost := uuid.New()
	_, err := s.ledger.CreateTransaction(s.ctx, &models.Transaction{
		TransactionType: models.TransactionTypeExpense,
		Amount:          decimal.NewFromInt(100),
		FromAccountID:   &ghost,
	})
	s.ErrorIs(err, repositories.ErrAccountNotFound)
	s.True(s.balance(s.main.ID).IsZero())
}

func (s *LedgerServiceSuite) TestUpdateAmount_ReversesOldThenAppliesNew() {
	txn := s.createExpense("250.00", s.main)

	txn.Amount = decimal.RequireFromString("300.00")
	_, err := s.ledger.UpdateTransaction(s.ctx, txn)
	s.NoError(err)

	// Not -550: the old effect reverses before the new one applies
	s.True(s.balance(s.main.ID).Equal(decimal.RequireFromString("-300.00")))
}

func (s *LedgerServiceSuite) TestUpdateAccount_MovesExactDelta() {
	txn := s.createExpense("120.00", s.main)

	txn.FromAccountID = &s.second.ID
	_, err := s.ledger.UpdateTransaction(s.ctx, txn)
	s.NoError(err)

	s.True(s.balance(s.main.ID).IsZero(), "no residual on the old account")
	s.True(s.balance(s.second.ID).Equal(decimal.RequireFromString("-120.00")))
}

func (s *LedgerServiceSuite) TestCreateThenDelete_RoundTrip() {
	income, err := s.ledger.CreateTransaction(s.ctx, &models.Transaction{
		TransactionType: models.TransactionTypeIncome,
		Amount:          decimal.RequireFromString("2000.00"),
		ToAccountID:     &s.main.ID,
	})
	s.Require().NoError(err)

	expense := s.createExpense("250.00", s.main)
	s.True(s.balance(s.main.ID).Equal(decimal.RequireFromString("1750.00")))

	s.NoError(s.ledger.DeleteTransaction(s.ctx, expense.ID))
	s.True(s.balance(s.main.ID).Equal(decimal.RequireFromString("2000.00")))

	s.NoError(s.ledger.DeleteTransaction(s.ctx, income.ID))
	s.True(s.balance(s.main.ID).IsZero())
}

func (s *LedgerServiceSuite) TestDelete_MissingTransaction() {
	err := s.ledger.DeleteTransaction(s.ctx, uuid.New())
	s.ErrorIs(err, repositories.ErrTransactionNotFound)
}

func (s *LedgerServiceSuite) TestDeleteTwice_ReversesOnlyOnce() {
	keep := s.createExpense("100.00", s.main)
	victim := s.createExpense("250.00", s.main)

	s.NoError(s.ledger.DeleteTransaction(s.ctx, victim.ID))
	s.True(s.balance(s.main.ID).Equal(decimal.RequireFromString("-100.00")))

	// A consumed id cannot reverse again
	err := s.ledger.DeleteTransaction(s.ctx, victim.ID)
	s.ErrorIs(err, repositories.ErrTransactionNotFound)
	s.True(s.balance(s.main.ID).Equal(decimal.RequireFromString("-100.00")))

	s.NoError(s.ledger.DeleteTransaction(s.ctx, keep.ID))
	s.True(s.balance(s.main.ID).IsZero())
}

func (s *LedgerServiceSuite) TestBulkDeleteRepeated_NoDoubleReversal() {
	txn := s.createExpense("250.00", s.main)

	deleted, err := s.ledger.BulkDeleteTransactions(s.ctx, []uuid.UUID{txn.ID})
	s.NoError(err)
	s.Equal(1, deleted)
	s.True(s.balance(s.main.ID).IsZero())

	// The consumed id aborts the whole unit, nothing reverses twice
	deleted, err = s.ledger.BulkDeleteTransactions(s.ctx, []uuid.UUID{txn.ID})
	s.ErrorIs(err, repositories.ErrTransactionNotFound)
	s.Zero(deleted)
	s.True(s.balance(s.main.ID).IsZero())
}

func (s *LedgerServiceSuite) TestSplit_ExactSumRequired() {
	parent := s.createExpense("300.00", s.main)

	_, err := s.ledger.SplitTransaction(s.ctx, parent.ID, []SplitAllocation{
		{CategoryID: s.taxi.ID, Amount: decimal.RequireFromString("100.00")},
		{CategoryID: s.groceries.ID, Amount: decimal.RequireFromString("150.00")},
	})

	var mismatch *AllocationMismatchError
	s.Require().True(errors.As(err, &mismatch))
	s.True(mismatch.Remaining().Equal(decimal.RequireFromString("50.00")))
}

func (s *LedgerServiceSuite) TestSplit_ParentEffectUnchanged() {
	parent := s.createExpense("300.00", s.main)

	split, err := s.ledger.SplitTransaction(s.ctx, parent.ID, []SplitAllocation{
		{CategoryID: s.taxi.ID, Amount: decimal.RequireFromString("100.00")},
		{CategoryID: s.groceries.ID, Amount: decimal.RequireFromString("200.00")},
	})
	s.Require().NoError(err)
	s.Len(split.Children, 2)

	// Splitting is a reporting decomposition, the posted effect stays put
	s.True(s.balance(s.main.ID).Equal(decimal.RequireFromString("-300.00")))
}

func (s *LedgerServiceSuite) TestSplitIncome_Allowed() {
	income, err := s.ledger.CreateTransaction(s.ctx, &models.Transaction{
		TransactionType: models.TransactionTypeIncome,
		Amount:          decimal.RequireFromString("3000.00"),
		Description:     "salary plus bonus",
		ToAccountID:     &s.main.ID,
	})
	s.Require().NoError(err)

	split, err := s.ledger.SplitTransaction(s.ctx, income.ID, []SplitAllocation{
		{CategoryID: s.groceries.ID, Amount: decimal.RequireFromString("2500.00")},
		{CategoryID: s.taxi.ID, Amount: decimal.RequireFromString("500.00")},
	})
	s.Require().NoError(err)
	s.Len(split.Children, 2)

	s.True(s.balance(s.main.ID).Equal(decimal.RequireFromString("3000.00")))
}

func (s *LedgerServiceSuite) TestSplitTransferLeg_Rejected() {
	legs, err := s.ledger.CreateTransfer(s.ctx, TransferRequest{
		FromAccountID: s.main.ID,
		ToAccountID:   s.second.ID,
		Amount:        decimal.RequireFromString("500.00"),
	})
	s.Require().NoError(err)

	_, err = s.ledger.SplitTransaction(s.ctx, legs[0].ID, []SplitAllocation{
		{CategoryID: s.taxi.ID, Amount: decimal.RequireFromString("500.00")},
	})
	s.ErrorIs(err, ErrSplitNotAllowed)
}

func (s *LedgerServiceSuite) TestDeleteSplitParent_ReversesOnce() {
	parent := s.createExpense("300.00", s.main)
	_, err := s.ledger.SplitTransaction(s.ctx, parent.ID, []SplitAllocation{
		{CategoryID: s.taxi.ID, Amount: decimal.RequireFromString("100.00")},
		{CategoryID: s.groceries.ID, Amount: decimal.RequireFromString("200.00")},
	})
	s.Require().NoError(err)

	s.NoError(s.ledger.DeleteTransaction(s.ctx, parent.ID))

	s.True(s.balance(s.main.ID).IsZero())
	results, total, err := s.ledger.QueryTransactions(s.ctx, models.TransactionFilters{})
	s.NoError(err)
	s.Zero(total)
	s.Empty(results)
}

func (s *LedgerServiceSuite) TestDeleteSplitChild_Rejected() {
	parent := s.createExpense("300.00", s.main)
	split, err := s.ledger.SplitTransaction(s.ctx, parent.ID, []SplitAllocation{
		{CategoryID: s.taxi.ID, Amount: decimal.RequireFromString("300.00")},
	})
	s.Require().NoError(err)

	err = s.ledger.DeleteTransaction(s.ctx, split.Children[0].ID)
	s.ErrorIs(err, ErrSplitChildLocked)
}

func (s *LedgerServiceSuite) TestUpdateSplitParentAmount_Rejected() {
	parent := s.createExpense("300.00", s.main)
	_, err := s.ledger.SplitTransaction(s.ctx, parent.ID, []SplitAllocation{
		{CategoryID: s.taxi.ID, Amount: decimal.RequireFromString("300.00")},
	})
	s.Require().NoError(err)

	parent.Amount = decimal.RequireFromString("400.00")
	_, err = s.ledger.UpdateTransaction(s.ctx, parent)
	s.ErrorIs(err, ErrSplitParentLocked)
}

func (s *LedgerServiceSuite) TestUnsplit_RestoresPlainStatus() {
	parent := s.createExpense("300.00", s.main)
	_, err := s.ledger.SplitTransaction(s.ctx, parent.ID, []SplitAllocation{
		{CategoryID: s.taxi.ID, Amount: decimal.RequireFromString("300.00")},
	})
	s.Require().NoError(err)

	restored, err := s.ledger.UnsplitTransaction(s.ctx, parent.ID)
	s.NoError(err)
	s.Empty(restored.Children)
	s.True(s.balance(s.main.ID).Equal(decimal.RequireFromString("-300.00")))
}

func (s *LedgerServiceSuite) TestTransfer_PostsBothLegs() {
	legs, err := s.ledger.CreateTransfer(s.ctx, TransferRequest{
		FromAccountID: s.main.ID,
		ToAccountID:   s.second.ID,
		Amount:        decimal.RequireFromString("500.00"),
		Description:   "to savings",
	})
	s.Require().NoError(err)
	s.Len(legs, 2)
	s.Equal(legs[0].TransferGroupID, legs[1].TransferGroupID)

	s.True(s.balance(s.main.ID).Equal(decimal.RequireFromString("-500.00")))
	s.True(s.balance(s.second.ID).Equal(decimal.RequireFromString("500.00")))
}

func (s *LedgerServiceSuite) TestDeleteTransferLeg_RemovesPair() {
	legs, err := s.ledger.CreateTransfer(s.ctx, TransferRequest{
		FromAccountID: s.main.ID,
		ToAccountID:   s.second.ID,
		Amount:        decimal.RequireFromString("500.00"),
	})
	s.Require().NoError(err)

	// Deleting the incoming leg removes the outgoing one too
	s.NoError(s.ledger.DeleteTransaction(s.ctx, legs[1].ID))

	s.True(s.balance(s.main.ID).IsZero())
	s.True(s.balance(s.second.ID).IsZero())
	_, total, err := s.ledger.QueryTransactions(s.ctx, models.TransactionFilters{})
	s.NoError(err)
	s.Zero(total)
}

func (s *LedgerServiceSuite) TestTransferLeg_StructuralEditRejected() {
	legs, err := s.ledger.CreateTransfer(s.ctx, TransferRequest{
		FromAccountID: s.main.ID,
		ToAccountID:   s.second.ID,
		Amount:        decimal.RequireFromString("500.00"),
	})
	s.Require().NoError(err)

	leg := legs[0]
	leg.Amount = decimal.RequireFromString("600.00")
	_, err = s.ledger.UpdateTransaction(s.ctx, &leg)
	s.ErrorIs(err, ErrTransferLegLocked)
}

func (s *LedgerServiceSuite) TestBulkDelete_UnitOfParent() {
	parent := s.createExpense("300.00", s.main)
	split, err := s.ledger.SplitTransaction(s.ctx, parent.ID, []SplitAllocation{
		{CategoryID: s.taxi.ID, Amount: decimal.RequireFromString("100.00")},
		{CategoryID: s.groceries.ID, Amount: decimal.RequireFromString("200.00")},
	})
	s.Require().NoError(err)
	other := s.createExpense("50.00", s.main)

	// Parent listed alongside both of its children still deletes once
	deleted, err := s.ledger.BulkDeleteTransactions(s.ctx, []uuid.UUID{
		split.ID,
		split.Children[0].ID,
		split.Children[1].ID,
		other.ID,
	})
	s.NoError(err)
	s.Equal(2, deleted)
	s.True(s.balance(s.main.ID).IsZero())
}

func (s *LedgerServiceSuite) TestPromotePending_HappyPath() {
	pending := database.CreateTestPending(s.T(), s.db, s.main, "BNK-77")

	txn, err := s.ledger.PromotePending(s.ctx, pending.ID, &s.groceries.ID, nil)
	s.Require().NoError(err)

	s.Require().NotNil(txn.BankTransactionID)
	s.Equal("BNK-77", *txn.BankTransactionID)
	s.True(txn.IsReconciled)
	s.True(s.balance(s.main.ID).Equal(decimal.RequireFromString("-100.00")))

	updated, err := s.pendings.GetByID(pending.ID)
	s.NoError(err)
	s.Equal(models.PendingStatusProcessed, updated.Status)
}

func (s *LedgerServiceSuite) TestPromotePending_ConcurrentRace() {
	pending := database.CreateTestPending(s.T(), s.db, s.main, "BNK-RACE")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.ledger.PromotePending(s.ctx, pending.ID, &s.groceries.ID, nil)
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repositories.ErrPendingAlreadyProcessed):
			losses++
		}
	}
	s.Equal(1, wins)
	s.Equal(1, losses)

	// Exactly one confirmed transaction and exactly one posted delta
	_, total, err := s.ledger.QueryTransactions(s.ctx, models.TransactionFilters{})
	s.NoError(err)
	s.Equal(int64(1), total)
	s.True(s.balance(s.main.ID).Equal(decimal.RequireFromString("-100.00")))
}

func (s *LedgerServiceSuite) TestDismissPending_NoBalanceEffect() {
	pending := database.CreateTestPending(s.T(), s.db, s.main, "BNK-9")

	s.NoError(s.ledger.DismissPending(s.ctx, pending.ID))
	s.True(s.balance(s.main.ID).IsZero())

	err := s.ledger.DismissPending(s.ctx, pending.ID)
	s.ErrorIs(err, repositories.ErrPendingAlreadyProcessed)
}

func (s *LedgerServiceSuite) TestRebuildBalances_RepairsDrift() {
	s.createExpense("250.00", s.main)

	// Corrupt the stored balance the way an external merge would
	s.Require().NoError(s.db.Model(&models.Account{}).
		Where("id = ?", s.main.ID).
		Update("balance", decimal.NewFromInt(999)).Error)

	report, err := s.ledger.RebuildBalances(s.ctx)
	s.Require().NoError(err)

	var mainRow *models.AccountDrift
	for i := range report {
		if report[i].AccountID == s.main.ID {
			mainRow = &report[i]
		}
	}
	s.Require().NotNil(mainRow)
	s.True(mainRow.Stored.Equal(decimal.NewFromInt(999)))
	s.True(mainRow.Derived.Equal(decimal.RequireFromString("-250.00")))
	s.False(mainRow.Drift.IsZero())

	s.True(s.balance(s.main.ID).Equal(decimal.RequireFromString("-250.00")))
}

func (s *LedgerServiceSuite) TestNotifier_CoalescesRapidWrites() {
	id, ch := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(id)

	for i := 0; i < 5; i++ {
		s.createExpense("10.00", s.main)
	}

	// Writes land inside one debounce window, far fewer signals than writes
	received := 0
	deadline := time.After(500 * time.Millisecond)
	for {
		select {
		case <-ch:
			received++
		case <-deadline:
			s.GreaterOrEqual(received, 1)
			s.Less(received, 5)
			return
		}
	}
}
