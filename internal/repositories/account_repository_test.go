package repositories

import (
	"testing"

	"github.com/ggegelya/expensetracker/internal/database"
	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AccountRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo AccountRepositoryInterface
}

func (s *AccountRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewAccountRepository(s.db.DB)
}

func (s *AccountRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestAccountRepositorySuite(t *testing.T) {
	suite.Run(t, new(AccountRepositorySuite))
}

func (s *AccountRepositorySuite) TestCreate() {
	account := &models.Account{
		Name:        "Mono Black",
		Tag:         "mono",
		AccountType: models.AccountTypeCard,
		Balance:     decimal.NewFromFloat(1500.50),
	}

	err := s.repo.Create(account)
	s.NoError(err)
	s.NotEqual(uuid.Nil, account.ID)
	s.Equal("mono", account.TagNormalized)
	s.Equal("UAH", account.Currency)
	s.NotZero(account.CreatedAt)
}

func (s *AccountRepositorySuite) TestCreate_DuplicateTag() {
	first := &models.Account{Name: "Mono", Tag: "mono", AccountType: models.AccountTypeCard}
	s.NoError(s.repo.Create(first))

	// Tags differing only in case collide on the normalized form
	second := &models.Account{Name: "Other", Tag: "MONO", AccountType: models.AccountTypeCash}
	err := s.repo.Create(second)
	s.ErrorIs(err, ErrAccountTagExists)
}

func (s *AccountRepositorySuite) TestGetByTag_CaseInsensitive() {
	account := database.CreateTestAccount(s.T(), s.db, "privat")

	found, err := s.repo.GetByTag("PriVat")
	s.NoError(err)
	s.Equal(account.ID, found.ID)
}

func (s *AccountRepositorySuite) TestGetByTag_NotFound() {
	_, err := s.repo.GetByTag("ghost")
	s.ErrorIs(err, ErrAccountNotFound)
}

func (s *AccountRepositorySuite) TestAdjustBalance() {
	account := database.CreateTestAccountWithBalance(s.T(), s.db, "cash", decimal.NewFromInt(100))

	s.NoError(s.repo.AdjustBalance(account.ID, decimal.NewFromInt(-150)))

	updated, err := s.repo.GetByID(account.ID)
	s.NoError(err)
	// Negative balances are allowed
	s.True(updated.Balance.Equal(decimal.NewFromInt(-50)))
}

func (s *AccountRepositorySuite) TestAdjustBalance_MissingAccount() {
	err := s.repo.AdjustBalance(uuid.New(), decimal.NewFromInt(10))
	s.ErrorIs(err, ErrAccountNotFound)
}

func (s *AccountRepositorySuite) TestClearDefaultExcept() {
	a := database.CreateTestAccount(s.T(), s.db, "first")
	b := database.CreateTestAccount(s.T(), s.db, "second")

	s.NoError(s.db.Model(&models.Account{}).Where("id = ?", a.ID).Update("is_default", true).Error)
	s.NoError(s.db.Model(&models.Account{}).Where("id = ?", b.ID).Update("is_default", true).Error)

	s.NoError(s.repo.ClearDefaultExcept(b.ID))

	defaultAccount, err := s.repo.GetDefault()
	s.NoError(err)
	s.Equal(b.ID, defaultAccount.ID)
}

func (s *AccountRepositorySuite) TestReferencingTransactionCount() {
	account := database.CreateTestAccount(s.T(), s.db, "used")
	category := database.CreateTestCategory(s.T(), s.db, "groceries")

	txn := &models.Transaction{
		TransactionType: models.TransactionTypeExpense,
		Amount:          decimal.NewFromInt(50),
		Description:     "silpo",
		FromAccountID:   &account.ID,
		CategoryID:      &category.ID,
	}
	s.NoError(s.db.Create(txn).Error)
	database.CreateTestPending(s.T(), s.db, account, "BNK-1")

	count, err := s.repo.ReferencingTransactionCount(account.ID)
	s.NoError(err)
	s.Equal(int64(2), count)
}

func (s *AccountRepositorySuite) TestDerivedBalance_IgnoresSplitChildren() {
	account := database.CreateTestAccount(s.T(), s.db, "main")
	category := database.CreateTestCategory(s.T(), s.db, "groceries")

	parent := &models.Transaction{
		TransactionType: models.TransactionTypeExpense,
		Amount:          decimal.NewFromInt(300),
		FromAccountID:   &account.ID,
	}
	s.NoError(s.db.Create(parent).Error)

	child := &models.Transaction{
		TransactionType:     models.TransactionTypeExpense,
		Amount:              decimal.NewFromInt(300),
		FromAccountID:       &account.ID,
		CategoryID:          &category.ID,
		ParentTransactionID: &parent.ID,
	}
	s.NoError(s.db.Create(child).Error)

	income := &models.Transaction{
		TransactionType: models.TransactionTypeIncome,
		Amount:          decimal.NewFromInt(1000),
		ToAccountID:     &account.ID,
	}
	s.NoError(s.db.Create(income).Error)

	derived, err := s.repo.DerivedBalance(account.ID)
	s.NoError(err)
	// Only the parent and the income post, the child must not double count
	s.True(derived.Equal(decimal.NewFromInt(700)), "derived = %s", derived)
}
