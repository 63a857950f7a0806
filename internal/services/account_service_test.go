package services

import (
	"context"
	"testing"
	"time"

	"github.com/ggegelya/expensetracker/internal/database"
	"github.com/ggegelya/expensetracker/internal/models"
	"github.com/ggegelya/expensetracker/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AccountServiceSuite struct {
	suite.Suite
	db       *database.DB
	service  AccountServiceInterface
	notifier *ChangeNotifier
	ctx      context.Context
}

func (s *AccountServiceSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.ctx = context.Background()

	s.notifier = NewChangeNotifier(10*time.Millisecond, testLogger())
	s.notifier.Start()

	accounts := repositories.NewAccountRepository(s.db.DB)
	s.service = NewAccountService(s.db, accounts, s.notifier, testLogger())
}

func (s *AccountServiceSuite) TearDownTest() {
	s.notifier.Stop()
	database.CleanupTestDB(s.T(), s.db)
}

func TestAccountServiceSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceSuite))
}

func (s *AccountServiceSuite) create(tag string, isDefault bool) *models.Account {
	s.T().Helper()

	account, err := s.service.CreateAccount(s.ctx, &models.Account{
		Name:        "Account " + tag,
		Tag:         tag,
		AccountType: models.AccountTypeCard,
		IsDefault:   isDefault,
	})
	s.Require().NoError(err)
	return account
}

func (s *AccountServiceSuite) defaultTags() []string {
	s.T().Helper()

	all, err := s.service.GetAccounts(s.ctx)
	s.Require().NoError(err)

	var tags []string
	for _, account := range all {
		if account.IsDefault {
			tags = append(tags, account.Tag)
		}
	}
	return tags
}

func (s *AccountServiceSuite) TestFirstAccountBecomesDefault() {
	s.create("mono", false)
	s.Equal([]string{"mono"}, s.defaultTags())
}

func (s *AccountServiceSuite) TestNewDefaultDemotesPrevious() {
	s.create("mono", false)
	s.create("cash", true)

	s.Equal([]string{"cash"}, s.defaultTags())
}

func (s *AccountServiceSuite) TestUpdatePromotesDefault() {
	s.create("mono", false)
	second := s.create("cash", false)

	second.IsDefault = true
	_, err := s.service.UpdateAccount(s.ctx, second)
	s.Require().NoError(err)

	s.Equal([]string{"cash"}, s.defaultTags())
}

func (s *AccountServiceSuite) TestUnsettingDefaultRejected() {
	account := s.create("mono", false)

	account.IsDefault = false
	_, err := s.service.UpdateAccount(s.ctx, account)
	s.ErrorIs(err, ErrDefaultAccountRequired)
}

func (s *AccountServiceSuite) TestDeleteReferencedAccountRejected() {
	account := s.create("mono", false)

	txn := &models.Transaction{
		TransactionType: models.TransactionTypeExpense,
		Amount:          decimal.NewFromInt(10),
		FromAccountID:   &account.ID,
	}
	s.Require().NoError(s.db.Create(txn).Error)

	err := s.service.DeleteAccount(s.ctx, account.ID)
	s.ErrorIs(err, ErrAccountInUse)
}

func (s *AccountServiceSuite) TestDeleteDefaultPromotesOldest() {
	first := s.create("mono", false)
	s.create("cash", false)

	s.Require().NoError(s.service.DeleteAccount(s.ctx, first.ID))
	s.Equal([]string{"cash"}, s.defaultTags())
}

func (s *AccountServiceSuite) TestDuplicateTagRejected() {
	s.create("mono", false)

	_, err := s.service.CreateAccount(s.ctx, &models.Account{
		Name:        "Shadow",
		Tag:         "MONO",
		AccountType: models.AccountTypeCash,
	})
	s.ErrorIs(err, repositories.ErrAccountTagExists)
}
