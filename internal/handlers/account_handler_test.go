package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ggegelya/expensetracker/internal/database"
	"github.com/ggegelya/expensetracker/internal/dto"
	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// AccountHandlerSuite defines the test suite for AccountHandler
type AccountHandlerSuite struct {
	suite.Suite
	env     *testEnv
	handler *AccountHandler
}

func (s *AccountHandlerSuite) SetupTest() {
	s.env = newTestEnv(s.T())
	s.handler = NewAccountHandler(s.env.accounts)
}

func TestAccountHandlerSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerSuite))
}

func (s *AccountHandlerSuite) TestCreateAccount_Success() {
	reqBody := dto.CreateAccountRequest{
		Tag:         "mono",
		Name:        "Monobank Card",
		AccountType: models.AccountTypeCard,
	}

	c, rec := s.env.newContext(http.MethodPost, "/api/v1/accounts", reqBody)
	s.NoError(s.handler.CreateAccount(c))
	s.Equal(http.StatusCreated, rec.Code)

	var created models.Account
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.Equal("mono", created.Tag)
	s.Equal("UAH", created.Currency)
	// First account becomes the default automatically
	s.True(created.IsDefault)
}

func (s *AccountHandlerSuite) TestCreateAccount_InvalidType() {
	reqBody := map[string]interface{}{
		"tag":          "mono",
		"name":         "Monobank Card",
		"account_type": "checking",
	}

	c, rec := s.env.newContext(http.MethodPost, "/api/v1/accounts", reqBody)
	s.NoError(s.handler.CreateAccount(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "VALIDATION_001")
}

func (s *AccountHandlerSuite) TestCreateAccount_DuplicateTag() {
	database.CreateTestAccount(s.T(), s.env.db, "mono")

	reqBody := dto.CreateAccountRequest{
		Tag:         "MONO",
		Name:        "Second Mono",
		AccountType: models.AccountTypeCard,
	}

	c, rec := s.env.newContext(http.MethodPost, "/api/v1/accounts", reqBody)
	s.NoError(s.handler.CreateAccount(c))
	s.Equal(http.StatusConflict, rec.Code)
	s.Contains(rec.Body.String(), "ACCOUNT_003")
}

func (s *AccountHandlerSuite) TestGetAccounts_ReturnsAll() {
	database.CreateTestAccount(s.T(), s.env.db, "mono")
	database.CreateTestAccount(s.T(), s.env.db, "cash")

	c, rec := s.env.newContext(http.MethodGet, "/api/v1/accounts", nil)
	s.NoError(s.handler.GetAccounts(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.AccountListResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(2, resp.Total)
	s.Len(resp.Accounts, 2)
}

func (s *AccountHandlerSuite) TestGetAccount_NotFound() {
	c, rec := s.env.newContext(http.MethodGet, "/api/v1/accounts/x", nil)
	c.SetParamNames("accountId")
	c.SetParamValues("7e640e2e-9e7b-4c9d-a0e7-1f8f0f1f2f3f")

	s.NoError(s.handler.GetAccount(c))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "ACCOUNT_001")
}

func (s *AccountHandlerSuite) TestGetAccount_InvalidID() {
	c, rec := s.env.newContext(http.MethodGet, "/api/v1/accounts/x", nil)
	c.SetParamNames("accountId")
	c.SetParamValues("not-a-uuid")

	s.NoError(s.handler.GetAccount(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "VALIDATION_003")
}

func (s *AccountHandlerSuite) TestUpdateAccount_RenameAndPromote() {
	first := database.CreateTestAccount(s.T(), s.env.db, "mono")
	second := database.CreateTestAccount(s.T(), s.env.db, "cash")
	// Make the first account default so promotion demotes it
	first.IsDefault = true
	s.NoError(s.env.db.Save(first).Error)

	newName := "Wallet"
	promote := true
	reqBody := dto.UpdateAccountRequest{Name: &newName, IsDefault: &promote}

	c, rec := s.env.newContext(http.MethodPut, "/api/v1/accounts/x", reqBody)
	c.SetParamNames("accountId")
	c.SetParamValues(second.ID.String())

	s.NoError(s.handler.UpdateAccount(c))
	s.Equal(http.StatusOK, rec.Code)

	var updated models.Account
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &updated))
	s.Equal("Wallet", updated.Name)
	s.True(updated.IsDefault)

	var demoted models.Account
	s.NoError(s.env.db.First(&demoted, "id = ?", first.ID).Error)
	s.False(demoted.IsDefault)
}

func (s *AccountHandlerSuite) TestDeleteAccount_ReferencedRejected() {
	account := database.CreateTestAccount(s.T(), s.env.db, "mono")
	category := database.CreateTestCategory(s.T(), s.env.db, "groceries")

	txn := &models.Transaction{
		TransactionType: models.TransactionTypeExpense,
		Amount:          decimal.RequireFromString("100.00"),
		Description:     "Silpo",
		CategoryID:      &category.ID,
		FromAccountID:   &account.ID,
	}
	_, err := s.env.ledger.CreateTransaction(context.Background(), txn)
	s.Require().NoError(err)

	c, rec := s.env.newContext(http.MethodDelete, "/api/v1/accounts/x", nil)
	c.SetParamNames("accountId")
	c.SetParamValues(account.ID.String())

	s.NoError(s.handler.DeleteAccount(c))
	s.Equal(http.StatusConflict, rec.Code)
	s.Contains(rec.Body.String(), "ACCOUNT_002")
}

func (s *AccountHandlerSuite) TestDeleteAccount_Success() {
	account := database.CreateTestAccount(s.T(), s.env.db, "spare")

	c, rec := s.env.newContext(http.MethodDelete, "/api/v1/accounts/x", nil)
	c.SetParamNames("accountId")
	c.SetParamValues(account.ID.String())

	s.NoError(s.handler.DeleteAccount(c))
	s.Equal(http.StatusOK, rec.Code)
}
