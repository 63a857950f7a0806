package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/ggegelya/expensetracker/internal/dto"
	"github.com/ggegelya/expensetracker/internal/errors"
	"github.com/ggegelya/expensetracker/internal/models"
	"github.com/ggegelya/expensetracker/internal/repositories"
	"github.com/ggegelya/expensetracker/internal/services"

	"github.com/labstack/echo/v4"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService services.AccountServiceInterface
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService services.AccountServiceInterface) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccount creates a new ledger account
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	var req dto.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	account := &models.Account{
		Name:        req.Name,
		Tag:         req.Tag,
		AccountType: req.AccountType,
		Currency:    req.Currency,
		IsDefault:   req.IsDefault,
	}

	created, err := h.accountService.CreateAccount(c.Request().Context(), account)
	if err != nil {
		return h.mapAccountErr(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

// GetAccount retrieves a specific account by ID
func (h *AccountHandler) GetAccount(c echo.Context) error {
	accountID, err := getUUIDParam(c, "accountId")
	if err != nil {
		return err
	}

	account, err := h.accountService.GetAccount(c.Request().Context(), accountID)
	if err != nil {
		return h.mapAccountErr(c, err)
	}

	return c.JSON(http.StatusOK, account)
}

// GetAccounts lists all accounts with their balances
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	accounts, err := h.accountService.GetAccounts(c.Request().Context())
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AccountListResponse{
		Accounts: accounts,
		Total:    len(accounts),
	})
}

// UpdateAccount edits account metadata. Balance is owned by the transaction
// ledger and cannot be set here.
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	accountID, err := getUUIDParam(c, "accountId")
	if err != nil {
		return err
	}

	var req dto.UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	ctx := c.Request().Context()
	account, err := h.accountService.GetAccount(ctx, accountID)
	if err != nil {
		return h.mapAccountErr(c, err)
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Tag != nil {
		account.Tag = *req.Tag
	}
	if req.AccountType != nil {
		account.AccountType = *req.AccountType
	}
	if req.Currency != nil {
		account.Currency = *req.Currency
	}
	if req.IsDefault != nil {
		account.IsDefault = *req.IsDefault
	}

	updated, err := h.accountService.UpdateAccount(ctx, account)
	if err != nil {
		return h.mapAccountErr(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteAccount removes an account that no transactions reference
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	accountID, err := getUUIDParam(c, "accountId")
	if err != nil {
		return err
	}

	if err := h.accountService.DeleteAccount(c.Request().Context(), accountID); err != nil {
		return h.mapAccountErr(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Account deleted successfully"})
}

func (h *AccountHandler) mapAccountErr(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, repositories.ErrAccountNotFound):
		return SendError(c, errors.AccountNotFound)
	case stderrors.Is(err, repositories.ErrAccountTagExists):
		return SendError(c, errors.AccountDuplicateTag)
	case stderrors.Is(err, services.ErrAccountInUse):
		return SendError(c, errors.AccountInUse)
	case stderrors.Is(err, services.ErrDefaultAccountRequired):
		return SendError(c, errors.ValidationGeneral,
			errors.WithDetails("One account must remain the default, promote another account instead"))
	case stderrors.Is(err, models.ErrInvalidAccountType):
		return SendError(c, errors.AccountInvalidType)
	case stderrors.Is(err, models.ErrInvalidAccountTag),
		stderrors.Is(err, models.ErrInvalidCurrency):
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails(err.Error()))
	default:
		return SendSystemError(c, err)
	}
}
