package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/ggegelya/expensetracker/internal/dto"
	"github.com/ggegelya/expensetracker/internal/errors"
	"github.com/ggegelya/expensetracker/internal/models"
	"github.com/ggegelya/expensetracker/internal/repositories"
	"github.com/ggegelya/expensetracker/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles the transaction ledger HTTP surface
type TransactionHandler struct {
	ledgerService services.LedgerServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(ledgerService services.LedgerServiceInterface) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// QueryTransactions lists posting transactions, date-descending, with
// conjunctive filters
func (h *TransactionHandler) QueryTransactions(c echo.Context) error {
	filters := models.TransactionFilters{
		Type:   c.QueryParam("type"),
		Offset: getIntParam(c, "offset", 0),
		Limit:  getIntParam(c, "limit", 0),
	}

	if accountIDStr := c.QueryParam("account_id"); accountIDStr != "" {
		accountID, err := uuid.Parse(accountIDStr)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid account_id"))
		}
		filters.AccountID = &accountID
	}

	if categoryIDStr := c.QueryParam("category_id"); categoryIDStr != "" {
		categoryID, err := uuid.Parse(categoryIDStr)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid category_id"))
		}
		filters.CategoryID = &categoryID
	}

	if filters.Type != "" && !models.IsValidTransactionType(filters.Type) {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid transaction type"))
	}

	startDate, err := getDateParam(c, "start_date")
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}
	endDate, err := getDateParam(c, "end_date")
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}
	filters.StartDate = startDate
	filters.EndDate = endDate

	transactions, total, err := h.ledgerService.QueryTransactions(c.Request().Context(), filters)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.TransactionListResponse{
		Transactions: transactions,
		Total:        total,
		Offset:       filters.Offset,
		Limit:        len(transactions),
	})
}

// GetTransaction retrieves one transaction with its category and any
// allocation children
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	transactionID, err := getUUIDParam(c, "transactionId")
	if err != nil {
		return err
	}

	transaction, err := h.ledgerService.GetTransaction(c.Request().Context(), transactionID)
	if err != nil {
		return h.mapLedgerErr(c, err)
	}

	return c.JSON(http.StatusOK, transaction)
}

// CreateTransaction records a new transaction and applies its balance effect
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	var req dto.CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return SendError(c, errors.TransactionInvalidAmount)
	}

	categoryID, err := parseOptionalUUID(req.CategoryID)
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid category_id"))
	}
	fromAccountID, err := parseOptionalUUID(req.FromAccountID)
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid from_account_id"))
	}
	toAccountID, err := parseOptionalUUID(req.ToAccountID)
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid to_account_id"))
	}

	transaction := &models.Transaction{
		TransactionType: req.Type,
		Amount:          amount,
		Description:     req.Description,
		CategoryID:      categoryID,
		FromAccountID:   fromAccountID,
		ToAccountID:     toAccountID,
	}
	if req.TransactionDate != nil {
		transaction.TransactionDate = *req.TransactionDate
	}

	created, err := h.ledgerService.CreateTransaction(c.Request().Context(), transaction)
	if err != nil {
		return h.mapLedgerErr(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

// UpdateTransaction edits a transaction. The prior balance effect is reversed
// and the new one applied atomically.
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	transactionID, err := getUUIDParam(c, "transactionId")
	if err != nil {
		return err
	}

	var req dto.UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	ctx := c.Request().Context()
	transaction, err := h.ledgerService.GetTransaction(ctx, transactionID)
	if err != nil {
		return h.mapLedgerErr(c, err)
	}

	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil || amount.LessThanOrEqual(decimal.Zero) {
			return SendError(c, errors.TransactionInvalidAmount)
		}
		transaction.Amount = amount
	}
	if req.Type != nil {
		transaction.TransactionType = *req.Type
	}
	if req.Description != nil {
		transaction.Description = *req.Description
	}
	if req.CategoryID != nil {
		categoryID, err := parseOptionalUUID(req.CategoryID)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid category_id"))
		}
		transaction.CategoryID = categoryID
	}
	if req.FromAccountID != nil {
		fromAccountID, err := parseOptionalUUID(req.FromAccountID)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid from_account_id"))
		}
		transaction.FromAccountID = fromAccountID
	}
	if req.ToAccountID != nil {
		toAccountID, err := parseOptionalUUID(req.ToAccountID)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid to_account_id"))
		}
		transaction.ToAccountID = toAccountID
	}
	if req.TransactionDate != nil {
		transaction.TransactionDate = *req.TransactionDate
	}

	updated, err := h.ledgerService.UpdateTransaction(ctx, transaction)
	if err != nil {
		return h.mapLedgerErr(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteTransaction removes a transaction and reverses its balance effect.
// Deleting a transfer leg removes the whole pair.
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	transactionID, err := getUUIDParam(c, "transactionId")
	if err != nil {
		return err
	}

	if err := h.ledgerService.DeleteTransaction(c.Request().Context(), transactionID); err != nil {
		return h.mapLedgerErr(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Transaction deleted successfully"})
}

// BulkDeleteTransactions deletes several transactions in one atomic unit
func (h *TransactionHandler) BulkDeleteTransactions(c echo.Context) error {
	var req dto.BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	ids := make([]uuid.UUID, 0, len(req.TransactionIDs))
	for _, idStr := range req.TransactionIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid transaction id"))
		}
		ids = append(ids, id)
	}

	deleted, err := h.ledgerService.BulkDeleteTransactions(c.Request().Context(), ids)
	if err != nil {
		return h.mapLedgerErr(c, err)
	}

	return c.JSON(http.StatusOK, dto.BulkDeleteResponse{Deleted: deleted})
}

// SplitTransaction replaces a transaction's allocation children with the
// requested category slices. Allocations must sum to the parent amount.
func (h *TransactionHandler) SplitTransaction(c echo.Context) error {
	transactionID, err := getUUIDParam(c, "transactionId")
	if err != nil {
		return err
	}

	var req dto.SplitTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	allocations := make([]services.SplitAllocation, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		categoryID, err := uuid.Parse(a.CategoryID)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid allocation category_id"))
		}
		amount, err := decimal.NewFromString(a.Amount)
		if err != nil || amount.LessThanOrEqual(decimal.Zero) {
			return SendError(c, errors.TransactionInvalidAmount, errors.WithDetails("Allocation amounts must be positive"))
		}
		allocations = append(allocations, services.SplitAllocation{
			CategoryID: categoryID,
			Amount:     amount,
		})
	}

	parent, err := h.ledgerService.SplitTransaction(c.Request().Context(), transactionID, allocations)
	if err != nil {
		return h.mapLedgerErr(c, err)
	}

	return c.JSON(http.StatusOK, parent)
}

// UnsplitTransaction removes a transaction's allocation children
func (h *TransactionHandler) UnsplitTransaction(c echo.Context) error {
	transactionID, err := getUUIDParam(c, "transactionId")
	if err != nil {
		return err
	}

	parent, err := h.ledgerService.UnsplitTransaction(c.Request().Context(), transactionID)
	if err != nil {
		return h.mapLedgerErr(c, err)
	}

	return c.JSON(http.StatusOK, parent)
}

// CreateTransfer moves money between two accounts as a linked pair of legs
func (h *TransactionHandler) CreateTransfer(c echo.Context) error {
	var req dto.CreateTransferRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	fromAccountID, err := uuid.Parse(req.FromAccountID)
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid from_account_id"))
	}
	toAccountID, err := uuid.Parse(req.ToAccountID)
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid to_account_id"))
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return SendError(c, errors.TransactionInvalidAmount)
	}

	transferReq := services.TransferRequest{
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
		Amount:        amount,
		Description:   req.Description,
	}
	if req.TransactionDate != nil {
		transferReq.Date = *req.TransactionDate
	}

	legs, err := h.ledgerService.CreateTransfer(c.Request().Context(), transferReq)
	if err != nil {
		return h.mapLedgerErr(c, err)
	}

	response := dto.TransferResponse{Transactions: legs}
	if len(legs) > 0 && legs[0].TransferGroupID != nil {
		response.TransferGroupID = legs[0].TransferGroupID.String()
	}

	return c.JSON(http.StatusCreated, response)
}

// CategoryBreakdown reports per-category expense totals over a period
func (h *TransactionHandler) CategoryBreakdown(c echo.Context) error {
	startDate, err := getDateParam(c, "start_date")
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}
	endDate, err := getDateParam(c, "end_date")
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}

	var accountID *uuid.UUID
	if accountIDStr := c.QueryParam("account_id"); accountIDStr != "" {
		id, err := uuid.Parse(accountIDStr)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid account_id"))
		}
		accountID = &id
	}

	breakdown, err := h.ledgerService.CategoryBreakdown(c.Request().Context(), startDate, endDate, accountID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.CategoryBreakdownResponse{
		Breakdown: breakdown,
		StartDate: startDate,
		EndDate:   endDate,
	})
}

// RebuildBalances re-derives every account balance from the posted ledger and
// repairs any drift
func (h *TransactionHandler) RebuildBalances(c echo.Context) error {
	drifts, err := h.ledgerService.RebuildBalances(c.Request().Context())
	if err != nil {
		return SendSystemError(c, err)
	}

	repaired := 0
	for _, d := range drifts {
		if !d.Drift.IsZero() {
			repaired++
		}
	}

	return c.JSON(http.StatusOK, dto.AccountDriftResponse{
		Accounts: drifts,
		Repaired: repaired,
	})
}

func (h *TransactionHandler) mapLedgerErr(c echo.Context, err error) error {
	var mismatch *services.AllocationMismatchError
	if stderrors.As(err, &mismatch) {
		return SendError(c, errors.TransactionSplitMismatch, errors.WithDetails(mismatch.Error()))
	}

	switch {
	case stderrors.Is(err, repositories.ErrTransactionNotFound):
		return SendError(c, errors.TransactionNotFound)
	case stderrors.Is(err, repositories.ErrAccountNotFound):
		return SendError(c, errors.AccountNotFound)
	case stderrors.Is(err, repositories.ErrCategoryNotFound):
		return SendError(c, errors.CategoryNotFound)
	case stderrors.Is(err, repositories.ErrBankTransactionExists):
		return SendError(c, errors.TransactionDuplicateBankTxn)
	case stderrors.Is(err, models.ErrInvalidAmount):
		return SendError(c, errors.TransactionInvalidAmount)
	case stderrors.Is(err, models.ErrFromAccountRequired),
		stderrors.Is(err, models.ErrToAccountRequired):
		return SendError(c, errors.TransactionInvalidPairing, errors.WithDetails(err.Error()))
	case stderrors.Is(err, models.ErrInvalidTransactionType):
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails(err.Error()))
	case stderrors.Is(err, services.ErrSplitChildLocked):
		return SendError(c, errors.TransactionSplitChildLocked)
	case stderrors.Is(err, services.ErrSplitParentLocked):
		return SendError(c, errors.TransactionSplitParentLocked)
	case stderrors.Is(err, services.ErrTransferLegLocked):
		return SendError(c, errors.TransactionTransferLegLocked)
	case stderrors.Is(err, services.ErrSplitNotAllowed):
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	case stderrors.Is(err, services.ErrNotSplit):
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	case stderrors.Is(err, services.ErrSameAccountTransfer):
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	default:
		return SendSystemError(c, err)
	}
}
