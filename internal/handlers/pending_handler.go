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

// PendingHandler handles the bank import review queue
type PendingHandler struct {
	pendingService services.PendingServiceInterface
}

// NewPendingHandler creates a new pending transaction handler
func NewPendingHandler(pendingService services.PendingServiceInterface) *PendingHandler {
	return &PendingHandler{pendingService: pendingService}
}

// ListPending lists the review queue, optionally for one account
func (h *PendingHandler) ListPending(c echo.Context) error {
	var accountID *uuid.UUID
	if accountIDStr := c.QueryParam("account_id"); accountIDStr != "" {
		id, err := uuid.Parse(accountIDStr)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid account_id"))
		}
		accountID = &id
	}

	pending, err := h.pendingService.ListPending(c.Request().Context(), accountID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.PendingListResponse{
		Pending: pending,
		Total:   len(pending),
	})
}

// ImportPending accepts one bank feed row into the review queue with a
// category suggestion attached
func (h *PendingHandler) ImportPending(c echo.Context) error {
	var req dto.ImportPendingRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid account_id"))
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return SendError(c, errors.TransactionInvalidAmount)
	}

	pending := &models.PendingTransaction{
		BankTransactionID: req.BankTransactionID,
		AccountID:         accountID,
		Amount:            amount,
		TransactionType:   req.Type,
		Description:       req.RawDescription,
		MerchantName:      req.MerchantName,
	}
	if req.TransactionDate != nil {
		pending.TransactionDate = *req.TransactionDate
	}

	imported, err := h.pendingService.ImportPending(c.Request().Context(), pending)
	if err != nil {
		return h.mapPendingErr(c, err)
	}

	return c.JSON(http.StatusCreated, imported)
}

// ProcessPending confirms a pending import, promoting it to a posted
// transaction. An explicit category overrides the suggestion.
func (h *PendingHandler) ProcessPending(c echo.Context) error {
	pendingID, err := getUUIDParam(c, "pendingId")
	if err != nil {
		return err
	}

	var req dto.ProcessPendingRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	categoryID, err := parseOptionalUUID(req.CategoryID)
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid category_id"))
	}

	transaction, err := h.pendingService.Process(c.Request().Context(), pendingID, categoryID, req.Description)
	if err != nil {
		return h.mapPendingErr(c, err)
	}

	return c.JSON(http.StatusOK, dto.ProcessPendingResponse{Transaction: transaction})
}

// DismissPending marks a pending import dismissed without posting anything
func (h *PendingHandler) DismissPending(c echo.Context) error {
	pendingID, err := getUUIDParam(c, "pendingId")
	if err != nil {
		return err
	}

	if err := h.pendingService.Dismiss(c.Request().Context(), pendingID); err != nil {
		return h.mapPendingErr(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Pending transaction dismissed"})
}

func (h *PendingHandler) mapPendingErr(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, repositories.ErrPendingNotFound):
		return SendError(c, errors.PendingNotFound)
	case stderrors.Is(err, repositories.ErrPendingAlreadyProcessed):
		return SendError(c, errors.PendingAlreadyProcessed)
	case stderrors.Is(err, repositories.ErrPendingImportExists),
		stderrors.Is(err, repositories.ErrBankTransactionExists):
		return SendError(c, errors.TransactionDuplicateBankTxn)
	case stderrors.Is(err, repositories.ErrAccountNotFound):
		return SendError(c, errors.AccountNotFound)
	case stderrors.Is(err, repositories.ErrCategoryNotFound):
		return SendError(c, errors.CategoryNotFound)
	case stderrors.Is(err, models.ErrInvalidAmount):
		return SendError(c, errors.TransactionInvalidAmount)
	default:
		return SendSystemError(c, err)
	}
}
