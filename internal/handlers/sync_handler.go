package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/ggegelya/expensetracker/internal/dto"
	"github.com/ggegelya/expensetracker/internal/errors"
	"github.com/ggegelya/expensetracker/internal/services"

	"github.com/labstack/echo/v4"
)

// SyncHandler handles device pairing for the sync surface
type SyncHandler struct {
	tokenService services.TokenServiceInterface
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(tokenService services.TokenServiceInterface) *SyncHandler {
	return &SyncHandler{tokenService: tokenService}
}

// PairDevice exchanges the shared pairing secret for a device token
func (h *SyncHandler) PairDevice(c echo.Context) error {
	var req dto.PairDeviceRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	token, expiresAt, err := h.tokenService.Pair(req.PairingSecret, req.DeviceName)
	if err != nil {
		if stderrors.Is(err, services.ErrInvalidPairingSecret) {
			return SendError(c, errors.SyncInvalidPairingSecret)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.PairDeviceResponse{
		Token:      token,
		ExpiresAt:  expiresAt,
		DeviceName: req.DeviceName,
	})
}
