package handlers

import (
	"fmt"
	"time"

	"github.com/ggegelya/expensetracker/internal/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func getIntParam(c echo.Context, name string, defaultValue int) int {
	param := c.QueryParam(name)
	if param == "" {
		return defaultValue
	}

	var value int
	if _, err := fmt.Sscanf(param, "%d", &value); err != nil {
		return defaultValue
	}

	return value
}

// getUUIDParam parses a path parameter as a UUID. The second return value is
// the response already written when parsing fails.
func getUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.UUID{}, SendError(c, errors.ValidationInvalidFormat,
			errors.WithDetails(fmt.Sprintf("Invalid %s", name)))
	}
	return id, nil
}

// parseOptionalUUID converts an optional string field to a uuid pointer
func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// getDateParam parses an RFC3339 or date-only query parameter
func getDateParam(c echo.Context, name string) (*time.Time, error) {
	param := c.QueryParam(name)
	if param == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, param); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", param)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, param)
	}
	return &t, nil
}
