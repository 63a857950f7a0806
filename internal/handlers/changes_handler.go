package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ggegelya/expensetracker/internal/services"

	"github.com/labstack/echo/v4"
)

// ChangesHandler streams ledger change signals to connected clients over
// Server-Sent Events. Clients re-query on each signal, the stream carries no
// diffs.
type ChangesHandler struct {
	notifier *services.ChangeNotifier
}

// NewChangesHandler creates a new change stream handler
func NewChangesHandler(notifier *services.ChangeNotifier) *ChangesHandler {
	return &ChangesHandler{notifier: notifier}
}

// StreamChanges subscribes the connection to coalesced change signals until
// the client disconnects
func (h *ChangesHandler) StreamChanges(c echo.Context) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	id, signals := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(id)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case signal, ok := <-signals:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(signal)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(resp, "event: change\ndata: %s\n\n", payload); err != nil {
				return err
			}
			resp.Flush()
		}
	}
}
