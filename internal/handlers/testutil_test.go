package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ggegelya/expensetracker/internal/database"
	"github.com/ggegelya/expensetracker/internal/repositories"
	"github.com/ggegelya/expensetracker/internal/services"

	"github.com/labstack/echo/v4"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv wires real repositories and services over an in-memory database so
// handler tests exercise the full request path
type testEnv struct {
	db         *database.DB
	echo       *echo.Echo
	notifier   *services.ChangeNotifier
	ledger     services.LedgerServiceInterface
	accounts   services.AccountServiceInterface
	categories services.CategoryServiceInterface
	pendings   services.PendingServiceInterface
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := database.SetupTestDB(t)
	logger := testLogger()

	accountRepo := repositories.NewAccountRepository(db.DB)
	categoryRepo := repositories.NewCategoryRepository(db.DB)
	transactionRepo := repositories.NewTransactionRepository(db.DB)
	pendingRepo := repositories.NewPendingTransactionRepository(db.DB)
	merchantRuleRepo := repositories.NewMerchantRuleRepository(db.DB)

	notifier := services.NewChangeNotifier(10*time.Millisecond, logger)
	notifier.Start()
	t.Cleanup(notifier.Stop)

	metrics := services.NewNoopMetrics()

	ledger := services.NewLedgerService(
		db, transactionRepo, accountRepo, categoryRepo, pendingRepo,
		notifier, metrics, logger,
	)
	accounts := services.NewAccountService(db, accountRepo, notifier, logger)
	categories := services.NewCategoryService(db, categoryRepo, notifier, logger)
	suggestions := services.NewSuggestionService(merchantRuleRepo, categoryRepo, metrics, logger)
	pendings := services.NewPendingService(pendingRepo, suggestions, ledger, metrics, logger)

	e := echo.New()
	e.Validator = NewValidator()

	return &testEnv{
		db:         db,
		echo:       e,
		notifier:   notifier,
		ledger:     ledger,
		accounts:   accounts,
		categories: categories,
		pendings:   pendings,
	}
}

// newContext builds an echo context with an optional JSON body
func (env *testEnv) newContext(method, path string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	return env.echo.NewContext(req, rec), rec
}
