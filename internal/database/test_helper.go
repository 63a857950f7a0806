package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/ggegelya/expensetracker/internal/config"
	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	// A second pool connection would get its own empty in-memory database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	testDB := &DB{
		DB: db,
		config: &config.DatabaseConfig{
			MaxConnections: 1,
			MaxIdleConns:   1,
		},
	}

	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return testDB
}

func CreateTestAccount(t *testing.T, db *DB, tag string) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:        "Test " + tag,
		Tag:         tag,
		AccountType: models.AccountTypeCard,
		Balance:     decimal.Zero,
		Currency:    "UAH",
	}

	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}

	return account
}

func CreateTestAccountWithBalance(t *testing.T, db *DB, tag string, balance decimal.Decimal) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:        "Test " + tag,
		Tag:         tag,
		AccountType: models.AccountTypeCard,
		Balance:     balance,
		Currency:    "UAH",
	}

	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}

	return account
}

func CreateTestCategory(t *testing.T, db *DB, key string) *models.Category {
	t.Helper()

	category := &models.Category{
		Key:  key,
		Name: "Test " + key,
	}

	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}

	return category
}

func CreateTestPending(t *testing.T, db *DB, account *models.Account, bankTxnID string) *models.PendingTransaction {
	t.Helper()

	pending := &models.PendingTransaction{
		BankTransactionID: bankTxnID,
		Amount:            decimal.NewFromInt(100),
		Description:       "SUPERMARKET SILPO",
		MerchantName:      "Silpo",
		TransactionDate:   time.Now().UTC(),
		TransactionType:   models.TransactionTypeExpense,
		AccountID:         account.ID,
	}

	if err := db.Create(pending).Error; err != nil {
		t.Fatalf("failed to create test pending transaction: %v", err)
	}

	return pending
}

func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	tables := []string{
		"merchant_rules",
		"pending_transactions",
		"transactions",
		"categories",
		"accounts",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("failed to cleanup table %s: %v", table, err)
		}
	}
}
