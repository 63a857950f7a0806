package database

import (
	"fmt"
	"log"
	"time"

	"github.com/ggegelya/expensetracker/internal/config"
	"github.com/ggegelya/expensetracker/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.Account{},
		&models.Category{},
		&models.Transaction{},
		&models.PendingTransaction{},
		&models.MerchantRule{},
	)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) Transaction(fn func(*gorm.DB) error) error {
	return db.DB.Transaction(fn)
}

func (db *DB) CreateIndexes() error {
	queries := []string{
		// Account indexes
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_tag_normalized ON accounts(tag_normalized)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_single_default ON accounts(is_default) WHERE is_default",
		// Transaction indexes
		"CREATE INDEX IF NOT EXISTS idx_transactions_from_account_id ON transactions(from_account_id)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_to_account_id ON transactions(to_account_id)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_category_id ON transactions(category_id)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_parent_id ON transactions(parent_transaction_id)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_transfer_group ON transactions(transfer_group_id) WHERE transfer_group_id IS NOT NULL",
		"CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_bank_txn_id ON transactions(bank_transaction_id) WHERE bank_transaction_id IS NOT NULL",
		// Pending transaction indexes
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_pending_bank_txn_id ON pending_transactions(bank_transaction_id)",
		"CREATE INDEX IF NOT EXISTS idx_pending_status ON pending_transactions(status)",
		"CREATE INDEX IF NOT EXISTS idx_pending_account_id ON pending_transactions(account_id)",
		// Merchant rule indexes
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_merchant_rules_match_key ON merchant_rules(match_key)",
	}

	for _, query := range queries {
		if err := db.DB.Exec(query).Error; err != nil {
			log.Printf("Failed to create index: %s, error: %v", query, err)
		}
	}

	return nil
}

// Initialize creates and configures the database connection
func Initialize(cfg *config.Config) (*DB, error) {
	db, err := New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Run SQL-based migrations using golang-migrate if enabled
	if err := RunMigrationsIfEnabled(sqlDB); err != nil {
		log.Printf("Warning: migration runner failed: %v", err)
		log.Println("Falling back to GORM AutoMigrate...")

		if err := db.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if err := db.CreateIndexes(); err != nil {
		log.Printf("Warning: failed to create some indexes: %v", err)
	}

	log.Println("Database initialized successfully")

	return db, nil
}
