package persistence

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	appbilling "github.com/proxima/backend/internal/application/billing"
	"github.com/proxima/backend/internal/domain/billing"
	"github.com/proxima/backend/internal/domain/catalog"
	"github.com/proxima/backend/internal/domain/ledger"
	"github.com/proxima/backend/internal/domain/shared"
)

// maxTransactionRetries bounds how often a serialization failure is retried
// before surfacing a conflict to the caller.
const maxTransactionRetries = 3

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations and retries
// serialization failures a bounded number of times.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	var err error
	for attempt := 0; attempt < maxTransactionRetries; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repos := &gormTransactionalRepositories{tx: tx}
			return fn(repos)
		})
		if err == nil || !isSerializationFailure(err) {
			return err
		}
	}
	return shared.ErrConflict.WithMessage("Transaction aborted after repeated concurrent modification")
}

// isSerializationFailure reports whether the error is a transient concurrency
// error worth retrying.
func isSerializationFailure(err error) bool {
	if errors.Is(err, shared.ErrConflict) {
		return true
	}
	msg := err.Error()
	// 40001: serialization_failure, 40P01: deadlock_detected
	return strings.Contains(msg, "SQLSTATE 40001") || strings.Contains(msg, "SQLSTATE 40P01")
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// InvoiceRepo returns the invoice repository scoped to the current transaction.
func (r *gormTransactionalRepositories) InvoiceRepo() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// CreditNoteRepo returns the credit note repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CreditNoteRepo() billing.CreditNoteRepository {
	return NewGormCreditNoteRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PaymentRepo() ledger.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appbilling.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appbilling.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
