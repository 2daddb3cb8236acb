package billing

import (
	"context"

	"github.com/proxima/backend/internal/domain/billing"
	"github.com/proxima/backend/internal/domain/catalog"
	"github.com/proxima/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the repositories a
// billing operation touches. When a function is executed within a scope,
// all repository operations share the same database transaction and are
// committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// Serialization failures are retried a bounded number of times; when
	// retries are exhausted the error carries the CONFLICT code.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction. Product rows read through ProductRepo's FindByIDForUpdate
// are locked for the duration of the transaction, which is what makes
// multi-product stock debits all-or-nothing.
type TransactionalRepositories interface {
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// CreditNoteRepo returns the credit note repository scoped to the current transaction
	CreditNoteRepo() billing.CreditNoteRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() ledger.PaymentRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests with mock repositories.
type NoOpTransactionScope struct {
	productRepo    catalog.ProductRepository
	invoiceRepo    billing.InvoiceRepository
	creditNoteRepo billing.CreditNoteRepository
	paymentRepo    ledger.PaymentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	invoiceRepo billing.InvoiceRepository,
	creditNoteRepo billing.CreditNoteRepository,
	paymentRepo ledger.PaymentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:    productRepo,
		invoiceRepo:    invoiceRepo,
		creditNoteRepo: creditNoteRepo,
		paymentRepo:    paymentRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

// CreditNoteRepo returns the credit note repository.
func (s *NoOpTransactionScope) CreditNoteRepo() billing.CreditNoteRepository {
	return s.creditNoteRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() ledger.PaymentRepository {
	return s.paymentRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
