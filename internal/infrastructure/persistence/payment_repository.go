package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/proxima/backend/internal/domain/ledger"
	"github.com/proxima/backend/internal/domain/shared"
)

// GormPaymentRepository implements ledger.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GORM payment repository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save creates or updates a payment together with its allocations
func (r *GormPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ledger.Payment
		err := tx.First(&existing, "id = ?", payment.ID).Error
		isNew := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !isNew {
			return err
		}

		if isNew {
			if err := tx.Create(payment).Error; err != nil {
				return translateError(err)
			}
			return nil
		}

		if err := tx.Omit("Allocations").Save(payment).Error; err != nil {
			return translateError(err)
		}
		return r.syncAllocations(tx, payment)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, payment *ledger.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion, err := readVersion(tx, &ledger.Payment{}, payment.ID)
		if err != nil {
			return err
		}

		// Domain methods may have bumped the in-memory version already
		if payment.Version != currentVersion && payment.Version != currentVersion+1 {
			return shared.ErrConflict.WithMessage("The payment has been modified by another user")
		}
		payment.Version = currentVersion + 1
		payment.UpdatedAt = time.Now()

		result := tx.Model(&ledger.Payment{}).
			Where("id = ? AND version = ?", payment.ID, currentVersion).
			Updates(map[string]interface{}{
				"number":       payment.Number,
				"client_id":    payment.ClientID,
				"amount":       payment.Amount,
				"bank":         payment.Bank,
				"payment_date": payment.PaymentDate,
				"due_date":     payment.DueDate,
				"version":      payment.Version,
				"updated_at":   payment.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConflict.WithMessage("The payment has been modified by another user")
		}

		return r.syncAllocations(tx, payment)
	})
}

// syncAllocations replaces the stored allocations with the aggregate's current ones
func (r *GormPaymentRepository) syncAllocations(tx *gorm.DB, payment *ledger.Payment) error {
	currentIDs := make([]uuid.UUID, len(payment.Allocations))
	for i, alloc := range payment.Allocations {
		currentIDs[i] = alloc.ID
	}

	if len(currentIDs) > 0 {
		if err := tx.Where("payment_id = ? AND id NOT IN ?", payment.ID, currentIDs).
			Delete(&ledger.Allocation{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("payment_id = ?", payment.ID).
			Delete(&ledger.Allocation{}).Error; err != nil {
			return err
		}
	}

	for i := range payment.Allocations {
		payment.Allocations[i].PaymentID = payment.ID
		if err := tx.Save(&payment.Allocations[i]).Error; err != nil {
			return translateError(err)
		}
	}

	return nil
}

// FindByID finds a payment by ID with its allocations
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	var payment ledger.Payment
	err := r.db.WithContext(ctx).
		Preload("Allocations").
		First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByNumber finds a payment by its number with its allocations
func (r *GormPaymentRepository) FindByNumber(ctx context.Context, number string) (*ledger.Payment, error) {
	var payment ledger.Payment
	err := r.db.WithContext(ctx).
		Preload("Allocations").
		First(&payment, "number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindAll finds payments with optional filters and pagination
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*ledger.Payment], error) {
	var payments []*ledger.Payment
	var total int64

	countQuery := r.db.WithContext(ctx).Model(&ledger.Payment{})
	countQuery = r.applyFilterWithoutPagination(countQuery, filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paginated[*ledger.Payment]{}, err
	}

	query := r.db.WithContext(ctx).Model(&ledger.Payment{}).Preload("Allocations")
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("payment_date DESC")
	}

	if err := query.Find(&payments).Error; err != nil {
		return shared.Paginated[*ledger.Payment]{}, err
	}

	return shared.NewPaginated(payments, total, filter.Page, filter.PageSize), nil
}

// FindByClientID finds all payments for a client, most recent first
func (r *GormPaymentRepository) FindByClientID(ctx context.Context, clientID uuid.UUID) ([]*ledger.Payment, error) {
	var payments []*ledger.Payment
	err := r.db.WithContext(ctx).
		Preload("Allocations").
		Where("client_id = ?", clientID).
		Order("payment_date DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// SumAllocatedToInvoice returns the total allocated to an invoice across all payments
func (r *GormPaymentRepository) SumAllocatedToInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&ledger.Allocation{}).
		Select("SUM(amount)").
		Where("invoice_id = ?", invoiceID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// SumAllocatedToInvoiceExcludingPayment returns the total allocated to an invoice
// by every payment other than the given one
func (r *GormPaymentRepository) SumAllocatedToInvoiceExcludingPayment(ctx context.Context, invoiceID, paymentID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&ledger.Allocation{}).
		Select("SUM(amount)").
		Where("invoice_id = ? AND payment_id <> ?", invoiceID, paymentID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// GenerateNumber generates a unique payment number.
// Format: REG-YYYY-NNNNN (e.g. REG-2026-00001)
func (r *GormPaymentRepository) GenerateNumber(ctx context.Context) (string, error) {
	return generateNumber(ctx, r.db, &ledger.Payment{}, "REG", "number")
}

// Delete deletes a payment and its allocations
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_id = ?", id).Delete(&ledger.Allocation{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&ledger.Payment{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPaymentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR bank ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "client_id":
			query = query.Where("client_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("payment_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("payment_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)
