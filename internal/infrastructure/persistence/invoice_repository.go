package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/proxima/backend/internal/domain/billing"
	"github.com/proxima/backend/internal/domain/shared"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GORM invoice repository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Save creates or updates an invoice together with its lines
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing billing.Invoice
		err := tx.First(&existing, "id = ?", invoice.ID).Error
		isNew := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !isNew {
			return err
		}

		if isNew {
			if err := tx.Create(invoice).Error; err != nil {
				return translateError(err)
			}
			return nil
		}

		if err := tx.Omit("Lines").Save(invoice).Error; err != nil {
			return translateError(err)
		}
		return r.syncLines(tx, invoice)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion, err := readVersion(tx, &billing.Invoice{}, invoice.ID)
		if err != nil {
			return err
		}

		// Domain methods may have bumped the in-memory version already
		if invoice.Version != currentVersion && invoice.Version != currentVersion+1 {
			return shared.ErrConflict.WithMessage("The invoice has been modified by another user")
		}
		invoice.Version = currentVersion + 1
		invoice.UpdatedAt = time.Now()

		result := tx.Model(&billing.Invoice{}).
			Where("id = ? AND version = ?", invoice.ID, currentVersion).
			Updates(map[string]interface{}{
				"number":       invoice.Number,
				"client_id":    invoice.ClientID,
				"client_name":  invoice.ClientName,
				"issue_date":   invoice.IssueDate,
				"parcel_count": invoice.ParcelCount,
				"total_amount": invoice.TotalAmount,
				"status":       invoice.Status,
				"finalized_at": invoice.FinalizedAt,
				"version":      invoice.Version,
				"updated_at":   invoice.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConflict.WithMessage("The invoice has been modified by another user")
		}

		return r.syncLines(tx, invoice)
	})
}

// syncLines replaces the stored lines with the aggregate's current lines
func (r *GormInvoiceRepository) syncLines(tx *gorm.DB, invoice *billing.Invoice) error {
	currentLineIDs := make([]uuid.UUID, len(invoice.Lines))
	for i, line := range invoice.Lines {
		currentLineIDs[i] = line.ID
	}

	if len(currentLineIDs) > 0 {
		if err := tx.Where("invoice_id = ? AND id NOT IN ?", invoice.ID, currentLineIDs).
			Delete(&billing.InvoiceLine{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&billing.InvoiceLine{}).Error; err != nil {
			return err
		}
	}

	for i := range invoice.Lines {
		invoice.Lines[i].InvoiceID = invoice.ID
		if err := tx.Save(&invoice.Lines[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// FindByID finds an invoice by ID with its lines
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by its number with its lines
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*billing.Invoice, error) {
	var invoice billing.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&invoice, "number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAll finds invoices with optional filters and pagination
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*billing.Invoice], error) {
	var invoices []*billing.Invoice
	var total int64

	countQuery := r.db.WithContext(ctx).Model(&billing.Invoice{})
	countQuery = r.applyFilterWithoutPagination(countQuery, filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paginated[*billing.Invoice]{}, err
	}

	query := r.db.WithContext(ctx).Model(&billing.Invoice{}).Preload("Lines")
	query = r.applyFilter(query, filter)
	if err := query.Find(&invoices).Error; err != nil {
		return shared.Paginated[*billing.Invoice]{}, err
	}

	return shared.NewPaginated(invoices, total, filter.Page, filter.PageSize), nil
}

// FindByClientID finds all invoices for a client, most recent first
func (r *GormInvoiceRepository) FindByClientID(ctx context.Context, clientID uuid.UUID) ([]*billing.Invoice, error) {
	var invoices []*billing.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("client_id = ?", clientID).
		Order("issue_date DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// CountByClientID counts invoices for a client
func (r *GormInvoiceRepository) CountByClientID(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountByProductID counts invoices that reference a product on any line
func (r *GormInvoiceRepository) CountByProductID(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&billing.InvoiceLine{}).
		Where("product_id = ?", productID).
		Distinct("invoice_id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateNumber generates a unique invoice number.
// Format: FAC-YYYY-NNNNN (e.g. FAC-2026-00001)
func (r *GormInvoiceRepository) GenerateNumber(ctx context.Context) (string, error) {
	return generateNumber(ctx, r.db, &billing.Invoice{}, "FAC", "number")
}

// Delete deletes an invoice and its lines
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&billing.InvoiceLine{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&billing.Invoice{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
		query = query.Order("issue_date DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR client_name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "client_id":
			query = query.Where("client_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("issue_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("issue_date <= ?", t)
			}
		}
	}

	return query
}

// generateNumber generates a sequential document number scoped to the current year.
// Format: PREFIX-YYYY-NNNNN
func generateNumber(ctx context.Context, db *gorm.DB, model interface{}, prefix, column string) (string, error) {
	year := time.Now().Year()
	fullPrefix := fmt.Sprintf("%s-%d-", prefix, year)

	var lastNumber string
	err := db.WithContext(ctx).
		Model(model).
		Select(column).
		Where(column+" LIKE ?", fullPrefix+"%").
		Order(column + " DESC").
		Limit(1).
		Scan(&lastNumber).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if lastNumber != "" {
		parts := strings.Split(lastNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	number := fmt.Sprintf("%s%05d", fullPrefix, nextNum)

	// Verify uniqueness, stepping forward on collision
	for i := 0; i < 100; i++ {
		var count int64
		if err := db.WithContext(ctx).
			Model(model).
			Where(column+" = ?", number).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			break
		}
		nextNum++
		number = fmt.Sprintf("%s%05d", fullPrefix, nextNum)
	}

	return number, nil
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
