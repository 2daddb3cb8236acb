package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/proxima/backend/internal/domain/billing"
	"github.com/proxima/backend/internal/domain/shared"
)

// GormCreditNoteRepository implements billing.CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GORM credit note repository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

// Save creates a credit note with its lines.
// Credit notes are immutable once accepted so only inserts are expected.
func (r *GormCreditNoteRepository) Save(ctx context.Context, note *billing.CreditNote) error {
	return translateError(r.db.WithContext(ctx).Create(note).Error)
}

// FindByID finds a credit note by ID with its lines
func (r *GormCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.CreditNote, error) {
	var note billing.CreditNote
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&note, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// FindByInvoiceID finds all credit notes issued against an invoice
func (r *GormCreditNoteRepository) FindByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]*billing.CreditNote, error) {
	var notes []*billing.CreditNote
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("invoice_id = ?", invoiceID).
		Order("accepted_at ASC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// FindAll finds credit notes with optional filters and pagination
func (r *GormCreditNoteRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*billing.CreditNote], error) {
	var notes []*billing.CreditNote
	var total int64

	countQuery := r.db.WithContext(ctx).Model(&billing.CreditNote{})
	countQuery = r.applyFilterWithoutPagination(countQuery, filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paginated[*billing.CreditNote]{}, err
	}

	query := r.db.WithContext(ctx).Model(&billing.CreditNote{}).Preload("Lines")
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
		query = query.Order("accepted_at DESC")
	}

	if err := query.Find(&notes).Error; err != nil {
		return shared.Paginated[*billing.CreditNote]{}, err
	}

	return shared.NewPaginated(notes, total, filter.Page, filter.PageSize), nil
}

// GenerateNumber generates a unique credit note number.
// Format: AV-YYYY-NNNNN (e.g. AV-2026-00001)
func (r *GormCreditNoteRepository) GenerateNumber(ctx context.Context) (string, error) {
	return generateNumber(ctx, r.db, &billing.CreditNote{}, "AV", "number")
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormCreditNoteRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR invoice_number ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "client_id":
			query = query.Where("client_id = ?", value)
		case "invoice_id":
			query = query.Where("invoice_id = ?", value)
		}
	}

	return query
}

// Ensure GormCreditNoteRepository implements CreditNoteRepository
var _ billing.CreditNoteRepository = (*GormCreditNoteRepository)(nil)
