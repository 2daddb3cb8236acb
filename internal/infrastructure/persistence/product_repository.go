package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/proxima/backend/internal/domain/catalog"
	"github.com/proxima/backend/internal/domain/shared"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return translateError(r.db.WithContext(ctx).Save(product).Error)
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion, err := readVersion(tx, &catalog.Product{}, product.ID)
		if err != nil {
			return err
		}

		// Domain methods may have bumped the in-memory version already
		if product.Version != currentVersion && product.Version != currentVersion+1 {
			return shared.ErrConflict.WithMessage("The product has been modified by another user")
		}
		product.Version = currentVersion + 1
		product.UpdatedAt = time.Now()

		result := tx.Model(&catalog.Product{}).
			Where("id = ? AND version = ?", product.ID, currentVersion).
			Updates(map[string]interface{}{
				"ref":              product.Ref,
				"name":             product.Name,
				"unit_price":       product.UnitPrice,
				"purchase_price":   product.PurchasePrice,
				"quantity_on_hand": product.QuantityOnHand,
				"version":          product.Version,
				"updated_at":       product.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConflict.WithMessage("The product has been modified by another user")
		}
		return nil
	})
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate finds a product by ID with a row-level lock.
// Must be called within a transaction.
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByRef finds a product by its reference
func (r *GormProductRepository) FindByRef(ctx context.Context, ref string) (*catalog.Product, error) {
	var product catalog.Product
	err := r.db.WithContext(ctx).First(&product, "ref = ?", strings.ToUpper(strings.TrimSpace(ref))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAll finds products with optional filters and pagination
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*catalog.Product], error) {
	var products []*catalog.Product
	var total int64

	countQuery := r.db.WithContext(ctx).Model(&catalog.Product{})
	countQuery = r.applyFilterWithoutPagination(countQuery, filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paginated[*catalog.Product]{}, err
	}

	query := r.db.WithContext(ctx).Model(&catalog.Product{})
	query = r.applyFilter(query, filter)
	if err := query.Find(&products).Error; err != nil {
		return shared.Paginated[*catalog.Product]{}, err
	}

	return shared.NewPaginated(products, total, filter.Page, filter.PageSize), nil
}

// ExistsByRef checks if a product with the given reference exists
func (r *GormProductRepository) ExistsByRef(ctx context.Context, ref string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("ref = ?", strings.ToUpper(strings.TrimSpace(ref))).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
		query = query.Order("ref ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("ref ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "in_stock":
			if b, ok := value.(bool); ok && b {
				query = query.Where("quantity_on_hand > 0")
			}
		case "out_of_stock":
			if b, ok := value.(bool); ok && b {
				query = query.Where("quantity_on_hand <= 0")
			}
		}
	}

	return query
}

// GormStockEntryRepository implements catalog.StockEntryRepository using GORM
type GormStockEntryRepository struct {
	db *gorm.DB
}

// NewGormStockEntryRepository creates a new GORM stock entry repository
func NewGormStockEntryRepository(db *gorm.DB) *GormStockEntryRepository {
	return &GormStockEntryRepository{db: db}
}

// Save creates a stock entry
func (r *GormStockEntryRepository) Save(ctx context.Context, entry *catalog.StockEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// FindByProductID finds stock entries for a product, most recent first
func (r *GormStockEntryRepository) FindByProductID(ctx context.Context, productID uuid.UUID) ([]*catalog.StockEntry, error) {
	var entries []*catalog.StockEntry
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("entry_date DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Ensure implementations satisfy the repository interfaces
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
var _ catalog.StockEntryRepository = (*GormStockEntryRepository)(nil)
