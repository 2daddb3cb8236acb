package persistence

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/proxima/backend/internal/domain/shared"
)

// translateError maps driver-level errors onto domain sentinels so the
// application layer never sees raw database errors. Unique-index
// violations are reported by postgres as SQLSTATE 23505 and by sqlite
// as a "UNIQUE constraint failed" message.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrDuplicateKey
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return shared.ErrDuplicateKey
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return shared.ErrDuplicateKey
	}

	return err
}

// readVersion reads the stored version of an aggregate for optimistic locking
func readVersion(tx *gorm.DB, model interface{}, id uuid.UUID) (int, error) {
	var version int
	result := tx.Model(model).
		Where("id = ?", id).
		Select("version").
		Scan(&version)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, shared.ErrNotFound
	}
	return version, nil
}
