package credential

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PropDesk/PropDesk-Console/internal/db/models"
)

const keyQueryPattern = "store_key = ?"

// ErrDBNil is returned when the gorm backend is created without a database.
var ErrDBNil = errors.New("database connection is nil")

// GormBackend stores values in the credential_store table of a gorm database.
type GormBackend struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormBackend migrates the credential_store table and returns the backend.
func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := db.AutoMigrate(&models.StoredValue{}); err != nil {
		return nil, fmt.Errorf("failed to migrate credential store: %w", err)
	}

	return &GormBackend{db: db, now: time.Now}, nil
}

// Get implements Backend. Expired rows are removed on read.
func (b *GormBackend) Get(key string) ([]byte, error) {
	var row models.StoredValue

	result := b.db.Where(keyQueryPattern, key).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, result.Error
	}

	if row.ExpiresAt != 0 && b.now().UnixMilli() >= row.ExpiresAt {
		if err := b.Delete(key); err != nil {
			return nil, err
		}

		return nil, nil
	}

	return row.Value, nil
}

// Set implements Backend as an upsert on the store key.
func (b *GormBackend) Set(key string, val []byte, exp time.Duration) error {
	row := models.StoredValue{
		Key:   key,
		Value: val,
	}

	if exp > 0 {
		row.ExpiresAt = b.now().Add(exp).UnixMilli()
	}

	return b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
	}).Create(&row).Error
}

// Delete implements Backend.
func (b *GormBackend) Delete(key string) error {
	return b.db.Where(keyQueryPattern, key).Delete(&models.StoredValue{}).Error
}

// Reset implements Backend.
func (b *GormBackend) Reset() error {
	return b.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.StoredValue{}).Error
}

// GC removes every expired row and returns how many were deleted.
func (b *GormBackend) GC() (int64, error) {
	result := b.db.Where("expires_at <> 0 AND expires_at <= ?", b.now().UnixMilli()).
		Delete(&models.StoredValue{})

	return result.RowsAffected, result.Error
}

// Close implements Backend.
func (b *GormBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err //nolint:wrapcheck
	}

	return sqlDB.Close() //nolint:wrapcheck
}
