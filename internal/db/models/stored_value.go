// Package models contains database model definitions.
package models

// StoredValue is one entry of the credential store when it is backed by a
// gorm database. ExpiresAt is a unix timestamp in milliseconds, zero means
// the value never expires.
type StoredValue struct {
	// Key is the store key, e.g. "access_token".
	Key string `gorm:"column:store_key;primaryKey;size:191"`
	// Value holds the (optionally sealed) value bytes.
	Value []byte `gorm:"column:value"`
	// ExpiresAt is the expiry in unix milliseconds, 0 for persistent entries.
	ExpiresAt int64 `gorm:"column:expires_at;index"`
}

// TableName specifies the database table name for the StoredValue model.
func (StoredValue) TableName() string {
	return "credential_store"
}
