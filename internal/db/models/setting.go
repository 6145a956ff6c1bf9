// Package models contains database model definitions.
package models

import "time"

// Setting is one named JSON document stored in the database.
// The dashboard lives in a single row keyed by the configured store key.
type Setting struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:191;not null"`
	Value     []byte
	UpdatedAt time.Time
}
