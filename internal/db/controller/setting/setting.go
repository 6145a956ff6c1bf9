// Package setting provides access to named JSON documents stored in the settings table.
package setting

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexus-dash/nexus/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when a setting name is empty.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a setting by its name.
func Get(db *gorm.DB, name string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var setting models.Setting
	result := db.Where(nameQueryPattern, name).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, result.Error
	}

	return &setting, nil
}

// Set creates or replaces a setting by name in a single transaction.
// Concurrent writers on the same name resolve to last-write-wins.
func Set(db *gorm.DB, name string, value []byte) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var stored models.Setting

	err := db.Transaction(func(tx *gorm.DB) error {
		upsert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&models.Setting{Name: name, Value: value})
		if upsert.Error != nil {
			return upsert.Error
		}

		// the upsert does not report the id of an updated row on every dialect
		return tx.Where(nameQueryPattern, name).First(&stored).Error
	})
	if err != nil {
		return nil, err
	}

	return &stored, nil
}
