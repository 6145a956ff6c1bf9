package setting

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nexus-dash/nexus/internal/db/models"
)

// setupTestDB creates a file backed SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// Migrate the schema
	err = db.AutoMigrate(&models.Setting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedSettings inserts test data into the database.
func seedSettings(t *testing.T, db *gorm.DB, settings []models.Setting) {
	t.Helper()
	for _, setting := range settings {
		err := db.Create(&setting).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		seedData      []models.Setting
		expectedError error
		expectedValue []byte
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "dashboard",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:        "successful get",
			dbParam:     db,
			settingName: "dashboard",
			seedData: []models.Setting{
				{Name: "dashboard", Value: []byte(`{"appTitle":"Home"}`)},
			},
			expectedValue: []byte(`{"appTitle":"Home"}`),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Clean database for each test
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			setting, err := Get(tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, setting)
				assert.Equal(t, tc.settingName, setting.Name)
				assert.Equal(t, tc.expectedValue, setting.Value)
			}
		})
	}
}

func TestSet(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		value         []byte
		seedData      []models.Setting
		expectedError error
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "dashboard",
			value:         []byte(`{}`),
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			value:         []byte(`{}`),
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:        "creates missing setting",
			dbParam:     db,
			settingName: "dashboard",
			value:       []byte(`{"appTitle":"New"}`),
		},
		{
			name:        "replaces existing setting",
			dbParam:     db,
			settingName: "dashboard",
			value:       []byte(`{"appTitle":"Replaced"}`),
			seedData: []models.Setting{
				{Name: "dashboard", Value: []byte(`{"appTitle":"Old"}`)},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			setting, err := Set(tc.dbParam, tc.settingName, tc.value)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.value, setting.Value)
			assert.NotZero(t, setting.ID)

			var count int64
			tc.dbParam.Model(&models.Setting{}).Where(nameQueryPattern, tc.settingName).Count(&count)
			assert.Equal(t, int64(1), count)

			stored, err := Get(tc.dbParam, tc.settingName)
			require.NoError(t, err)
			assert.Equal(t, tc.value, stored.Value)
		})
	}
}

func TestSetConcurrentWritersKeepOneRow(t *testing.T) {
	db := setupTestDB(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, setErr := Set(db, "dashboard", []byte(`{"appTitle":"race"}`))
			assert.NoError(t, setErr)
		}()
	}
	wg.Wait()

	var count int64
	db.Model(&models.Setting{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
