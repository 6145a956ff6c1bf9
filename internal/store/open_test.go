package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-dash/nexus/internal/config"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name    string
		cfg     config.Config
		want    any
		wantErr error
	}{
		{
			name: "file",
			cfg:  config.Config{Store: config.Store{Backend: config.BackendFile, File: config.FileStore{Path: filepath.Join(dir, "db.json")}}},
			want: &File{},
		},
		{
			name: "gorm sqlite",
			cfg: config.Config{
				Store: config.Store{Backend: config.BackendGorm, Key: "dashboard"},
				DB:    config.DB{Driver: config.DriverSQLite, Path: filepath.Join(dir, "nexus.db")},
			},
			want: &Gorm{},
		},
		{
			name:    "unknown backend",
			cfg:     config.Config{Store: config.Store{Backend: "etcd"}},
			wantErr: config.ErrUnknownStoreBackend,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Open(context.Background(), &tc.cfg)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })

			assert.IsType(t, tc.want, b)
		})
	}
}
