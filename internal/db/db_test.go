package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"solarsizing/internal/model"
)

func TestDialectorFor(t *testing.T) {
	tests := []struct {
		url      string
		wantName string
		wantErr  bool
	}{
		{"postgres://u:p@localhost:5432/solar", "postgres", false},
		{"postgresql://u:p@localhost/solar", "postgres", false},
		{"mysql://u:p@tcp(localhost:3306)/solar?parseTime=true", "mysql", false},
		{"sqlite://./dev.db", "sqlite", false},
		{"dev.db", "sqlite", false},
		{"mongodb://u:p@localhost/solar", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			_, name, err := dialectorFor(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				assert.NotContains(t, err.Error(), "u:p")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestSqlitePath(t *testing.T) {
	assert.Equal(t, "./dev.db", sqlitePath("sqlite://./dev.db"))
	assert.Equal(t, "/var/lib/dev.db", sqlitePath("sqlite:///var/lib/dev.db"))
	assert.Equal(t, ":memory:", sqlitePath("sqlite://"))
}

func TestSqliteDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"./dev.db", "./dev.db?_txlock=immediate&_busy_timeout=5000"},
		{"file:x?mode=memory&cache=shared", "file:x?mode=memory&cache=shared&_txlock=immediate&_busy_timeout=5000"},
		{"./dev.db?_busy_timeout=100", "./dev.db?_busy_timeout=100&_txlock=immediate"},
		{"./dev.db?_txlock=deferred", "./dev.db?_txlock=deferred&_busy_timeout=5000"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.path))
		})
	}
}

func TestOpenMigrateReset(t *testing.T) {
	gormDB, err := Open("sqlite://file:dbtest?mode=memory&cache=shared", Options{MaxOpenConns: 1}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, Migrate(gormDB))
	assert.True(t, gormDB.Migrator().HasTable(&model.ProjectInputs{}))
	assert.True(t, gormDB.Migrator().HasIndex(&model.ProjectInputs{}, "idx_project_inputs_version"))

	require.NoError(t, Reset(gormDB))
	assert.False(t, gormDB.Migrator().HasTable(&model.User{}))
}
