package scheduling

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"equipment-scheduling-backend/internal/db"
	"equipment-scheduling-backend/internal/model"
	"equipment-scheduling-backend/internal/store"
)

// newTestService spins up a service over a throwaway SQLite database.
func newTestService(t *testing.T, opts Options) (*Service, *gorm.DB) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "scheduler_test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	return NewService(store.NewGormStore(gormDB), opts), gormDB
}

func createEquipment(t *testing.T, gormDB *gorm.DB, name, status string, active bool) model.Equipment {
	t.Helper()
	eq := model.Equipment{Name: name, Status: status, IsActive: active}
	require.NoError(t, gormDB.Create(&eq).Error)
	return eq
}

func createSchedule(t *testing.T, gormDB *gorm.DB, equipmentID int64, start, end time.Time, status string) model.EquipmentSchedule {
	t.Helper()
	sched := model.EquipmentSchedule{
		EquipmentID:   equipmentID,
		StartDatetime: start,
		EndDatetime:   end,
		Status:        status,
		CreatedBy:     1,
	}
	require.NoError(t, gormDB.Create(&sched).Error)
	return sched
}

// monday returns a fixed Monday 00:00 UTC so test intervals read naturally.
func monday() time.Time {
	return time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
}

func at(base time.Time, hours float64) time.Time {
	return base.Add(time.Duration(hours * float64(time.Hour)))
}

var testCtx = context.Background()
