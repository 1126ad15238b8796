package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"equipment-scheduling-backend/internal/model"
)

func createProject(t *testing.T, gormDB *gorm.DB, name string) model.Project {
	t.Helper()
	p := model.Project{Name: name}
	require.NoError(t, gormDB.Create(&p).Error)
	return p
}

func assignProject(t *testing.T, gormDB *gorm.DB, scheduleID, projectID int64) {
	t.Helper()
	require.NoError(t, gormDB.Model(&model.EquipmentSchedule{}).
		Where("id = ?", scheduleID).
		Update("project_id", projectID).Error)
}

func TestStatisticsAggregates(t *testing.T) {
	svc, gormDB := newTestService(t, Options{})
	mon := monday()

	eq := createEquipment(t, gormDB, "Crane LTM 1060", model.EquipmentStatusAvailable, true)
	bridge := createProject(t, gormDB, "Bridge Rebuild")
	depot := createProject(t, gormDB, "Depot Extension")

	s1 := createSchedule(t, gormDB, eq.ID, at(mon, 8), at(mon, 16), model.ScheduleStatusCompleted)
	s2 := createSchedule(t, gormDB, eq.ID, at(mon, 24), at(mon, 28), model.ScheduleStatusScheduled)
	s3 := createSchedule(t, gormDB, eq.ID, at(mon, 30), at(mon, 36), model.ScheduleStatusActive)
	assignProject(t, gormDB, s1.ID, bridge.ID)
	assignProject(t, gormDB, s2.ID, bridge.ID)
	assignProject(t, gormDB, s3.ID, depot.ID)

	stats, err := svc.Statistics(testCtx, eq.ID, mon, at(mon, 48))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalSchedules)
	assert.InDelta(t, 18.0, stats.TotalScheduledHours, 1e-9)
	assert.InDelta(t, 6.0, stats.AverageScheduleDuration, 1e-9)
	assert.InDelta(t, 37.5, stats.UtilizationRate, 1e-9)
	require.NotNil(t, stats.MostCommonProjectID)
	assert.Equal(t, bridge.ID, *stats.MostCommonProjectID)
	assert.Equal(t, "Bridge Rebuild", stats.MostCommonProject)
	assert.Equal(t, "Crane LTM 1060", stats.EquipmentName)
}

func TestStatisticsStrictContainment(t *testing.T) {
	// A schedule straddling the window boundary is excluded entirely; it is
	// not clipped the way availability clips it.
	svc, gormDB := newTestService(t, Options{})
	mon := monday()

	eq := createEquipment(t, gormDB, "Telehandler TH417", model.EquipmentStatusAvailable, true)
	createSchedule(t, gormDB, eq.ID, at(mon, -2), at(mon, 4), model.ScheduleStatusScheduled)
	createSchedule(t, gormDB, eq.ID, at(mon, 20), at(mon, 26), model.ScheduleStatusScheduled)
	createSchedule(t, gormDB, eq.ID, at(mon, 8), at(mon, 12), model.ScheduleStatusScheduled)

	stats, err := svc.Statistics(testCtx, eq.ID, mon, at(mon, 24))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalSchedules)
	assert.InDelta(t, 4.0, stats.TotalScheduledHours, 1e-9)
}

func TestStatisticsExcludesCancelled(t *testing.T) {
	svc, gormDB := newTestService(t, Options{})
	mon := monday()

	eq := createEquipment(t, gormDB, "Paver AP555", model.EquipmentStatusAvailable, true)
	createSchedule(t, gormDB, eq.ID, at(mon, 8), at(mon, 12), model.ScheduleStatusCancelled)
	createSchedule(t, gormDB, eq.ID, at(mon, 14), at(mon, 16), model.ScheduleStatusScheduled)

	stats, err := svc.Statistics(testCtx, eq.ID, mon, at(mon, 24))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalSchedules)
	assert.InDelta(t, 2.0, stats.TotalScheduledHours, 1e-9)
}

func TestStatisticsProjectTieBreak(t *testing.T) {
	// Equal counts resolve to the lowest project id for a stable answer.
	svc, gormDB := newTestService(t, Options{})
	mon := monday()

	eq := createEquipment(t, gormDB, "Roller CB54", model.EquipmentStatusAvailable, true)
	first := createProject(t, gormDB, "Runway Patch")
	second := createProject(t, gormDB, "Parking Lot")

	s1 := createSchedule(t, gormDB, eq.ID, at(mon, 2), at(mon, 4), model.ScheduleStatusScheduled)
	s2 := createSchedule(t, gormDB, eq.ID, at(mon, 6), at(mon, 8), model.ScheduleStatusScheduled)
	assignProject(t, gormDB, s1.ID, second.ID)
	assignProject(t, gormDB, s2.ID, first.ID)

	stats, err := svc.Statistics(testCtx, eq.ID, mon, at(mon, 24))
	require.NoError(t, err)

	require.NotNil(t, stats.MostCommonProjectID)
	assert.Equal(t, first.ID, *stats.MostCommonProjectID)
	assert.Equal(t, "Runway Patch", stats.MostCommonProject)
}

func TestStatisticsEmptyWindow(t *testing.T) {
	svc, gormDB := newTestService(t, Options{})
	mon := monday()

	eq := createEquipment(t, gormDB, "Trencher RT45", model.EquipmentStatusAvailable, true)

	stats, err := svc.Statistics(testCtx, eq.ID, mon, at(mon, 24))
	require.NoError(t, err)

	assert.Zero(t, stats.TotalSchedules)
	assert.Zero(t, stats.TotalScheduledHours)
	assert.Zero(t, stats.AverageScheduleDuration)
	assert.Zero(t, stats.UtilizationRate)
	assert.Nil(t, stats.MostCommonProjectID)
	assert.Empty(t, stats.MostCommonProject)
}

func TestStatisticsUnknownEquipment(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	mon := monday()

	_, err := svc.Statistics(testCtx, 9000, mon, at(mon, 24))
	assert.ErrorIs(t, err, ErrNotFound)
}
