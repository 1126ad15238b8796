package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"equipment-scheduling-backend/internal/model"
)

// Store defines the interface for all database operations the scheduler needs.
type Store interface {
	DB() *gorm.DB

	GetEquipment(ctx context.Context, id int64) (*model.Equipment, error)
	ListEquipment(ctx context.Context) ([]model.Equipment, error)

	CreateSchedule(ctx context.Context, s *model.EquipmentSchedule) error
	GetSchedule(ctx context.Context, id int64) (*model.EquipmentSchedule, error)
	UpdateScheduleStatus(ctx context.Context, id int64, status string) error
	ListSchedules(ctx context.Context, f ScheduleFilter, p PageRequest) ([]model.EquipmentSchedule, int64, error)

	// SchedulesIntersecting returns schedules for the equipment whose interval
	// intersects [from, to), restricted to the given statuses, ordered by
	// start time. excludeID omits one schedule (update-in-place re-checks).
	SchedulesIntersecting(ctx context.Context, equipmentID int64, from, to time.Time, statuses []string, excludeID *int64) ([]model.EquipmentSchedule, error)

	// SchedulesContained returns schedules whose bounds fall fully inside
	// [from, to], restricted to the given statuses, with projects preloaded.
	SchedulesContained(ctx context.Context, equipmentID int64, from, to time.Time, statuses []string) ([]model.EquipmentSchedule, error)

	DashboardOverview(ctx context.Context, from, to time.Time) (*OverviewRow, error)
}

// ErrRecordNotFound is re-exported so callers do not import gorm directly.
var ErrRecordNotFound = gorm.ErrRecordNotFound

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) GetEquipment(ctx context.Context, id int64) (*model.Equipment, error) {
	var eq model.Equipment
	if err := s.db.WithContext(ctx).First(&eq, id).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

func (s *gormStore) ListEquipment(ctx context.Context) ([]model.Equipment, error) {
	var items []model.Equipment
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *gormStore) CreateSchedule(ctx context.Context, sched *model.EquipmentSchedule) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sched).Error; err != nil {
			return fmt.Errorf("failed to create schedule: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetSchedule(ctx context.Context, id int64) (*model.EquipmentSchedule, error) {
	var sched model.EquipmentSchedule
	err := s.db.WithContext(ctx).
		Preload("Equipment").
		Preload("Project").
		Preload("Operator").
		First(&sched, id).Error
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

func (s *gormStore) UpdateScheduleStatus(ctx context.Context, id int64, status string) error {
	res := s.db.WithContext(ctx).
		Model(&model.EquipmentSchedule{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("failed to update schedule %d status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *gormStore) ListSchedules(ctx context.Context, f ScheduleFilter, p PageRequest) ([]model.EquipmentSchedule, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.EquipmentSchedule{})

	if f.EquipmentID != nil {
		q = q.Where("equipment_id = ?", *f.EquipmentID)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.OperatorID != nil {
		q = q.Where("operator_id = ?", *f.OperatorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.StartDate != nil {
		q = q.Where("start_datetime >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("end_datetime <= ?", *f.EndDate)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count schedules: %w", err)
	}

	order := "start_datetime DESC, id DESC"
	if p.SortAscending {
		order = "start_datetime ASC, id ASC"
	}

	var items []model.EquipmentSchedule
	err := q.
		Preload("Equipment").
		Preload("Project").
		Preload("Operator").
		Order(order).
		Limit(p.PerPage).
		Offset(p.Offset()).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list schedules: %w", err)
	}
	return items, total, nil
}

func (s *gormStore) SchedulesIntersecting(ctx context.Context, equipmentID int64, from, to time.Time, statuses []string, excludeID *int64) ([]model.EquipmentSchedule, error) {
	q := s.db.WithContext(ctx).
		Where("equipment_id = ?", equipmentID).
		Where("status IN ?", statuses).
		Where("start_datetime < ? AND end_datetime > ?", to, from)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var items []model.EquipmentSchedule
	if err := q.Order("start_datetime ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to query intersecting schedules: %w", err)
	}
	return items, nil
}

func (s *gormStore) SchedulesContained(ctx context.Context, equipmentID int64, from, to time.Time, statuses []string) ([]model.EquipmentSchedule, error) {
	var items []model.EquipmentSchedule
	err := s.db.WithContext(ctx).
		Preload("Project").
		Where("equipment_id = ?", equipmentID).
		Where("status IN ?", statuses).
		Where("start_datetime >= ? AND end_datetime <= ?", from, to).
		Order("start_datetime ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query contained schedules: %w", err)
	}
	return items, nil
}

func (s *gormStore) DashboardOverview(ctx context.Context, from, to time.Time) (*OverviewRow, error) {
	var items []model.EquipmentSchedule
	err := s.db.WithContext(ctx).
		Where("start_datetime >= ? AND start_datetime <= ?", from, to).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query overview schedules: %w", err)
	}

	row := &OverviewRow{TotalSchedules: int64(len(items))}
	equipmentSeen := make(map[int64]struct{})
	var totalHours float64
	for _, sched := range items {
		equipmentSeen[sched.EquipmentID] = struct{}{}
		totalHours += sched.Duration().Hours()
		switch sched.Status {
		case model.ScheduleStatusActive:
			row.ActiveSchedules++
		case model.ScheduleStatusScheduled:
			row.UpcomingSchedules++
		}
	}
	row.EquipmentScheduled = int64(len(equipmentSeen))
	if len(items) > 0 {
		row.AvgDurationHours = totalHours / float64(len(items))
	}
	return row, nil
}

// IsNotFound reports whether err is the store's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
