package scheduling

import (
	"context"
	"fmt"
	"log"
	"time"

	"equipment-scheduling-backend/internal/model"
	"equipment-scheduling-backend/internal/store"
)

// Default conflict classification buffers.
const (
	DefaultAdjacentBuffer = time.Hour
	DefaultNearBuffer     = 24 * time.Hour
)

// Notifier receives schedule lifecycle events. Implementations must not
// block; the service fires events after the write commits.
type Notifier interface {
	ScheduleCreated(scheduleID, equipmentID int64)
	ScheduleCancelled(scheduleID, equipmentID int64)
}

// Options configures a Service. Zero buffers fall back to the defaults.
type Options struct {
	AdjacentBuffer time.Duration
	NearBuffer     time.Duration
	Notifier       Notifier
}

// Service is the schedule lifecycle manager: creation behind the conflict
// gate, status transitions, cancellation, and the read-side queries the other
// components compose through. Stateless between calls except for the
// per-equipment creation locks.
type Service struct {
	store          store.Store
	adjacentBuffer time.Duration
	nearBuffer     time.Duration
	locks          *equipmentLocks
	notifier       Notifier
}

// NewService creates a scheduling service over the given store.
func NewService(st store.Store, opts Options) *Service {
	if opts.AdjacentBuffer <= 0 {
		opts.AdjacentBuffer = DefaultAdjacentBuffer
	}
	if opts.NearBuffer <= 0 {
		opts.NearBuffer = DefaultNearBuffer
	}
	return &Service{
		store:          st,
		adjacentBuffer: opts.AdjacentBuffer,
		nearBuffer:     opts.NearBuffer,
		locks:          newEquipmentLocks(),
		notifier:       opts.Notifier,
	}
}

// CreateScheduleInput is the caller-supplied part of a new schedule.
type CreateScheduleInput struct {
	EquipmentID int64     `json:"equipment_id" binding:"required"`
	ProjectID   *int64    `json:"project_id,omitempty"`
	OperatorID  *int64    `json:"operator_id,omitempty"`
	Start       time.Time `json:"start_datetime" binding:"required"`
	End         time.Time `json:"end_datetime" binding:"required"`
	Notes       string    `json:"notes,omitempty"`
}

// ScheduleDetail is a schedule row enriched with joined display names.
type ScheduleDetail struct {
	model.EquipmentSchedule
	EquipmentName string `json:"equipment_name,omitempty"`
	ProjectName   string `json:"project_name,omitempty"`
	OperatorName  string `json:"operator_name,omitempty"`
}

func detailFrom(sched *model.EquipmentSchedule) *ScheduleDetail {
	d := &ScheduleDetail{EquipmentSchedule: *sched}
	d.EquipmentName = sched.Equipment.Name
	if sched.Project != nil {
		d.ProjectName = sched.Project.Name
	}
	if sched.Operator != nil {
		d.OperatorName = sched.Operator.Email
	}
	return d
}

// Create validates the interval, gates on the conflict detector, and persists
// the schedule with status scheduled. A rejected create never reaches
// storage. The check-then-insert sequence holds the equipment's creation lock
// so two racing overlapping creations cannot both pass the check.
func (s *Service) Create(ctx context.Context, input CreateScheduleInput, createdBy int64) (*ScheduleDetail, error) {
	if !input.End.After(input.Start) {
		return nil, ErrInvalidInterval
	}
	if len(input.Notes) > 1000 {
		return nil, ErrNotesTooLong
	}

	lock := s.locks.get(input.EquipmentID)
	lock.Lock()
	defer lock.Unlock()

	eq, err := s.resolveEquipment(ctx, input.EquipmentID)
	if err != nil {
		return nil, err
	}
	if !eq.Assignable() {
		return nil, fmt.Errorf("equipment %d is not available for scheduling: %w", eq.ID, ErrEquipmentNotSchedulable)
	}

	conflicts, err := s.CheckConflicts(ctx, input.EquipmentID, input.Start, input.End, nil)
	if err != nil {
		return nil, err
	}
	if hasBlocking(conflicts) {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	sched := &model.EquipmentSchedule{
		EquipmentID:   input.EquipmentID,
		ProjectID:     input.ProjectID,
		OperatorID:    input.OperatorID,
		StartDatetime: input.Start,
		EndDatetime:   input.End,
		Status:        model.ScheduleStatusScheduled,
		Notes:         input.Notes,
		CreatedBy:     createdBy,
	}
	if err := s.store.CreateSchedule(ctx, sched); err != nil {
		return nil, err
	}
	log.Printf("created schedule %d for equipment %d [%s, %s)", sched.ID, sched.EquipmentID, sched.StartDatetime, sched.EndDatetime)

	if s.notifier != nil {
		s.notifier.ScheduleCreated(sched.ID, sched.EquipmentID)
	}

	detail := detailFrom(sched)
	detail.EquipmentName = eq.Name
	return detail, nil
}

// Get returns one schedule with joined equipment/project/operator names.
func (s *Service) Get(ctx context.Context, id int64) (*ScheduleDetail, error) {
	sched, err := s.store.GetSchedule(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, fmt.Errorf("schedule %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return detailFrom(sched), nil
}

// List returns schedules matching the filter plus the unpaginated total.
func (s *Service) List(ctx context.Context, f store.ScheduleFilter, p store.PageRequest) ([]*ScheduleDetail, int64, error) {
	items, total, err := s.store.ListSchedules(ctx, f, p)
	if err != nil {
		return nil, 0, err
	}
	details := make([]*ScheduleDetail, 0, len(items))
	for i := range items {
		details = append(details, detailFrom(&items[i]))
	}
	return details, total, nil
}

// Cancel marks a schedule cancelled. Cancelled rows stay in the table for
// audit. Cancelling an already-cancelled schedule is a no-op; cancelling a
// completed one is an invalid transition.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	sched, err := s.store.GetSchedule(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return fmt.Errorf("schedule %d: %w", id, ErrNotFound)
		}
		return err
	}

	switch sched.Status {
	case model.ScheduleStatusCancelled:
		return nil
	case model.ScheduleStatusCompleted:
		return &InvalidTransitionError{From: sched.Status, To: model.ScheduleStatusCancelled}
	}

	if err := s.store.UpdateScheduleStatus(ctx, id, model.ScheduleStatusCancelled); err != nil {
		return err
	}
	log.Printf("cancelled schedule %d for equipment %d", id, sched.EquipmentID)

	if s.notifier != nil {
		s.notifier.ScheduleCancelled(id, sched.EquipmentID)
	}
	return nil
}

// UpdateStatus applies a state-machine transition:
// scheduled -> active -> completed, with cancellation handled by Cancel.
func (s *Service) UpdateStatus(ctx context.Context, id int64, target string) (*ScheduleDetail, error) {
	if target == model.ScheduleStatusCancelled {
		if err := s.Cancel(ctx, id); err != nil {
			return nil, err
		}
		return s.Get(ctx, id)
	}

	sched, err := s.store.GetSchedule(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, fmt.Errorf("schedule %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	if !transitionAllowed(sched.Status, target) {
		return nil, &InvalidTransitionError{From: sched.Status, To: target}
	}
	if err := s.store.UpdateScheduleStatus(ctx, id, target); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func transitionAllowed(from, to string) bool {
	switch from {
	case model.ScheduleStatusScheduled:
		return to == model.ScheduleStatusActive
	case model.ScheduleStatusActive:
		return to == model.ScheduleStatusCompleted
	default:
		return false
	}
}

// Overview aggregates activity over the trailing window for dashboards.
func (s *Service) Overview(ctx context.Context, days int) (*store.OverviewRow, time.Time, time.Time, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	row, err := s.store.DashboardOverview(ctx, start, end)
	if err != nil {
		return nil, start, end, err
	}
	row.AvgDurationHours = round2(row.AvgDurationHours)
	return row, start, end, nil
}

func hasBlocking(conflicts []Conflict) bool {
	for _, c := range conflicts {
		if c.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (s *Service) resolveEquipment(ctx context.Context, id int64) (*model.Equipment, error) {
	eq, err := s.store.GetEquipment(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, fmt.Errorf("equipment %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return eq, nil
}
