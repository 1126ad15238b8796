package scheduling

import (
	"context"
	"fmt"
	"time"

	"equipment-scheduling-backend/internal/model"
)

// Conflict pairs a proposed interval with one existing schedule it collides
// with. Derived data, recomputed on every check, never persisted.
type Conflict struct {
	ConflictingScheduleID int64     `json:"conflicting_schedule_id"`
	EquipmentID           int64     `json:"equipment_id"`
	ConflictStart         time.Time `json:"conflict_start"`
	ConflictEnd           time.Time `json:"conflict_end"`
	OverlapHours          float64   `json:"overlap_hours"`
	Severity              Severity  `json:"severity"`
	Message               string    `json:"message"`
}

// CheckConflicts scans non-cancelled schedules for the equipment and
// classifies each candidate against the proposed interval:
//
//	overlap (intersection > 0)        -> error, hard block
//	gap <= adjacent buffer            -> warning
//	gap <= near buffer                -> info
//
// The caller guarantees end > start. Conflicts come back in start-time order;
// use MaxSeverity for the worst.
func (s *Service) CheckConflicts(ctx context.Context, equipmentID int64, start, end time.Time, excludeID *int64) ([]Conflict, error) {
	if _, err := s.resolveEquipment(ctx, equipmentID); err != nil {
		return nil, err
	}

	// Widen the fetch window so near-buffer candidates are included.
	fetchFrom := start.Add(-s.nearBuffer)
	fetchTo := end.Add(s.nearBuffer)
	candidates, err := s.store.SchedulesIntersecting(ctx, equipmentID, fetchFrom, fetchTo, model.CountingStatuses(), excludeID)
	if err != nil {
		return nil, err
	}

	var conflicts []Conflict
	for _, cand := range candidates {
		c, ok := s.classify(equipmentID, start, end, cand)
		if ok {
			conflicts = append(conflicts, c)
		}
	}
	return conflicts, nil
}

// classify compares the proposed interval against one existing schedule.
func (s *Service) classify(equipmentID int64, start, end time.Time, cand model.EquipmentSchedule) (Conflict, bool) {
	overlapStart := maxTime(start, cand.StartDatetime)
	overlapEnd := minTime(end, cand.EndDatetime)

	if overlapEnd.After(overlapStart) {
		hours := overlapEnd.Sub(overlapStart).Hours()
		return Conflict{
			ConflictingScheduleID: cand.ID,
			EquipmentID:           equipmentID,
			ConflictStart:         overlapStart,
			ConflictEnd:           overlapEnd,
			OverlapHours:          hours,
			Severity:              SeverityError,
			Message:               fmt.Sprintf("Direct overlap (%.1f hours) with schedule #%d", hours, cand.ID),
		}, true
	}

	// No overlap: measure the gap between the intervals.
	var gap time.Duration
	if !cand.StartDatetime.Before(end) {
		gap = cand.StartDatetime.Sub(end)
	} else {
		gap = start.Sub(cand.EndDatetime)
	}

	switch {
	case gap <= s.adjacentBuffer:
		return Conflict{
			ConflictingScheduleID: cand.ID,
			EquipmentID:           equipmentID,
			ConflictStart:         cand.StartDatetime,
			ConflictEnd:           cand.EndDatetime,
			Severity:              SeverityWarning,
			Message:               fmt.Sprintf("Adjacent to schedule #%d (potential timing conflict)", cand.ID),
		}, true
	case gap <= s.nearBuffer:
		return Conflict{
			ConflictingScheduleID: cand.ID,
			EquipmentID:           equipmentID,
			ConflictStart:         cand.StartDatetime,
			ConflictEnd:           cand.EndDatetime,
			Severity:              SeverityInfo,
			Message:               fmt.Sprintf("Near schedule #%d (consider buffer time)", cand.ID),
		}, true
	}
	return Conflict{}, false
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
