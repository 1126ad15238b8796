package scheduling

import (
	"context"
	"math"
	"time"

	"equipment-scheduling-backend/internal/model"
)

// Slot types.
const (
	SlotAvailable = "available"
	SlotScheduled = "scheduled"
)

// TimeSlot is a contiguous sub-interval of a query window, tagged available
// or scheduled. Produced fresh per query, never cached past the request.
type TimeSlot struct {
	TimeSlotStart time.Time `json:"time_slot_start"`
	TimeSlotEnd   time.Time `json:"time_slot_end"`
	DurationHours float64   `json:"duration_hours"`
	SlotType      string    `json:"slot_type"`
}

// Availability is the scheduled/free breakdown of a query window.
type Availability struct {
	EquipmentID           int64      `json:"equipment_id"`
	EquipmentName         string     `json:"equipment_name"`
	DateRangeStart        time.Time  `json:"date_range_start"`
	DateRangeEnd          time.Time  `json:"date_range_end"`
	AvailableSlots        []TimeSlot `json:"available_slots"`
	ScheduledSlots        []TimeSlot `json:"scheduled_slots"`
	TotalAvailableHours   float64    `json:"total_available_hours"`
	TotalScheduledHours   float64    `json:"total_scheduled_hours"`
	UtilizationPercentage float64    `json:"utilization_percentage"`
}

// Availability partitions [start, end) into alternating scheduled/free slots
// for the equipment and aggregates utilization. Hours are wall-clock hours.
func (s *Service) Availability(ctx context.Context, equipmentID int64, start, end time.Time) (*Availability, error) {
	eq, err := s.resolveEquipment(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	schedules, err := s.store.SchedulesIntersecting(ctx, equipmentID, start, end, model.CountingStatuses(), nil)
	if err != nil {
		return nil, err
	}

	busy := mergeBusyIntervals(schedules, start, end)

	result := &Availability{
		EquipmentID:    equipmentID,
		EquipmentName:  eq.Name,
		DateRangeStart: start,
		DateRangeEnd:   end,
		AvailableSlots: []TimeSlot{},
		ScheduledSlots: []TimeSlot{},
	}

	cursor := start
	for _, b := range busy {
		if b.start.After(cursor) {
			result.AvailableSlots = append(result.AvailableSlots, newSlot(cursor, b.start, SlotAvailable))
		}
		result.ScheduledSlots = append(result.ScheduledSlots, newSlot(b.start, b.end, SlotScheduled))
		cursor = b.end
	}
	if cursor.Before(end) {
		result.AvailableSlots = append(result.AvailableSlots, newSlot(cursor, end, SlotAvailable))
	}

	for _, slot := range result.AvailableSlots {
		result.TotalAvailableHours += slot.DurationHours
	}
	for _, slot := range result.ScheduledSlots {
		result.TotalScheduledHours += slot.DurationHours
	}

	windowHours := end.Sub(start).Hours()
	if windowHours > 0 {
		result.UtilizationPercentage = round2(result.TotalScheduledHours / windowHours * 100)
	}
	return result, nil
}

type interval struct {
	start, end time.Time
}

// mergeBusyIntervals clips each schedule to the window, sorts by start, and
// coalesces touching or overlapping intervals into consolidated busy blocks.
// The input is already start-ordered by the store; clipping preserves order.
func mergeBusyIntervals(schedules []model.EquipmentSchedule, windowStart, windowEnd time.Time) []interval {
	var merged []interval
	for _, sched := range schedules {
		iv := interval{
			start: maxTime(sched.StartDatetime, windowStart),
			end:   minTime(sched.EndDatetime, windowEnd),
		}
		if !iv.end.After(iv.start) {
			continue
		}
		if n := len(merged); n > 0 && !iv.start.After(merged[n-1].end) {
			if iv.end.After(merged[n-1].end) {
				merged[n-1].end = iv.end
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

func newSlot(start, end time.Time, slotType string) TimeSlot {
	return TimeSlot{
		TimeSlotStart: start,
		TimeSlotEnd:   end,
		DurationHours: end.Sub(start).Hours(),
		SlotType:      slotType,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
