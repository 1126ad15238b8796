package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"
)

const maxSuggestions = 5

// SuggestRequest asks for ranked free-slot candidates for a desired duration
// inside a search window.
type SuggestRequest struct {
	EquipmentID          int64      `json:"equipment_id" binding:"required"`
	DesiredDurationHours float64    `json:"desired_duration_hours" binding:"required,gt=0"`
	PreferredStart       *time.Time `json:"preferred_start,omitempty"`
	DateRangeStart       time.Time  `json:"date_range_start" binding:"required"`
	DateRangeEnd         time.Time  `json:"date_range_end" binding:"required"`
	ProjectID            *int64     `json:"project_id,omitempty"`
	Priority             int        `json:"priority" binding:"omitempty,min=1,max=5"`
}

// Suggestion is one ranked candidate interval.
type Suggestion struct {
	EquipmentID     int64     `json:"equipment_id"`
	SuggestedStart  time.Time `json:"suggested_start"`
	SuggestedEnd    time.Time `json:"suggested_end"`
	ConfidenceScore float64   `json:"confidence_score"`
	Reason          string    `json:"reason"`
}

// SuggestResponse carries the top-ranked suggestions plus the best one.
type SuggestResponse struct {
	EquipmentID          int64        `json:"equipment_id"`
	EquipmentName        string       `json:"equipment_name"`
	RequestedDuration    float64      `json:"requested_duration"`
	Suggestions          []Suggestion `json:"suggestions"`
	BestSuggestion       *Suggestion  `json:"best_suggestion,omitempty"`
	AlternativeEquipment []int64      `json:"alternative_equipment"`
}

// Suggest ranks free slots that can hold the desired duration. This is a
// greedy local-scoring heuristic: each slot is scored on its own, with no
// backtracking and no cross-equipment search.
func (s *Service) Suggest(ctx context.Context, req SuggestRequest) (*SuggestResponse, error) {
	if req.DesiredDurationHours <= 0 {
		return nil, fmt.Errorf("%w: desired duration must be positive", ErrInvalidInterval)
	}
	if req.Priority < 1 {
		req.Priority = 1
	} else if req.Priority > 5 {
		req.Priority = 5
	}

	availability, err := s.Availability(ctx, req.EquipmentID, req.DateRangeStart, req.DateRangeEnd)
	if err != nil {
		return nil, err
	}

	duration := hoursToDuration(req.DesiredDurationHours)
	var suggestions []Suggestion
	for _, slot := range availability.AvailableSlots {
		if slot.DurationHours < req.DesiredDurationHours {
			continue
		}

		start := anchorStart(slot, req.PreferredStart, duration)
		score := confidenceScore(slot, req, availability.UtilizationPercentage)
		suggestions = append(suggestions, Suggestion{
			EquipmentID:     req.EquipmentID,
			SuggestedStart:  start,
			SuggestedEnd:    start.Add(duration),
			ConfidenceScore: score,
			Reason:          suggestionReason(slot, req, score),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].ConfidenceScore > suggestions[j].ConfidenceScore
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	resp := &SuggestResponse{
		EquipmentID:          req.EquipmentID,
		EquipmentName:        availability.EquipmentName,
		RequestedDuration:    req.DesiredDurationHours,
		Suggestions:          suggestions,
		AlternativeEquipment: []int64{},
	}
	if len(suggestions) > 0 {
		best := suggestions[0]
		resp.BestSuggestion = &best
	}
	return resp, nil
}

// anchorStart picks the candidate start inside a slot: the preferred start
// when it falls within the slot and leaves room for the full duration
// (clamped to the slot end), otherwise the slot start.
func anchorStart(slot TimeSlot, preferred *time.Time, duration time.Duration) time.Time {
	if preferred != nil && !preferred.Before(slot.TimeSlotStart) && preferred.Before(slot.TimeSlotEnd) {
		latest := slot.TimeSlotEnd.Add(-duration)
		if preferred.After(latest) {
			return latest
		}
		return *preferred
	}
	return slot.TimeSlotStart
}

// confidenceScore is a pure function of (slot, request, utilization).
// Additive model over a 0.5 base, clamped to 1.0:
//
//	fit         +0.2 if desired/slot > 0.8, +0.1 if > 0.5
//	proximity   +0.2 within 1h of slot start, +0.1 within 1 day (preferred only)
//	utilization +0.1 when overall window utilization is in [60, 80]%
//	priority    +0.05 * (priority - 1)
func confidenceScore(slot TimeSlot, req SuggestRequest, utilization float64) float64 {
	score := 0.5

	ratio := req.DesiredDurationHours / slot.DurationHours
	if ratio > 0.8 {
		score += 0.2
	} else if ratio > 0.5 {
		score += 0.1
	}

	if req.PreferredStart != nil {
		diff := slot.TimeSlotStart.Sub(*req.PreferredStart)
		if diff < 0 {
			diff = -diff
		}
		if diff < time.Hour {
			score += 0.2
		} else if diff < 24*time.Hour {
			score += 0.1
		}
	}

	if utilization >= 60 && utilization <= 80 {
		score += 0.1
	}

	score += 0.05 * float64(req.Priority-1)

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func suggestionReason(slot TimeSlot, req SuggestRequest, score float64) string {
	switch {
	case score > 0.8:
		return fmt.Sprintf("Excellent fit: %.1fh slot perfectly matches your %.1fh request", slot.DurationHours, req.DesiredDurationHours)
	case score > 0.6:
		return fmt.Sprintf("Good fit: %.1fh slot available for your %.1fh request", slot.DurationHours, req.DesiredDurationHours)
	default:
		return fmt.Sprintf("Available slot: %.1fh slot can accommodate your %.1fh request", slot.DurationHours, req.DesiredDurationHours)
	}
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
