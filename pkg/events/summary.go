// Package events defines the event payloads published by the wellness service.
package events

import "time"

// SummaryUpdatedType is the outbox event type emitted after each recorded upload.
const SummaryUpdatedType = "summary.updated"

// SummaryUpdated announces that a new snapshot replaced the latest summary.
type SummaryUpdated struct {
	SnapshotID  string         `json:"snapshot_id"`
	UploadedAt  time.Time      `json:"uploaded_at"`
	Rows        int            `json:"rows"`
	WindowStart string         `json:"window_start"`
	WindowEnd   string         `json:"window_end"`
	Days        int            `json:"days"`
	Summary     SummaryFigures `json:"summary"`
}

// SummaryFigures carries the headline statistics of a snapshot, rounded for display.
type SummaryFigures struct {
	TotalActiveEnergyKcal float64  `json:"total_active_energy_kcal"`
	TotalSteps            int64    `json:"total_steps"`
	TotalDistanceMi       float64  `json:"total_distance_mi"`
	AvgExerciseMinPerDay  float64  `json:"avg_exercise_min_per_day"`
	StandGoalDays         int      `json:"stand_goal_days"`
	MoveGoalDays          int      `json:"move_goal_days"`
	RestingHRAvg          *int     `json:"resting_hr_avg,omitempty"`
	HRVMedianMs           *float64 `json:"hrv_median_ms,omitempty"`
	SpO2MinPct            *float64 `json:"spo2_min_pct,omitempty"`
}
