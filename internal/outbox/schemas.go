package outbox

const summaryUpdatedSchema = `{
  "type": "object",
  "title": "SummaryUpdated",
  "properties": {
    "snapshot_id": {"type": "string"},
    "uploaded_at": {"type": "string", "format": "date-time"},
    "rows": {"type": "integer"},
    "window_start": {"type": "string", "format": "date"},
    "window_end": {"type": "string", "format": "date"},
    "days": {"type": "integer", "minimum": 1, "maximum": 7},
    "summary": {
      "type": "object",
      "properties": {
        "total_active_energy_kcal": {"type": "number"},
        "total_steps": {"type": "integer"},
        "total_distance_mi": {"type": "number"},
        "avg_exercise_min_per_day": {"type": "number"},
        "stand_goal_days": {"type": "integer"},
        "move_goal_days": {"type": "integer"},
        "resting_hr_avg": {"type": "integer"},
        "hrv_median_ms": {"type": "number"},
        "spo2_min_pct": {"type": "number"}
      },
      "required": ["total_active_energy_kcal", "total_steps", "total_distance_mi", "avg_exercise_min_per_day", "stand_goal_days", "move_goal_days"]
    }
  },
  "required": ["snapshot_id", "uploaded_at", "rows", "window_start", "window_end", "days", "summary"],
  "additionalProperties": false
}`
