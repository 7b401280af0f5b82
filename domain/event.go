package domain

import "time"

// EventKind names a progression event recorded in the ledger.
type EventKind string

const (
	EventTaskCompleted     EventKind = "task_completed"
	EventTaskReopened      EventKind = "task_reopened"
	EventMissionCompleted  EventKind = "mission_completed"
	EventMissionReopened   EventKind = "mission_reopened"
	EventXPGranted         EventKind = "xp_granted"
	EventMissionsGenerated EventKind = "missions_generated"
)

// ProgressEvent is an append-only record of a change applied to a user's progression.
type ProgressEvent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Kind        EventKind `json:"kind"`
	SubjectID   string    `json:"subject_id,omitempty"`
	XPDelta     int       `json:"xp_delta"`
	TokensDelta int       `json:"tokens_delta"`
	LevelBefore int       `json:"level_before"`
	LevelAfter  int       `json:"level_after"`
	CreatedAt   time.Time `json:"created_at"`
}
