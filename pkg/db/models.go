package db

import "time"

// Announcement records that a participant was told which role they play
type Announcement struct {
	ID            string    `db:"id" json:"id"`
	BatchID       string    `db:"batch_id" json:"batch_id"`
	EventID       int       `db:"event_id" json:"event_id"`
	ParticipantID int       `db:"participant_id" json:"participant_id"`
	RoleID        int       `db:"role_id" json:"role_id"`
	Email         string    `db:"email" json:"email"`
	SentAt        time.Time `db:"sent_at" json:"sent_at"`
}
