package postgres

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/gnmanager/casting/pkg/db"
)

// GetAnnouncements retrieves the role announcements sent for an event, oldest first
func (d *DB) GetAnnouncements(ctx context.Context, eventID int) ([]db.Announcement, error) {
	var announcements []db.Announcement
	err := pgxscan.Select(ctx, d.pool, &announcements, `
		SELECT id, batch_id, event_id, participant_id, role_id, email, sent_at
		FROM role_announcement
		WHERE event_id = $1
		ORDER BY sent_at, id
	`, eventID)
	if err != nil {
		return nil, storageError("get announcements", err)
	}
	return announcements, nil
}

// InsertAnnouncement records a sent announcement and flags the participant's
// role as communicated
func (d *DB) InsertAnnouncement(ctx context.Context, a db.Announcement) error {
	return d.inTx(ctx, func(q querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO role_announcement (id, batch_id, event_id, participant_id, role_id, email, sent_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, a.ID, a.BatchID, a.EventID, a.ParticipantID, a.RoleID, a.Email, a.SentAt.UTC())
		if err != nil {
			return storageError("insert announcement", err)
		}

		_, err = q.Exec(ctx, `
			UPDATE participant SET role_communicated = TRUE
			WHERE id = $1 AND event_id = $2
		`, a.ParticipantID, a.EventID)
		if err != nil {
			return storageError("mark role communicated", err)
		}
		return nil
	})
}
