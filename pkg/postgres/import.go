package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gnmanager/casting/pkg/core/casting"
)

// ErrIDConflict is returned when an imported role or participant ID already
// belongs to another event
var ErrIDConflict = errors.New("id already belongs to another event")

// ImportSession creates or replaces an event with the roles, participants and
// casting state of a session, keeping every ID as given. Roles and
// participants of the event that are absent from the session are removed.
// Serial sequences are moved past the imported IDs afterwards.
func (d *DB) ImportSession(ctx context.Context, name string, session *casting.Session) error {
	roleIDs := make([]int32, 0, len(session.Roles))
	for _, role := range session.Roles {
		roleIDs = append(roleIDs, int32(role.ID))
	}
	participantIDs := make([]int32, 0, session.Participants.Count())
	for _, bucket := range session.Participants {
		for _, p := range bucket {
			participantIDs = append(participantIDs, int32(p.ID))
		}
	}

	return d.inTx(ctx, func(q querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO event (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		`, session.EventID, name)
		if err != nil {
			return storageError("upsert event", err)
		}

		if _, err := q.Exec(ctx, `DELETE FROM role WHERE event_id = $1 AND NOT (id = ANY($2))`,
			session.EventID, roleIDs); err != nil {
			return storageError("remove stale roles", err)
		}
		if _, err := q.Exec(ctx, `DELETE FROM participant WHERE event_id = $1 AND NOT (id = ANY($2))`,
			session.EventID, participantIDs); err != nil {
			return storageError("remove stale participants", err)
		}

		for position, role := range session.Roles {
			tag, err := q.Exec(ctx, `
				INSERT INTO role (id, event_id, position, name, type, genre, "group", comment)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (id) DO UPDATE SET
					position = EXCLUDED.position, name = EXCLUDED.name, type = EXCLUDED.type,
					genre = EXCLUDED.genre, "group" = EXCLUDED."group", comment = EXCLUDED.comment
				WHERE role.event_id = EXCLUDED.event_id
			`, role.ID, session.EventID, position, role.Name, string(role.Type), role.Gender, role.Group, role.Comment)
			if err != nil {
				return storageError("upsert role", err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("failed to import role %d into event %d: %w", role.ID, session.EventID, ErrIDConflict)
			}
		}

		for _, bucket := range session.Participants {
			for _, p := range bucket {
				tag, err := q.Exec(ctx, `
					INSERT INTO participant (id, event_id, name, email, type, genre, "group", comment)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
					ON CONFLICT (id) DO UPDATE SET
						name = EXCLUDED.name, email = EXCLUDED.email, type = EXCLUDED.type,
						genre = EXCLUDED.genre, "group" = EXCLUDED."group", comment = EXCLUDED.comment
					WHERE participant.event_id = EXCLUDED.event_id
				`, p.ID, session.EventID, p.Name, p.Email, string(p.Type), p.Gender, p.Group, p.Comment)
				if err != nil {
					return storageError("upsert participant", err)
				}
				if tag.RowsAffected() == 0 {
					return fmt.Errorf("failed to import participant %d into event %d: %w", p.ID, session.EventID, ErrIDConflict)
				}
			}
		}

		if err := saveSession(ctx, q, session); err != nil {
			return err
		}

		for _, table := range []string{"event", "role", "participant"} {
			_, err := q.Exec(ctx, `
				SELECT setval(pg_get_serial_sequence($1, 'id'), COALESCE((SELECT MAX(id) FROM `+table+`), 0) + 1, false)
			`, table)
			if err != nil {
				return storageError("reset "+table+" sequence", err)
			}
		}
		return nil
	})
}
