package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/gnmanager/casting/pkg/core/casting"
	"github.com/gnmanager/casting/pkg/core/model"
)

type eventRecord struct {
	ID                 int    `db:"id"`
	Name               string `db:"name"`
	IsCastingValidated bool   `db:"is_casting_validated"`
	NextProposalID     int    `db:"next_proposal_id"`
	GroupsConfig       []byte `db:"groups_config"`
}

type roleRecord struct {
	ID      int    `db:"id"`
	Name    string `db:"name"`
	Type    string `db:"type"`
	Genre   string `db:"genre"`
	Group   string `db:"group"`
	Comment string `db:"comment"`
}

type participantRecord struct {
	ID      int    `db:"id"`
	Name    string `db:"name"`
	Email   string `db:"email"`
	Type    string `db:"type"`
	Genre   string `db:"genre"`
	Group   string `db:"group"`
	Comment string `db:"comment"`
}

type proposalRecord struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

type assignmentRecord struct {
	ProposalID    int  `db:"proposal_id"`
	RoleID        int  `db:"role_id"`
	ParticipantID *int `db:"participant_id"`
	Score         *int `db:"score"`
}

const (
	getEventQuery = `
		SELECT id, name, is_casting_validated, next_proposal_id, groups_config
		FROM event WHERE id = $1`
	lockEventQuery = `SELECT id FROM event WHERE id = $1 FOR UPDATE`
	getRolesQuery  = `
		SELECT id, name, type, COALESCE(genre, '') AS genre, COALESCE("group", '') AS "group",
			COALESCE(comment, '') AS comment
		FROM role WHERE event_id = $1
		ORDER BY position, id`
	getParticipantsQuery = `
		SELECT id, name, COALESCE(email, '') AS email, type, COALESCE(genre, '') AS genre,
			COALESCE("group", '') AS "group", COALESCE(comment, '') AS comment
		FROM participant WHERE event_id = $1
		ORDER BY id`
	getProposalsQuery   = `SELECT id, name FROM casting_proposal WHERE event_id = $1 ORDER BY id`
	getAssignmentsQuery = `
		SELECT proposal_id, role_id, participant_id, score
		FROM casting_assignment WHERE event_id = $1`
	updateEventQuery = `
		UPDATE event SET is_casting_validated = $2, next_proposal_id = $3, groups_config = $4
		WHERE id = $1`
	mirrorRolesQuery = `
		UPDATE role r SET assigned_participant_id = a.participant_id
		FROM (
			SELECT role.id, m.participant_id
			FROM role
			LEFT JOIN casting_assignment m
				ON m.event_id = role.event_id AND m.proposal_id = 0 AND m.role_id = role.id
			WHERE role.event_id = $1
		) a
		WHERE r.id = a.id`
	mirrorParticipantsQuery = `
		UPDATE participant p SET role_id = a.role_id
		FROM (
			SELECT participant.id, m.role_id
			FROM participant
			LEFT JOIN casting_assignment m
				ON m.event_id = participant.event_id AND m.proposal_id = 0 AND m.participant_id = participant.id
			WHERE participant.event_id = $1
		) a
		WHERE p.id = a.id`
)

// LoadSession reads the casting session of an event
func (d *DB) LoadSession(ctx context.Context, eventID int) (*casting.Session, error) {
	return loadSession(ctx, d.pool, eventID)
}

// SaveSession writes the casting state of a session in one transaction
func (d *DB) SaveSession(ctx context.Context, session *casting.Session) error {
	return d.inTx(ctx, func(tx querier) error {
		if err := lockEvent(ctx, tx, session.EventID); err != nil {
			return err
		}
		return saveSession(ctx, tx, session)
	})
}

// UpdateSession locks the event row, loads its session, applies fn and writes
// the result back in the same transaction. The transaction is rolled back if
// fn fails, so concurrent updates of one event are serialized and a failed
// operation leaves the stored session unchanged.
func (d *DB) UpdateSession(ctx context.Context, eventID int, fn func(*casting.Session) error) error {
	return d.inTx(ctx, func(tx querier) error {
		if err := lockEvent(ctx, tx, eventID); err != nil {
			return err
		}
		session, err := loadSession(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}
		session.EventID = eventID
		return saveSession(ctx, tx, session)
	})
}

func (d *DB) inTx(ctx context.Context, fn func(querier) error) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return storageError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storageError("commit transaction", err)
	}
	return nil
}

func lockEvent(ctx context.Context, q querier, eventID int) error {
	var id int
	if err := pgxscan.Get(ctx, q, &id, lockEventQuery, eventID); err != nil {
		if pgxscan.NotFound(err) {
			return fmt.Errorf("%w: event %d", casting.ErrNotFound, eventID)
		}
		return storageError("lock event", err)
	}
	return nil
}

func loadSession(ctx context.Context, q querier, eventID int) (*casting.Session, error) {
	var event eventRecord
	if err := pgxscan.Get(ctx, q, &event, getEventQuery, eventID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("%w: event %d", casting.ErrNotFound, eventID)
		}
		return nil, storageError("get event", err)
	}

	var roleRows []roleRecord
	if err := pgxscan.Select(ctx, q, &roleRows, getRolesQuery, eventID); err != nil {
		return nil, storageError("get roles", err)
	}
	var participantRows []participantRecord
	if err := pgxscan.Select(ctx, q, &participantRows, getParticipantsQuery, eventID); err != nil {
		return nil, storageError("get participants", err)
	}
	var proposalRows []proposalRecord
	if err := pgxscan.Select(ctx, q, &proposalRows, getProposalsQuery, eventID); err != nil {
		return nil, storageError("get proposals", err)
	}
	var assignmentRows []assignmentRecord
	if err := pgxscan.Select(ctx, q, &assignmentRows, getAssignmentsQuery, eventID); err != nil {
		return nil, storageError("get assignments", err)
	}

	roles := make([]model.Role, 0, len(roleRows))
	for _, r := range roleRows {
		roles = append(roles, model.Role{
			ID:      r.ID,
			Name:    r.Name,
			Type:    model.ParticipantType(r.Type),
			Gender:  r.Genre,
			Group:   r.Group,
			Comment: r.Comment,
		})
	}

	participants := make([]model.Participant, 0, len(participantRows))
	for _, p := range participantRows {
		participants = append(participants, model.Participant{
			ID:      p.ID,
			Name:    p.Name,
			Email:   p.Email,
			Type:    model.ParticipantType(p.Type),
			Gender:  p.Genre,
			Group:   p.Group,
			Comment: p.Comment,
		})
	}

	session := casting.NewSession(event.ID, roles, model.GroupParticipants(participants))
	session.Validated = event.IsCastingValidated
	session.NextProposalID = event.NextProposalID

	if len(event.GroupsConfig) > 0 {
		var groups model.GroupsConfig
		if err := json.Unmarshal(event.GroupsConfig, &groups); err != nil {
			return nil, storageError("decode groups config", err)
		}
		session.GroupsConfig = groups
	}

	for _, p := range proposalRows {
		session.Proposals = append(session.Proposals, casting.Proposal{ID: casting.ProposalID(p.ID), Name: p.Name})
	}

	for _, a := range assignmentRows {
		proposalID := casting.ProposalID(a.ProposalID)
		if a.ParticipantID != nil {
			if session.Assignments[proposalID] == nil {
				session.Assignments[proposalID] = make(map[int]int)
			}
			session.Assignments[proposalID][a.RoleID] = *a.ParticipantID
		}
		if a.Score != nil {
			if session.Scores[proposalID] == nil {
				session.Scores[proposalID] = make(map[int]int)
			}
			session.Scores[proposalID][a.RoleID] = *a.Score
		}
	}

	session.Normalize()
	return session, nil
}

// saveSession replaces the proposals and assignments of an event and mirrors
// the main assignment onto role and participant rows
func saveSession(ctx context.Context, q querier, session *casting.Session) error {
	eventID := session.EventID

	groups, err := json.Marshal(session.GroupsConfig)
	if err != nil {
		return storageError("encode groups config", err)
	}
	if _, err := q.Exec(ctx, updateEventQuery, eventID, session.Validated, session.NextProposalID, groups); err != nil {
		return storageError("update event", err)
	}

	if _, err := q.Exec(ctx, `DELETE FROM casting_assignment WHERE event_id = $1`, eventID); err != nil {
		return storageError("clear assignments", err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM casting_proposal WHERE event_id = $1`, eventID); err != nil {
		return storageError("clear proposals", err)
	}

	proposalRows := make([][]any, 0, len(session.Proposals))
	for _, p := range session.Proposals {
		proposalRows = append(proposalRows, []any{eventID, int(p.ID), p.Name})
	}
	if _, err := q.CopyFrom(ctx, pgx.Identifier{"casting_proposal"},
		[]string{"event_id", "id", "name"}, pgx.CopyFromRows(proposalRows)); err != nil {
		return storageError("insert proposals", err)
	}

	if _, err := q.CopyFrom(ctx, pgx.Identifier{"casting_assignment"},
		[]string{"event_id", "proposal_id", "role_id", "participant_id", "score"},
		pgx.CopyFromRows(assignmentRows(session))); err != nil {
		return storageError("insert assignments", err)
	}

	if _, err := q.Exec(ctx, mirrorRolesQuery, eventID); err != nil {
		return storageError("mirror main onto roles", err)
	}
	if _, err := q.Exec(ctx, mirrorParticipantsQuery, eventID); err != nil {
		return storageError("mirror main onto participants", err)
	}

	return nil
}

// assignmentRows flattens assignments and scores into one row per
// (proposal, role) pair that has either
func assignmentRows(session *casting.Session) [][]any {
	var rows [][]any
	for _, proposalID := range session.ProposalIDs() {
		mapping := session.Assignments[proposalID]
		scores := session.Scores[proposalID]

		roleIDs := slices.Collect(maps.Keys(mapping))
		for roleID := range scores {
			if _, ok := mapping[roleID]; !ok {
				roleIDs = append(roleIDs, roleID)
			}
		}
		slices.Sort(roleIDs)

		for _, roleID := range roleIDs {
			var participantID, score *int
			if id, ok := mapping[roleID]; ok {
				participantID = &id
			}
			if s, ok := scores[roleID]; ok {
				score = &s
			}
			rows = append(rows, []any{session.EventID, int(proposalID), roleID, participantID, score})
		}
	}
	return rows
}
