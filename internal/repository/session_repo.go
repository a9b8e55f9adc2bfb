package repository

import (
	"context"
	"time"

	"github.com/mbeiro/StudioAppBack/internal/models"
)

// SessionRepository persists class sessions. The table carries a unique
// constraint on (class_id, session_date, session_time); callers that may race
// on creation recover from the resulting conflict with a retry lookup.
type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) GetByKey(
	ctx context.Context,
	classID int64,
	sessionDate time.Time,
	sessionTime string,
) (*models.ClassSession, error) {
	query := `
		SELECT id, class_id, session_date, session_time, created_at
		FROM class_sessions
		WHERE class_id = $1 AND session_date = $2 AND session_time = $3
	`
	var session models.ClassSession
	err := r.db.QueryRow(ctx, query, classID, sessionDate, sessionTime).Scan(
		&session.ID,
		&session.ClassID,
		&session.SessionDate,
		&session.SessionTime,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(
	ctx context.Context,
	classID int64,
	sessionDate time.Time,
	sessionTime string,
) (*models.ClassSession, error) {
	query := `
		INSERT INTO class_sessions (class_id, session_date, session_time)
		VALUES ($1, $2, $3)
		RETURNING id, class_id, session_date, session_time, created_at
	`
	var session models.ClassSession
	err := r.db.QueryRow(ctx, query, classID, sessionDate, sessionTime).Scan(
		&session.ID,
		&session.ClassID,
		&session.SessionDate,
		&session.SessionTime,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.ClassSession, error) {
	query := `
		SELECT id, class_id, session_date, session_time, created_at
		FROM class_sessions
		WHERE id = $1
	`
	var session models.ClassSession
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.ClassID,
		&session.SessionDate,
		&session.SessionTime,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) ListByClass(
	ctx context.Context,
	classID int64,
	from time.Time,
	to time.Time,
) ([]models.ClassSession, error) {
	query := `
		SELECT id, class_id, session_date, session_time, created_at
		FROM class_sessions
		WHERE class_id = $1 AND session_date >= $2 AND session_date <= $3
		ORDER BY session_date ASC, session_time ASC
	`
	rows, err := r.db.Query(ctx, query, classID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.ClassSession, 0)
	for rows.Next() {
		var session models.ClassSession
		if err := rows.Scan(
			&session.ID,
			&session.ClassID,
			&session.SessionDate,
			&session.SessionTime,
			&session.CreatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
