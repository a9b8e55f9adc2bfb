package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mbeiro/StudioAppBack/internal/models"
	"github.com/mbeiro/StudioAppBack/internal/schedule"
	"go.uber.org/zap"
)

type stubMemberRepo struct {
	member *models.Member
	err    error
}

func (r *stubMemberRepo) GetByQRToken(_ context.Context, _ string) (*models.Member, error) {
	return r.member, r.err
}

type stubClassRepo struct {
	class *models.Class
	err   error
}

func (r *stubClassRepo) GetByID(_ context.Context, _ int64) (*models.Class, error) {
	return r.class, r.err
}

type stubSessionStore struct {
	getResults []sessionResult
	getCalls   int
	createRes  *models.ClassSession
	createErr  error
	createCall int

	lastClassID int64
	lastDate    time.Time
	lastTime    string
}

type sessionResult struct {
	session *models.ClassSession
	err     error
}

func (s *stubSessionStore) GetByKey(
	_ context.Context,
	classID int64,
	sessionDate time.Time,
	sessionTime string,
) (*models.ClassSession, error) {
	s.lastClassID = classID
	s.lastDate = sessionDate
	s.lastTime = sessionTime
	result := s.getResults[s.getCalls]
	s.getCalls++
	return result.session, result.err
}

func (s *stubSessionStore) Create(
	_ context.Context,
	classID int64,
	sessionDate time.Time,
	sessionTime string,
) (*models.ClassSession, error) {
	s.createCall++
	s.lastClassID = classID
	s.lastDate = sessionDate
	s.lastTime = sessionTime
	return s.createRes, s.createErr
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

func newSessionTestService(sessions *stubSessionStore) *CheckInService {
	return NewCheckInService(
		nil,
		&stubMemberRepo{},
		&stubClassRepo{},
		sessions,
		nil,
		schedule.FixedClock{Instant: time.Date(2024, time.June, 3, 17, 30, 0, 0, time.UTC)},
		nil,
		zap.NewNop(),
	)
}

func TestGetOrCreateSessionReturnsExisting(t *testing.T) {
	existing := &models.ClassSession{ID: 10, ClassID: 3}
	sessions := &stubSessionStore{
		getResults: []sessionResult{{session: existing}},
	}
	service := newSessionTestService(sessions)

	session, err := service.getOrCreateSession(context.Background(), 3, day(2024, time.June, 3), "18:00")
	if err != nil {
		t.Fatalf("getOrCreateSession: %v", err)
	}
	if session.ID != 10 {
		t.Fatalf("expected existing session 10, got %d", session.ID)
	}
	if sessions.createCall != 0 {
		t.Fatal("expected no insert when the session already exists")
	}
}

func TestGetOrCreateSessionCreatesWhenMissing(t *testing.T) {
	created := &models.ClassSession{ID: 11, ClassID: 3}
	sessions := &stubSessionStore{
		getResults: []sessionResult{{err: pgx.ErrNoRows}},
		createRes:  created,
	}
	service := newSessionTestService(sessions)

	session, err := service.getOrCreateSession(context.Background(), 3, day(2024, time.June, 3), "18:00")
	if err != nil {
		t.Fatalf("getOrCreateSession: %v", err)
	}
	if session.ID != 11 {
		t.Fatalf("expected created session 11, got %d", session.ID)
	}
}

func TestGetOrCreateSessionRecoversFromLostRace(t *testing.T) {
	winner := &models.ClassSession{ID: 12, ClassID: 3}
	sessions := &stubSessionStore{
		getResults: []sessionResult{
			{err: pgx.ErrNoRows},
			{session: winner},
		},
		createErr: uniqueViolation(),
	}
	service := newSessionTestService(sessions)

	session, err := service.getOrCreateSession(context.Background(), 3, day(2024, time.June, 3), "18:00")
	if err != nil {
		t.Fatalf("expected the retry lookup to recover, got %v", err)
	}
	if session.ID != 12 {
		t.Fatalf("expected the winner's session 12, got %d", session.ID)
	}
	if sessions.getCalls != 2 {
		t.Fatalf("expected exactly one retry lookup, got %d lookups", sessions.getCalls)
	}
}

func TestGetOrCreateSessionPropagatesConflictWhenRetryFindsNothing(t *testing.T) {
	sessions := &stubSessionStore{
		getResults: []sessionResult{
			{err: pgx.ErrNoRows},
			{err: pgx.ErrNoRows},
		},
		createErr: uniqueViolation(),
	}
	service := newSessionTestService(sessions)

	_, err := service.getOrCreateSession(context.Background(), 3, day(2024, time.June, 3), "18:00")
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		t.Fatalf("expected the original conflict error, got %v", err)
	}
	if sessions.getCalls != 2 {
		t.Fatalf("expected exactly one retry, got %d lookups", sessions.getCalls)
	}
}

func TestGetOrCreateSessionDoesNotRetryOtherErrors(t *testing.T) {
	storeDown := errors.New("connection refused")
	sessions := &stubSessionStore{
		getResults: []sessionResult{{err: pgx.ErrNoRows}},
		createErr:  storeDown,
	}
	service := newSessionTestService(sessions)

	_, err := service.getOrCreateSession(context.Background(), 3, day(2024, time.June, 3), "18:00")
	if !errors.Is(err, storeDown) {
		t.Fatalf("expected the store error to propagate, got %v", err)
	}
	if sessions.getCalls != 1 {
		t.Fatalf("expected no retry lookup for a non-conflict error, got %d lookups", sessions.getCalls)
	}
}

func TestCheckInRejectsUnknownToken(t *testing.T) {
	service := NewCheckInService(
		nil,
		&stubMemberRepo{err: pgx.ErrNoRows},
		&stubClassRepo{},
		&stubSessionStore{},
		nil,
		schedule.FixedClock{Instant: time.Now()},
		nil,
		zap.NewNop(),
	)

	_, err := service.CheckIn(context.Background(), "nope", 1)
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestCheckInRejectsInactiveMember(t *testing.T) {
	service := NewCheckInService(
		nil,
		&stubMemberRepo{member: &models.Member{ID: 5, IsActive: false}},
		&stubClassRepo{},
		&stubSessionStore{},
		nil,
		schedule.FixedClock{Instant: time.Now()},
		nil,
		zap.NewNop(),
	)

	_, err := service.CheckIn(context.Background(), "token", 1)
	if !errors.Is(err, ErrMemberInactive) {
		t.Fatalf("expected ErrMemberInactive, got %v", err)
	}
}

func TestCheckInRejectsInactiveClass(t *testing.T) {
	service := NewCheckInService(
		nil,
		&stubMemberRepo{member: &models.Member{ID: 5, IsActive: true}},
		&stubClassRepo{class: &models.Class{ID: 2, IsActive: false}},
		&stubSessionStore{},
		nil,
		schedule.FixedClock{Instant: time.Now()},
		nil,
		zap.NewNop(),
	)

	_, err := service.CheckIn(context.Background(), "token", 2)
	if !errors.Is(err, ErrClassInactive) {
		t.Fatalf("expected ErrClassInactive, got %v", err)
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
