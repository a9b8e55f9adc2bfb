package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mbeiro/StudioAppBack/internal/models"
	"github.com/mbeiro/StudioAppBack/internal/repository"
	"github.com/mbeiro/StudioAppBack/internal/schedule"
	"go.uber.org/zap"
)

type stubClassStore struct {
	created    *models.Class
	getResult  *models.Class
	getErr     error
	lastCreate repository.CreateClassInput
}

func (s *stubClassStore) Create(_ context.Context, input repository.CreateClassInput) (*models.Class, error) {
	s.lastCreate = input
	return s.created, nil
}

func (s *stubClassStore) Update(_ context.Context, _ int64, input repository.CreateClassInput) (*models.Class, error) {
	s.lastCreate = input
	return s.created, nil
}

func (s *stubClassStore) GetByID(_ context.Context, _ int64) (*models.Class, error) {
	return s.getResult, s.getErr
}

func (s *stubClassStore) List(_ context.Context, _ bool) ([]models.Class, error) {
	return nil, nil
}

func (s *stubClassStore) ListByInstructor(_ context.Context, _ int64) ([]models.Class, error) {
	return nil, nil
}

func (s *stubClassStore) SetActive(_ context.Context, _ int64, _ bool) (*models.Class, error) {
	return s.getResult, s.getErr
}

type stubUserRepo struct {
	user *models.User
	err  error
}

func (s *stubUserRepo) GetByID(_ context.Context, _ int64) (*models.User, error) {
	return s.user, s.err
}

func newClassTestService(store *stubClassStore, users *stubUserRepo) *ClassService {
	engine := schedule.NewEngine(
		schedule.FixedClock{Instant: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)},
		zap.NewNop(),
	)
	return NewClassService(store, users, engine)
}

func validClassInput() ClassInput {
	return ClassInput{
		Name:            "Evening Yoga",
		InstructorID:    4,
		ScheduleDays:    []string{"Monday", "WEDNESDAY"},
		ScheduleTime:    "18:00",
		DurationMinutes: 60,
		PaymentMode:     models.PaymentModePercentage,
		Capacity:        20,
	}
}

func TestCreateClassNormalizesWeekdays(t *testing.T) {
	store := &stubClassStore{created: &models.Class{ID: 1}}
	users := &stubUserRepo{user: &models.User{ID: 4, Role: "instructor"}}
	service := newClassTestService(store, users)

	if _, err := service.CreateClass(context.Background(), validClassInput()); err != nil {
		t.Fatalf("CreateClass: %v", err)
	}
	if got := store.lastCreate.ScheduleDays; len(got) != 2 || got[0] != "monday" || got[1] != "wednesday" {
		t.Fatalf("expected lowercased weekdays, got %v", got)
	}
}

func TestCreateClassRejectsBadInput(t *testing.T) {
	store := &stubClassStore{created: &models.Class{ID: 1}}
	users := &stubUserRepo{user: &models.User{ID: 4, Role: "instructor"}}
	service := newClassTestService(store, users)

	cases := map[string]func(*ClassInput){
		"empty name":         func(in *ClassInput) { in.Name = "  " },
		"zero duration":      func(in *ClassInput) { in.DurationMinutes = 0 },
		"unknown mode":       func(in *ClassInput) { in.PaymentMode = "commission" },
		"negative flat":      func(in *ClassInput) { in.PaymentMode = models.PaymentModeFlat; in.FlatAmount = -1 },
		"percentage too big": func(in *ClassInput) { p := 130.0; in.Percentage = &p },
		"bad weekday":        func(in *ClassInput) { in.ScheduleDays = []string{"someday"} },
	}
	for name, mutate := range cases {
		input := validClassInput()
		mutate(&input)
		if _, err := service.CreateClass(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestCreateClassRequiresInstructorRole(t *testing.T) {
	store := &stubClassStore{created: &models.Class{ID: 1}}
	service := newClassTestService(store, &stubUserRepo{user: &models.User{ID: 4, Role: "admin"}})

	if _, err := service.CreateClass(context.Background(), validClassInput()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a non-instructor, got %v", err)
	}

	service = newClassTestService(store, &stubUserRepo{err: pgx.ErrNoRows})
	if _, err := service.CreateClass(context.Background(), validClassInput()); !errors.Is(err, ErrInstructorNotFound) {
		t.Fatalf("expected ErrInstructorNotFound, got %v", err)
	}
}

func TestProjectedSessionsUsesClassSchedule(t *testing.T) {
	store := &stubClassStore{getResult: &models.Class{
		ID: 1,
		ClassSchedule: models.ClassSchedule{
			Days: []string{"monday"},
			Time: "18:00",
		},
		IsActive: true,
	}}
	service := newClassTestService(store, &stubUserRepo{})

	occurrences, err := service.ProjectedSessions(context.Background(), 1, "2024-06-01", "2024-06-30")
	if err != nil {
		t.Fatalf("ProjectedSessions: %v", err)
	}
	if len(occurrences) != 4 {
		t.Fatalf("expected 4 Mondays in June 2024, got %d", len(occurrences))
	}

	if _, err := service.ProjectedSessions(context.Background(), 1, "June 1st", "2024-06-30"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a malformed date, got %v", err)
	}
}

func TestGetClassMapsNoRows(t *testing.T) {
	service := newClassTestService(&stubClassStore{getErr: pgx.ErrNoRows}, &stubUserRepo{})

	if _, err := service.GetClass(context.Background(), 99); !errors.Is(err, ErrClassNotFound) {
		t.Fatalf("expected ErrClassNotFound, got %v", err)
	}
}
