package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mbeiro/StudioAppBack/internal/models"
	"github.com/mbeiro/StudioAppBack/internal/repository"
	"github.com/mbeiro/StudioAppBack/internal/schedule"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInstructorNotFound = errors.New("instructor not found")
)

type classStore interface {
	Create(ctx context.Context, input repository.CreateClassInput) (*models.Class, error)
	Update(ctx context.Context, classID int64, input repository.CreateClassInput) (*models.Class, error)
	GetByID(ctx context.Context, classID int64) (*models.Class, error)
	List(ctx context.Context, activeOnly bool) ([]models.Class, error)
	ListByInstructor(ctx context.Context, instructorID int64) ([]models.Class, error)
	SetActive(ctx context.Context, classID int64, active bool) (*models.Class, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// ClassService owns class configuration and schedule projection.
type ClassService struct {
	classRepo classStore
	userRepo  userReader
	engine    *schedule.Engine
}

func NewClassService(classRepo classStore, userRepo userReader, engine *schedule.Engine) *ClassService {
	return &ClassService{classRepo: classRepo, userRepo: userRepo, engine: engine}
}

type ClassInput struct {
	Name            string
	InstructorID    int64
	ScheduleDays    []string
	ScheduleTime    string
	DurationMinutes int
	PaymentMode     string
	FlatAmount      float64
	Percentage      *float64
	Capacity        int
}

func (s *ClassService) CreateClass(ctx context.Context, input ClassInput) (*models.Class, error) {
	normalized, err := s.normalize(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.classRepo.Create(ctx, normalized)
}

func (s *ClassService) UpdateClass(ctx context.Context, classID int64, input ClassInput) (*models.Class, error) {
	if _, err := s.classRepo.GetByID(ctx, classID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	normalized, err := s.normalize(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.classRepo.Update(ctx, classID, normalized)
}

func (s *ClassService) GetClass(ctx context.Context, classID int64) (*models.Class, error) {
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

func (s *ClassService) ListClasses(ctx context.Context, activeOnly bool) ([]models.Class, error) {
	return s.classRepo.List(ctx, activeOnly)
}

func (s *ClassService) ListByInstructor(ctx context.Context, instructorID int64) ([]models.Class, error) {
	return s.classRepo.ListByInstructor(ctx, instructorID)
}

func (s *ClassService) SetActive(ctx context.Context, classID int64, active bool) (*models.Class, error) {
	class, err := s.classRepo.SetActive(ctx, classID, active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

// ProjectedSessions returns the class's calendar between two dates, derived
// from its weekly recurrence pattern. Nothing is persisted; sessions only
// materialize on first check-in.
func (s *ClassService) ProjectedSessions(
	ctx context.Context,
	classID int64,
	from string,
	to string,
) ([]schedule.Occurrence, error) {
	class, err := s.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	rangeStart, err := parseDate(from)
	if err != nil {
		return nil, ErrInvalidInput
	}
	rangeEnd, err := parseDate(to)
	if err != nil {
		return nil, ErrInvalidInput
	}
	return s.engine.Occurrences(class.ClassSchedule, rangeStart, rangeEnd), nil
}

// UpcomingSessions returns the next n occurrences of the class.
func (s *ClassService) UpcomingSessions(ctx context.Context, classID int64, n int) ([]schedule.Occurrence, error) {
	class, err := s.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return s.engine.Upcoming(class.ClassSchedule, n), nil
}

func (s *ClassService) normalize(ctx context.Context, input ClassInput) (repository.CreateClassInput, error) {
	var zero repository.CreateClassInput

	if strings.TrimSpace(input.Name) == "" {
		return zero, ErrInvalidInput
	}
	if input.DurationMinutes <= 0 {
		return zero, ErrInvalidInput
	}
	switch input.PaymentMode {
	case models.PaymentModeFlat:
		if input.FlatAmount < 0 {
			return zero, ErrInvalidInput
		}
	case models.PaymentModePercentage:
		if input.Percentage != nil && (*input.Percentage < 0 || *input.Percentage > 100) {
			return zero, ErrInvalidInput
		}
	default:
		return zero, ErrInvalidInput
	}

	days := make([]string, 0, len(input.ScheduleDays))
	for _, name := range input.ScheduleDays {
		if _, err := schedule.ParseWeekday(name); err != nil {
			return zero, ErrInvalidInput
		}
		days = append(days, strings.ToLower(strings.TrimSpace(name)))
	}

	instructor, err := s.userRepo.GetByID(ctx, input.InstructorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, ErrInstructorNotFound
		}
		return zero, err
	}
	if instructor.Role != "instructor" {
		return zero, ErrInvalidInput
	}

	scheduleTime := strings.TrimSpace(input.ScheduleTime)
	if scheduleTime == "" {
		scheduleTime = schedule.DefaultStartTime
	}

	return repository.CreateClassInput{
		Name:            strings.TrimSpace(input.Name),
		InstructorID:    input.InstructorID,
		ScheduleDays:    days,
		ScheduleTime:    scheduleTime,
		DurationMinutes: input.DurationMinutes,
		PaymentMode:     input.PaymentMode,
		FlatAmount:      input.FlatAmount,
		Percentage:      input.Percentage,
		Capacity:        input.Capacity,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(value))
}
