package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mbeiro/StudioAppBack/internal/models"
	"github.com/mbeiro/StudioAppBack/internal/repository"
	"github.com/mbeiro/StudioAppBack/internal/schedule"
	"go.uber.org/zap"
)

var (
	ErrMemberNotFound   = errors.New("member not found")
	ErrMemberInactive   = errors.New("member inactive")
	ErrClassNotFound    = errors.New("class not found")
	ErrClassInactive    = errors.New("class inactive")
	ErrNoCredit         = errors.New("no remaining credit")
	ErrAlreadyCheckedIn = errors.New("already checked in")
)

type memberTokenReader interface {
	GetByQRToken(ctx context.Context, qrToken string) (*models.Member, error)
}

type classReader interface {
	GetByID(ctx context.Context, classID int64) (*models.Class, error)
}

type sessionStore interface {
	GetByKey(ctx context.Context, classID int64, sessionDate time.Time, sessionTime string) (*models.ClassSession, error)
	Create(ctx context.Context, classID int64, sessionDate time.Time, sessionTime string) (*models.ClassSession, error)
}

type checkInPublisher interface {
	PublishCheckIn(detail *models.CheckInDetail)
}

// CheckInService runs the QR scan flow: resolve the member, materialize
// today's session for the class, consume a credit and record the check-in.
type CheckInService struct {
	db          *pgxpool.Pool
	memberRepo  memberTokenReader
	classRepo   classReader
	sessionRepo sessionStore
	checkInRepo *repository.CheckInRepository
	clock       schedule.Clock
	publisher   checkInPublisher
	logger      *zap.Logger
}

func NewCheckInService(
	db *pgxpool.Pool,
	memberRepo memberTokenReader,
	classRepo classReader,
	sessionRepo sessionStore,
	checkInRepo *repository.CheckInRepository,
	clock schedule.Clock,
	publisher checkInPublisher,
	logger *zap.Logger,
) *CheckInService {
	return &CheckInService{
		db:          db,
		memberRepo:  memberRepo,
		classRepo:   classRepo,
		sessionRepo: sessionRepo,
		checkInRepo: checkInRepo,
		clock:       clock,
		publisher:   publisher,
		logger:      logger,
	}
}

// CheckIn records a member scan against today's session of the class.
func (s *CheckInService) CheckIn(ctx context.Context, qrToken string, classID int64) (*models.CheckInDetail, error) {
	member, err := s.memberRepo.GetByQRToken(ctx, qrToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if !member.IsActive {
		return nil, ErrMemberInactive
	}

	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if !class.IsActive {
		return nil, ErrClassInactive
	}

	now := s.clock.Now()
	sessionDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sessionTime := class.Time
	if sessionTime == "" {
		sessionTime = schedule.DefaultStartTime
	}

	session, err := s.getOrCreateSession(ctx, classID, sessionDate, sessionTime)
	if err != nil {
		return nil, err
	}

	checkIn, err := s.recordCheckIn(ctx, member, class, session)
	if err != nil {
		return nil, err
	}

	detail := &models.CheckInDetail{
		CheckIn:    *checkIn,
		Session:    *session,
		MemberName: member.FullName,
		ClassName:  class.Name,
	}
	if s.publisher != nil {
		s.publisher.PublishCheckIn(detail)
	}
	return detail, nil
}

// getOrCreateSession resolves the session row for (classID, date, time),
// creating it on first use. Two scans can race to create the same session;
// the loser hits the unique constraint and recovers with one retry lookup.
func (s *CheckInService) getOrCreateSession(
	ctx context.Context,
	classID int64,
	sessionDate time.Time,
	sessionTime string,
) (*models.ClassSession, error) {
	session, err := s.sessionRepo.GetByKey(ctx, classID, sessionDate, sessionTime)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	created, createErr := s.sessionRepo.Create(ctx, classID, sessionDate, sessionTime)
	if createErr == nil {
		return created, nil
	}
	if !repository.IsUniqueViolation(createErr) {
		return nil, createErr
	}

	s.logger.Debug("lost session creation race, retrying lookup",
		zap.Int64("class_id", classID),
		zap.Time("session_date", sessionDate),
		zap.String("session_time", sessionTime),
	)

	existing, lookupErr := s.sessionRepo.GetByKey(ctx, classID, sessionDate, sessionTime)
	if lookupErr != nil {
		if errors.Is(lookupErr, pgx.ErrNoRows) {
			// The winning row vanished between insert and retry; surface the
			// original conflict as fatal.
			return nil, createErr
		}
		return nil, lookupErr
	}
	return existing, nil
}

// recordCheckIn consumes a credit and inserts the check-in atomically. Class
// packages are preferred over drop-in credits.
func (s *CheckInService) recordCheckIn(
	ctx context.Context,
	member *models.Member,
	class *models.Class,
	session *models.ClassSession,
) (*models.CheckIn, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPurchaseRepo := repository.NewPurchaseRepository(tx)
	txCheckInRepo := repository.NewCheckInRepository(tx)

	input := repository.CreateCheckInInput{
		SessionID: session.ID,
		MemberID:  member.ID,
	}

	pkg, err := txPurchaseRepo.GetActivePackageForUpdate(ctx, member.ID, class.ID)
	switch {
	case err == nil:
		if _, err := txPurchaseRepo.ConsumePackage(ctx, pkg.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNoCredit
			}
			return nil, err
		}
		input.PurchaseType = models.PurchaseTypePackage
		input.PackagePurchaseID = &pkg.ID
	case errors.Is(err, pgx.ErrNoRows):
		dropIn, dropErr := txPurchaseRepo.GetActiveDropInForUpdate(ctx, member.ID)
		if dropErr != nil {
			if errors.Is(dropErr, pgx.ErrNoRows) {
				return nil, ErrNoCredit
			}
			return nil, dropErr
		}
		if _, err := txPurchaseRepo.ConsumeDropIn(ctx, dropIn.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNoCredit
			}
			return nil, err
		}
		input.PurchaseType = models.PurchaseTypeDropIn
		input.DropInPurchaseID = &dropIn.ID
	default:
		return nil, err
	}

	checkIn, err := txCheckInRepo.Create(ctx, input)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return checkIn, nil
}

// SessionRoster lists the check-ins recorded against one session.
func (s *CheckInService) SessionRoster(ctx context.Context, sessionID int64) ([]models.CheckIn, error) {
	return s.checkInRepo.ListBySession(ctx, sessionID)
}
