package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mbeiro/StudioAppBack/internal/models"
	"github.com/mbeiro/StudioAppBack/internal/repository"
)

var ErrClassFull = errors.New("class is at capacity")

type memberStore interface {
	Create(ctx context.Context, input repository.CreateMemberInput) (*models.Member, error)
	GetByID(ctx context.Context, memberID int64) (*models.Member, error)
	List(ctx context.Context, offset, limit int) ([]models.Member, int, error)
	SetActive(ctx context.Context, memberID int64, active bool) (*models.Member, error)
}

type purchaseStore interface {
	CreateDropIn(ctx context.Context, input repository.CreateDropInPurchaseInput) (*models.DropInCreditPurchase, error)
	ListPackagesByMember(ctx context.Context, memberID int64) ([]models.PackagePurchase, error)
	ListDropInsByMember(ctx context.Context, memberID int64) ([]models.DropInCreditPurchase, error)
}

type enrollmentStore interface {
	ListByClass(ctx context.Context, classID int64) ([]models.Enrollment, error)
	CountByClass(ctx context.Context, classID int64) (int, error)
}

// MembershipService owns members and the sales flows that fund check-ins.
type MembershipService struct {
	db             *pgxpool.Pool
	memberRepo     memberStore
	purchaseRepo   purchaseStore
	classRepo      classReader
	enrollmentRepo enrollmentStore
}

func NewMembershipService(
	db *pgxpool.Pool,
	memberRepo memberStore,
	purchaseRepo purchaseStore,
	classRepo classReader,
	enrollmentRepo enrollmentStore,
) *MembershipService {
	return &MembershipService{
		db:             db,
		memberRepo:     memberRepo,
		purchaseRepo:   purchaseRepo,
		classRepo:      classRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// CreateMember registers a member and mints the QR token printed on their
// pass.
func (s *MembershipService) CreateMember(ctx context.Context, fullName string, email *string) (*models.Member, error) {
	if strings.TrimSpace(fullName) == "" {
		return nil, ErrInvalidInput
	}
	return s.memberRepo.Create(ctx, repository.CreateMemberInput{
		FullName: strings.TrimSpace(fullName),
		Email:    email,
		QRToken:  uuid.NewString(),
	})
}

func (s *MembershipService) GetMember(ctx context.Context, memberID int64) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

func (s *MembershipService) ListMembers(ctx context.Context, offset, limit int) ([]models.Member, int, error) {
	return s.memberRepo.List(ctx, offset, limit)
}

func (s *MembershipService) SetMemberActive(ctx context.Context, memberID int64, active bool) (*models.Member, error) {
	member, err := s.memberRepo.SetActive(ctx, memberID, active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// SellPackage creates a class package purchase and enrolls the member in the
// class in one transaction.
func (s *MembershipService) SellPackage(
	ctx context.Context,
	memberID int64,
	classID int64,
	amountPaid float64,
	numClasses int,
) (*models.PackagePurchase, error) {
	if amountPaid < 0 || numClasses <= 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.GetMember(ctx, memberID); err != nil {
		return nil, err
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
	if class.Capacity > 0 {
		enrolled, err := s.enrollmentRepo.CountByClass(ctx, classID)
		if err != nil {
			return nil, err
		}
		if enrolled >= class.Capacity {
			// An existing enrollee buying another package never trips the cap.
			enrollments, err := s.enrollmentRepo.ListByClass(ctx, classID)
			if err != nil {
				return nil, err
			}
			already := false
			for _, enrollment := range enrollments {
				if enrollment.MemberID == memberID {
					already = true
					break
				}
			}
			if !already {
				return nil, ErrClassFull
			}
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPurchaseRepo := repository.NewPurchaseRepository(tx)
	txEnrollmentRepo := repository.NewEnrollmentRepository(tx)

	purchase, err := txPurchaseRepo.CreatePackage(ctx, repository.CreatePackagePurchaseInput{
		MemberID:   memberID,
		ClassID:    classID,
		AmountPaid: amountPaid,
		NumClasses: numClasses,
	})
	if err != nil {
		return nil, err
	}
	if _, err := txEnrollmentRepo.Upsert(ctx, classID, memberID, &purchase.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return purchase, nil
}

// SellDropInCredits sells a punch card of single-session credits.
func (s *MembershipService) SellDropInCredits(
	ctx context.Context,
	memberID int64,
	amountPaid float64,
	creditsTotal int,
) (*models.DropInCreditPurchase, error) {
	if amountPaid < 0 || creditsTotal <= 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	return s.purchaseRepo.CreateDropIn(ctx, repository.CreateDropInPurchaseInput{
		MemberID:     memberID,
		AmountPaid:   amountPaid,
		CreditsTotal: creditsTotal,
	})
}

// ClassEnrollments lists who is enrolled in the class.
func (s *MembershipService) ClassEnrollments(ctx context.Context, classID int64) ([]models.Enrollment, error) {
	if _, err := s.classRepo.GetByID(ctx, classID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return s.enrollmentRepo.ListByClass(ctx, classID)
}

type MemberPurchases struct {
	Packages []models.PackagePurchase      `json:"packages"`
	DropIns  []models.DropInCreditPurchase `json:"drop_ins"`
}

func (s *MembershipService) ListMemberPurchases(ctx context.Context, memberID int64) (*MemberPurchases, error) {
	if _, err := s.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	packages, err := s.purchaseRepo.ListPackagesByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	dropIns, err := s.purchaseRepo.ListDropInsByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return &MemberPurchases{Packages: packages, DropIns: dropIns}, nil
}
