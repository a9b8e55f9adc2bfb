package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mbeiro/StudioAppBack/internal/billing"
	"github.com/mbeiro/StudioAppBack/internal/models"
	"github.com/mbeiro/StudioAppBack/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrNothingToPay  = errors.New("no outstanding check-ins")
	ErrBatchNotFound = errors.New("payment batch not found")
)

type outstandingLister interface {
	ListOutstanding(ctx context.Context, instructorID int64) ([]repository.OutstandingCheckIn, error)
}

type batchReader interface {
	GetByID(ctx context.Context, batchID int64) (*models.PaymentBatch, error)
	ListItems(ctx context.Context, batchID int64) ([]models.PaymentBatchItem, error)
	List(ctx context.Context, instructorID int64) ([]models.PaymentBatch, error)
}

// PaymentService derives instructor payouts from check-ins. Line items are
// computed on read; amounts are only persisted when a batch is finalized.
type PaymentService struct {
	db          *pgxpool.Pool
	checkInRepo outstandingLister
	batchRepo   batchReader
	logger      *zap.Logger
}

func NewPaymentService(
	db *pgxpool.Pool,
	checkInRepo outstandingLister,
	batchRepo batchReader,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		db:          db,
		checkInRepo: checkInRepo,
		batchRepo:   batchRepo,
		logger:      logger,
	}
}

// OutstandingLineItems computes the revenue split for every check-in not yet
// covered by a batch. A zero instructorID spans all instructors.
func (s *PaymentService) OutstandingLineItems(
	ctx context.Context,
	instructorID int64,
) ([]billing.LineItem, error) {
	outstanding, err := s.checkInRepo.ListOutstanding(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	return lineItemsFromRows(outstanding), nil
}

// FinalizeBatch folds every outstanding check-in of the instructor into a
// persisted batch. The computed amounts are stored verbatim so the batch
// stays stable if class policies change later.
func (s *PaymentService) FinalizeBatch(
	ctx context.Context,
	instructorID int64,
	periodStart time.Time,
	periodEnd time.Time,
) (*models.PaymentBatchDetail, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txCheckInRepo := repository.NewCheckInRepository(tx)
	txBatchRepo := repository.NewPaymentBatchRepository(tx)

	outstanding, err := txCheckInRepo.ListOutstandingForUpdate(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	if len(outstanding) == 0 {
		return nil, ErrNothingToPay
	}

	items := lineItemsFromRows(outstanding)
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.InstructorPayment))
	}
	totalAmount, _ := total.Round(2).Float64()

	batch, err := txBatchRepo.Create(ctx, repository.CreatePaymentBatchInput{
		InstructorID: instructorID,
		Reference:    uuid.NewString(),
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		TotalAmount:  totalAmount,
	})
	if err != nil {
		return nil, err
	}

	detail := &models.PaymentBatchDetail{PaymentBatch: *batch}
	checkInIDs := make([]int64, 0, len(items))
	for _, item := range items {
		stored, err := txBatchRepo.CreateItem(ctx, repository.CreateBatchItemInput{
			BatchID:           batch.ID,
			CheckInID:         item.CheckInID,
			ClassID:           item.ClassID,
			PerSessionPrice:   item.PerSessionPrice,
			InstructorPayment: item.InstructorPayment,
			AdminEarnings:     item.AdminEarnings,
		})
		if err != nil {
			return nil, err
		}
		detail.Items = append(detail.Items, *stored)
		checkInIDs = append(checkInIDs, item.CheckInID)
	}

	if err := txCheckInRepo.MarkBatched(ctx, checkInIDs, batch.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("finalized instructor payment batch",
		zap.Int64("instructor_id", instructorID),
		zap.Int64("batch_id", batch.ID),
		zap.Int("items", len(detail.Items)),
		zap.Float64("total", totalAmount),
	)
	return detail, nil
}

func (s *PaymentService) GetBatch(ctx context.Context, batchID int64) (*models.PaymentBatchDetail, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBatchNotFound
		}
		return nil, err
	}
	items, err := s.batchRepo.ListItems(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return &models.PaymentBatchDetail{PaymentBatch: *batch, Items: items}, nil
}

func (s *PaymentService) ListBatches(ctx context.Context, instructorID int64) ([]models.PaymentBatch, error) {
	return s.batchRepo.List(ctx, instructorID)
}

// ExportBatchCSV writes a finalized batch as CSV, one row per item.
func (s *PaymentService) ExportBatchCSV(ctx context.Context, batchID int64, w io.Writer) error {
	detail, err := s.GetBatch(ctx, batchID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	header := []string{"batch_reference", "check_in_id", "class_id", "per_session_price", "instructor_payment", "admin_earnings"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, item := range detail.Items {
		record := []string{
			detail.Reference,
			fmt.Sprintf("%d", item.CheckInID),
			fmt.Sprintf("%d", item.ClassID),
			fmt.Sprintf("%.2f", item.PerSessionPrice),
			fmt.Sprintf("%.2f", item.InstructorPayment),
			fmt.Sprintf("%.2f", item.AdminEarnings),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// lineItemsFromRows runs the billing math once per outstanding check-in.
func lineItemsFromRows(rows []repository.OutstandingCheckIn) []billing.LineItem {
	items := make([]billing.LineItem, 0, len(rows))
	for _, row := range rows {
		policy := models.PaymentPolicy{
			Mode:       row.PaymentMode,
			FlatAmount: row.FlatAmount,
			Percentage: row.Percentage,
		}
		price := billing.PerSessionPrice(row.AmountPaid, row.NumSessions)
		payment := billing.InstructorPayment(policy, price)
		items = append(items, billing.LineItem{
			CheckInID:         row.CheckIn.ID,
			ClassID:           row.ClassID,
			ClassName:         row.ClassName,
			InstructorID:      row.InstructorID,
			MemberID:          row.CheckIn.MemberID,
			MemberName:        row.MemberName,
			SessionDate:       row.SessionDate,
			SessionTime:       row.SessionTime,
			PerSessionPrice:   price,
			InstructorPayment: payment,
			AdminEarnings:     billing.AdminEarnings(price, payment),
		})
	}
	return items
}
