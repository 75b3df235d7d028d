package workers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/domain/models"
	"github.com/mamadbah2/farmsync/internal/repository/mongodb"
	"github.com/mamadbah2/farmsync/internal/service/payroll"
)

const payrollLockTTL = 30 * time.Second

// Store persists workers, attendance and the loan ledger.
type Store interface {
	InsertWorker(ctx context.Context, worker models.Worker) error
	FindWorker(ctx context.Context, ownerID, id string) (models.Worker, error)
	ListWorkers(ctx context.Context, ownerID string) ([]models.Worker, error)
	UpsertAttendance(ctx context.Context, rec models.AttendanceRecord) error
	ListAttendance(ctx context.Context, ownerID, workerID string) ([]models.AttendanceRecord, error)
	AppendLedgerEntry(ctx context.Context, entry models.LoanLedgerEntry) error
	DeleteLedgerEntry(ctx context.Context, ownerID, id string) error
	ListLedger(ctx context.Context, ownerID, workerID string) ([]models.LoanLedgerEntry, error)
	ListOwnerLedger(ctx context.Context, ownerID string) ([]models.LoanLedgerEntry, error)
}

// Bookkeeper books the expenses that loans and payroll generate.
type Bookkeeper interface {
	Book(ctx context.Context, tx models.FinancialTransaction) (models.FinancialTransaction, error)
}

// Coordinator serialises payroll runs and drops cached views after writes.
type Coordinator interface {
	Lock(ctx context.Context, name string, ttl time.Duration) (func(), error)
	InvalidateOwner(ctx context.Context, ownerID string)
}

// Service manages the payroll: workers, their attendance and their loans.
type Service struct {
	store      Store
	books      Bookkeeper
	coord      Coordinator
	periodDays int
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires the workers service. coord may be nil.
func NewService(store Store, books Bookkeeper, coord Coordinator, periodDays int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if periodDays < 1 {
		periodDays = 7
	}
	return &Service{
		store:      store,
		books:      books,
		coord:      coord,
		periodDays: periodDays,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns the owner's workers with their outstanding loan balance.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.Worker, error) {
	workers, err := s.store.ListWorkers(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	entries, err := s.store.ListOwnerLedger(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list loan ledger: %w", err)
	}

	byWorker := make(map[string][]models.LoanLedgerEntry)
	for _, e := range entries {
		byWorker[e.WorkerID] = append(byWorker[e.WorkerID], e)
	}
	for i := range workers {
		workers[i].Loans = payroll.LedgerBalance(byWorker[workers[i].ID])
	}
	return workers, nil
}

// Create adds a worker to the payroll.
func (s *Service) Create(ctx context.Context, ownerID string, req models.CreateWorkerRequest) (models.Worker, error) {
	if err := models.ValidateStruct(req); err != nil {
		return models.Worker{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	worker := models.Worker{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    strings.TrimSpace(req.Name),
		Role:    strings.TrimSpace(req.Role),
		PayType: req.PayType,
		PayRate: req.PayRate,
		Active:  true,
	}
	if err := s.store.InsertWorker(ctx, worker); err != nil {
		return models.Worker{}, fmt.Errorf("create worker: %w", err)
	}

	s.invalidate(ctx, ownerID)
	s.logger.Info("worker created", zap.String("owner_id", ownerID), zap.String("worker_id", worker.ID))
	return worker, nil
}

// Get returns a worker with its attendance map and loan ledger.
func (s *Service) Get(ctx context.Context, ownerID, workerID string) (models.WorkerDetails, error) {
	worker, err := s.findWorker(ctx, ownerID, workerID)
	if err != nil {
		return models.WorkerDetails{}, err
	}

	attendance, err := s.attendanceMap(ctx, ownerID, workerID)
	if err != nil {
		return models.WorkerDetails{}, err
	}

	ledger, err := s.store.ListLedger(ctx, ownerID, workerID)
	if err != nil {
		return models.WorkerDetails{}, fmt.Errorf("list loan ledger: %w", err)
	}
	worker.Loans = payroll.LedgerBalance(ledger)

	return models.WorkerDetails{Worker: worker, Attendance: attendance, Loans: ledger}, nil
}

// MarkAttendance records a worker's attendance for a day, normalised to the
// worker's pay type.
func (s *Service) MarkAttendance(ctx context.Context, ownerID, workerID string, req models.AttendanceRequest) (models.AttendanceRecord, error) {
	if err := models.ValidateStruct(req); err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	worker, err := s.findWorker(ctx, ownerID, workerID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	rec, err := payroll.Normalize(worker.PayType, models.AttendanceRecord{
		OwnerID:  ownerID,
		WorkerID: workerID,
		Date:     req.Date,
		Status:   req.Status,
		Hours:    req.Hours,
	})
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	if err := s.store.UpsertAttendance(ctx, rec); err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("save attendance: %w", err)
	}

	s.invalidate(ctx, ownerID)
	return rec, nil
}

// AddLoan issues a loan to a worker and books it as an expense. Either both
// writes survive or neither does.
func (s *Service) AddLoan(ctx context.Context, ownerID, workerID string, req models.LoanRequest) (models.LoanLedgerEntry, error) {
	if err := payroll.ValidateLoan(req.Amount, req.Description); err != nil {
		return models.LoanLedgerEntry{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	worker, err := s.findWorker(ctx, ownerID, workerID)
	if err != nil {
		return models.LoanLedgerEntry{}, err
	}

	description := strings.TrimSpace(req.Description)
	entry := models.LoanLedgerEntry{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		WorkerID:    workerID,
		Date:        s.now().UTC(),
		Kind:        models.LedgerKindLoan,
		Description: description,
		Amount:      *req.Amount,
	}
	if err := s.store.AppendLedgerEntry(ctx, entry); err != nil {
		return models.LoanLedgerEntry{}, fmt.Errorf("record loan: %w", err)
	}

	_, err = s.books.Book(ctx, models.FinancialTransaction{
		OwnerID:     ownerID,
		Date:        entry.Date,
		Type:        models.TransactionExpense,
		Description: fmt.Sprintf("Loan to %s - %s", worker.Name, description),
		Amount:      entry.Amount,
	})
	if err != nil {
		s.compensateLedger(ctx, ownerID, entry.ID)
		return models.LoanLedgerEntry{}, fmt.Errorf("book loan expense: %w", err)
	}

	s.invalidate(ctx, ownerID)
	s.logger.Info("loan issued",
		zap.String("owner_id", ownerID),
		zap.String("worker_id", workerID),
		zap.Float64("amount", entry.Amount),
	)
	return entry, nil
}

// RunPayroll pays a worker for the period: it records the deduction against
// the loan balance and books the net pay as a salary expense. Either both
// writes survive or neither does.
func (s *Service) RunPayroll(ctx context.Context, ownerID, workerID string, req models.PayrollRequest) (models.PayResult, error) {
	if err := models.ValidateStruct(req); err != nil {
		return models.PayResult{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	now := s.now().UTC()
	period, err := payroll.ResolvePeriod(req.From, req.To, now, s.periodDays)
	if err != nil {
		return models.PayResult{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	if s.coord != nil {
		release, err := s.coord.Lock(ctx, "payroll:"+workerID, payrollLockTTL)
		if err != nil {
			return models.PayResult{}, fmt.Errorf("%w: payroll for worker %s", models.ErrBusy, workerID)
		}
		defer release()
	}

	worker, err := s.findWorker(ctx, ownerID, workerID)
	if err != nil {
		return models.PayResult{}, err
	}
	attendance, err := s.attendanceMap(ctx, ownerID, workerID)
	if err != nil {
		return models.PayResult{}, err
	}

	result, err := payroll.Calculate(worker, attendance, period, payroll.ParseDeduction(req.Deduction))
	if err != nil {
		return models.PayResult{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	var deductionID string
	if result.Deduction > 0 {
		entry := models.LoanLedgerEntry{
			ID:          uuid.NewString(),
			OwnerID:     ownerID,
			WorkerID:    workerID,
			Date:        now,
			Kind:        models.LedgerKindDeduction,
			Description: fmt.Sprintf("Payroll deduction %s to %s", period.From, period.To),
			Amount:      -result.Deduction,
		}
		if err := s.store.AppendLedgerEntry(ctx, entry); err != nil {
			return models.PayResult{}, fmt.Errorf("record deduction: %w", err)
		}
		deductionID = entry.ID
	}

	if result.NetPay > 0 {
		_, err := s.books.Book(ctx, models.FinancialTransaction{
			OwnerID:     ownerID,
			Date:        now,
			Type:        models.TransactionExpense,
			Description: "Worker salary - " + worker.Name,
			Amount:      result.NetPay,
		})
		if err != nil {
			if deductionID != "" {
				s.compensateLedger(ctx, ownerID, deductionID)
			}
			return models.PayResult{}, fmt.Errorf("book salary expense: %w", err)
		}
	}

	s.invalidate(ctx, ownerID)
	s.logger.Info("payroll processed",
		zap.String("owner_id", ownerID),
		zap.String("worker_id", workerID),
		zap.String("from", period.From),
		zap.String("to", period.To),
		zap.Float64("net_pay", result.NetPay),
	)
	return result, nil
}

func (s *Service) findWorker(ctx context.Context, ownerID, workerID string) (models.Worker, error) {
	worker, err := s.store.FindWorker(ctx, ownerID, workerID)
	if errors.Is(err, mongodb.ErrNotFound) {
		return models.Worker{}, fmt.Errorf("worker %s: %w", workerID, models.ErrNotFound)
	}
	if err != nil {
		return models.Worker{}, fmt.Errorf("load worker: %w", err)
	}
	return worker, nil
}

func (s *Service) attendanceMap(ctx context.Context, ownerID, workerID string) (models.AttendanceMap, error) {
	records, err := s.store.ListAttendance(ctx, ownerID, workerID)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	out := make(models.AttendanceMap, len(records))
	for _, rec := range records {
		out[rec.Date] = rec
	}
	return out, nil
}

func (s *Service) compensateLedger(ctx context.Context, ownerID, entryID string) {
	if err := s.store.DeleteLedgerEntry(ctx, ownerID, entryID); err != nil {
		s.logger.Error("failed to roll back ledger entry",
			zap.String("owner_id", ownerID),
			zap.String("entry_id", entryID),
			zap.Error(err),
		)
	}
}

func (s *Service) invalidate(ctx context.Context, ownerID string) {
	if s.coord != nil {
		s.coord.InvalidateOwner(ctx, ownerID)
	}
}
