package finance

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/domain/models"
)

// Store persists financial transactions.
type Store interface {
	InsertTransaction(ctx context.Context, tx models.FinancialTransaction) error
	ListTransactions(ctx context.Context, ownerID string) ([]models.FinancialTransaction, error)
}

// Mirror receives a copy of every booking. Mirror failures never fail the
// booking itself.
type Mirror interface {
	MirrorTransaction(ctx context.Context, tx models.FinancialTransaction) error
}

// Invalidator drops cached views derived from an owner's data.
type Invalidator interface {
	InvalidateOwner(ctx context.Context, ownerID string)
}

// Service books revenue and expenses. It is also the bookkeeper the sales,
// loan and payroll flows post through.
type Service struct {
	store  Store
	mirror Mirror
	cache  Invalidator
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the finance service. mirror and cache may be nil.
func NewService(store Store, mirror Mirror, cache Invalidator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		mirror: mirror,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// List returns every transaction of the owner, oldest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.FinancialTransaction, error) {
	txs, err := s.store.ListTransactions(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Record books a manually entered revenue or expense.
func (s *Service) Record(ctx context.Context, ownerID string, kind models.TransactionType, req models.TransactionRequest) (models.FinancialTransaction, error) {
	if !kind.IsValid() {
		return models.FinancialTransaction{}, fmt.Errorf("%w: unknown transaction type %q", models.ErrValidation, kind)
	}
	if err := models.ValidateStruct(req); err != nil {
		return models.FinancialTransaction{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	tx := models.FinancialTransaction{
		OwnerID:     ownerID,
		Type:        kind,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
	}
	if req.CropName != nil {
		if name := strings.TrimSpace(*req.CropName); name != "" {
			tx.Crop = &name
		}
	}

	return s.Book(ctx, tx)
}

// Book validates and stores a transaction, assigning its id and date when
// missing.
func (s *Service) Book(ctx context.Context, tx models.FinancialTransaction) (models.FinancialTransaction, error) {
	if tx.OwnerID == "" {
		return models.FinancialTransaction{}, fmt.Errorf("%w: transaction owner is required", models.ErrValidation)
	}
	if !tx.Type.IsValid() {
		return models.FinancialTransaction{}, fmt.Errorf("%w: unknown transaction type %q", models.ErrValidation, tx.Type)
	}
	if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) || tx.Amount <= 0 {
		return models.FinancialTransaction{}, fmt.Errorf("%w: amount must be a positive number", models.ErrValidation)
	}
	if strings.TrimSpace(tx.Description) == "" {
		return models.FinancialTransaction{}, fmt.Errorf("%w: description is required", models.ErrValidation)
	}

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Date.IsZero() {
		tx.Date = s.now().UTC()
	}

	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		return models.FinancialTransaction{}, fmt.Errorf("book %s: %w", strings.ToLower(string(tx.Type)), err)
	}

	if s.mirror != nil {
		if err := s.mirror.MirrorTransaction(ctx, tx); err != nil {
			s.logger.Warn("ledger mirror failed", zap.String("transaction_id", tx.ID), zap.Error(err))
		}
	}
	s.invalidate(ctx, tx.OwnerID)

	s.logger.Info("transaction booked",
		zap.String("owner_id", tx.OwnerID),
		zap.String("type", string(tx.Type)),
		zap.Float64("amount", tx.Amount),
	)
	return tx, nil
}

func (s *Service) invalidate(ctx context.Context, ownerID string) {
	if s.cache != nil {
		s.cache.InvalidateOwner(ctx, ownerID)
	}
}
