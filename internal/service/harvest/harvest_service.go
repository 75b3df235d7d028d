package harvest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/domain/models"
	"github.com/mamadbah2/farmsync/internal/repository/mongodb"
)

// Store persists yields and sales.
type Store interface {
	InsertYield(ctx context.Context, yield models.Yield) error
	FindYield(ctx context.Context, ownerID, id string) (models.Yield, error)
	ListYields(ctx context.Context, ownerID string) ([]models.Yield, error)
	InsertSale(ctx context.Context, sale models.Sale) error
	DeleteSale(ctx context.Context, ownerID, id string) error
	ListSales(ctx context.Context, ownerID string) ([]models.Sale, error)
	ListSalesForCrop(ctx context.Context, ownerID, cropID string) ([]models.Sale, error)
}

// Bookkeeper books the revenue a sale generates.
type Bookkeeper interface {
	Book(ctx context.Context, tx models.FinancialTransaction) (models.FinancialTransaction, error)
}

// Coordinator serialises sales of one crop and drops cached views derived
// from an owner's data.
type Coordinator interface {
	Lock(ctx context.Context, name string, ttl time.Duration) (func(), error)
	InvalidateOwner(ctx context.Context, ownerID string)
}

const saleLockTTL = 30 * time.Second

// Service records harvests and the sales drawn from them.
type Service struct {
	store  Store
	books  Bookkeeper
	coord  Coordinator
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the harvest service. coord may be nil, in which case
// concurrent sales of a crop are not serialised.
func NewService(store Store, books Bookkeeper, coord Coordinator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, books: books, coord: coord, logger: logger, now: time.Now}
}

// ListYields returns the owner's harvests with the quantity still unsold.
func (s *Service) ListYields(ctx context.Context, ownerID string) ([]models.Yield, error) {
	yields, err := s.store.ListYields(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list yields: %w", err)
	}
	sales, err := s.store.ListSales(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	sold := make(map[string]decimal.Decimal)
	for _, sale := range sales {
		sold[sale.CropID] = sold[sale.CropID].Add(decimal.NewFromFloat(sale.Quantity))
	}
	for i := range yields {
		yields[i].Remaining = decimal.NewFromFloat(yields[i].Quantity).Sub(sold[yields[i].ID]).InexactFloat64()
	}
	return yields, nil
}

// CreateYield records a harvest dated now.
func (s *Service) CreateYield(ctx context.Context, ownerID string, req models.CreateYieldRequest) (models.Yield, error) {
	if err := models.ValidateStruct(req); err != nil {
		return models.Yield{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	yield := models.Yield{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		CropName:    strings.TrimSpace(req.Name),
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		HarvestDate: s.now().UTC(),
		Remaining:   req.Quantity,
	}
	if err := s.store.InsertYield(ctx, yield); err != nil {
		return models.Yield{}, fmt.Errorf("create yield: %w", err)
	}

	s.invalidate(ctx, ownerID)
	s.logger.Info("yield recorded", zap.String("owner_id", ownerID), zap.String("crop", yield.CropName), zap.Float64("quantity", yield.Quantity))
	return yield, nil
}

// ListSales returns the owner's sales, oldest first.
func (s *Service) ListSales(ctx context.Context, ownerID string) ([]models.Sale, error) {
	sales, err := s.store.ListSales(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

// CreateSale sells part of a harvest and books the revenue against the crop.
// A sale larger than the unsold quantity is rejected with ErrOversell. The
// remaining-quantity check and the insert run under the crop's sale lock; a
// concurrent sale of the same crop gets ErrBusy.
func (s *Service) CreateSale(ctx context.Context, ownerID string, req models.CreateSaleRequest) (models.Sale, error) {
	if err := models.ValidateStruct(req); err != nil {
		return models.Sale{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	if s.coord != nil {
		release, err := s.coord.Lock(ctx, "sale:"+req.CropID, saleLockTTL)
		if err != nil {
			return models.Sale{}, fmt.Errorf("%w: sales of crop %s", models.ErrBusy, req.CropID)
		}
		defer release()
	}

	yield, err := s.store.FindYield(ctx, ownerID, req.CropID)
	if errors.Is(err, mongodb.ErrNotFound) {
		return models.Sale{}, fmt.Errorf("crop %s: %w", req.CropID, models.ErrNotFound)
	}
	if err != nil {
		return models.Sale{}, fmt.Errorf("load yield: %w", err)
	}

	previous, err := s.store.ListSalesForCrop(ctx, ownerID, yield.ID)
	if err != nil {
		return models.Sale{}, fmt.Errorf("list crop sales: %w", err)
	}
	remaining := decimal.NewFromFloat(yield.Quantity)
	for _, sale := range previous {
		remaining = remaining.Sub(decimal.NewFromFloat(sale.Quantity))
	}
	if decimal.NewFromFloat(req.Quantity).GreaterThan(remaining) {
		return models.Sale{}, fmt.Errorf("%w: %s has %s %s left", models.ErrOversell, yield.CropName, remaining.String(), yield.Unit)
	}

	sale := models.Sale{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		CropID:   yield.ID,
		CropName: yield.CropName,
		Quantity: req.Quantity,
		Price:    req.Price,
		Seller:   strings.TrimSpace(req.Seller),
		Date:     s.now().UTC(),
	}
	if err := s.store.InsertSale(ctx, sale); err != nil {
		return models.Sale{}, fmt.Errorf("record sale: %w", err)
	}

	crop := yield.CropName
	_, err = s.books.Book(ctx, models.FinancialTransaction{
		OwnerID:     ownerID,
		Date:        sale.Date,
		Type:        models.TransactionRevenue,
		Description: "Sale of " + crop,
		Amount:      sale.Price,
		Crop:        &crop,
	})
	if err != nil {
		if delErr := s.store.DeleteSale(ctx, ownerID, sale.ID); delErr != nil {
			s.logger.Error("failed to roll back sale", zap.String("sale_id", sale.ID), zap.Error(delErr))
		}
		return models.Sale{}, fmt.Errorf("book sale revenue: %w", err)
	}

	s.invalidate(ctx, ownerID)
	s.logger.Info("sale recorded",
		zap.String("owner_id", ownerID),
		zap.String("crop", crop),
		zap.Float64("quantity", sale.Quantity),
		zap.Float64("price", sale.Price),
	)
	return sale, nil
}

func (s *Service) invalidate(ctx context.Context, ownerID string) {
	if s.coord != nil {
		s.coord.InvalidateOwner(ctx, ownerID)
	}
}
