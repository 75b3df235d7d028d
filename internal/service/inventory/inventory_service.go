package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/domain/models"
)

// Store persists stock records.
type Store interface {
	InsertInventoryItem(ctx context.Context, item models.InventoryItem) error
	ListInventory(ctx context.Context, ownerID string) ([]models.InventoryItem, error)
}

// Service manages the owner's stock list.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires the inventory service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// List returns the owner's stock records.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.InventoryItem, error) {
	items, err := s.store.ListInventory(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return items, nil
}

// Create adds a stock record.
func (s *Service) Create(ctx context.Context, ownerID string, req models.CreateInventoryRequest) (models.InventoryItem, error) {
	if err := models.ValidateStruct(req); err != nil {
		return models.InventoryItem{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	item := models.InventoryItem{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		ItemName: strings.TrimSpace(req.Name),
		ItemType: strings.TrimSpace(req.Type),
		Quantity: req.Quantity,
		Unit:     strings.TrimSpace(req.Unit),
	}
	if err := s.store.InsertInventoryItem(ctx, item); err != nil {
		return models.InventoryItem{}, fmt.Errorf("create inventory item: %w", err)
	}

	s.logger.Debug("inventory item created", zap.String("owner_id", ownerID), zap.String("item", item.ItemName))
	return item, nil
}
