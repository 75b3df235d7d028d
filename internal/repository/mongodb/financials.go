package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/farmsync/internal/domain/models"
)

// InsertTransaction books a revenue or expense.
func (r *Repository) InsertTransaction(ctx context.Context, tx models.FinancialTransaction) error {
	return r.insert(ctx, financialsCollection, tx)
}

// ListTransactions returns the owner's bookings, oldest first.
func (r *Repository) ListTransactions(ctx context.Context, ownerID string) ([]models.FinancialTransaction, error) {
	txs := []models.FinancialTransaction{}
	if err := r.findAll(ctx, financialsCollection, bson.M{"owner_id": ownerID}, "date", &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// InsertInventoryItem stores a stock record.
func (r *Repository) InsertInventoryItem(ctx context.Context, item models.InventoryItem) error {
	return r.insert(ctx, inventoryCollection, item)
}

// ListInventory returns the owner's stock records sorted by name.
func (r *Repository) ListInventory(ctx context.Context, ownerID string) ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	if err := r.findAll(ctx, inventoryCollection, bson.M{"owner_id": ownerID}, "item_name", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveDailyReport stores the owner's snapshot for a day, replacing an earlier
// snapshot of the same day.
func (r *Repository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	filter := bson.M{"owner_id": report.OwnerID, "date": report.Date}
	_, err := r.db.Collection(reportsCollection).ReplaceOne(ctx, filter, report, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save daily report: %w", err)
	}
	return nil
}
