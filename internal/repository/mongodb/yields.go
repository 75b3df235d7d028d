package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/farmsync/internal/domain/models"
)

// InsertYield records a harvest.
func (r *Repository) InsertYield(ctx context.Context, yield models.Yield) error {
	return r.insert(ctx, yieldsCollection, yield)
}

// FindYield returns one of the owner's harvests.
func (r *Repository) FindYield(ctx context.Context, ownerID, id string) (models.Yield, error) {
	var yield models.Yield
	if err := r.findOneOwned(ctx, yieldsCollection, ownerID, id, &yield); err != nil {
		return models.Yield{}, err
	}
	return yield, nil
}

// ListYields returns the owner's harvests, oldest first.
func (r *Repository) ListYields(ctx context.Context, ownerID string) ([]models.Yield, error) {
	yields := []models.Yield{}
	if err := r.findAll(ctx, yieldsCollection, bson.M{"owner_id": ownerID}, "harvest_date", &yields); err != nil {
		return nil, err
	}
	return yields, nil
}

// InsertSale records a sale.
func (r *Repository) InsertSale(ctx context.Context, sale models.Sale) error {
	return r.insert(ctx, salesCollection, sale)
}

// DeleteSale removes a sale. It only exists to undo a sale whose revenue
// booking failed.
func (r *Repository) DeleteSale(ctx context.Context, ownerID, id string) error {
	return r.deleteOwned(ctx, salesCollection, ownerID, id)
}

// ListSales returns the owner's sales, oldest first.
func (r *Repository) ListSales(ctx context.Context, ownerID string) ([]models.Sale, error) {
	sales := []models.Sale{}
	if err := r.findAll(ctx, salesCollection, bson.M{"owner_id": ownerID}, "date", &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// ListSalesForCrop returns the sales drawn from a single harvest.
func (r *Repository) ListSalesForCrop(ctx context.Context, ownerID, cropID string) ([]models.Sale, error) {
	sales := []models.Sale{}
	if err := r.findAll(ctx, salesCollection, bson.M{"owner_id": ownerID, "crop_id": cropID}, "date", &sales); err != nil {
		return nil, err
	}
	return sales, nil
}
