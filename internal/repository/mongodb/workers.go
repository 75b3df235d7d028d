package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/farmsync/internal/domain/models"
)

// InsertWorker adds a worker to the payroll.
func (r *Repository) InsertWorker(ctx context.Context, worker models.Worker) error {
	return r.insert(ctx, workersCollection, worker)
}

// FindWorker returns one of the owner's workers.
func (r *Repository) FindWorker(ctx context.Context, ownerID, id string) (models.Worker, error) {
	var worker models.Worker
	if err := r.findOneOwned(ctx, workersCollection, ownerID, id, &worker); err != nil {
		return models.Worker{}, err
	}
	return worker, nil
}

// ListWorkers returns the owner's workers sorted by name.
func (r *Repository) ListWorkers(ctx context.Context, ownerID string) ([]models.Worker, error) {
	workers := []models.Worker{}
	if err := r.findAll(ctx, workersCollection, bson.M{"owner_id": ownerID}, "name", &workers); err != nil {
		return nil, err
	}
	return workers, nil
}

// UpsertAttendance writes the attendance of a worker for a day, replacing any
// earlier record of the same day.
func (r *Repository) UpsertAttendance(ctx context.Context, rec models.AttendanceRecord) error {
	filter := bson.M{"owner_id": rec.OwnerID, "worker_id": rec.WorkerID, "date": rec.Date}
	update := bson.M{"$set": bson.M{"status": rec.Status, "hours": rec.Hours}}

	_, err := r.db.Collection(attendanceCollection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}

// ListAttendance returns the attendance records of a worker, oldest first.
func (r *Repository) ListAttendance(ctx context.Context, ownerID, workerID string) ([]models.AttendanceRecord, error) {
	records := []models.AttendanceRecord{}
	filter := bson.M{"owner_id": ownerID, "worker_id": workerID}
	if err := r.findAll(ctx, attendanceCollection, filter, "date", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AppendLedgerEntry adds a movement to a worker's loan ledger.
func (r *Repository) AppendLedgerEntry(ctx context.Context, entry models.LoanLedgerEntry) error {
	return r.insert(ctx, loansCollection, entry)
}

// DeleteLedgerEntry removes a ledger entry. It only exists to undo an entry
// whose paired expense booking failed.
func (r *Repository) DeleteLedgerEntry(ctx context.Context, ownerID, id string) error {
	return r.deleteOwned(ctx, loansCollection, ownerID, id)
}

// ListLedger returns a worker's ledger, oldest first.
func (r *Repository) ListLedger(ctx context.Context, ownerID, workerID string) ([]models.LoanLedgerEntry, error) {
	entries := []models.LoanLedgerEntry{}
	filter := bson.M{"owner_id": ownerID, "worker_id": workerID}
	if err := r.findAll(ctx, loansCollection, filter, "date", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListOwnerLedger returns every ledger entry of the owner's workers.
func (r *Repository) ListOwnerLedger(ctx context.Context, ownerID string) ([]models.LoanLedgerEntry, error) {
	entries := []models.LoanLedgerEntry{}
	if err := r.findAll(ctx, loansCollection, bson.M{"owner_id": ownerID}, "date", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
