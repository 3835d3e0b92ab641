package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/profiradce/profiradce_backend/config"
	"github.com/profiradce/profiradce_backend/models"
)

// DealRepository owns reads and writes of deals and their append-only event
// timeline.
type DealRepository struct {
	deals  *mongo.Collection
	events *mongo.Collection
}

func NewDealRepository(db *mongo.Client) *DealRepository {
	database := db.Database(config.DatabaseName())
	return &DealRepository{
		deals:  database.Collection("deals"),
		events: database.Collection("dealEvents"),
	}
}

// FindByID returns the deal or mongo.ErrNoDocuments.
func (r *DealRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Deal, error) {
	var deal models.Deal
	err := r.deals.FindOne(ctx, bson.M{"_id": id}).Decode(&deal)
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

// FindBySpecialist lists a specialist's deals, newest first.
func (r *DealRepository) FindBySpecialist(ctx context.Context, specialistID primitive.ObjectID) ([]models.Deal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.deals.Find(ctx, bson.M{"specialistId": specialistID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	deals := []models.Deal{}
	if err := cursor.All(ctx, &deals); err != nil {
		return nil, err
	}
	return deals, nil
}

// Insert stores a new deal and records its creation event.
func (r *DealRepository) Insert(ctx context.Context, deal *models.Deal) error {
	_, err := r.deals.InsertOne(ctx, deal)
	if err != nil {
		return err
	}
	return r.AppendEvent(ctx, deal.ID, models.DealEventCreated, "Poptávka vytvořena: "+deal.CustomerName)
}

// Update applies a $set patch and bumps updatedAt.
func (r *DealRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now()
	_, err := r.deals.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// AppendNote pushes a note onto the deal and records the matching event.
func (r *DealRepository) AppendNote(ctx context.Context, id primitive.ObjectID, note models.Note) error {
	_, err := r.deals.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"notes": note},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	return r.AppendEvent(ctx, id, models.DealEventNoteAdded, "Poznámka přidána")
}

// AppendEvent records one audit entry for the deal.
func (r *DealRepository) AppendEvent(ctx context.Context, dealID primitive.ObjectID, eventType, description string) error {
	event := models.DealEvent{
		ID:          primitive.NewObjectID(),
		DealID:      dealID,
		Type:        eventType,
		Description: description,
		CreatedAt:   time.Now(),
	}
	_, err := r.events.InsertOne(ctx, event)
	return err
}

// EventsForDeal returns the audit timeline, oldest first.
func (r *DealRepository) EventsForDeal(ctx context.Context, dealID primitive.ObjectID) ([]models.DealEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.events.Find(ctx, bson.M{"dealId": dealID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []models.DealEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
