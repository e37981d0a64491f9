package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/entity"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/repository"
)

type ReportRepository struct {
	coll *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{coll: db.Collection(reportsCollection)}
}

func (r *ReportRepository) Insert(ctx context.Context, rep *entity.Report) (string, error) {
	res, err := r.coll.InsertOne(ctx, rep)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted id type")
	}
	rep.ID = oid
	return oid.Hex(), nil
}

func (r *ReportRepository) Get(ctx context.Context, ownerID, reportID string) (*entity.Report, error) {
	oid, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	rep := &entity.Report{}
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid, "user_id": ownerID}).Decode(rep); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return rep, nil
}

func (r *ReportRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	out := make([]entity.Report, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReportRepository) Update(ctx context.Context, ownerID, reportID string, upd entity.ReportUpdate) (*entity.Report, error) {
	oid, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	set := bson.M{}
	if upd.Summary != nil {
		set["description.summary"] = *upd.Summary
	}
	if upd.Archived != nil {
		set["archived"] = *upd.Archived
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	updated := &entity.Report{}
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "user_id": ownerID},
		bson.M{"$set": set},
		opts,
	).Decode(updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (r *ReportRepository) Delete(ctx context.Context, ownerID, reportID string) error {
	oid, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		return repository.ErrInvalidID
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "user_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ReportRepository = (*ReportRepository)(nil)
