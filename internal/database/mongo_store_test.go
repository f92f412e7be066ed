package database

import (
	"context"
	"testing"
	"time"

	"fridgechef/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert returns stored record", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		store := NewMongoStore(mt.Coll)

		rec := record("tomato", 2, models.UnitPieces, time.Now().UTC())
		require.NoError(mt, store.Insert(context.Background(), rec))

		assert.Len(mt, rec.ID, 24)
		assert.Equal(mt, "tomato", rec.Name)
	})

	mt.Run("duplicate key is conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: fridgechef.fridgeitems index: uniq_name",
		}))
		store := NewMongoStore(mt.Coll)

		err := store.Insert(context.Background(), record("milk", 1, models.UnitLiters, time.Now().UTC()))
		assert.ErrorIs(mt, err, models.ErrConflict)
	})

	mt.Run("list decodes documents", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		first := mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "name", Value: "cherry tomatoes"},
				{Key: "quantity", Value: bson.D{{Key: "value", Value: 200.0}, {Key: "unit", Value: "grams"}}},
				{Key: "createdAt", Value: created.Add(time.Minute)},
				{Key: "updatedAt", Value: created.Add(time.Minute)},
			},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "name", Value: "tomato"},
				{Key: "quantity", Value: bson.D{{Key: "value", Value: 2.0}, {Key: "unit", Value: "pieces"}}},
				{Key: "createdAt", Value: created},
				{Key: "updatedAt", Value: created},
			},
		)
		mt.AddMockResponses(first)
		store := NewMongoStore(mt.Coll)

		items, err := store.List(context.Background(), "toma")
		require.NoError(mt, err)
		require.Len(mt, items, 2)
		assert.Equal(mt, "cherry tomatoes", items[0].Name)
		assert.Equal(mt, models.Quantity{Value: 200, Unit: models.UnitGrams}, items[0].Quantity)
		assert.Equal(mt, models.UnitPieces, items[1].Quantity.Unit)
	})

	mt.Run("delete of missing name is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		store := NewMongoStore(mt.Coll)

		err := store.DeleteByName(context.Background(), "caviar")
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("delete existing name", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		store := NewMongoStore(mt.Coll)

		assert.NoError(mt, store.DeleteByName(context.Background(), "eggs"))
	})
}
