package persistence

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoDB_FromDatabase(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	mt.Run("CollectionAndClose", func(mt *mtest.T) {
		mdb := NewMongoDBFromDatabase(logger, mt.DB)

		assert.Equal(t, mt.DB, mdb.Database())
		assert.Equal(t, "ledger_transactions", mdb.Collection("ledger_transactions").Name())
		assert.NoError(t, mdb.Close(context.Background()), "wrapped handles are owned by the caller")
	})
}
