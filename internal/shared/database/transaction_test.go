package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/changhyeonkim/gorm-timestamp/internal/model"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/testutil"
)

func TestWithTransaction(t *testing.T) {
	errAbort := errors.New("abort")

	testCases := []struct {
		name          string
		fnErr         error
		expectedCount int64
	}{
		{name: "Commit keeps stamped row", fnErr: nil, expectedCount: 1},
		{name: "Rollback discards stamped row", fnErr: errAbort, expectedCount: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Given
			db := testutil.SetupTestDB(t)
			t.Cleanup(func() {
				testutil.CleanupTestDB(t, db)
			})

			// When
			var stamped *model.Article
			err := WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
				stamped = model.NewArticle("in tx", "")
				if err := tx.Create(stamped).Error; err != nil {
					return err
				}
				return tc.fnErr
			})

			// Then
			assert.ErrorIs(t, err, tc.fnErr)
			require.NotNil(t, stamped.CreateTime)

			var count int64
			require.NoError(t, db.Model(&model.Article{}).Count(&count).Error)
			assert.Equal(t, tc.expectedCount, count)
		})
	}
}

func TestWithTransaction_NilFunc(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestDB(t, db)
	})

	assert.ErrorIs(t, WithTransaction(context.Background(), db, nil), ErrNilTransactionFunc)
}
