package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/changhyeonkim/gorm-timestamp/internal/shared/logger"
)

var ErrNilTransactionFunc = errors.New("database: transaction function is nil")

// WithTransaction runs fn in a transaction bound to ctx. fn's error rolls
// back; nil commits. Timestamps stamped inside fn are rolled back with the row.
//
// Usage:
//
//	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
//	    article, err := repo.FindByID(ctx, tx, id)
//	    if err != nil {
//	        return err
//	    }
//	    return repo.Update(ctx, tx, article, columns)
//	})
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(*gorm.DB) error) error {
	if fn == nil {
		return ErrNilTransactionFunc
	}
	if ctx == nil {
		ctx = context.Background()
	}

	err := db.WithContext(ctx).Transaction(fn)
	if err != nil {
		logger.FromContext(ctx).Debug("트랜잭션 롤백", "error", err)
	}
	return err
}
