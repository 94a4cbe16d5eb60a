package comment

import (
	"context"

	"gorm.io/gorm"

	"github.com/changhyeonkim/gorm-timestamp/internal/model"
)

type CommentRepository struct{}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{}
}

func (r *CommentRepository) Create(ctx context.Context, db *gorm.DB, comment *model.Comment) error {
	return db.WithContext(ctx).Create(comment).Error
}

func (r *CommentRepository) FindByID(ctx context.Context, db *gorm.DB, ID uint32) (*model.Comment, error) {
	var comment model.Comment
	err := db.WithContext(ctx).Where("id = ?", ID).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Save writes every column of comment; updated_at is stamped by the timestamp plugin
func (r *CommentRepository) Save(ctx context.Context, db *gorm.DB, comment *model.Comment) error {
	return db.WithContext(ctx).Save(comment).Error
}
