package article

import (
	"context"

	"gorm.io/gorm"

	"github.com/changhyeonkim/gorm-timestamp/internal/model"
)

type ArticleRepository struct{}

func NewArticleRepository() *ArticleRepository {
	return &ArticleRepository{}
}

func (r *ArticleRepository) Create(ctx context.Context, db *gorm.DB, article *model.Article) error {
	return db.WithContext(ctx).Create(article).Error
}

func (r *ArticleRepository) FindByID(ctx context.Context, db *gorm.DB, ID uint32) (*model.Article, error) {
	var article model.Article
	err := db.WithContext(ctx).Where("id = ?", ID).First(&article).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *ArticleRepository) Exists(ctx context.Context, db *gorm.DB, ID uint32) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&model.Article{}).
		Where("id = ?", ID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Update applies column -> value changes to article, which is updated in place.
// The timestamp plugin stamps update_time unless columns already carries it.
func (r *ArticleRepository) Update(ctx context.Context, db *gorm.DB, article *model.Article, columns map[string]any) error {
	return db.WithContext(ctx).Model(article).Updates(columns).Error
}
