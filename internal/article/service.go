package article

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/changhyeonkim/gorm-timestamp/internal/model"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/database"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/logger"
	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp"
)

type ArticleService struct {
	db                *gorm.DB
	articleRepository *ArticleRepository
}

func NewArticleService(db *gorm.DB, articleRepository *ArticleRepository) *ArticleService {
	return &ArticleService{
		db:                db,
		articleRepository: articleRepository,
	}
}

func (s *ArticleService) Create(ctx context.Context, req *CreateArticleRequest) (*ArticleResponse, error) {
	article := model.NewArticle(req.Title, req.Content)
	if req.CreateTime != nil {
		createTime, err := s.parse(*req.CreateTime)
		if err != nil {
			return nil, err
		}
		article.CreateTime = &createTime
	}

	if err := s.articleRepository.Create(ctx, s.db, article); err != nil {
		return nil, fmt.Errorf("게시글 생성 실패: %w", err)
	}

	logger.FromContext(ctx).Info("게시글 생성", "article_id", article.ID)
	return toResponse(article), nil
}

func (s *ArticleService) Get(ctx context.Context, articleID uint32) (*ArticleResponse, error) {
	article, err := s.find(ctx, s.db, articleID)
	if err != nil {
		return nil, err
	}
	return toResponse(article), nil
}

// Update applies a partial update. An empty request changes nothing, not even
// the update time.
func (s *ArticleService) Update(ctx context.Context, articleID uint32, req *UpdateArticleRequest) (*ArticleResponse, error) {
	ctx = logger.With(ctx, "article_id", articleID)

	columns := make(map[string]any)
	if req.Title != nil {
		columns["title"] = *req.Title
	}
	if req.Content != nil {
		columns["content"] = *req.Content
	}
	if req.UpdateTime != nil {
		updateTime, err := s.parse(*req.UpdateTime)
		if err != nil {
			return nil, err
		}
		columns["update_time"] = &updateTime
	}

	var response *ArticleResponse
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		article, err := s.find(ctx, tx, articleID)
		if err != nil {
			return err
		}

		if err := s.articleRepository.Update(ctx, tx, article, columns); err != nil {
			return fmt.Errorf("게시글 수정 실패: %w", err)
		}

		response = toResponse(article)
		return nil
	})

	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("게시글 수정", "columns", len(columns))
	return response, nil
}

func (s *ArticleService) find(ctx context.Context, db *gorm.DB, articleID uint32) (*model.Article, error) {
	article, err := s.articleRepository.FindByID(ctx, db, articleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("게시글을 찾을 수 없습니다 articleID=%d %w", articleID, ErrArticleNotFound)
		}
		return nil, fmt.Errorf("게시글 조회 실패: %w", err)
	}
	return article, nil
}

// parse reads request timestamps in the zone the database clock writes in
func (s *ArticleService) parse(value string) (time.Time, error) {
	loc := s.db.NowFunc().Location()
	t, err := timestamp.Parse(value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("시각 변환 실패: %w", err)
	}
	return t, nil
}

func toResponse(article *model.Article) *ArticleResponse {
	return &ArticleResponse{
		ID:         article.ID,
		Title:      article.Title,
		Content:    article.Content,
		Timestamps: article.TimestampMap(),
	}
}
