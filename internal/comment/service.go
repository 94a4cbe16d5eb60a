package comment

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/changhyeonkim/gorm-timestamp/internal/article"
	"github.com/changhyeonkim/gorm-timestamp/internal/model"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/database"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/logger"
	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp"
)

type CommentService struct {
	db                *gorm.DB
	commentRepository *CommentRepository
	articleRepository *article.ArticleRepository
}

func NewCommentService(db *gorm.DB, commentRepository *CommentRepository, articleRepository *article.ArticleRepository) *CommentService {
	return &CommentService{
		db:                db,
		commentRepository: commentRepository,
		articleRepository: articleRepository,
	}
}

func (s *CommentService) Create(ctx context.Context, articleID uint32, req *CreateCommentRequest) (*CommentResponse, error) {
	var response *CommentResponse

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		exists, err := s.articleRepository.Exists(ctx, tx, articleID)
		if err != nil {
			return fmt.Errorf("게시글 조회 실패: %w", err)
		}
		if !exists {
			return fmt.Errorf("게시글을 찾을 수 없습니다 articleID=%d %w", articleID, ErrArticleNotFound)
		}

		comment := model.NewComment(articleID, req.Body)
		if err := s.commentRepository.Create(ctx, tx, comment); err != nil {
			return fmt.Errorf("댓글 생성 실패: %w", err)
		}

		response = toResponse(comment)
		return nil
	})

	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("댓글 생성", "article_id", articleID, "comment_id", response.ID)
	return response, nil
}

func (s *CommentService) Update(ctx context.Context, commentID uint32, req *UpdateCommentRequest) (*CommentResponse, error) {
	ctx = logger.With(ctx, "comment_id", commentID)
	var response *CommentResponse

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		comment, err := s.commentRepository.FindByID(ctx, tx, commentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("댓글을 찾을 수 없습니다 commentID=%d %w", commentID, ErrCommentNotFound)
			}
			return fmt.Errorf("댓글 조회 실패: %w", err)
		}

		comment.Body = req.Body
		if err := s.commentRepository.Save(ctx, tx, comment); err != nil {
			return fmt.Errorf("댓글 수정 실패: %w", err)
		}

		response = toResponse(comment)
		return nil
	})

	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("댓글 수정", "updated_at", response.UpdatedAt)
	return response, nil
}

func toResponse(comment *model.Comment) *CommentResponse {
	createdAt, _ := timestamp.Format(comment.CreatedAt)
	return &CommentResponse{
		ID:        comment.ID,
		ArticleID: comment.ArticleID,
		Body:      comment.Body,
		CreatedAt: createdAt,
		UpdatedAt: comment.UpdatedAt,
	}
}
