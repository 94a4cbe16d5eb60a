package comment

import (
	"net/http"

	sharedError "github.com/changhyeonkim/gorm-timestamp/internal/shared/error"
)

const (
	commentNotFound = "COMMENT_NOT_FOUND" // errInfo
	articleNotFound = "COMMENT_ARTICLE_NOT_FOUND"
)

var (
	ErrCommentNotFound = sharedError.NewDomainError(commentNotFound)
	ErrArticleNotFound = sharedError.NewDomainError(articleNotFound)
)

func init() {
	sharedError.RegisterDomainErrorResponse(commentNotFound, sharedError.ErrorResponse{
		Status:  http.StatusNotFound,
		Code:    "COMMENT-001",
		Message: "댓글을 찾을 수 없습니다.",
	})

	sharedError.RegisterDomainErrorResponse(articleNotFound, sharedError.ErrorResponse{
		Status:  http.StatusNotFound,
		Code:    "COMMENT-002",
		Message: "댓글을 작성할 게시글을 찾을 수 없습니다.",
	})
}
