package article

import (
	"net/http"

	sharedError "github.com/changhyeonkim/gorm-timestamp/internal/shared/error"
)

const (
	articleNotFound = "ARTICLE_NOT_FOUND" // errInfo
)

var (
	ErrArticleNotFound = sharedError.NewDomainError(articleNotFound)
)

func init() {
	sharedError.RegisterDomainErrorResponse(articleNotFound, sharedError.ErrorResponse{
		Status:  http.StatusNotFound,
		Code:    "ARTICLE-001",
		Message: "게시글을 찾을 수 없습니다.",
	})
}
