package comment

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required,notblank,max=1000"`
}

type UpdateCommentRequest struct {
	Body string `json:"body" binding:"required,notblank,max=1000"`
}

type CommentResponse struct {
	ID        uint32 `json:"id"`
	ArticleID uint32 `json:"articleId"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"` // seconds since the Unix epoch
}
