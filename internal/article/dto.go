package article

type CreateArticleRequest struct {
	Title   string `json:"title" binding:"required,notblank,max=200"`
	Content string `json:"content" binding:"max=4000"`
	// CreateTime keeps the original creation time of imported articles
	CreateTime *string `json:"createTime" binding:"omitempty,timestamp"`
}

// UpdateArticleRequest is a partial update. Omitted fields are left alone.
type UpdateArticleRequest struct {
	Title   *string `json:"title" binding:"omitempty,notblank,max=200"`
	Content *string `json:"content" binding:"omitempty,max=4000"`
	// UpdateTime overrides the automatic update time
	UpdateTime *string `json:"updateTime" binding:"omitempty,timestamp"`
}

type ArticleResponse struct {
	ID         uint32         `json:"id"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Timestamps map[string]any `json:"timestamps"`
}
